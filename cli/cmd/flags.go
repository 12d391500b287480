// Package cmd provides CLI commands for the numstore binary.
package cmd

import "github.com/urfave/cli/v2"

// Global flags shared by every command.
var (
	// ConfigFlag points at a numstore.yaml file.
	ConfigFlag = &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to numstore.yaml (default: ./numstore.yaml if present)",
		EnvVars: []string{"NUMSTORE_CONFIG"},
	}

	// LogLevelFlag overrides the configured log level.
	LogLevelFlag = &cli.StringFlag{
		Name:  "log-level",
		Usage: "Log level: debug, info, warn, error",
		Value: "info",
	}

	// FormatFlag selects output format: json, table, yaml, msgpack.
	FormatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format: json, table, yaml, msgpack",
	}
)

// TUIFlag enables Bubble Tea interactive mode.
// Only valid for array and matrix reads.
var TUIFlag = &cli.BoolFlag{
	Name:  "tui",
	Usage: "Browse pages interactively",
}

// GlobalFlags returns the flags accepted before any subcommand.
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		ConfigFlag,
		LogLevelFlag,
		FormatFlag,
	}
}

// datasetFlags returns the identity flags every generate command takes.
func datasetFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "owner",
			Usage:    "Owner namespace the dataset is stored under",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "name",
			Usage:    "Dataset file name (the kind suffix is appended if missing)",
			Required: true,
		},
	}
}

// elementFlag returns the element-type flag for generate commands.
func elementFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "type",
		Aliases:  []string{"t"},
		Usage:    "Element type: int8..int64, uint8..uint64, float32, float64 (C names accepted)",
		Required: true,
	}
}

func randomFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "min", Usage: "Inclusive lower bound", Required: true},
		&cli.StringFlag{Name: "max", Usage: "Inclusive upper bound", Required: true},
	}
}

func orderedFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "pattern", Usage: "ascending, descending or random", Value: "ascending"},
		&cli.StringFlag{Name: "start", Usage: "First value", Value: "0"},
		&cli.StringFlag{Name: "step", Usage: "Increment between runs", Value: "1"},
		&cli.Uint64Flag{Name: "interval", Usage: "Repetitions of each value", Value: 1},
	}
}

// hintFlag is the optional decode hint for reads.
func hintFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Decode as this element type, overriding the stored descriptor",
	}
}
