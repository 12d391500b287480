package cmd

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/reader"
	"github.com/pithecene-io/numstore/service"
	"github.com/pithecene-io/numstore/types"
)

// GenerateCommand returns the generate command with subcommands.
func GenerateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate and store a dataset",
		Subcommands: []*cli.Command{
			{
				Name:  "array",
				Usage: "Generate a one-dimensional array",
				Subcommands: []*cli.Command{
					{
						Name:   "random",
						Usage:  "Uniformly sampled values in [min, max]",
						Flags:  concat(datasetFlags(), []cli.Flag{elementFlag(), sizeFlag()}, randomFlags()),
						Action: withEnv(generateRandomArray),
					},
					{
						Name:   "ordered",
						Usage:  "Ordered values start, start+step, ... repeated interval times",
						Flags:  concat(datasetFlags(), []cli.Flag{elementFlag(), sizeFlag()}, orderedFlags()),
						Action: withEnv(generateOrderedArray),
					},
				},
			},
			{
				Name:  "matrix",
				Usage: "Generate a row-major matrix",
				Subcommands: []*cli.Command{
					{
						Name:   "random",
						Usage:  "Uniformly sampled values in [min, max]",
						Flags:  concat(datasetFlags(), []cli.Flag{elementFlag()}, shapeFlags(), randomFlags()),
						Action: withEnv(generateRandomMatrix),
					},
					{
						Name:   "ordered",
						Usage:  "Ordered values filled row by row",
						Flags:  concat(datasetFlags(), []cli.Flag{elementFlag()}, shapeFlags(), orderedFlags()),
						Action: withEnv(generateOrderedMatrix),
					},
				},
			},
			{
				Name:  "text",
				Usage: "Store a UTF-8 text dataset",
				Flags: concat(datasetFlags(), []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "Literal content"},
					&cli.PathFlag{Name: "from-file", Usage: "Read content from a file (UTF-8 or Windows-1251)"},
				}),
				Action: withEnv(generateText),
			},
		},
	}
}

func sizeFlag() cli.Flag {
	return &cli.Uint64Flag{Name: "size", Usage: "Number of elements", Required: true}
}

func shapeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Uint64Flag{Name: "rows", Usage: "Number of rows", Required: true},
		&cli.Uint64Flag{Name: "cols", Usage: "Number of columns", Required: true},
	}
}

func concat(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func generateRandomArray(c *cli.Context, e *env) error {
	et, err := parseType(c, "generate_random_array")
	if err != nil {
		return err
	}
	ds, err := e.svc.CreateRandomArray(c.Context, c.String("owner"), service.RandomArrayRequest{
		Name: c.String("name"),
		Type: et,
		Size: c.Uint64("size"),
		Min:  c.String("min"),
		Max:  c.String("max"),
	})
	if err != nil {
		return err
	}
	return e.render.Render(ds)
}

func generateOrderedArray(c *cli.Context, e *env) error {
	const op = "generate_ordered_array"
	et, err := parseType(c, op)
	if err != nil {
		return err
	}
	pattern, err := parsePattern(c, op)
	if err != nil {
		return err
	}
	ds, err := e.svc.CreateOrderedArray(c.Context, c.String("owner"), service.OrderedArrayRequest{
		Name:     c.String("name"),
		Type:     et,
		Size:     c.Uint64("size"),
		Pattern:  pattern,
		Start:    c.String("start"),
		Step:     c.String("step"),
		Interval: c.Uint64("interval"),
	})
	if err != nil {
		return err
	}
	return e.render.Render(ds)
}

func generateRandomMatrix(c *cli.Context, e *env) error {
	et, err := parseType(c, "generate_random_matrix")
	if err != nil {
		return err
	}
	ds, err := e.svc.CreateRandomMatrix(c.Context, c.String("owner"), service.RandomMatrixRequest{
		Name: c.String("name"),
		Type: et,
		Rows: c.Uint64("rows"),
		Cols: c.Uint64("cols"),
		Min:  c.String("min"),
		Max:  c.String("max"),
	})
	if err != nil {
		return err
	}
	return e.render.Render(ds)
}

func generateOrderedMatrix(c *cli.Context, e *env) error {
	const op = "generate_ordered_matrix"
	et, err := parseType(c, op)
	if err != nil {
		return err
	}
	pattern, err := parsePattern(c, op)
	if err != nil {
		return err
	}
	ds, err := e.svc.CreateOrderedMatrix(c.Context, c.String("owner"), service.OrderedMatrixRequest{
		Name:     c.String("name"),
		Type:     et,
		Rows:     c.Uint64("rows"),
		Cols:     c.Uint64("cols"),
		Pattern:  pattern,
		Start:    c.String("start"),
		Step:     c.String("step"),
		Interval: c.Uint64("interval"),
	})
	if err != nil {
		return err
	}
	return e.render.Render(ds)
}

func generateText(c *cli.Context, e *env) error {
	const op = "generate_text"
	hasText, file := c.IsSet("text"), c.Path("from-file")
	if hasText == (file != "") {
		return errs.Errorf(errs.ErrInvalidArgument, op, "", "exactly one of --text or --from-file is required")
	}

	content := c.String("text")
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return errs.Wrap(err, op, file)
		}
		if content, err = reader.DecodeText(data); err != nil {
			return err
		}
	}

	ds, err := e.svc.CreateText(c.Context, c.String("owner"), service.TextRequest{
		Name:    c.String("name"),
		Content: content,
	})
	if err != nil {
		return err
	}
	return e.render.Render(ds)
}

func parseType(c *cli.Context, op string) (types.ElementType, error) {
	s := c.String("type")
	if s == "" {
		return 0, nil
	}
	et, err := types.ParseElementType(s)
	if err != nil {
		return 0, errs.New(errs.ErrUnsupportedType, op, "", err)
	}
	return et, nil
}

func parsePattern(c *cli.Context, op string) (types.FillPattern, error) {
	p, err := types.ParseFillPattern(c.String("pattern"))
	if err != nil {
		return "", errs.New(errs.ErrInvalidArgument, op, "", err)
	}
	return p, nil
}
