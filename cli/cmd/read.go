package cmd

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/cli/tui"
	"github.com/pithecene-io/numstore/errs"
	"github.com/pithecene-io/numstore/service"
	"github.com/pithecene-io/numstore/types"
)

// ReadCommand returns the read command with subcommands.
// All read subcommands are read-only.
func ReadCommand() *cli.Command {
	return &cli.Command{
		Name:  "read",
		Usage: "Read a stored dataset",
		Subcommands: []*cli.Command{
			{
				Name:      "array",
				Usage:     "Read one page of an array",
				ArgsUsage: "KEY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page", Usage: "1-based page number (clamped)", Value: 1},
					&cli.IntFlag{Name: "limit", Usage: "Elements per page (default: config read.default_limit or 100)"},
					hintFlag(),
					TUIFlag,
				},
				Action: withEnv(readArray),
			},
			{
				Name:      "matrix",
				Usage:     "Read one window of a matrix",
				ArgsUsage: "KEY",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page-row", Usage: "1-based row page (clamped)", Value: 1},
					&cli.IntFlag{Name: "limit-row", Usage: "Rows per page (default: config read.default_limit or 10)"},
					&cli.IntFlag{Name: "page-col", Usage: "1-based column page (clamped)", Value: 1},
					&cli.IntFlag{Name: "limit-col", Usage: "Columns per page (default: config read.default_limit or 10)"},
					hintFlag(),
					TUIFlag,
				},
				Action: withEnv(readMatrix),
			},
			{
				Name:      "text",
				Usage:     "Read a text dataset",
				ArgsUsage: "KEY",
				Flags:     []cli.Flag{TUIFlag},
				Action:    withEnv(readText),
			},
		},
	}
}

func readArray(c *cli.Context, e *env) error {
	const op = "read_array"
	key, err := keyArg(c, op)
	if err != nil {
		return err
	}
	hint, err := parseType(c, op)
	if err != nil {
		return err
	}
	limit := e.limit(c, "limit", defaultArrayLimit)

	page, err := e.svc.ReadArray(c.Context, key, c.Int("page"), limit, hint)
	if err != nil {
		return err
	}
	if !c.Bool("tui") {
		return e.render.Render(page)
	}

	ctx := c.Context
	return e.render.RenderTUI(tui.ViewArray, &tui.ArrayView{
		Key:  key,
		Page: page,
		Fetch: func(p int) (*types.ArrayPage, error) {
			return e.svc.ReadArray(ctx, key, p, limit, hint)
		},
	})
}

func readMatrix(c *cli.Context, e *env) error {
	const op = "read_matrix"
	key, err := keyArg(c, op)
	if err != nil {
		return err
	}
	hint, err := parseType(c, op)
	if err != nil {
		return err
	}
	q := service.MatrixQuery{
		PageRow:  c.Int("page-row"),
		LimitRow: e.limit(c, "limit-row", defaultMatrixLimit),
		PageCol:  c.Int("page-col"),
		LimitCol: e.limit(c, "limit-col", defaultMatrixLimit),
		Type:     hint,
	}

	page, err := e.svc.ReadMatrix(c.Context, key, q)
	if err != nil {
		return err
	}
	if !c.Bool("tui") {
		return e.render.Render(page)
	}

	return e.render.RenderTUI(tui.ViewMatrix, &tui.MatrixView{
		Key:   key,
		Page:  page,
		Fetch: matrixFetcher(c.Context, e.svc, key, q),
	})
}

func matrixFetcher(ctx context.Context, svc *service.Service, key string, q service.MatrixQuery) func(int, int) (*types.MatrixPage, error) {
	return func(pageRow, pageCol int) (*types.MatrixPage, error) {
		q.PageRow, q.PageCol = pageRow, pageCol
		return svc.ReadMatrix(ctx, key, q)
	}
}

func readText(c *cli.Context, e *env) error {
	const op = "read_text"
	if c.Bool("tui") {
		return errs.Errorf(errs.ErrInvalidArgument, op, "", "--tui is not supported for read text")
	}
	key, err := keyArg(c, op)
	if err != nil {
		return err
	}
	text, err := e.svc.ReadText(c.Context, key)
	if err != nil {
		return err
	}
	return e.render.Render(text)
}

// limit resolves a page limit: flag, then config default, then def.
func (e *env) limit(c *cli.Context, flag string, def int) int {
	if c.IsSet(flag) {
		return c.Int(flag)
	}
	if e.cfg.Read.DefaultLimit > 0 {
		return e.cfg.Read.DefaultLimit
	}
	return def
}

func keyArg(c *cli.Context, op string) (string, error) {
	if c.NArg() != 1 {
		return "", errs.Errorf(errs.ErrInvalidArgument, op, "", "expected exactly one KEY argument, got %d", c.NArg())
	}
	return c.Args().First(), nil
}
