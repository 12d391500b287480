package cmd

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/pithecene-io/numstore/errs"
)

// Exit codes.
const (
	exitSuccess         = 0
	exitFailure         = 1
	exitInvalidArgument = 2
	exitNotFound        = 3
	exitIO              = 4
)

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, errs.ErrInvalidArgument), errors.Is(err, errs.ErrUnsupportedType):
		return exitInvalidArgument
	case errors.Is(err, errs.ErrNotFound):
		return exitNotFound
	case errors.Is(err, errs.ErrIO),
		errors.Is(err, errs.ErrDecode),
		errors.Is(err, errs.ErrUnsupportedWidth),
		errors.Is(err, errs.ErrPermissionDenied),
		errors.Is(err, errs.ErrAccessDenied),
		errors.Is(err, errs.ErrAuth),
		errors.Is(err, errs.ErrDiskFull),
		errors.Is(err, errs.ErrTimeout),
		errors.Is(err, errs.ErrThrottled),
		errors.Is(err, errs.ErrNetwork):
		return exitIO
	default:
		return exitFailure
	}
}

// fail converts err into a cli.ExitCoder carrying its exit code.
func fail(err error) error {
	if err == nil {
		return nil
	}
	var exitCoder cli.ExitCoder
	if errors.As(err, &exitCoder) {
		return err
	}
	return cli.Exit(err.Error(), ExitCode(err))
}
