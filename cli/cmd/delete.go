package cmd

import (
	"github.com/urfave/cli/v2"
)

// DeleteResponse is the response for the delete command.
type DeleteResponse struct {
	Key     string `json:"key" yaml:"key" msgpack:"key"`
	Deleted bool   `json:"deleted" yaml:"deleted" msgpack:"deleted"`
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a stored dataset and its descriptor",
		ArgsUsage: "KEY",
		Action:    withEnv(deleteAction),
	}
}

func deleteAction(c *cli.Context, e *env) error {
	key, err := keyArg(c, "delete")
	if err != nil {
		return err
	}
	if err := e.svc.Delete(c.Context, key); err != nil {
		return err
	}
	return e.render.Render(DeleteResponse{Key: key, Deleted: true})
}
