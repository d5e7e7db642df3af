package resources

import (
	"context"
	"errors"

	"github.com/opmodel/converge/internal/component"
	"github.com/opmodel/converge/internal/output"
)

// CommandType runs a shell command when its guard says so.
var CommandType = component.Type{
	Name:        "command",
	Namevar:     "command",
	Description: "shell command guarded by creates/requires or unless",
	New:         decoded[Command](),
}

// Command runs a shell command in the root's work directory.
//
// With Creates set the command is current while that file is newer than
// every path in Requires, and the file is touched after a successful run.
// With Unless set the command is current while the Unless command succeeds.
// Without a guard the command runs on every deploy.
type Command struct {
	component.Base

	Command  string   `attr:"command"`
	Creates  string   `attr:"creates"`
	Requires []string `attr:"requires"`
	Unless   string   `attr:"unless"`
}

func (c *Command) Verify(ctx context.Context) (component.Status, error) {
	switch {
	case c.Creates != "":
		return c.AssertFileIsCurrent(c.Creates, c.Requires...)
	case c.Unless != "":
		_, err := c.Cmd(ctx, c.Unless)
		var ce *component.CommandError
		if errors.As(err, &ce) {
			return component.NeedsUpdate, nil
		}
		if err != nil {
			return component.Current, err
		}
		return component.Current, nil
	default:
		return component.NeedsUpdate, nil
	}
}

func (c *Command) Update(ctx context.Context) error {
	out, err := c.Cmd(ctx, c.Command)
	if err != nil {
		return err
	}
	output.Debug("command finished", "command", c.Command, "output", string(out))
	if c.Creates != "" {
		return c.Touch(c.Creates)
	}
	return nil
}
