package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetracker/internal/store"
)

// offsetCommand implements `timetracker offset`.
type offsetCommand struct {
	ctx *Context
	cmd *cobra.Command

	clear bool
}

func newOffsetCommand(ctx *Context) *offsetCommand {
	c := &offsetCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "offset [hours]",
		Short: "Show or set the hours tracked before the first entry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.clear, "clear", false, "Remove the initial hours")
	return c
}

func (c *offsetCommand) Cmd() *cobra.Command { return c.cmd }

func (c *offsetCommand) run(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	repo := c.ctx.repo

	switch {
	case c.clear:
		if err := repo.SetInitialHours(0); err != nil {
			return err
		}
		fmt.Fprintln(out, "Initial hours cleared")
	case len(args) == 1:
		h, err := store.ParseHours(args[0])
		if err != nil {
			return err
		}
		if err := repo.SetInitialHours(h); err != nil {
			return err
		}
		fmt.Fprintf(out, "Initial hours set to %g\n", h)
	default:
		fmt.Fprintf(out, "Initial hours: %g\n", repo.InitialHours())
	}
	return nil
}

// clearCommand implements `timetracker clear`.
type clearCommand struct {
	ctx *Context
	cmd *cobra.Command

	yes bool
}

func newClearCommand(ctx *Context) *clearCommand {
	c := &clearCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry and the initial hours",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVarP(&c.yes, "yes", "y", false, "Skip the confirmation prompt")
	return c
}

func (c *clearCommand) Cmd() *cobra.Command { return c.cmd }

func (c *clearCommand) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if !c.yes {
		ok, err := c.ctx.Confirm(cmd.Context(), "Clear all entries and initial hours?")
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Nothing cleared")
			return nil
		}
	}
	if err := c.ctx.repo.ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(out, "Cleared all data")
	return nil
}
