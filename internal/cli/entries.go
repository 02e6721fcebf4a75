package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetracker/internal/render"
	"github.com/sadopc/timetracker/internal/stats"
	"github.com/sadopc/timetracker/internal/store"
)

// resolveDate accepts YYYY-MM-DD, "today" or "yesterday".
func resolveDate(s string, clock stats.Clock) (string, error) {
	switch strings.ToLower(s) {
	case "today":
		return store.FormatDate(clock.Now()), nil
	case "yesterday":
		return store.FormatDate(clock.Now().AddDate(0, 0, -1)), nil
	}
	if _, err := store.ParseDate(s); err != nil {
		return "", err
	}
	return s, nil
}

// addCommand implements `timetracker add`.
type addCommand struct {
	ctx *Context
	cmd *cobra.Command

	note string
}

func newAddCommand(ctx *Context) *addCommand {
	c := &addCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "add <date|today> <minutes>",
		Short: "Log minutes on a day",
		Args:  cobra.ExactArgs(2),
		RunE:  c.run,
	}
	c.cmd.Flags().StringVarP(&c.note, "note", "n", "", "Optional note")
	return c
}

func (c *addCommand) Cmd() *cobra.Command { return c.cmd }

func (c *addCommand) run(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(args[0], c.ctx.Clock)
	if err != nil {
		return err
	}
	minutes, err := store.ParseMinutes(args[1])
	if err != nil {
		return err
	}
	if err := c.ctx.repo.Add(store.Entry{Date: date, Value: minutes, Note: c.note}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %g min on %s\n", minutes, date)
	return nil
}

// listCommand implements `timetracker list`.
type listCommand struct {
	ctx *Context
	cmd *cobra.Command
}

func newListCommand(ctx *Context) *listCommand {
	c := &listCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

func (c *listCommand) Cmd() *cobra.Command { return c.cmd }

func (c *listCommand) run(cmd *cobra.Command, _ []string) error {
	entries := c.ctx.repo.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries yet")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), render.EntriesTable(stats.ReverseChronological(entries)))
	return nil
}

// deleteCommand implements `timetracker delete`.
type deleteCommand struct {
	ctx *Context
	cmd *cobra.Command
}

func newDeleteCommand(ctx *Context) *deleteCommand {
	c := &deleteCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete an entry by the index shown in list",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	return c
}

func (c *deleteCommand) Cmd() *cobra.Command { return c.cmd }

func (c *deleteCommand) run(cmd *cobra.Command, args []string) error {
	i, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("%w: %q", store.ErrIndexOutOfRange, args[0])
	}
	entries := c.ctx.repo.Entries()
	if err := c.ctx.repo.Remove(i); err != nil {
		return err
	}
	e := entries[i]
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %g min on %s\n", e.Value, e.Date)
	return nil
}

// setCommand implements `timetracker set`, the calendar cell edit.
type setCommand struct {
	ctx *Context
	cmd *cobra.Command
}

func newSetCommand(ctx *Context) *setCommand {
	c := &setCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "set <date|today> <minutes>",
		Short: "Replace a day's entries with one total; 0 clears the day",
		Args:  cobra.ExactArgs(2),
		RunE:  c.run,
	}
	return c
}

func (c *setCommand) Cmd() *cobra.Command { return c.cmd }

func (c *setCommand) run(cmd *cobra.Command, args []string) error {
	date, err := resolveDate(args[0], c.ctx.Clock)
	if err != nil {
		return err
	}
	minutes, err := store.ParseCellInput(args[1])
	if err != nil {
		return err
	}
	if err := c.ctx.repo.SetDay(date, minutes); err != nil {
		return err
	}
	if minutes <= 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", date)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s to %g min\n", date, minutes)
	}
	return nil
}
