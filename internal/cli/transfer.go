package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/timetracker/internal/export"
)

// exportCommand implements `timetracker export`.
type exportCommand struct {
	ctx *Context
	cmd *cobra.Command

	format string
	dir    string
}

func newExportCommand(ctx *Context) *exportCommand {
	c := &exportCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "export",
		Short: "Write all entries to timetracker.json or timetracker.csv",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	f := c.cmd.Flags()
	f.StringVarP(&c.format, "format", "f", string(export.FormatJSON), "json or csv")
	f.StringVarP(&c.dir, "dir", "d", "", "Target directory, overrides export.dir")
	return c
}

func (c *exportCommand) Cmd() *cobra.Command { return c.cmd }

func (c *exportCommand) run(cmd *cobra.Command, _ []string) error {
	format, err := export.ParseFormat(c.format)
	if err != nil {
		return err
	}
	dir := c.dir
	if dir == "" {
		dir = c.ctx.cfg.Export.Dir
	}
	path, err := export.ToFile(c.ctx.repo.Entries(), dir, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d entries to %s\n", c.ctx.repo.Len(), path)
	return nil
}

// importCommand implements `timetracker import`.
type importCommand struct {
	ctx *Context
	cmd *cobra.Command
}

func newImportCommand(ctx *Context) *importCommand {
	c := &importCommand{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all entries with a .json or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE:  c.run,
	}
	return c
}

func (c *importCommand) Cmd() *cobra.Command { return c.cmd }

func (c *importCommand) run(cmd *cobra.Command, args []string) error {
	res, err := export.ImportFile(args[0])
	if err != nil {
		return err
	}
	if err := c.ctx.repo.Replace(res.Entries); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d entries from %s\n", len(res.Entries), args[0])
	if res.Skipped > 0 {
		fmt.Fprintf(out, "Skipped %d malformed rows\n", res.Skipped)
	}
	return nil
}
