package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command. Unset flags keep the current value.
type EditCmd struct {
	title         string
	description   string
	status        string
	photoPath     string
	photoPassword string
}

// SetFields sets the title, description and status overrides (for testing).
func (c *EditCmd) SetFields(title, description, status string) {
	c.title = title
	c.description = description
	c.status = status
}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"update"} }
func (c *EditCmd) Synopsis() string  { return "Replace a task's fields" }
func (c *EditCmd) Usage() string {
	return "etarefas edit [--title <t>] [-d <description>] [-s <status>] [--photo <file>] [--photo-password <p>] <ref>"
}
func (c *EditCmd) NeedsBackend() bool { return true }

func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.title, "title", "t", "", "")
	fs.StringVarP(&c.description, "description", "d", "", "")
	fs.StringVarP(&c.status, "status", "s", "", "")
	fs.StringVar(&c.photoPath, "photo", "", "")
	fs.StringVar(&c.photoPassword, "photo-password", "", "")
}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	var status service.Status
	if c.status != "" {
		var ok bool
		if status, ok = service.ParseStatus(c.status); !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return exitcode.UserError
		}
	}

	task, code := lookupTask(ctx, gw, args, errOut)
	if code != exitcode.Success {
		return code
	}

	rec := task.Record()
	if t := strings.TrimSpace(c.title); t != "" {
		rec.Title = t
	}
	if d := strings.TrimSpace(c.description); d != "" {
		rec.Description = d
	}
	if status != "" {
		rec.Status = status
	}
	if c.photoPath != "" {
		if code := attachPhoto(&rec, c.photoPath, c.photoPassword, errOut); code != exitcode.Success {
			return code
		}
	} else if c.photoPassword != "" {
		if !task.HasPhoto() {
			fmt.Fprintln(errOut, "error: task has no photo")
			return exitcode.UserError
		}
		rec.PhotoPassword = c.photoPassword
	}

	return replaceTask(ctx, cfg, gw, task.ID, rec, out, errOut)
}

// replaceTask sends a full replacement record and reports the outcome.
func replaceTask(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, id service.TaskID, rec service.Record, out, errOut io.Writer) int {
	if err := awaitIntent(ctx, gw, gw.Update(ctx, id, rec)); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
