package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description   string
	status        string
	photoPath     string
	photoPassword string
}

// SetDescription sets the description (for testing).
func (c *AddCmd) SetDescription(desc string) {
	c.description = desc
}

// SetStatus sets the initial status (for testing).
func (c *AddCmd) SetStatus(status string) {
	c.status = status
}

// SetPhoto sets the photo file and passphrase (for testing).
func (c *AddCmd) SetPhoto(path, password string) {
	c.photoPath = path
	c.photoPassword = password
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string {
	return "etarefas add -d <description> [-s <status>] [--photo <file> [--photo-password <p>]] <title...>"
}
func (c *AddCmd) NeedsBackend() bool { return true }

func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.description, "description", "d", "", "")
	fs.StringVarP(&c.status, "status", "s", "", "")
	fs.StringVar(&c.photoPath, "photo", "", "")
	fs.StringVar(&c.photoPassword, "photo-password", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}
	desc := strings.TrimSpace(c.description)
	if desc == "" {
		fmt.Fprintln(errOut, "error: description required")
		return exitcode.UserError
	}

	status := service.StatusPending
	if c.status != "" {
		var ok bool
		if status, ok = service.ParseStatus(c.status); !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return exitcode.UserError
		}
	}

	rec := service.Record{Title: title, Description: desc, Status: status}
	if code := attachPhoto(&rec, c.photoPath, c.photoPassword, errOut); code != exitcode.Success {
		return code
	}

	if err := awaitIntent(ctx, gw, gw.Create(ctx, rec)); err != nil {
		return reportError(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// attachPhoto reads the photo at path into rec. An empty path attaches
// nothing; a passphrase without a photo is rejected.
func attachPhoto(rec *service.Record, path, password string, errOut io.Writer) int {
	if path == "" {
		if password != "" {
			fmt.Fprintln(errOut, "error: --photo-password requires --photo")
			return exitcode.UserError
		}
		return exitcode.Success
	}

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "error: cannot read photo: %v\n", err)
		return exitcode.UserError
	}
	rec.Photo = &service.Photo{Filename: filepath.Base(path), Content: content}
	rec.PhotoPassword = password
	return exitcode.Success
}
