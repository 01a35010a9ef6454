package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
)

func init() {
	Register(&PhotoCmd{})
}

// PasswordReader reads a passphrase without echo. Replaced in tests.
var PasswordReader = readTerminalPassword

// PhotoCmd implements the photo command.
type PhotoCmd struct {
	output   string
	password string
	prompt   bool
}

// SetOutput sets the output path (for testing).
func (c *PhotoCmd) SetOutput(path string) {
	c.output = path
}

// SetPassword sets the passphrase and prompt mode (for testing).
func (c *PhotoCmd) SetPassword(password string, prompt bool) {
	c.password = password
	c.prompt = prompt
}

func (c *PhotoCmd) Name() string       { return "photo" }
func (c *PhotoCmd) Aliases() []string  { return nil }
func (c *PhotoCmd) Synopsis() string   { return "Download a task's photo" }
func (c *PhotoCmd) Usage() string      { return "etarefas photo [-o <file>|-] [--password <p> | --prompt] <ref>" }
func (c *PhotoCmd) NeedsBackend() bool { return true }

func (c *PhotoCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.output, "output", "o", "", "")
	fs.StringVar(&c.password, "password", "", "")
	fs.BoolVar(&c.prompt, "prompt", false, "")
}

func (c *PhotoCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	if c.prompt && c.password != "" {
		fmt.Fprintln(errOut, "error: cannot use both --password and --prompt")
		return exitcode.UserError
	}

	task, code := lookupTask(ctx, gw, args, errOut)
	if code != exitcode.Success {
		return code
	}
	if !task.HasPhoto() {
		fmt.Fprintln(errOut, "error: task has no photo")
		return exitcode.UserError
	}

	password := c.password
	if c.prompt {
		var err error
		if password, err = PasswordReader(errOut); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	// Photo bytes are not part of the task collection, so this bypasses the
	// gateway and store.
	content, err := gw.Service().FetchPhoto(ctx, task.PhotoURL, password)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			fmt.Fprintln(errOut, "error: photo password required or incorrect")
			return exitcode.UserError
		}
		return reportError(errOut, err)
	}

	if c.output == "-" {
		if _, err := out.Write(content); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		return exitcode.Success
	}

	dest := c.output
	if dest == "" {
		dest = path.Base(task.PhotoURL)
	}
	if err := os.WriteFile(dest, content, 0644); err != nil {
		fmt.Fprintf(errOut, "error: cannot write photo: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "saved %s\n", dest)
	}
	return exitcode.Success
}

func readTerminalPassword(errOut io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("--prompt requires a terminal")
	}

	fmt.Fprint(errOut, "Photo password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(errOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
