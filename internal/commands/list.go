package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/output"
	"etarefas/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `etarefas` (no args) and `etarefas list`.
type ListCmd struct {
	status string
}

// SetStatus sets the status filter (for testing).
func (c *ListCmd) SetStatus(status string) {
	c.status = status
}

func (c *ListCmd) Name() string       { return "list" }
func (c *ListCmd) Aliases() []string  { return []string{"ls"} }
func (c *ListCmd) Synopsis() string   { return "List tasks" }
func (c *ListCmd) Usage() string      { return "etarefas list [--status pending|finished]" }
func (c *ListCmd) NeedsBackend() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.status, "status", "s", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	var filter service.Status
	if c.status != "" {
		var ok bool
		if filter, ok = service.ParseStatus(c.status); !ok {
			fmt.Fprintf(errOut, "error: invalid status: %s\n", c.status)
			return exitcode.UserError
		}
	}

	s, err := fetchTasks(ctx, gw)
	if err != nil {
		return reportError(errOut, err)
	}

	// Numbers are positions in the full listing so that refs stay valid
	// when a filter is applied.
	st := output.NewStyles(out, cfg.Color)
	printed := 0
	for i, task := range s.Tasks() {
		if filter != "" && task.Status != filter {
			continue
		}
		output.FormatTask(out, st, i+1, task)
		printed++
	}

	if printed == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
