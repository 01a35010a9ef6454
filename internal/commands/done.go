package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/service"
)

func init() {
	Register(&DoneCmd{})
	Register(&ReopenCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string       { return "done" }
func (c *DoneCmd) Aliases() []string  { return []string{"finish"} }
func (c *DoneCmd) Synopsis() string   { return "Mark a task finished" }
func (c *DoneCmd) Usage() string      { return "etarefas done <ref>" }
func (c *DoneCmd) NeedsBackend() bool { return true }

func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, gw, service.StatusFinished, args, out, errOut)
}

// ReopenCmd implements the reopen command.
type ReopenCmd struct{}

func (c *ReopenCmd) Name() string       { return "reopen" }
func (c *ReopenCmd) Aliases() []string  { return nil }
func (c *ReopenCmd) Synopsis() string   { return "Mark a task pending again" }
func (c *ReopenCmd) Usage() string      { return "etarefas reopen <ref>" }
func (c *ReopenCmd) NeedsBackend() bool { return true }

func (c *ReopenCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ReopenCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	return runSetStatus(ctx, cfg, gw, service.StatusPending, args, out, errOut)
}

// runSetStatus is the shared implementation for done and reopen.
func runSetStatus(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, status service.Status, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	task, code := lookupTask(ctx, gw, args, errOut)
	if code != exitcode.Success {
		return code
	}

	rec := task.Record()
	rec.Status = status
	return replaceTask(ctx, cfg, gw, task.ID, rec, out, errOut)
}
