package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string       { return "help" }
func (c *HelpCmd) Aliases() []string  { return nil }
func (c *HelpCmd) Synopsis() string   { return "Print usage" }
func (c *HelpCmd) Usage() string      { return "etarefas help" }
func (c *HelpCmd) NeedsBackend() bool { return false }

func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  etarefas                                          List all tasks
  etarefas list [common flags] [--status <s>]       List tasks, optionally by status
  etarefas add [common flags] -d <description> [-s <status>] [--photo <file>] [--photo-password <p>] <title...>
  etarefas edit [common flags] [--title <t>] [-d <description>] [-s <status>] [--photo <file>] [--photo-password <p>] <ref>
  etarefas done [common flags] <ref>
  etarefas reopen [common flags] <ref>
  etarefas rm [common flags] <ref>
  etarefas photo [common flags] [-o <file>|-] [--password <p> | --prompt] <ref>
  etarefas config [common flags] [init [--force]]
  etarefas help
  etarefas version

Task references:
  <n>              Position in the listing (1-based)
  #<id>            Task id

Statuses:
  pending (Pendente), finished (Finalizada)

Common flags:
  --config <dir>   Override config directory
  --base-url <url> Override the task API address
  --color <mode>   auto, always or never
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
