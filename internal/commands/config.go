package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/pflag"

	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
)

func init() {
	Register(&ConfigCmd{})
}

// ConfigCmd implements the config command.
// `etarefas config` prints the effective settings; `etarefas config init`
// writes them to the config file.
type ConfigCmd struct {
	force bool
}

func (c *ConfigCmd) Name() string       { return "config" }
func (c *ConfigCmd) Aliases() []string  { return nil }
func (c *ConfigCmd) Synopsis() string   { return "Show or initialize configuration" }
func (c *ConfigCmd) Usage() string      { return "etarefas config [init [--force]]" }
func (c *ConfigCmd) NeedsBackend() bool { return false }

func (c *ConfigCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

// fileConfig is the on-disk shape written by `config init`.
type fileConfig struct {
	BaseURL string `toml:"base-url"`
	Timeout string `toml:"timeout"`
	Color   string `toml:"color"`
}

func (c *ConfigCmd) Run(ctx context.Context, cfg *config.Config, gw *gateway.Gateway, args []string, out, errOut io.Writer) int {
	switch {
	case len(args) == 0:
		return c.showConfig(cfg, out)
	case args[0] == "init" && len(args) == 1:
		return c.initFile(cfg, out, errOut)
	default:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
}

func (c *ConfigCmd) showConfig(cfg *config.Config, out io.Writer) int {
	file := cfg.FilePath()
	if !cfg.HasFile() {
		file += " (missing)"
	}
	token := "(not set)"
	if cfg.APIToken != "" {
		token = "(set)"
	}

	fmt.Fprintf(out, "config file: %s\n", file)
	fmt.Fprintf(out, "base-url:    %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "timeout:     %s\n", cfg.Timeout)
	fmt.Fprintf(out, "color:       %s\n", cfg.Color)
	fmt.Fprintf(out, "api-token:   %s\n", token)
	return exitcode.Success
}

func (c *ConfigCmd) initFile(cfg *config.Config, out, errOut io.Writer) int {
	if cfg.HasFile() && !c.force {
		fmt.Fprintf(errOut, "error: config file already exists: %s\n", cfg.FilePath())
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}

	f, err := os.OpenFile(cfg.FilePath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}
	defer f.Close()

	fc := fileConfig{BaseURL: cfg.BaseURL, Timeout: cfg.Timeout.String(), Color: cfg.Color}
	if err := toml.NewEncoder(f).Encode(fc); err != nil {
		fmt.Fprintf(errOut, "error: config error: %v\n", err)
		return exitcode.ConfigError
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %s\n", cfg.FilePath())
	}
	return exitcode.Success
}
