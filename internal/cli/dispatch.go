// Package cli parses the command line, loads configuration and wires the
// task store and gateway for each command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"etarefas/internal/commands"
	"etarefas/internal/config"
	"etarefas/internal/exitcode"
	"etarefas/internal/gateway"
	"etarefas/internal/logging"
	"etarefas/internal/service"
	"etarefas/internal/state"
)

// ServiceFactory creates a Service from config.
// Used to inject the backend during dispatch.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> dispatch to "list" command with no args
	if len(args) == 0 {
		return d.dispatch(ctx, "list", nil, out, errOut)
	}

	cmdName := args[0]

	// If first token starts with -, it's an error (flags require a command)
	if strings.HasPrefix(cmdName, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}

	return d.dispatch(ctx, cmdName, args[1:], out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmdName string, args []string, out, errOut io.Writer) int {
	cmd, ok := d.registry.Find(cmdName)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", cmdName)
		return exitcode.UserError
	}
	return d.dispatchCommand(ctx, cmd, args, out, errOut)
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	baseURL   string
	color     string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.StringVar(&f.baseURL, "base-url", "", "")
	fs.StringVar(&f.color, "color", "", "")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// apply overrides cfg with the flags given on the command line.
func (f *commonFlags) apply(fs *pflag.FlagSet, cfg *config.Config) error {
	if fs.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if fs.Changed("color") {
		cfg.Color = f.color
	}
	cfg.Quiet = f.quiet
	cfg.Debug = f.debug
	return cfg.Validate()
}

func (d *Dispatcher) dispatchCommand(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	// Create flag set with custom error handling
	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // We handle errors ourselves

	var common commonFlags
	common.register(fs)

	// Register command-specific flags
	cmd.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "Usage: %s\n", cmd.Usage())
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	cfg, err := config.Load(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.ConfigError
	}
	if err := common.apply(fs, cfg); err != nil {
		fmt.Fprintf(errOut, "error: config error: %s\n", err)
		return exitcode.ConfigError
	}

	log := logging.New(errOut, cfg.Debug).With().Str("cmd", cmd.Name()).Logger()

	var gw *gateway.Gateway
	if cmd.NeedsBackend() {
		svc, err := d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: config error: %s\n", err)
			return exitcode.ConfigError
		}

		store := state.NewContainer()
		if cfg.Debug {
			defer traceStore(store, log)()
		}
		gw = gateway.New(svc, store, gateway.WithLogger(log))
		defer gw.Wait()
	}

	log.Debug().Strs("args", fs.Args()).Msg("running command")
	return cmd.Run(ctx, cfg, gw, fs.Args(), out, errOut)
}

// traceStore logs every state the store emits until the returned stop
// function is called.
func traceStore(store *state.Container, log zerolog.Logger) (stop func()) {
	ch := store.Subscribe()
	done := make(chan struct{})

	go func() {
		defer close(done)
		for s := range ch {
			ev := log.Debug().
				Int("tasks", s.Len()).
				Int("pending", s.PendingCount()).
				Bool("in_flight", s.InFlight())
			if serr := s.Err(); serr != nil {
				ev = ev.Str("error", serr.Error()).Str("kind", service.KindName(serr))
			}
			ev.Msg("state changed")
		}
	}()

	return func() {
		store.Unsubscribe(ch)
		<-done
	}
}
