// Package commands implements CLI command handlers for gitsig.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/gitsig/internal/backend"
	"github.com/Sumatoshi-tech/gitsig/pkg/config"
	"github.com/Sumatoshi-tech/gitsig/pkg/observability"
	"github.com/Sumatoshi-tech/gitsig/pkg/signature"
	"github.com/Sumatoshi-tech/gitsig/pkg/version"
)

// Persistent flag names.
const (
	flagConfig  = "config"
	flagRepo    = "repo"
	flagBackend = "backend"
	flagOutput  = "output"
	flagVerbose = "verbose"
	flagQuiet   = "quiet"
	flagNoColor = "no-color"
)

// App holds the state shared by all commands of one invocation.
type App struct {
	configPath string
	repoPath   string
	backend    string
	output     string
	verbose    bool
	quiet      bool
	noColor    bool

	cfg       *config.Config
	providers observability.Providers
	metrics   *observability.ConversionMetrics
}

// NewRootCommand creates the gitsig root command with every subcommand attached.
func NewRootCommand() *cobra.Command {
	app := &App{}

	rootCmd := &cobra.Command{
		Use:   "gitsig",
		Short: "Convert between git signatures and signature records",
		Long: `gitsig resolves signature records (name, email, time, offset) into git
signatures and reads the signatures of existing commits back into records.

Commands:
  resolve   Build a signature from a record or the default identity
  show      Print the author and committer of a commit
  commit    Create a commit with signatures resolved from records
  log       List the signatures of recent commits`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&app.configPath, flagConfig, "", "config file (default .gitsig.yaml in CWD or $HOME)")
	flags.StringVarP(&app.repoPath, flagRepo, "C", ".", "path inside the repository")
	flags.StringVar(&app.backend, flagBackend, "", "git engine: libgit2 or gogit")
	flags.StringVarP(&app.output, flagOutput, "o", "", "output format: text, yaml or json")
	flags.BoolVarP(&app.verbose, flagVerbose, "v", false, "verbose output")
	flags.BoolVarP(&app.quiet, flagQuiet, "q", false, "suppress log output")
	flags.BoolVar(&app.noColor, flagNoColor, false, "disable colored output")

	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newShowCommand(app))
	rootCmd.AddCommand(newCommitCommand(app))
	rootCmd.AddCommand(newLogCommand(app))

	return rootCmd
}

// run wraps a command body with configuration loading and telemetry setup.
// Telemetry is flushed when the body returns, whether or not it failed.
func (a *App) run(
	name string, body func(ctx context.Context, cmd *cobra.Command, args []string) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		setupErr := a.setup(cmd)
		if setupErr != nil {
			return setupErr
		}

		defer func() {
			shutdownErr := a.providers.Shutdown(context.WithoutCancel(cmd.Context()))
			if shutdownErr != nil {
				err = errors.Join(err, fmt.Errorf("shutdown telemetry: %w", shutdownErr))
			}
		}()

		ctx, span := a.providers.Tracer.Start(cmd.Context(), "gitsig."+name,
			trace.WithAttributes(
				attribute.String("gitsig.command", name),
				attribute.String("backend.kind", a.cfg.Backend),
			))
		defer span.End()

		err = body(ctx, cmd, args)
		if err != nil {
			span.RecordError(err)
		}

		return err
	}
}

func (a *App) setup(cmd *cobra.Command) error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed(flagBackend) {
		cfg.Backend = a.backend
	}

	if cmd.Flags().Changed(flagOutput) {
		cfg.Output = a.output
	}

	err = cfg.Validate()
	if err != nil {
		return fmt.Errorf("validate flags: %w", err)
	}

	a.cfg = cfg

	if a.noColor {
		color.NoColor = true //nolint:reassign // intentional override of library global
	}

	obsCfg, err := a.observabilityConfig()
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	metrics, err := observability.NewConversionMetrics(providers.Meter)
	if err != nil {
		return errors.Join(err, providers.Shutdown(context.WithoutCancel(cmd.Context())))
	}

	a.providers = providers
	a.metrics = metrics

	return nil
}

func (a *App) observabilityConfig() (observability.Config, error) {
	level, err := a.cfg.LogLevel()
	if err != nil {
		return observability.Config{}, err
	}

	switch {
	case a.verbose:
		level = slog.LevelDebug
	case a.quiet:
		level = slog.LevelError
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.LogLevel = level
	obsCfg.LogJSON = a.cfg.Logging.JSON
	obsCfg.OTLPEndpoint = a.cfg.Telemetry.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(a.cfg.Telemetry.OTLPHeaders)
	obsCfg.OTLPInsecure = a.cfg.Telemetry.OTLPInsecure
	obsCfg.MetricsFile = a.cfg.Telemetry.MetricsFile

	return obsCfg, nil
}

// openBackend opens the repository with the configured engine.
func (a *App) openBackend() (backend.Backend, error) {
	b, err := backend.Open(a.cfg.Backend, a.repoPath, a.cfg.Identity.Scopes)
	if err != nil {
		return nil, fmt.Errorf("open %s repository at %s: %w", a.cfg.Backend, a.repoPath, err)
	}

	return b, nil
}

// converter returns a converter over factory, wired to the telemetry of this run.
func (a *App) converter(factory signature.Factory) *signature.Converter {
	return signature.New(factory,
		signature.WithLogger(a.providers.Logger),
		signature.WithTracer(a.providers.Tracer),
		signature.WithRecorder(a.metrics),
	)
}
