package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sliink/meter/internal/api"
	"github.com/sliink/meter/internal/core"
	"github.com/sliink/meter/internal/model"
	"github.com/sliink/meter/internal/plugin/outputs"
	"github.com/sliink/meter/internal/plugin/standard"
	"github.com/spf13/cobra"
)

type options struct {
	configFile      string
	logFormat       string
	logLevel        string
	apiEnabled      bool
	apiHost         string
	apiPort         int
	shutdownTimeout time.Duration
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "meter",
		Short:        "Meter - Measure, transform, and export metrics through plugins",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the agent with the plugins enabled in the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts, cmd.ErrOrStderr())
		},
	}
	runCmd.Flags().StringVar(&opts.configFile, "config", "", "Path to configuration file")
	runCmd.Flags().BoolVar(&opts.apiEnabled, "api", true, "Enable the API server")
	runCmd.Flags().StringVar(&opts.apiHost, "api-host", "localhost", "API server host")
	runCmd.Flags().IntVar(&opts.apiPort, "api-port", 8080, "API server port")
	runCmd.Flags().DurationVar(&opts.shutdownTimeout, "shutdown-timeout", 10*time.Second, "Time allowed for the pipeline to stop")

	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the available plugins",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range standard.NewFactory().Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}

	rootCmd.AddCommand(runCmd, pluginsCmd)
	return rootCmd
}

func newLogger(w io.Writer, format, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOpts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, handlerOpts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

func loadConfig(path string) (*core.ConfigManager, error) {
	config := core.NewConfigManager()
	if path == "" {
		return config, nil
	}
	if err := config.LoadConfig(path); err != nil {
		return nil, err
	}
	return config, nil
}

// gathererOf returns the registry of the prometheus output, if any
func gathererOf(plugins []model.Plugin) prometheus.Gatherer {
	for _, p := range plugins {
		if out, ok := p.(*outputs.PrometheusOutput); ok {
			return out.Registry()
		}
	}
	return nil
}

func run(ctx context.Context, opts *options, logOutput io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, err := newLogger(logOutput, opts.logFormat, opts.logLevel)
	if err != nil {
		return err
	}

	config, err := loadConfig(opts.configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	plugins, err := standard.NewFactory().CreatePlugins(config)
	if err != nil {
		return err
	}
	if len(plugins) == 0 {
		return errors.New("no plugin is enabled in the configuration")
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agent, err := core.NewBuilder(plugins...).
		WithConfig(config).
		WithLogger(logger).
		BuildAndStart(ctx)
	if err != nil {
		return fmt.Errorf("failed to start agent: %w", err)
	}
	logger.Info("agent is running", slog.Int("plugins", len(plugins)))

	var apiServer *api.API
	if opts.apiEnabled {
		apiServer = api.NewAPI(agent, gathererOf(plugins), opts.apiHost, opts.apiPort)
		go func() {
			logger.Info("starting API server", slog.String("host", opts.apiHost), slog.Int("port", opts.apiPort))
			if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("API server failed", slog.Any("error", err))
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if apiServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Warn("API server shutdown failed", slog.Any("error", err))
		}
	}

	agent.Shutdown()
	if err := agent.WaitForShutdown(opts.shutdownTimeout); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}
