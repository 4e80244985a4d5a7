package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configPath     string
	statePath      string
	logLevel       string
	metricsListen  string
	dryRun         bool
	checkUnmanaged bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           "declarr",
		Short:         "Declarative configuration for Sonarr instances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "declarr.yml", "path to the configuration file")
	flags.StringVar(&opts.statePath, "state", "", "path to persist the applied settings snapshot")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log verbosity (debug, info)")
	flags.StringVar(&opts.metricsListen, "metrics-listen", "", "address to serve Prometheus metrics on, e.g. :9700")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "log intended changes without applying them")
	flags.BoolVar(&opts.checkUnmanaged, "check-unmanaged", false, "also diff settings the config leaves unset")

	cmd.AddCommand(newRunCmd(opts))
	cmd.AddCommand(newDeleteCmd(opts))
	cmd.AddCommand(newDumpRemoteCmd(opts))
	return cmd
}

// newLogger builds the diagnostic sink. Every invocation gets a run id so
// log lines from concurrent runs against different instances stay
// separable.
func newLogger(level string) (logr.Logger, error) {
	zapLevel := zapcore.InfoLevel
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
	default:
		return logr.Logger{}, fmt.Errorf("unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, fmt.Errorf("failed to build logger: %w", err)
	}
	return zapr.NewLogger(z).WithValues("run_id", uuid.NewString()), nil
}

// serveMetrics exposes the Prometheus registry when a listen address is
// configured. Listener errors surface in the log only.
func serveMetrics(log logr.Logger, addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "metrics listener failed", "addr", addr)
		}
	}()
}
