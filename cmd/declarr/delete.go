package main

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/declarr/declarr/internal/config"
	"github.com/declarr/declarr/internal/metrics"
)

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Run only the unmanaged-resource delete pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			serveMetrics(log, opts.metricsListen)
			return runDelete(cmd.Context(), log, opts)
		},
	}
}

// runDelete walks the fixed delete order without a preceding update pass.
// Sections without a delete opt-in in the config stay no-ops.
func runDelete(ctx context.Context, log logr.Logger, opts *options) error {
	start := time.Now()

	cfg, run, err := connect(ctx, log, opts)
	if err != nil {
		return err
	}

	remote, err := config.FetchRemote(ctx, run)
	if err != nil {
		metrics.RecordSync("error", time.Since(start).Seconds())
		return err
	}

	deleted, err := cfg.Settings.DeleteRemote(ctx, run, remote)
	if err != nil {
		metrics.RecordSync("error", time.Since(start).Seconds())
		return err
	}

	metrics.RecordSync("success", time.Since(start).Seconds())
	log.Info("delete pass complete", "changed", deleted, "duration", time.Since(start).String())
	return nil
}
