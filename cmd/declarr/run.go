package main

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/config"
	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/remotemap"
	"github.com/declarr/declarr/internal/sonarr"
	"github.com/declarr/declarr/internal/state"
)

func newRunCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Reconcile the declared configuration against the instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(opts.logLevel)
			if err != nil {
				return err
			}
			serveMetrics(log, opts.metricsListen)
			return runSync(cmd.Context(), log, opts)
		},
	}
}

func runSync(ctx context.Context, log logr.Logger, opts *options) error {
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

	updated, err := cfg.Settings.UpdateRemote(ctx, run, remote)
	if err != nil {
		metrics.RecordSync("error", time.Since(start).Seconds())
		return err
	}

	// The update pass may have created resources the delete pass must see
	// as managed, so the baseline is fetched again.
	remote, err = config.FetchRemote(ctx, run)
	if err != nil {
		metrics.RecordSync("error", time.Since(start).Seconds())
		return err
	}

	deleted, err := cfg.Settings.DeleteRemote(ctx, run, remote)
	if err != nil {
		metrics.RecordSync("error", time.Since(start).Seconds())
		return err
	}

	changed := updated || deleted
	metrics.RecordSync("success", time.Since(start).Seconds())
	log.Info("sync complete", "changed", changed, "duration", time.Since(start).String())

	if opts.statePath != "" && !opts.dryRun {
		settings, err := remotemap.FromStruct(cfg.Settings)
		if err != nil {
			return err
		}
		snapshot := &state.Snapshot{
			Instance:  cfg.URL(),
			AppliedAt: time.Now().UTC(),
			Changed:   changed,
			Settings:  settings,
		}
		if err := state.Save(opts.statePath, snapshot); err != nil {
			return err
		}
	}
	return nil
}

// connect loads the config, resolves the instance secrets and builds the
// per-run collaborators.
func connect(ctx context.Context, log logr.Logger, opts *options) (*config.Config, *config.Run, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}

	apiConfig := api.Config{
		BaseURL:            cfg.URL(),
		APIKey:             cfg.APIKey,
		InsecureSkipVerify: !cfg.VerifySSL,
	}
	secrets, err := sonarr.GetSecrets(ctx, apiConfig)
	if err != nil {
		return nil, nil, err
	}
	apiConfig.APIKey = secrets.APIKey

	var surface config.API = sonarr.New(api.New(apiConfig))
	if opts.dryRun {
		log.Info("dry run, no changes will be applied")
		surface = config.DryRun(log, surface)
	}

	return cfg, &config.Run{
		Log:            log,
		API:            surface,
		CheckUnmanaged: opts.checkUnmanaged,
	}, nil
}
