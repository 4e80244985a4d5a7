package config

import (
	"context"
	"fmt"

	"github.com/declarr/declarr/internal/metrics"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// GeneralSettings mirrors the General page. The instance serves all of it
// as one host config object; the subsections here only group the options
// the way the UI does.
type GeneralSettings struct {
	Host      HostGeneralSettings      `koanf:"host"`
	Security  SecurityGeneralSettings  `koanf:"security"`
	Logging   LoggingGeneralSettings   `koanf:"logging"`
	Analytics AnalyticsGeneralSettings `koanf:"analytics"`
	Backup    BackupGeneralSettings    `koanf:"backup"`
}

type HostGeneralSettings struct {
	BindAddress  *string `koanf:"bind_address"`
	Port         *int    `koanf:"port" validate:"omitempty,min=1,max=65535"`
	URLBase      *string `koanf:"url_base"`
	InstanceName *string `koanf:"instance_name"`
}

type SecurityGeneralSettings struct {
	// Authentication is one of none, basic or forms.
	Authentication *string `koanf:"authentication" validate:"omitempty,oneof=none basic forms"`
	Username       *string `koanf:"username"`
	Password       *string `koanf:"password"`
}

type LoggingGeneralSettings struct {
	// LogLevel is one of info, debug or trace.
	LogLevel *string `koanf:"log_level" validate:"omitempty,oneof=info debug trace"`
}

type AnalyticsGeneralSettings struct {
	SendAnonymousUsageData *bool `koanf:"send_anonymous_usage_data"`
}

type BackupGeneralSettings struct {
	Folder    *string `koanf:"folder"`
	Interval  *int    `koanf:"interval"`
	Retention *int    `koanf:"retention"`
}

type generalSubsection struct {
	name    string
	entries []remotemap.Entry
	local   func(GeneralSettings) any
	store   func(*GeneralSettings, map[string]any) error
}

func generalSubsections() []generalSubsection {
	optional := func(local, remote string) remotemap.Entry {
		return remotemap.Entry{Local: local, Remote: remote, Optional: true, HasDefault: true}
	}
	return []generalSubsection{
		{
			name: "host",
			entries: []remotemap.Entry{
				optional("bind_address", "bindAddress"),
				optional("port", "port"),
				optional("url_base", "urlBase"),
				optional("instance_name", "instanceName"),
			},
			local: func(s GeneralSettings) any { return s.Host },
			store: func(s *GeneralSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Host)
			},
		},
		{
			name: "security",
			entries: []remotemap.Entry{
				{
					Local:      "authentication",
					Remote:     "authenticationMethod",
					Optional:   true,
					HasDefault: true,
					Encoder:    enumEncoder(authenticationValues),
					Decoder:    enumDecoder(authenticationValues),
				},
				optional("username", "username"),
				optional("password", "password"),
			},
			local: func(s GeneralSettings) any { return s.Security },
			store: func(s *GeneralSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Security)
			},
		},
		{
			name: "logging",
			entries: []remotemap.Entry{
				{
					Local:      "log_level",
					Remote:     "logLevel",
					Optional:   true,
					HasDefault: true,
					Encoder:    enumEncoder(logLevelValues),
					Decoder:    enumDecoder(logLevelValues),
				},
			},
			local: func(s GeneralSettings) any { return s.Logging },
			store: func(s *GeneralSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Logging)
			},
		},
		{
			name: "analytics",
			entries: []remotemap.Entry{
				optional("send_anonymous_usage_data", "analyticsEnabled"),
			},
			local: func(s GeneralSettings) any { return s.Analytics },
			store: func(s *GeneralSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Analytics)
			},
		},
		{
			name: "backup",
			entries: []remotemap.Entry{
				optional("folder", "backupFolder"),
				optional("interval", "backupInterval"),
				optional("retention", "backupRetention"),
			},
			local: func(s GeneralSettings) any { return s.Backup },
			store: func(s *GeneralSettings, attrs map[string]any) error {
				return remotemap.ToStruct(attrs, &s.Backup)
			},
		},
	}
}

var authenticationValues = map[string]any{
	"none":  "none",
	"basic": "basic",
	"forms": "forms",
}

var logLevelValues = map[string]any{
	"info":  "info",
	"debug": "debug",
	"trace": "trace",
}

// update diffs every subsection and pushes all accumulated changes in a
// single host config write.
func (s GeneralSettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	changed := false
	setAttrs := map[string]any{}
	for _, sub := range generalSubsections() {
		localAttrs, err := remotemap.FromStruct(sub.local(s))
		if err != nil {
			return false, err
		}
		remoteAttrs, err := remotemap.FromStruct(sub.local(remote.General))
		if err != nil {
			return false, err
		}

		subChanged, attrs, err := reconcile.Diff(
			run.Log, "general."+sub.name,
			sub.entries, localAttrs, remoteAttrs,
			reconcile.DiffOptions{SetUnchanged: true, CheckUnmanaged: run.CheckUnmanaged},
		)
		if err != nil {
			return false, err
		}
		for k, v := range attrs {
			setAttrs[k] = v
		}
		changed = changed || subChanged
	}
	if !changed {
		return false, nil
	}

	resource, err := run.API.HostConfig().Get(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to fetch host config: %w", err)
	}
	payload := resource.Clone()
	for k, v := range setAttrs {
		payload[k] = v
	}
	if _, err := run.API.HostConfig().Update(ctx, payload); err != nil {
		return false, fmt.Errorf("failed to update host config: %w", err)
	}
	run.Log.Info("updated", "resource", "general")
	metrics.RecordChange("general", "update")
	return true, nil
}

// delete is a no-op; singleton settings are only ever updated.
func (s GeneralSettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *GeneralSettings) fetch(ctx context.Context, run *Run) error {
	resource, err := run.API.HostConfig().Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch host config: %w", err)
	}
	for _, sub := range generalSubsections() {
		attrs, err := remotemap.ToLocal(sub.entries, resource)
		if err != nil {
			return err
		}
		if err := sub.store(s, attrs); err != nil {
			return err
		}
	}
	return nil
}
