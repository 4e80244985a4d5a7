package config

import (
	"context"
	"fmt"

	"github.com/declarr/declarr/internal/api"
	"github.com/declarr/declarr/internal/reconcile"
	"github.com/declarr/declarr/internal/remotemap"
)

// UISettings mirrors the UI page.
type UISettings struct {
	// FirstDayOfWeek is one of sunday or monday.
	FirstDayOfWeek *string `koanf:"first_day_of_week" validate:"omitempty,oneof=sunday monday"`

	// WeekColumnHeader is the calendar week column date format.
	WeekColumnHeader *string `koanf:"week_column_header"`

	ShortDateFormat *string `koanf:"short_date_format"`
	LongDateFormat  *string `koanf:"long_date_format"`
	TimeFormat      *string `koanf:"time_format"`

	ShowRelativeDates *bool `koanf:"show_relative_dates"`

	EnableColorImpairedMode *bool `koanf:"enable_color_impaired_mode"`
}

var firstDayOfWeekValues = map[string]any{
	"sunday": 0,
	"monday": 1,
}

func uiEntries() []remotemap.Entry {
	optional := func(local, remote string) remotemap.Entry {
		return remotemap.Entry{Local: local, Remote: remote, Optional: true, HasDefault: true}
	}
	return []remotemap.Entry{
		{
			Local:      "first_day_of_week",
			Remote:     "firstDayOfWeek",
			Optional:   true,
			HasDefault: true,
			Encoder:    enumEncoder(firstDayOfWeekValues),
			Decoder:    uiFirstDayDecoder,
		},
		optional("week_column_header", "calendarWeekColumnHeader"),
		optional("short_date_format", "shortDateFormat"),
		optional("long_date_format", "longDateFormat"),
		optional("time_format", "timeFormat"),
		optional("show_relative_dates", "showRelativeDates"),
		optional("enable_color_impaired_mode", "enableColorImpairedMode"),
	}
}

// uiFirstDayDecoder maps the remote day number back to its name. The wire
// value is numeric, so the generic enum decoder's equality check does not
// apply.
func uiFirstDayDecoder(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if n, ok := api.IntValue(v); ok {
		if n == 0 {
			return "sunday", nil
		}
		return "monday", nil
	}
	return fmt.Sprintf("%v", v), nil
}

func (s UISettings) update(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	localAttrs, err := remotemap.FromStruct(s)
	if err != nil {
		return false, err
	}
	remoteAttrs, err := remotemap.FromStruct(remote.UI)
	if err != nil {
		return false, err
	}

	singleton := &reconcile.Singleton{
		Resource:       "ui",
		Tree:           "ui",
		Client:         run.API.UIConfig(),
		CheckUnmanaged: run.CheckUnmanaged,
	}
	return singleton.Update(ctx, run.Log, uiEntries(), localAttrs, remoteAttrs)
}

// delete is a no-op; singleton settings are only ever updated.
func (s UISettings) delete(ctx context.Context, run *Run, remote *Settings) (bool, error) {
	return false, nil
}

func (s *UISettings) fetch(ctx context.Context, run *Run) error {
	resource, err := run.API.UIConfig().Get(ctx)
	if err != nil {
		return err
	}
	attrs, err := remotemap.ToLocal(uiEntries(), resource)
	if err != nil {
		return err
	}
	return remotemap.ToStruct(attrs, s)
}
