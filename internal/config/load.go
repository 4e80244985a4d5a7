package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/declarr/declarr/internal/remotemap"
)

// Environment variables override file values: DECLARR_PORT=8989,
// DECLARR_SETTINGS__TAGS__DEFINITIONS for nested keys.
const envPrefix = "DECLARR_"

// DefaultConfig returns the connection defaults for a local instance.
func DefaultConfig() Config {
	return Config{
		Hostname:  "localhost",
		Port:      8989,
		Protocol:  "http",
		VerifySSL: true,
	}
}

// Load reads the configuration file at path, layered over the defaults and
// under any environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, &remotemap.ConfigError{
				Path:    path,
				Message: fmt.Sprintf("failed to read config file: %v", err),
			}
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, &remotemap.ConfigError{
			Path:    path,
			Message: fmt.Sprintf("failed to decode config: %v", err),
		}
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	s = strings.ToLower(s)
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks the declared configuration for problems the instance
// would only reject at apply time.
func Validate(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return &remotemap.ConfigError{
				Path:    fe.Namespace(),
				Message: fmt.Sprintf("failed validation on the %q rule", fe.Tag()),
			}
		}
		return err
	}

	for _, name := range sortedKeys(cfg.Settings.Indexers.Definitions) {
		indexer := cfg.Settings.Indexers.Definitions[name]
		for _, categories := range []struct {
			field string
			names []string
		}{
			{"categories", indexer.Categories},
			{"anime_categories", indexer.AnimeCategories},
		} {
			for _, category := range categories.names {
				if _, err := nabCategoryNumber(category); err != nil {
					return &remotemap.ConfigError{
						Path:    fmt.Sprintf("settings.indexers.definitions[%q].%s", name, categories.field),
						Message: fmt.Sprintf("unknown Newznab category %q", category),
					}
				}
			}
		}
	}

	seen := map[int]bool{}
	for _, exclusion := range cfg.Settings.ImportLists.Exclusions {
		if seen[exclusion.TVDBID] {
			return &remotemap.ConfigError{
				Path:    "settings.import_lists.exclusions",
				Message: fmt.Sprintf("duplicate exclusion for TVDB id %d", exclusion.TVDBID),
			}
		}
		seen[exclusion.TVDBID] = true
	}
	return nil
}
