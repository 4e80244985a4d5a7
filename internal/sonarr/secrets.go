package sonarr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/declarr/declarr/internal/api"
)

// Secrets holds everything needed to talk to one Sonarr instance.
type Secrets struct {
	BaseURL string
	APIKey  string
}

// SecretsUnauthorizedError is returned when the API key could not be
// obtained automatically because the instance requires authentication for
// its UI bootstrap endpoint.
type SecretsUnauthorizedError struct {
	URL string
}

func (e *SecretsUnauthorizedError) Error() string {
	return fmt.Sprintf(
		"unable to retrieve API key from %s: authentication is enabled; "+
			"set the api_key option to the value from Settings -> General in the Sonarr UI",
		e.URL,
	)
}

// initializeResponse is the subset of Sonarr's UI bootstrap payload we need.
type initializeResponse struct {
	APIKey string `json:"apiKey"`
}

// GetSecrets resolves the connection secrets for an instance. If apiKey is
// empty it is fetched from the instance's initialize.json bootstrap
// endpoint, which only works when Sonarr authentication is disabled. The
// resolved secrets are verified against the system status endpoint before
// being returned.
func GetSecrets(ctx context.Context, cfg api.Config) (*Secrets, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		fetched, err := fetchAPIKey(ctx, cfg)
		if err != nil {
			return nil, err
		}
		apiKey = fetched
	}

	secrets := &Secrets{BaseURL: cfg.BaseURL, APIKey: apiKey}
	if err := secrets.Verify(ctx, cfg); err != nil {
		return nil, err
	}
	return secrets, nil
}

func fetchAPIKey(ctx context.Context, cfg api.Config) (string, error) {
	boot := api.New(api.Config{
		BaseURL:            cfg.BaseURL,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Timeout:            cfg.Timeout,
	})

	var init initializeResponse
	if err := boot.Get(ctx, "/initialize.json", &init); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			return "", &SecretsUnauthorizedError{URL: cfg.BaseURL}
		}
		return "", fmt.Errorf("failed to fetch API key from %s: %w", cfg.BaseURL, err)
	}
	if strings.TrimSpace(init.APIKey) == "" {
		return "", fmt.Errorf("instance %s returned an empty API key", cfg.BaseURL)
	}
	return init.APIKey, nil
}

// Verify checks the secrets against the system status endpoint.
func (s *Secrets) Verify(ctx context.Context, cfg api.Config) error {
	client := api.New(api.Config{
		BaseURL:            s.BaseURL,
		APIKey:             s.APIKey,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		Timeout:            cfg.Timeout,
	})

	var status struct {
		Version string `json:"version"`
	}
	if err := client.Get(ctx, "/api/v3/system/status", &status); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == 401 {
			return &SecretsUnauthorizedError{URL: s.BaseURL}
		}
		return fmt.Errorf("failed to verify connection to %s: %w", s.BaseURL, err)
	}
	if status.Version == "" {
		return fmt.Errorf("instance %s reported no version; not a Sonarr v3 API", s.BaseURL)
	}
	return nil
}
