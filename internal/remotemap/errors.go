package remotemap

import "fmt"

// ConfigError indicates invalid or inconsistent local configuration, such as
// an unresolvable category name or a remote attribute the mapping requires
// but the remote side did not supply.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error: %s: %s", e.Path, e.Message)
}

// ConfigUnsupportedError indicates the local configuration references a
// resource implementation the remote instance's schema catalog does not
// expose.
type ConfigUnsupportedError struct {
	Path           string
	Implementation string
}

func (e *ConfigUnsupportedError) Error() string {
	return fmt.Sprintf(
		"config error: %s: implementation %q is not supported by the remote instance",
		e.Path, e.Implementation,
	)
}
