package downstream

import (
	"errors"
	"fmt"
)

// UnknownErrorMessage is used when a platform's error body cannot be read.
const UnknownErrorMessage = "unknown error"

var (
	ErrTimeout     = errors.New("downstream_timeout")
	ErrUnavailable = errors.New("downstream_unavailable")
)

// RemoteError is a non-2xx answer from a platform API.
type RemoteError struct {
	Platform   string
	StatusCode int
	Message    string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Platform, e.StatusCode, e.Message)
}

// ConfigError reports missing credentials or platform configuration.
// It is handled like a remote failure by the orchestrator.
type ConfigError struct {
	Platform string
	Message  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s configuration error: %s", e.Platform, e.Message)
}

func NewConfigError(platform, msg string) error {
	return &ConfigError{Platform: platform, Message: msg}
}
