package contracts

import (
	"errors"
	"fmt"
)

var (
	// ErrProviderUnavailable a provider call failed or timed out; no partial table is returned
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrEmptyResult the equity provider returned no rows for the window ("data not ready")
	ErrEmptyResult = errors.New("empty result")
)

// ProviderError names the provider and series that failed
type ProviderError struct {
	Provider Provider
	Series   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Series == "" {
		return fmt.Sprintf("%s: %s: %v", ErrProviderUnavailable, e.Provider, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", ErrProviderUnavailable, e.Provider, e.Series, e.Err)
}

// Unwrap lets errors.Is match both ErrProviderUnavailable and the cause
func (e *ProviderError) Unwrap() []error {
	return []error{ErrProviderUnavailable, e.Err}
}

// NewProviderError wraps err for provider/series
func NewProviderError(provider Provider, series string, err error) error {
	return &ProviderError{Provider: provider, Series: series, Err: err}
}
