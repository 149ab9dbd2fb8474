package service

import (
	"errors"

	"github.com/ndewijer/Currency-Exchange-Backend/internal/config"
	"github.com/ndewijer/Currency-Exchange-Backend/internal/version"
)

// ErrUpstreamNotConfigured is returned by CheckHealth when no provider API key is set.
var ErrUpstreamNotConfigured = errors.New("exchange rate provider API key is not configured")

// SystemService handles system-related operations
type SystemService struct {
	upstream config.UpstreamConfig
}

// NewSystemService creates a new SystemService
func NewSystemService(upstream config.UpstreamConfig) *SystemService {
	return &SystemService{
		upstream: upstream,
	}
}

// CheckHealth reports whether the service can reach the provider at all.
// It does not call the provider.
func (s *SystemService) CheckHealth() error {
	if s.upstream.APIKey == "" || s.upstream.BaseURL == "" {
		return ErrUpstreamNotConfigured
	}
	return nil
}

// CheckVersion returns the build version.
func (s *SystemService) CheckVersion() string {
	return version.Version
}
