package storage

import (
	"context"
	"fmt"
	"sort"
)

// BackendConstructor is a function that creates a backend instance
type BackendConstructor func(ctx context.Context, cfg Config) (Backend, error)

type registration struct {
	constructor BackendConstructor
	required    []string
}

var backendRegistry = make(map[string]registration)

// RegisterBackend registers a backend constructor together with the option
// keys that must be non-empty before the constructor is called
func RegisterBackend(backendType string, required []string, constructor BackendConstructor) {
	backendRegistry[backendType] = registration{
		constructor: constructor,
		required:    required,
	}
}

// RequiredOptions returns the option keys a backend type needs
func RequiredOptions(backendType string) ([]string, error) {
	reg, ok := backendRegistry[backendType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend type: %s (available: %v)", ErrInvalidConfig, backendType, Types())
	}
	return reg.required, nil
}

// Types lists the registered backend types
func Types() []string {
	types := make([]string, 0, len(backendRegistry))
	for t := range backendRegistry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Factory creates storage backends from configuration
type Factory struct{}

// NewFactory creates a new factory instance
func NewFactory() *Factory {
	return &Factory{}
}

// Create instantiates a backend from config. Required options are checked
// first so no client is built, and no network call made, with a partial config.
func (f *Factory) Create(ctx context.Context, cfg Config) (Backend, error) {
	reg, ok := backendRegistry[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown backend type: %s (available: %v)", ErrInvalidConfig, cfg.Type, Types())
	}

	if missing := cfg.Options.Missing(reg.required...); len(missing) > 0 {
		return nil, &MissingOptionsError{Backend: cfg.Type, Keys: missing}
	}

	return reg.constructor(ctx, cfg)
}
