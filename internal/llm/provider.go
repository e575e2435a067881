// Package llm talks to hosted text generation models.
package llm

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
)

// Provider names.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Provider completes a single system + user prompt.
type Provider interface {
	Name() string
	Complete(ctx context.Context, system, user string) (string, error)
}

// Registry selects a provider by name.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry indexes providers by Name.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.providers[p.Name()] = p
	}
	return r
}

// Supported reports whether name is a known provider name, configured or not.
func Supported(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ProviderAnthropic, ProviderOpenAI:
		return true
	}
	return false
}

// Get returns the provider registered under name.
func (r *Registry) Get(name string) (Provider, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if !Supported(key) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", apperrors.ErrUnsupportedProvider, name, strings.Join(r.Names(), ", "))
	}
	p, ok := r.providers[key]
	if !ok {
		return nil, fmt.Errorf("%w: provider %s is not configured", apperrors.ErrExternalService, key)
	}
	return p, nil
}

// Names lists the registered providers, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
