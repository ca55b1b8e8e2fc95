// Package provider adapts federated identity providers (Google, Facebook,
// LINE) to a single normalized profile shape.
package provider

import (
	"context"
	"errors"
	"fmt"
)

// Name identifies a supported federated identity provider.
type Name string

const (
	Google   Name = "google"
	Facebook Name = "facebook"
	Line     Name = "line"
)

// ErrExchange wraps any upstream failure during the grant exchange or
// profile fetch. Callers must deny authentication and never create a user
// from a partial exchange.
var ErrExchange = errors.New("provider exchange failed")

// ErrUnknownProvider is returned for a provider name outside the registry.
var ErrUnknownProvider = errors.New("unknown provider")

// Profile is the provider-agnostic result of a successful exchange. Email
// and AvatarURL are optional; adapters leave them empty rather than fail
// when the upstream profile omits them.
type Profile struct {
	Provider    Name
	SubjectID   string
	DisplayName string
	Email       string
	AvatarURL   string
}

// Adapter exchanges a provider-issued authorization code for a normalized
// profile.
type Adapter interface {
	Name() Name
	// AuthURL returns the provider's consent page URL carrying the given
	// anti-forgery state.
	AuthURL(state string) string
	// Exchange swaps the callback code for tokens and fetches the profile.
	// All failures, including timeouts, wrap ErrExchange.
	Exchange(ctx context.Context, code string) (Profile, error)
}

// Registry holds the configured adapters, selected by name instead of
// string comparisons scattered through handlers.
type Registry struct {
	adapters map[Name]Adapter
}

// NewRegistry indexes the given adapters by name.
func NewRegistry(adapters ...Adapter) *Registry {
	index := make(map[Name]Adapter, len(adapters))
	for _, a := range adapters {
		index[a.Name()] = a
	}
	return &Registry{adapters: index}
}

// Get returns the adapter for a provider name from a request path.
func (r *Registry) Get(name string) (Adapter, error) {
	a, ok := r.adapters[Name(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return a, nil
}

// Names lists the configured providers in a stable order.
func (r *Registry) Names() []Name {
	names := make([]Name, 0, len(r.adapters))
	for _, n := range []Name{Google, Facebook, Line} {
		if _, ok := r.adapters[n]; ok {
			names = append(names, n)
		}
	}
	return names
}
