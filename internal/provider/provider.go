// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package provider supplies live entity data to the generation engine.
// Each page type has exactly one Provider; the Registry maps page types to
// providers and refuses page types that have none.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"seogen/internal/models"
)

var (
	// ErrUnsupportedPageType is returned for page types without a provider.
	ErrUnsupportedPageType = errors.New("unsupported page type")

	// ErrEntityNotFound is returned when upstream has no data for an entity id.
	ErrEntityNotFound = errors.New("entity not found")
)

// Context is the JSON document expressions are evaluated against. The
// upstream payload sits under the "apiResponse" key.
type Context []byte

// WrapContext builds an evaluation context around an upstream payload.
func WrapContext(data json.RawMessage) (Context, error) {
	if len(data) == 0 {
		data = json.RawMessage("null")
	}
	b, err := json.Marshal(struct {
		APIResponse json.RawMessage `json:"apiResponse"`
	}{APIResponse: data})
	if err != nil {
		return nil, fmt.Errorf("wrap context: %w", err)
	}
	return Context(b), nil
}

// Provider enumerates the entities of one page type and fetches their live
// data. Providers do not cache: every call reflects upstream as it is now.
type Provider interface {
	// PageType returns the page type this provider serves.
	PageType() models.PageType

	// ListEntities returns the full population of the page type. The first
	// entity doubles as the sample for test runs.
	ListEntities(ctx context.Context) ([]models.Entity, error)

	// FetchContext fetches one entity's data wrapped as an evaluation
	// context. Returns ErrEntityNotFound when upstream knows no such entity.
	FetchContext(ctx context.Context, entity models.Entity) (Context, error)
}

// EntityFromID rebuilds an entity reference from a stored id. The name is
// unknown without a listing call, so the id stands in for it.
func EntityFromID(id string) models.Entity {
	return models.Entity{ID: id, Name: id}
}

// Registry maps page types to providers. All methods are safe for
// concurrent use.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.PageType]Provider
}

// NewRegistry creates a registry holding the given providers.
func NewRegistry(providers ...Provider) (*Registry, error) {
	r := &Registry{providers: make(map[models.PageType]Provider)}
	for _, p := range providers {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds or replaces the provider for its page type. Page types
// outside models.PageTypes are rejected.
func (r *Registry) Register(p Provider) error {
	pt := p.PageType()
	if !pt.Valid() {
		return fmt.Errorf("register provider: %w: %q", ErrUnsupportedPageType, pt)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[pt] = p
	return nil
}

// Lookup returns the provider for a page type.
func (r *Registry) Lookup(pageType models.PageType) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[pageType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPageType, pageType)
	}
	return p, nil
}

// PageTypes returns the page types that have a provider, in the order of
// models.PageTypes.
func (r *Registry) PageTypes() []models.PageType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.PageType
	for _, pt := range models.PageTypes {
		if _, ok := r.providers[pt]; ok {
			out = append(out, pt)
		}
	}
	return out
}
