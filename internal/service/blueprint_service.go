// Package service exposes blueprint operations with the configured filter
// applied to everything read back from the store.
package service

import (
	"context"

	"github.com/arsw/blueprints/internal/blueprint"
	"github.com/arsw/blueprints/internal/filter"
)

// BlueprintService forwards writes to the store untouched and passes every
// blueprint returned by a read through exactly one filter.
type BlueprintService struct {
	store  blueprint.Store
	filter filter.Filter
}

// NewBlueprintService creates a new BlueprintService. A nil filter selects identity.
func NewBlueprintService(store blueprint.Store, f filter.Filter) *BlueprintService {
	if f == nil {
		f = filter.Identity{}
	}
	return &BlueprintService{store: store, filter: f}
}

// Create persists a new blueprint. The returned value is what was stored,
// not a filtered view.
func (s *BlueprintService) Create(ctx context.Context, bp blueprint.Blueprint) (blueprint.Blueprint, error) {
	return s.store.Create(ctx, bp)
}

// AppendPoint adds a point to the end of an existing blueprint.
func (s *BlueprintService) AppendPoint(ctx context.Context, author, name string, p blueprint.Point) error {
	return s.store.AppendPoint(ctx, author, name, p)
}

// Get returns the filtered blueprint identified by author and name.
func (s *BlueprintService) Get(ctx context.Context, author, name string) (blueprint.Blueprint, error) {
	bp, err := s.store.Get(ctx, author, name)
	if err != nil {
		return blueprint.Blueprint{}, err
	}
	return s.filter.Apply(bp), nil
}

// GetByAuthor returns the filtered blueprints of author.
func (s *BlueprintService) GetByAuthor(ctx context.Context, author string) ([]blueprint.Blueprint, error) {
	bps, err := s.store.GetByAuthor(ctx, author)
	if err != nil {
		return nil, err
	}
	return s.applyAll(bps), nil
}

// GetAll returns every blueprint, filtered.
func (s *BlueprintService) GetAll(ctx context.Context) ([]blueprint.Blueprint, error) {
	bps, err := s.store.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.applyAll(bps), nil
}

func (s *BlueprintService) applyAll(bps []blueprint.Blueprint) []blueprint.Blueprint {
	out := make([]blueprint.Blueprint, len(bps))
	for i, bp := range bps {
		out[i] = s.filter.Apply(bp)
	}
	return out
}
