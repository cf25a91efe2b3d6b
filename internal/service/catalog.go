package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
)

// CatalogRequest is implemented by every catalog create DTO.
type CatalogRequest interface {
	Record() map[string]any
}

// Catalog is the one CRUD implementation behind the menu, patisserie
// and event catalogs, parameterized by entity and request type. Role
// gating for mutations happens in the route table.
type Catalog[T any, R CatalogRequest] struct {
	repo     *repository.CatalogRepository[T]
	name     string
	validate *validator.Validate
}

func NewCatalog[T any, R CatalogRequest](repo *repository.CatalogRepository[T], name string) *Catalog[T, R] {
	return &Catalog[T, R]{
		repo:     repo,
		name:     name,
		validate: newValidator(),
	}
}

// List returns entities matching the query-parameter filters.
func (s *Catalog[T, R]) List(ctx context.Context, params map[string]string) ([]T, error) {
	items, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, fmt.Sprintf("failed to list %s items", s.name), err)
	}
	// Listing an empty catalog yields an empty array, not null.
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get returns one entity.
func (s *Catalog[T, R]) Get(ctx context.Context, id uuid.UUID) (*T, error) {
	item, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "%s item not found", s.name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, fmt.Sprintf("failed to get %s item", s.name), err)
	}
	return item, nil
}

// Create validates the DTO and inserts a new entity.
func (s *Catalog[T, R]) Create(ctx context.Context, req R) (*T, error) {
	if err := checkStruct(s.validate, req); err != nil {
		return nil, err
	}

	item, err := s.repo.Create(ctx, req.Record())
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, fmt.Sprintf("failed to create %s item", s.name), err)
	}
	return item, nil
}

// Update applies an allow-listed patch. One foreign or malformed key
// rejects the whole patch; no valid key in the same patch is applied.
func (s *Catalog[T, R]) Update(ctx context.Context, id uuid.UUID, raw map[string]json.RawMessage) (*T, error) {
	fields := s.repo.PatchFields()

	var invalid []string
	for key := range raw {
		if _, ok := fields[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return nil, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(invalid...)
	}
	if len(raw) == 0 {
		return nil, apperr.New(apperr.KindValidation, "empty update")
	}

	values := make(map[string]any, len(raw))
	var details []string
	for key, rawValue := range raw {
		field := fields[key]
		value, err := field.Decode(rawValue)
		if err != nil {
			details = append(details, fmt.Sprintf("%s: %v", key, err))
			continue
		}
		values[field.Column] = value
	}
	if len(details) > 0 {
		return nil, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(details...)
	}

	item, err := s.repo.Update(ctx, id, values)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Newf(apperr.KindNotFound, "%s item not found", s.name)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, fmt.Sprintf("failed to update %s item", s.name), err)
	}
	return item, nil
}

// Delete removes one entity.
func (s *Catalog[T, R]) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.Newf(apperr.KindNotFound, "%s item not found", s.name)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindDependency, fmt.Sprintf("failed to delete %s item", s.name), err)
	}
	return nil
}
