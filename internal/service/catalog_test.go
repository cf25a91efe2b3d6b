package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

// The validation and allow-list paths below reject before any query, so
// a repository without a live database is sufficient.
func menuCatalog() *Catalog[models.MenuItem, models.MenuItemRequest] {
	repo := repository.NewCatalogRepository[models.MenuItem](nil, repository.MenuDescriptor)
	return NewCatalog[models.MenuItem, models.MenuItemRequest](repo, "menu")
}

func TestCatalogCreateInvalid(t *testing.T) {
	svc := menuCatalog()

	_, err := svc.Create(context.Background(), models.MenuItemRequest{
		Name:     "Tajine",
		Price:    -2,
		Category: "street-food",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NotEmpty(t, apperr.DetailsOf(err))
}

func TestCatalogUpdateRejectsForeignKey(t *testing.T) {
	svc := menuCatalog()

	_, err := svc.Update(context.Background(), uuid.Nil, rawPatch(t, map[string]any{
		"price": 12.5,
		"table": "menu_items; DROP TABLE users",
	}))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Contains(t, apperr.DetailsOf(err), "table")
}

func TestCatalogUpdateRejectsEmptyPatch(t *testing.T) {
	svc := menuCatalog()

	_, err := svc.Update(context.Background(), uuid.Nil, nil)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestCatalogUpdateRejectsBadValues(t *testing.T) {
	svc := menuCatalog()

	// Both offending values are itemized; the valid name is not applied.
	_, err := svc.Update(context.Background(), uuid.Nil, rawPatch(t, map[string]any{
		"name":     "Tajine",
		"price":    "twelve",
		"category": "street-food",
	}))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Len(t, apperr.DetailsOf(err), 2)
}
