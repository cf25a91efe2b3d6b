package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PatchField maps an allow-listed JSON patch key onto a column and a
// decoder for its raw JSON value.
type PatchField struct {
	Column string
	Decode func(json.RawMessage) (interface{}, error)
}

// Filter maps a query parameter onto an equality condition.
type Filter struct {
	Column string
	// Bool filters parse "true"/"false" instead of matching the raw
	// string.
	Bool bool
}

// Descriptor parameterizes the generic catalog repository with one
// entity's table layout. The CRUD shape itself is implemented once.
type Descriptor struct {
	Table         string
	SelectColumns []string
	Filters       map[string]Filter
	PatchFields   map[string]PatchField
	OrderBy       string
}

// CatalogRepository is the single data-access implementation behind the
// menu, patisserie and event catalogs.
type CatalogRepository[T any] struct {
	db *sqlx.DB
	d  Descriptor
}

func NewCatalogRepository[T any](db *sqlx.DB, d Descriptor) *CatalogRepository[T] {
	return &CatalogRepository[T]{db: db, d: d}
}

// PatchFields exposes the entity's patch allow-list to the service layer.
func (r *CatalogRepository[T]) PatchFields() map[string]PatchField {
	return r.d.PatchFields
}

// List retrieves entities matching the given query-parameter filters.
// Unknown parameters are ignored; the caller validated them already.
func (r *CatalogRepository[T]) List(ctx context.Context, params map[string]string) ([]T, error) {
	var conditions []string
	var args []interface{}

	// Stable iteration keeps generated SQL deterministic.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		f, ok := r.d.Filters[key]
		if !ok {
			continue
		}
		value := params[key]
		if f.Bool {
			args = append(args, value == "true")
		} else {
			args = append(args, value)
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f.Column, len(args)))
	}

	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(r.d.SelectColumns, ", "), r.d.Table)
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	if r.d.OrderBy != "" {
		query += " ORDER BY " + r.d.OrderBy
	}

	var items []T
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.d.Table, err)
	}

	return items, nil
}

// GetByID retrieves one entity.
func (r *CatalogRepository[T]) GetByID(ctx context.Context, id uuid.UUID) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1",
		strings.Join(r.d.SelectColumns, ", "), r.d.Table)

	var item T
	err := r.db.GetContext(ctx, &item, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from %s: %w", r.d.Table, err)
	}

	return &item, nil
}

// Create inserts a record from column values and returns the stored row.
func (r *CatalogRepository[T]) Create(ctx context.Context, values map[string]interface{}) (*T, error) {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	placeholders := make([]string, len(columns))
	args := make([]interface{}, len(columns))
	for i, column := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = values[column]
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.d.Table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(r.d.SelectColumns, ", "))

	var created T
	if err := r.db.GetContext(ctx, &created, query, args...); err != nil {
		return nil, fmt.Errorf("failed to insert into %s: %w", r.d.Table, err)
	}

	return &created, nil
}

// Update applies already-decoded column values and returns the updated
// row.
func (r *CatalogRepository[T]) Update(ctx context.Context, id uuid.UUID, values map[string]interface{}) (*T, error) {
	columns := make([]string, 0, len(values))
	for column := range values {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var sets []string
	var args []interface{}
	for _, column := range columns {
		args = append(args, values[column])
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	args = append(args, time.Now())
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d RETURNING %s",
		r.d.Table, strings.Join(sets, ", "), len(args),
		strings.Join(r.d.SelectColumns, ", "))

	var updated T
	err := r.db.GetContext(ctx, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.d.Table, err)
	}

	return &updated, nil
}

// Delete removes one entity.
func (r *CatalogRepository[T]) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", r.d.Table), id)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.d.Table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Patch value decoders.

func DecodeString(raw json.RawMessage) (interface{}, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return s, nil
}

func DecodeFloat(raw json.RawMessage) (interface{}, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return f, nil
}

func DecodeInt(raw json.RawMessage) (interface{}, error) {
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return n, nil
}

func DecodeBool(raw json.RawMessage) (interface{}, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return b, nil
}

func DecodeStringArray(raw json.RawMessage) (interface{}, error) {
	var a []string
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return pq.StringArray(a), nil
}

func DecodeDate(raw json.RawMessage) (interface{}, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// DecodeEnum restricts a string value to the given set.
func DecodeEnum(allowed ...string) func(json.RawMessage) (interface{}, error) {
	return func(raw json.RawMessage) (interface{}, error) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		for _, v := range allowed {
			if s == v {
				return s, nil
			}
		}
		return nil, fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// MenuDescriptor parameterizes the catalog repository for menu items.
var MenuDescriptor = Descriptor{
	Table: "menu_items",
	SelectColumns: []string{"id", "name", "description", "price", "category", "image",
		"is_available", "ingredients", "created_at", "updated_at"},
	Filters: map[string]Filter{
		"category":    {Column: "category"},
		"isAvailable": {Column: "is_available", Bool: true},
	},
	PatchFields: map[string]PatchField{
		"name":        {Column: "name", Decode: DecodeString},
		"description": {Column: "description", Decode: DecodeString},
		"price":       {Column: "price", Decode: DecodeFloat},
		"category":    {Column: "category", Decode: DecodeEnum("appetizer", "main", "dessert", "beverage")},
		"image":       {Column: "image", Decode: DecodeString},
		"isAvailable": {Column: "is_available", Decode: DecodeBool},
		"ingredients": {Column: "ingredients", Decode: DecodeStringArray},
	},
	OrderBy: "category ASC, name ASC",
}

// PatisserieDescriptor parameterizes the catalog repository for
// patisserie items.
var PatisserieDescriptor = Descriptor{
	Table: "patisserie_items",
	SelectColumns: []string{"id", "name", "image", "image_h", "categorie", "quantity",
		"price", "created_at", "updated_at"},
	Filters: map[string]Filter{
		"categorie": {Column: "categorie"},
	},
	PatchFields: map[string]PatchField{
		"name":      {Column: "name", Decode: DecodeString},
		"image":     {Column: "image", Decode: DecodeString},
		"imageH":    {Column: "image_h", Decode: DecodeString},
		"categorie": {Column: "categorie", Decode: DecodeEnum("Boulangerie", "Viennoiserie", "Glaces", "Patissier", "Sales", "Gourmandes")},
		"quantity":  {Column: "quantity", Decode: DecodeString},
		"price":     {Column: "price", Decode: DecodeFloat},
	},
	OrderBy: "categorie ASC, name ASC",
}

// EventDescriptor parameterizes the catalog repository for catalog
// events.
var EventDescriptor = Descriptor{
	Table: "catalog_events",
	SelectColumns: []string{"id", "name", "description", "type", "date", "start_time", "end_time",
		"capacity", "price", "image", "is_available", "included_services", "additional_notes",
		"created_at", "updated_at"},
	Filters: map[string]Filter{
		"type":        {Column: "type"},
		"isAvailable": {Column: "is_available", Bool: true},
	},
	PatchFields: map[string]PatchField{
		"name":             {Column: "name", Decode: DecodeString},
		"description":      {Column: "description", Decode: DecodeString},
		"type":             {Column: "type", Decode: DecodeEnum("birthday", "wedding", "corporate", "other")},
		"date":             {Column: "date", Decode: DecodeDate},
		"startTime":        {Column: "start_time", Decode: DecodeString},
		"endTime":          {Column: "end_time", Decode: DecodeString},
		"capacity":         {Column: "capacity", Decode: DecodeInt},
		"price":            {Column: "price", Decode: DecodeFloat},
		"image":            {Column: "image", Decode: DecodeString},
		"isAvailable":      {Column: "is_available", Decode: DecodeBool},
		"includedServices": {Column: "included_services", Decode: DecodeStringArray},
		"additionalNotes":  {Column: "additional_notes", Decode: DecodeString},
	},
	OrderBy: "date ASC, start_time ASC",
}
