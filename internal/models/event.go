package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// CatalogEvent is a bookable event offering (distinct from an event
// reservation, which references one implicitly by its sub-type).
type CatalogEvent struct {
	ID               uuid.UUID      `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Description      string         `db:"description" json:"description"`
	Type             EventType      `db:"type" json:"type"`
	Date             time.Time      `db:"date" json:"date"`
	StartTime        string         `db:"start_time" json:"startTime"`
	EndTime          string         `db:"end_time" json:"endTime"`
	Capacity         int            `db:"capacity" json:"capacity"`
	Price            float64        `db:"price" json:"price"`
	Image            string         `db:"image" json:"image"`
	IsAvailable      bool           `db:"is_available" json:"isAvailable"`
	IncludedServices pq.StringArray `db:"included_services" json:"includedServices"`
	AdditionalNotes  *string        `db:"additional_notes" json:"additionalNotes,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updatedAt"`
}

type CatalogEventRequest struct {
	Name             string   `json:"name" validate:"required"`
	Description      string   `json:"description" validate:"required"`
	Type             string   `json:"type" validate:"required,oneof=birthday wedding corporate other"`
	Date             string   `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime        string   `json:"startTime" validate:"required"`
	EndTime          string   `json:"endTime" validate:"required"`
	Capacity         int      `json:"capacity" validate:"required,min=1"`
	Price            float64  `json:"price" validate:"min=0"`
	Image            string   `json:"image" validate:"required"`
	IsAvailable      *bool    `json:"isAvailable"`
	IncludedServices []string `json:"includedServices"`
	AdditionalNotes  *string  `json:"additionalNotes"`
}

func (r CatalogEventRequest) Record() map[string]any {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	date, _ := time.Parse("2006-01-02", r.Date)
	return map[string]any{
		"name":              r.Name,
		"description":       r.Description,
		"type":              r.Type,
		"date":              date,
		"start_time":        r.StartTime,
		"end_time":          r.EndTime,
		"capacity":          r.Capacity,
		"price":             r.Price,
		"image":             r.Image,
		"is_available":      available,
		"included_services": pq.StringArray(r.IncludedServices),
		"additional_notes":  r.AdditionalNotes,
	}
}
