package models

import (
	"time"

	"github.com/google/uuid"
)

// PatisserieCategory values keep the original French catalog labels.
type PatisserieCategory string

const (
	PatisserieBoulangerie  PatisserieCategory = "Boulangerie"
	PatisserieViennoiserie PatisserieCategory = "Viennoiserie"
	PatisserieGlaces       PatisserieCategory = "Glaces"
	PatisseriePatissier    PatisserieCategory = "Patissier"
	PatisserieSales        PatisserieCategory = "Sales"
	PatisserieGourmandes   PatisserieCategory = "Gourmandes"
)

type PatisserieItem struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	Name      string             `db:"name" json:"name"`
	Image     string             `db:"image" json:"image"`
	ImageH    string             `db:"image_h" json:"imageH"`
	Categorie PatisserieCategory `db:"categorie" json:"categorie"`
	Quantity  string             `db:"quantity" json:"quantity"`
	Price     float64            `db:"price" json:"price"`
	CreatedAt time.Time          `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `db:"updated_at" json:"updatedAt"`
}

type PatisserieItemRequest struct {
	Name      string  `json:"name" validate:"required"`
	Image     string  `json:"image" validate:"required"`
	ImageH    string  `json:"imageH" validate:"required"`
	Categorie string  `json:"categorie" validate:"required,oneof=Boulangerie Viennoiserie Glaces Patissier Sales Gourmandes"`
	Quantity  string  `json:"quantity" validate:"required"`
	Price     float64 `json:"price" validate:"min=0"`
}

func (r PatisserieItemRequest) Record() map[string]any {
	return map[string]any{
		"name":      r.Name,
		"image":     r.Image,
		"image_h":   r.ImageH,
		"categorie": r.Categorie,
		"quantity":  r.Quantity,
		"price":     r.Price,
	}
}
