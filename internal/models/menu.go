package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type MenuCategory string

const (
	MenuAppetizer MenuCategory = "appetizer"
	MenuMain      MenuCategory = "main"
	MenuDessert   MenuCategory = "dessert"
	MenuBeverage  MenuCategory = "beverage"
)

type MenuItem struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Price       float64        `db:"price" json:"price"`
	Category    MenuCategory   `db:"category" json:"category"`
	Image       string         `db:"image" json:"image"`
	IsAvailable bool           `db:"is_available" json:"isAvailable"`
	Ingredients pq.StringArray `db:"ingredients" json:"ingredients"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// MenuItemRequest is used for menu item creation.
type MenuItemRequest struct {
	Name        string   `json:"name" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Price       float64  `json:"price" validate:"min=0"`
	Category    string   `json:"category" validate:"required,oneof=appetizer main dessert beverage"`
	Image       string   `json:"image" validate:"required"`
	IsAvailable *bool    `json:"isAvailable"`
	Ingredients []string `json:"ingredients"`
}

// Record maps the request onto insert columns.
func (r MenuItemRequest) Record() map[string]any {
	available := true
	if r.IsAvailable != nil {
		available = *r.IsAvailable
	}
	return map[string]any{
		"name":         r.Name,
		"description":  r.Description,
		"price":        r.Price,
		"category":     r.Category,
		"image":        r.Image,
		"is_available": available,
		"ingredients":  pq.StringArray(r.Ingredients),
	}
}
