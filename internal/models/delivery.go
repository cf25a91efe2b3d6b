package models

import (
	"time"

	"github.com/google/uuid"
)

type DeliveryStatus string

const (
	DeliveryPending        DeliveryStatus = "pending"
	DeliveryPreparing      DeliveryStatus = "preparing"
	DeliveryOutForDelivery DeliveryStatus = "out_for_delivery"
	DeliveryDelivered      DeliveryStatus = "delivered"
	DeliveryCancelled      DeliveryStatus = "cancelled"
)

func (s DeliveryStatus) Terminal() bool {
	return s == DeliveryDelivered || s == DeliveryCancelled
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case DeliveryPending, DeliveryPreparing, DeliveryOutForDelivery, DeliveryDelivered, DeliveryCancelled:
		return true
	}
	return false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentCard   PaymentMethod = "card"
	PaymentOnline PaymentMethod = "online"
)

type Delivery struct {
	ID                  uuid.UUID      `db:"id" json:"id"`
	UserID              uuid.UUID      `db:"user_id" json:"userId"`
	Street              string         `db:"street" json:"street"`
	City                string         `db:"city" json:"city"`
	State               string         `db:"state" json:"state"`
	ZipCode             string         `db:"zip_code" json:"zipCode"`
	DeliveryDate        time.Time      `db:"delivery_date" json:"deliveryDate"`
	DeliveryTime        string         `db:"delivery_time" json:"deliveryTime"`
	Status              DeliveryStatus `db:"status" json:"status"`
	TotalAmount         float64        `db:"total_amount" json:"totalAmount"`
	DeliveryFee         float64        `db:"delivery_fee" json:"deliveryFee"`
	SpecialInstructions *string        `db:"special_instructions" json:"specialInstructions,omitempty"`
	ContactPhone        string         `db:"contact_phone" json:"contactPhone"`
	IsPaid              bool           `db:"is_paid" json:"isPaid"`
	PaymentMethod       PaymentMethod  `db:"payment_method" json:"paymentMethod"`
	CreatedAt           time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time      `db:"updated_at" json:"updatedAt"`

	// Not stored directly on the deliveries row.
	Items []DeliveryItem `db:"-" json:"items,omitempty"`

	// Owner identity, joined on admin reads only.
	OwnerName  *string `db:"owner_name" json:"ownerName,omitempty"`
	OwnerEmail *string `db:"owner_email" json:"ownerEmail,omitempty"`
}

type DeliveryItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	DeliveryID   uuid.UUID `db:"delivery_id" json:"deliveryId"`
	PatisserieID uuid.UUID `db:"patisserie_id" json:"patisserieId"`
	Quantity     int       `db:"quantity" json:"quantity"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`

	// Joined from the patisserie catalog.
	Name  string  `db:"name" json:"name"`
	Price float64 `db:"price" json:"price"`
}

// DeliveryAddress is the nested address block of a delivery request.
type DeliveryAddress struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

type DeliveryItemRequest struct {
	Patisserie string `json:"patisserie" validate:"required,uuid"`
	Quantity   int    `json:"quantity" validate:"required,min=1"`
}

type DeliveryRequest struct {
	Items               []DeliveryItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress     *DeliveryAddress      `json:"deliveryAddress" validate:"required"`
	DeliveryDate        string                `json:"deliveryDate" validate:"required,datetime=2006-01-02"`
	DeliveryTime        string                `json:"deliveryTime" validate:"required"`
	TotalAmount         float64               `json:"totalAmount" validate:"required,min=0"`
	DeliveryFee         *float64              `json:"deliveryFee" validate:"required,min=0"`
	SpecialInstructions *string               `json:"specialInstructions"`
	ContactPhone        string                `json:"contactPhone" validate:"required"`
	PaymentMethod       string                `json:"paymentMethod" validate:"required,oneof=cash card online"`
}
