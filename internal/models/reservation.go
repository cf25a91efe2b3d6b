package models

import (
	"time"

	"github.com/google/uuid"
)

// ReservationKind distinguishes plain table bookings from catered event
// bookings.
type ReservationKind string

const (
	ReservationTable ReservationKind = "table"
	ReservationEvent ReservationKind = "event"
)

// EventType is the sub-type of an event reservation.
type EventType string

const (
	EventBirthday  EventType = "birthday"
	EventWedding   EventType = "wedding"
	EventCorporate EventType = "corporate"
	EventOther     EventType = "other"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
)

// Terminal reports whether the status forbids further changes.
func (s ReservationStatus) Terminal() bool {
	return s == ReservationCancelled || s == ReservationCompleted
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCancelled, ReservationCompleted:
		return true
	}
	return false
}

type Reservation struct {
	ID               uuid.UUID         `db:"id" json:"id"`
	UserID           uuid.UUID         `db:"user_id" json:"userId"`
	FirstName        string            `db:"first_name" json:"firstName"`
	LastName         string            `db:"last_name" json:"lastName"`
	Type             ReservationKind   `db:"type" json:"type"`
	EventType        *EventType        `db:"event_type" json:"eventType,omitempty"`
	Date             time.Time         `db:"date" json:"date"`
	Time             string            `db:"time_of_day" json:"time"`
	NumberOfGuests   int               `db:"number_of_guests" json:"numberOfGuests"`
	Status           ReservationStatus `db:"status" json:"status"`
	QRCode           string            `db:"qr_code" json:"qrCode"`
	SpecialRequests  *string           `db:"special_requests" json:"specialRequests,omitempty"`
	ContactPhone     string            `db:"contact_phone" json:"contactPhone"`
	ContactEmail     string            `db:"contact_email" json:"contactEmail"`
	IsVerified       bool              `db:"is_verified" json:"isVerified"`
	VerificationTime *time.Time        `db:"verification_time" json:"verificationTime,omitempty"`
	EmailSent        bool              `db:"email_sent" json:"emailSent"`
	CreatedAt        time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time         `db:"updated_at" json:"updatedAt"`

	// Owner identity, joined on admin reads only.
	OwnerName  *string `db:"owner_name" json:"ownerName,omitempty"`
	OwnerEmail *string `db:"owner_email" json:"ownerEmail,omitempty"`
}

// ReservationRequest is used for reservation creation. EventType is
// required exactly when Type is "event".
type ReservationRequest struct {
	FirstName       string     `json:"firstName" validate:"required"`
	LastName        string     `json:"lastName" validate:"required"`
	Type            string     `json:"type" validate:"required,oneof=table event"`
	EventType       *EventType `json:"eventType" validate:"omitempty,oneof=birthday wedding corporate other"`
	Date            string     `json:"date" validate:"required,datetime=2006-01-02"`
	Time            string     `json:"time" validate:"required"`
	NumberOfGuests  int        `json:"numberOfGuests" validate:"required,min=1"`
	SpecialRequests *string    `json:"specialRequests"`
	ContactPhone    string     `json:"contactPhone" validate:"required"`
	ContactEmail    string     `json:"contactEmail" validate:"required,email"`
}

// ReservationPatch holds the typed, allow-listed fields an update may
// touch. Nil means "leave unchanged".
type ReservationPatch struct {
	Date            *time.Time
	Time            *string
	NumberOfGuests  *int
	Status          *ReservationStatus
	SpecialRequests *string
}

func (p ReservationPatch) Empty() bool {
	return p.Date == nil && p.Time == nil && p.NumberOfGuests == nil &&
		p.Status == nil && p.SpecialRequests == nil
}

// VerificationResult is the reduced view returned by a successful
// check-in scan. Internal fields stay server-side.
type VerificationResult struct {
	ID             uuid.UUID       `json:"id"`
	Type           ReservationKind `json:"type"`
	EventType      *EventType      `json:"eventType,omitempty"`
	NumberOfGuests int             `json:"numberOfGuests"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	ContactEmail   string          `json:"contactEmail"`
}

// VerificationSummary is the public landing-page view shown after a scan,
// before staff confirm the check-in.
type VerificationSummary struct {
	ID             uuid.UUID         `json:"id"`
	Type           ReservationKind   `json:"type"`
	EventType      *EventType        `json:"eventType,omitempty"`
	Date           time.Time         `json:"date"`
	Time           string            `json:"time"`
	NumberOfGuests int               `json:"numberOfGuests"`
	Status         ReservationStatus `json:"status"`
	IsVerified     bool              `json:"isVerified"`
	FirstName      string            `json:"firstName"`
	LastName       string            `json:"lastName"`
	ContactEmail   string            `json:"contactEmail"`
}
