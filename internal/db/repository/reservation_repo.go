package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/km0-cafe/restaurant-service/internal/models"
)

// ReservationFilter narrows admin listings. DateFrom/DateTo form a
// half-open interval [DateFrom, DateTo).
type ReservationFilter struct {
	Type     *models.ReservationKind
	Status   *models.ReservationStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ReservationRepository handles reservation data access.
type ReservationRepository interface {
	Create(ctx context.Context, res models.Reservation) (*models.Reservation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	GetByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error)
	SetQRCode(ctx context.Context, id uuid.UUID, qrCode string) error
	SetEmailSent(ctx context.Context, id uuid.UUID, sent bool) error
	MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListIncomplete(ctx context.Context) ([]models.Reservation, error)
}

type reservationRepository struct {
	db *sqlx.DB
}

// NewReservationRepository creates a new reservation repository
func NewReservationRepository(db *sqlx.DB) ReservationRepository {
	return &reservationRepository{db: db}
}

const reservationColumns = `id, user_id, first_name, last_name, type, event_type, date, time_of_day,
	number_of_guests, status, qr_code, special_requests, contact_phone, contact_email,
	is_verified, verification_time, email_sent, created_at, updated_at`

// Create persists a new reservation and returns the stored row.
func (r *reservationRepository) Create(ctx context.Context, res models.Reservation) (*models.Reservation, error) {
	query := `
		INSERT INTO reservations
			(user_id, first_name, last_name, type, event_type, date, time_of_day,
			 number_of_guests, status, special_requests, contact_phone, contact_email)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + reservationColumns + `
	`

	var created models.Reservation
	err := r.db.GetContext(
		ctx,
		&created,
		query,
		res.UserID,
		res.FirstName,
		res.LastName,
		res.Type,
		res.EventType,
		res.Date,
		res.Time,
		res.NumberOfGuests,
		res.Status,
		res.SpecialRequests,
		res.ContactPhone,
		res.ContactEmail,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	return &created, nil
}

// GetByID retrieves a reservation by ID
func (r *reservationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE id = $1
	`

	var res models.Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return &res, nil
}

// GetByIDWithOwner retrieves a reservation with the owner's name and
// email joined in, for admin reads.
func (r *reservationRepository) GetByIDWithOwner(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	query := `
		SELECT r.id, r.user_id, r.first_name, r.last_name, r.type, r.event_type, r.date,
		       r.time_of_day, r.number_of_guests, r.status, r.qr_code, r.special_requests,
		       r.contact_phone, r.contact_email, r.is_verified, r.verification_time,
		       r.email_sent, r.created_at, r.updated_at,
		       u.name AS owner_name, u.email AS owner_email
		FROM reservations r
		JOIN users u ON r.user_id = u.id
		WHERE r.id = $1
	`

	var res models.Reservation
	err := r.db.GetContext(ctx, &res, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}

	return &res, nil
}

// List retrieves reservations matching the filter, sorted by date then
// time of day.
func (r *reservationRepository) List(ctx context.Context, f ReservationFilter) ([]models.Reservation, error) {
	var conditions []string
	var args []interface{}

	if f.Type != nil {
		args = append(args, *f.Type)
		conditions = append(conditions, fmt.Sprintf("r.type = $%d", len(args)))
	}
	if f.Status != nil {
		args = append(args, *f.Status)
		conditions = append(conditions, fmt.Sprintf("r.status = $%d", len(args)))
	}
	if f.DateFrom != nil {
		args = append(args, *f.DateFrom)
		conditions = append(conditions, fmt.Sprintf("r.date >= $%d", len(args)))
	}
	if f.DateTo != nil {
		args = append(args, *f.DateTo)
		conditions = append(conditions, fmt.Sprintf("r.date < $%d", len(args)))
	}

	query := `
		SELECT r.id, r.user_id, r.first_name, r.last_name, r.type, r.event_type, r.date,
		       r.time_of_day, r.number_of_guests, r.status, r.qr_code, r.special_requests,
		       r.contact_phone, r.contact_email, r.is_verified, r.verification_time,
		       r.email_sent, r.created_at, r.updated_at,
		       u.name AS owner_name, u.email AS owner_email
		FROM reservations r
		JOIN users u ON r.user_id = u.id
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY r.date ASC, r.time_of_day ASC"

	var reservations []models.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}

	return reservations, nil
}

// ListByUser retrieves a principal's own reservations.
func (r *reservationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE user_id = $1
		ORDER BY date ASC, time_of_day ASC
	`

	var reservations []models.Reservation
	err := r.db.SelectContext(ctx, &reservations, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user reservations: %w", err)
	}

	return reservations, nil
}

// ApplyPatch updates the allow-listed fields that are set on the patch
// and returns the updated row.
func (r *reservationRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch models.ReservationPatch) (*models.Reservation, error) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Time != nil {
		add("time_of_day", *patch.Time)
	}
	if patch.NumberOfGuests != nil {
		add("number_of_guests", *patch.NumberOfGuests)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.SpecialRequests != nil {
		add("special_requests", *patch.SpecialRequests)
	}
	add("updated_at", time.Now())

	args = append(args, id)
	query := fmt.Sprintf(`
		UPDATE reservations
		SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(sets, ", "), len(args), reservationColumns)

	var updated models.Reservation
	err := r.db.GetContext(ctx, &updated, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	return &updated, nil
}

// SetQRCode stores the derived QR payload.
func (r *reservationRepository) SetQRCode(ctx context.Context, id uuid.UUID, qrCode string) error {
	return r.exec(ctx, `UPDATE reservations SET qr_code = $1, updated_at = $2 WHERE id = $3`,
		qrCode, time.Now(), id)
}

// SetEmailSent records the confirmation dispatch outcome.
func (r *reservationRepository) SetEmailSent(ctx context.Context, id uuid.UUID, sent bool) error {
	return r.exec(ctx, `UPDATE reservations SET email_sent = $1, updated_at = $2 WHERE id = $3`,
		sent, time.Now(), id)
}

// MarkVerified flips the verification flag exactly once; a second call
// finds no unverified row and reports ErrNotFound.
func (r *reservationRepository) MarkVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.exec(ctx, `
		UPDATE reservations
		SET is_verified = TRUE, verification_time = $1, updated_at = $1
		WHERE id = $2 AND is_verified = FALSE
	`, at, id)
}

// Delete deletes a reservation
func (r *reservationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM reservations WHERE id = $1`, id)
}

// ListIncomplete finds reservations the create workflow left without a
// QR payload or without a sent confirmation, for the reconciliation
// sweep.
func (r *reservationRepository) ListIncomplete(ctx context.Context) ([]models.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE (qr_code = '' OR email_sent = FALSE)
		  AND status IN ('pending', 'confirmed')
		ORDER BY created_at ASC
		LIMIT 100
	`

	var reservations []models.Reservation
	err := r.db.SelectContext(ctx, &reservations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list incomplete reservations: %w", err)
	}

	return reservations, nil
}

func (r *reservationRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("reservation write failed: %w", err)
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
