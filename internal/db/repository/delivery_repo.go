package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/km0-cafe/restaurant-service/internal/models"
)

// DeliveryRepository handles delivery order data access.
type DeliveryRepository interface {
	Create(ctx context.Context, d models.Delivery, items []models.DeliveryItem) (*models.Delivery, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error)
	List(ctx context.Context, status *models.DeliveryStatus) ([]models.Delivery, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Delivery, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) (*models.Delivery, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type deliveryRepository struct {
	db *sqlx.DB
}

// NewDeliveryRepository creates a new delivery repository
func NewDeliveryRepository(db *sqlx.DB) DeliveryRepository {
	return &deliveryRepository{db: db}
}

const deliveryColumns = `id, user_id, street, city, state, zip_code, delivery_date, delivery_time,
	status, total_amount, delivery_fee, special_instructions, contact_phone, is_paid,
	payment_method, created_at, updated_at`

// Create persists the delivery and its item rows in one transaction.
func (r *deliveryRepository) Create(ctx context.Context, d models.Delivery, items []models.DeliveryItem) (*models.Delivery, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO deliveries
			(user_id, street, city, state, zip_code, delivery_date, delivery_time,
			 status, total_amount, delivery_fee, special_instructions, contact_phone,
			 is_paid, payment_method)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + deliveryColumns + `
	`

	var created models.Delivery
	err = tx.GetContext(
		ctx,
		&created,
		query,
		d.UserID,
		d.Street,
		d.City,
		d.State,
		d.ZipCode,
		d.DeliveryDate,
		d.DeliveryTime,
		d.Status,
		d.TotalAmount,
		d.DeliveryFee,
		d.SpecialInstructions,
		d.ContactPhone,
		d.IsPaid,
		d.PaymentMethod,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create delivery: %w", err)
	}

	for _, item := range items {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO delivery_items (delivery_id, patisserie_id, quantity)
			VALUES ($1, $2, $3)
		`, created.ID, item.PatisserieID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("failed to create delivery item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delivery: %w", err)
	}

	return r.GetByID(ctx, created.ID)
}

// GetByID retrieves a delivery with its items and owner identity.
func (r *deliveryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	query := `
		SELECT d.id, d.user_id, d.street, d.city, d.state, d.zip_code, d.delivery_date,
		       d.delivery_time, d.status, d.total_amount, d.delivery_fee,
		       d.special_instructions, d.contact_phone, d.is_paid, d.payment_method,
		       d.created_at, d.updated_at,
		       u.name AS owner_name, u.email AS owner_email
		FROM deliveries d
		JOIN users u ON d.user_id = u.id
		WHERE d.id = $1
	`

	var delivery models.Delivery
	err := r.db.GetContext(ctx, &delivery, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery: %w", err)
	}

	items, err := r.getItems(ctx, delivery.ID)
	if err != nil {
		return nil, err
	}
	delivery.Items = items

	return &delivery, nil
}

// getItems retrieves a delivery's items with the patisserie name and
// price joined in.
func (r *deliveryRepository) getItems(ctx context.Context, deliveryID uuid.UUID) ([]models.DeliveryItem, error) {
	query := `
		SELECT di.id, di.delivery_id, di.patisserie_id, di.quantity, di.created_at,
		       p.name AS name, p.price AS price
		FROM delivery_items di
		JOIN patisserie_items p ON di.patisserie_id = p.id
		WHERE di.delivery_id = $1
		ORDER BY di.created_at ASC
	`

	var items []models.DeliveryItem
	if err := r.db.SelectContext(ctx, &items, query, deliveryID); err != nil {
		return nil, fmt.Errorf("failed to get delivery items: %w", err)
	}

	return items, nil
}

// List retrieves deliveries, optionally filtered by status.
func (r *deliveryRepository) List(ctx context.Context, status *models.DeliveryStatus) ([]models.Delivery, error) {
	query := `
		SELECT d.id, d.user_id, d.street, d.city, d.state, d.zip_code, d.delivery_date,
		       d.delivery_time, d.status, d.total_amount, d.delivery_fee,
		       d.special_instructions, d.contact_phone, d.is_paid, d.payment_method,
		       d.created_at, d.updated_at,
		       u.name AS owner_name, u.email AS owner_email
		FROM deliveries d
		JOIN users u ON d.user_id = u.id
	`
	var args []interface{}
	if status != nil {
		query += " WHERE d.status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY d.delivery_date ASC, d.delivery_time ASC LIMIT 100"

	var deliveries []models.Delivery
	if err := r.db.SelectContext(ctx, &deliveries, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list deliveries: %w", err)
	}

	return deliveries, nil
}

// ListByUser retrieves a principal's own deliveries.
func (r *deliveryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Delivery, error) {
	query := `
		SELECT ` + deliveryColumns + `
		FROM deliveries
		WHERE user_id = $1
		ORDER BY delivery_date ASC, delivery_time ASC
	`

	var deliveries []models.Delivery
	if err := r.db.SelectContext(ctx, &deliveries, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list user deliveries: %w", err)
	}

	return deliveries, nil
}

// UpdateStatus sets the delivery status and returns the updated row.
func (r *deliveryRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) (*models.Delivery, error) {
	query := `
		UPDATE deliveries
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + deliveryColumns + `
	`

	var updated models.Delivery
	err := r.db.GetContext(ctx, &updated, query, status, time.Now(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update delivery status: %w", err)
	}

	return &updated, nil
}

// Delete removes a delivery; item rows cascade.
func (r *deliveryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM deliveries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete delivery: %w", err)
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
