package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/mailer"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

// deliveryTransitions defines the forward path of a delivery order.
// Cancellation is reachable from every non-terminal state.
var deliveryTransitions = map[models.DeliveryStatus][]models.DeliveryStatus{
	models.DeliveryPending:        {models.DeliveryPreparing, models.DeliveryCancelled},
	models.DeliveryPreparing:      {models.DeliveryOutForDelivery, models.DeliveryCancelled},
	models.DeliveryOutForDelivery: {models.DeliveryDelivered, models.DeliveryCancelled},
}

// DeliveryService handles patisserie delivery orders.
type DeliveryService struct {
	repo     repository.DeliveryRepository
	mail     mailer.Dispatcher
	validate *validator.Validate
	log      *zap.Logger
}

// NewDeliveryService creates a new delivery service.
func NewDeliveryService(repo repository.DeliveryRepository, mail mailer.Dispatcher, log *zap.Logger) *DeliveryService {
	return &DeliveryService{
		repo:     repo,
		mail:     mail,
		validate: newValidator(),
		log:      log,
	}
}

// Create validates and persists a delivery order for the caller, then
// dispatches the confirmation email best-effort.
func (s *DeliveryService) Create(ctx context.Context, user *models.User, req models.DeliveryRequest) (*models.Delivery, error) {
	if err := checkStruct(s.validate, req); err != nil {
		return nil, err
	}

	date, err := time.Parse(dateLayout, req.DeliveryDate)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "missing or invalid fields").
			WithDetails("deliveryDate must be a date in the form " + dateLayout)
	}

	items := make([]models.DeliveryItem, 0, len(req.Items))
	for _, item := range req.Items {
		patisserieID, err := uuid.Parse(item.Patisserie)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "missing or invalid fields").
				WithDetails("items must reference patisserie items by id")
		}
		items = append(items, models.DeliveryItem{
			PatisserieID: patisserieID,
			Quantity:     item.Quantity,
		})
	}

	created, err := s.repo.Create(ctx, models.Delivery{
		UserID:              user.ID,
		Street:              req.DeliveryAddress.Street,
		City:                req.DeliveryAddress.City,
		State:               req.DeliveryAddress.State,
		ZipCode:             req.DeliveryAddress.ZipCode,
		DeliveryDate:        date,
		DeliveryTime:        req.DeliveryTime,
		Status:              models.DeliveryPending,
		TotalAmount:         req.TotalAmount,
		DeliveryFee:         *req.DeliveryFee,
		SpecialInstructions: req.SpecialInstructions,
		ContactPhone:        req.ContactPhone,
		IsPaid:              false,
		PaymentMethod:       models.PaymentMethod(req.PaymentMethod),
	}, items)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to create delivery", err)
	}

	// Advisory: a failed dispatch never fails the order.
	if !s.mail.SendDeliveryConfirmation(created, user.Email, user.Name) {
		s.log.Warn("delivery confirmation not sent",
			zap.String("delivery_id", created.ID.String()))
	}

	return created, nil
}

// List returns all deliveries for administrators (optionally filtered
// by status) and the caller's own otherwise.
func (s *DeliveryService) List(ctx context.Context, user *models.User, status string) ([]models.Delivery, error) {
	if !user.IsAdmin() {
		list, err := s.repo.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDependency, "failed to list deliveries", err)
		}
		return list, nil
	}

	var filter *models.DeliveryStatus
	if status != "" {
		st := models.DeliveryStatus(status)
		if !st.Valid() {
			return nil, apperr.New(apperr.KindValidation, "invalid status filter")
		}
		filter = &st
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to list deliveries", err)
	}
	return list, nil
}

// Get returns one delivery to its owner or an administrator.
func (s *DeliveryService) Get(ctx context.Context, user *models.User, id uuid.UUID) (*models.Delivery, error) {
	delivery, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "delivery not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get delivery", err)
	}

	if delivery.UserID != user.ID && !user.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "not authorized to view this delivery")
	}

	return delivery, nil
}

// UpdateStatus advances a delivery along its status path. Terminal
// states are frozen.
func (s *DeliveryService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Delivery, error) {
	next := models.DeliveryStatus(status)
	if !next.Valid() {
		return nil, apperr.New(apperr.KindValidation, "invalid delivery status")
	}

	current, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "delivery not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get delivery", err)
	}

	if current.Status.Terminal() {
		return nil, apperr.Newf(apperr.KindConflict, "delivery is %s and can no longer change status", current.Status)
	}

	allowed := false
	for _, candidate := range deliveryTransitions[current.Status] {
		if candidate == next {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, apperr.Newf(apperr.KindConflict, "cannot move delivery from %s to %s", current.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, next)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "delivery not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to update delivery", err)
	}

	return updated, nil
}

// Delete removes a non-terminal delivery for the owner or an
// administrator.
func (s *DeliveryService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	delivery, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "delivery not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindDependency, "failed to get delivery", err)
	}

	if delivery.UserID != user.ID && !user.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "not authorized to delete this delivery")
	}
	if delivery.Status.Terminal() {
		return apperr.Newf(apperr.KindConflict, "delivery is %s and cannot be deleted", delivery.Status)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "delivery not found")
		}
		return apperr.Wrap(apperr.KindDependency, "failed to delete delivery", err)
	}

	return nil
}
