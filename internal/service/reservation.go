package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/mailer"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/qr"
)

const dateLayout = "2006-01-02"

// ReservationService owns the reservation lifecycle: creation, status
// transitions, QR payload issuance and verification-by-scan.
type ReservationService struct {
	repo repository.ReservationRepository
	mail mailer.Dispatcher

	// loc is the zone for calendar-date comparisons during check-in.
	loc                 *time.Location
	allowTerminalDelete bool

	validate *validator.Validate
	log      *zap.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewReservationService creates a new reservation service.
func NewReservationService(
	repo repository.ReservationRepository,
	mail mailer.Dispatcher,
	loc *time.Location,
	allowTerminalDelete bool,
	log *zap.Logger,
) *ReservationService {
	return &ReservationService{
		repo:                repo,
		mail:                mail,
		loc:                 loc,
		allowTerminalDelete: allowTerminalDelete,
		validate:            newValidator(),
		log:                 log,
		now:                 time.Now,
	}
}

// Create validates and persists a reservation owned by the caller, then
// assigns its QR payload and dispatches the confirmation email. QR and
// email are follow-up writes: their failure is recorded, never raised.
func (s *ReservationService) Create(ctx context.Context, user *models.User, req models.ReservationRequest) (*models.Reservation, error) {
	details := structDetails(s.validate, req)

	// eventType is present iff the reservation is an event booking.
	kind := models.ReservationKind(req.Type)
	if kind == models.ReservationEvent && req.EventType == nil {
		details = append(details, "eventType is required")
	}
	if kind == models.ReservationTable && req.EventType != nil {
		details = append(details, "eventType is only valid for event reservations")
	}

	if len(details) > 0 {
		return nil, apperr.New(apperr.KindValidation, "missing or invalid fields").WithDetails(details...)
	}

	date, err := time.ParseInLocation(dateLayout, req.Date, s.loc)
	if err != nil {
		return nil, apperr.New(apperr.KindValidation, "missing or invalid fields").
			WithDetails("date must be a date in the form " + dateLayout)
	}

	created, err := s.repo.Create(ctx, models.Reservation{
		UserID:          user.ID,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Type:            kind,
		EventType:       req.EventType,
		Date:            date,
		Time:            req.Time,
		NumberOfGuests:  req.NumberOfGuests,
		Status:          models.ReservationPending,
		SpecialRequests: req.SpecialRequests,
		ContactPhone:    req.ContactPhone,
		ContactEmail:    req.ContactEmail,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to create reservation", err)
	}

	return s.completeCreate(ctx, created), nil
}

// completeCreate runs the non-transactional follow-up steps: derive and
// persist the QR payload, then dispatch the confirmation. Each step is
// best-effort; Reconcile repairs what a crash leaves behind.
func (s *ReservationService) completeCreate(ctx context.Context, res *models.Reservation) *models.Reservation {
	if res.QRCode == "" {
		payload := qr.Payload(res.ID)
		if err := s.repo.SetQRCode(ctx, res.ID, payload); err != nil {
			s.log.Warn("failed to persist qr payload",
				zap.String("reservation_id", res.ID.String()),
				zap.Error(err))
			return res
		}
		res.QRCode = payload
	}

	sent := s.mail.SendReservationConfirmation(res)
	if err := s.repo.SetEmailSent(ctx, res.ID, sent); err != nil {
		s.log.Warn("failed to record email dispatch outcome",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
		return res
	}
	res.EmailSent = sent

	return res
}

// ListFilters are the admin listing query parameters, raw off the wire.
type ListFilters struct {
	Type   string
	Status string
	Date   string
}

// List returns all reservations matching the filters for administrators
// and the caller's own reservations for everyone else.
func (s *ReservationService) List(ctx context.Context, user *models.User, filters ListFilters) ([]models.Reservation, error) {
	if !user.IsAdmin() {
		list, err := s.repo.ListByUser(ctx, user.ID)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindDependency, "failed to list reservations", err)
		}
		return list, nil
	}

	var f repository.ReservationFilter
	if filters.Type != "" {
		kind := models.ReservationKind(filters.Type)
		if kind != models.ReservationTable && kind != models.ReservationEvent {
			return nil, apperr.New(apperr.KindValidation, "invalid type filter")
		}
		f.Type = &kind
	}
	if filters.Status != "" {
		status := models.ReservationStatus(filters.Status)
		if !status.Valid() {
			return nil, apperr.New(apperr.KindValidation, "invalid status filter")
		}
		f.Status = &status
	}
	if filters.Date != "" {
		day, err := time.ParseInLocation(dateLayout, filters.Date, s.loc)
		if err != nil {
			return nil, apperr.New(apperr.KindValidation, "invalid date filter")
		}
		// Half-open interval covering the whole calendar day.
		next := day.AddDate(0, 0, 1)
		f.DateFrom = &day
		f.DateTo = &next
	}

	list, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to list reservations", err)
	}
	return list, nil
}

// Get returns one reservation to its owner or an administrator.
func (s *ReservationService) Get(ctx context.Context, user *models.User, id uuid.UUID) (*models.Reservation, error) {
	var res *models.Reservation
	var err error
	if user.IsAdmin() {
		res, err = s.repo.GetByIDWithOwner(ctx, id)
	} else {
		res, err = s.repo.GetByID(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get reservation", err)
	}

	if res.UserID != user.ID && !user.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "not authorized to view this reservation")
	}

	return res, nil
}

// updateAllowList restricts what a reservation patch may touch.
var updateAllowList = map[string]bool{
	"date":            true,
	"time":            true,
	"numberOfGuests":  true,
	"status":          true,
	"specialRequests": true,
}

// decodePatch validates patch keys against the allow-list and decodes
// the values. Validation is all-or-nothing: one bad key rejects the
// whole patch.
func (s *ReservationService) decodePatch(raw map[string]json.RawMessage) (models.ReservationPatch, error) {
	var patch models.ReservationPatch

	var invalid []string
	for key := range raw {
		if !updateAllowList[key] {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) > 0 {
		return patch, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(invalid...)
	}
	if len(raw) == 0 {
		return patch, apperr.New(apperr.KindValidation, "empty update")
	}

	var details []string

	if rawDate, ok := raw["date"]; ok {
		var str string
		if err := json.Unmarshal(rawDate, &str); err != nil {
			details = append(details, "date must be a string")
		} else if date, err := time.ParseInLocation(dateLayout, str, s.loc); err != nil {
			details = append(details, "date must be a date in the form "+dateLayout)
		} else {
			patch.Date = &date
		}
	}
	if rawTime, ok := raw["time"]; ok {
		var str string
		if err := json.Unmarshal(rawTime, &str); err != nil || str == "" {
			details = append(details, "time must be a non-empty string")
		} else {
			patch.Time = &str
		}
	}
	if rawGuests, ok := raw["numberOfGuests"]; ok {
		var n int
		if err := json.Unmarshal(rawGuests, &n); err != nil || n < 1 {
			details = append(details, "numberOfGuests must be at least 1")
		} else {
			patch.NumberOfGuests = &n
		}
	}
	if rawStatus, ok := raw["status"]; ok {
		var str string
		if err := json.Unmarshal(rawStatus, &str); err != nil {
			details = append(details, "status must be a string")
		} else if status := models.ReservationStatus(str); !status.Valid() {
			details = append(details, "status must be one of pending confirmed cancelled completed")
		} else {
			patch.Status = &status
		}
	}
	if rawSpecial, ok := raw["specialRequests"]; ok {
		var str string
		if err := json.Unmarshal(rawSpecial, &str); err != nil {
			details = append(details, "specialRequests must be a string")
		} else {
			patch.SpecialRequests = &str
		}
	}

	if len(details) > 0 {
		return patch, apperr.New(apperr.KindValidation, "invalid updates").WithDetails(details...)
	}

	return patch, nil
}

// Update applies an allow-listed patch for the owner or an
// administrator. Confirming a reservation regenerates its QR payload
// and re-dispatches the confirmation email, best-effort.
func (s *ReservationService) Update(ctx context.Context, user *models.User, id uuid.UUID, raw map[string]json.RawMessage) (*models.Reservation, error) {
	patch, err := s.decodePatch(raw)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get reservation", err)
	}

	if current.UserID != user.ID && !user.IsAdmin() {
		return nil, apperr.New(apperr.KindAuthorization, "not authorized to update this reservation")
	}
	if current.Status.Terminal() {
		return nil, apperr.Newf(apperr.KindConflict, "reservation is %s and can no longer be updated", current.Status)
	}

	updated, err := s.repo.ApplyPatch(ctx, id, patch)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to update reservation", err)
	}

	if patch.Status != nil && *patch.Status == models.ReservationConfirmed {
		updated = s.confirm(ctx, updated)
	}

	return updated, nil
}

// confirm refreshes the QR payload and re-dispatches the confirmation
// email after a transition to confirmed. The payload derivation is
// deterministic, so a refreshed payload still encodes the same id.
func (s *ReservationService) confirm(ctx context.Context, res *models.Reservation) *models.Reservation {
	payload := qr.Payload(res.ID)
	if err := s.repo.SetQRCode(ctx, res.ID, payload); err != nil {
		s.log.Warn("failed to refresh qr payload",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
	} else {
		res.QRCode = payload
	}

	sent := s.mail.SendReservationConfirmation(res)
	if err := s.repo.SetEmailSent(ctx, res.ID, sent); err != nil {
		s.log.Warn("failed to record email dispatch outcome",
			zap.String("reservation_id", res.ID.String()),
			zap.Error(err))
	} else {
		res.EmailSent = sent
	}

	return res
}

// Delete removes a reservation for the owner or an administrator.
// Whether terminal reservations may be deleted is a deployment policy.
func (s *ReservationService) Delete(ctx context.Context, user *models.User, id uuid.UUID) error {
	res, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindDependency, "failed to get reservation", err)
	}

	if res.UserID != user.ID && !user.IsAdmin() {
		return apperr.New(apperr.KindAuthorization, "not authorized to delete this reservation")
	}
	if res.Status.Terminal() && !s.allowTerminalDelete {
		return apperr.Newf(apperr.KindConflict, "reservation is %s and cannot be deleted", res.Status)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.KindNotFound, "reservation not found")
		}
		return apperr.Wrap(apperr.KindDependency, "failed to delete reservation", err)
	}

	return nil
}

// Verify performs the one-time check-in scan. The reservation must not
// be verified yet and must be for the current calendar day in the
// configured zone, irrespective of time of day.
func (s *ReservationService) Verify(ctx context.Context, id uuid.UUID) (*models.VerificationResult, error) {
	res, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get reservation", err)
	}

	if res.IsVerified {
		return nil, apperr.New(apperr.KindConflict, "reservation already verified")
	}

	now := s.now().In(s.loc)
	date := res.Date.In(s.loc)
	if date.Year() != now.Year() || date.Month() != now.Month() || date.Day() != now.Day() {
		return nil, apperr.New(apperr.KindValidation, "reservation is not for today")
	}

	if err := s.repo.MarkVerified(ctx, res.ID, now); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race against a concurrent scan.
			return nil, apperr.New(apperr.KindConflict, "reservation already verified")
		}
		return nil, apperr.Wrap(apperr.KindDependency, "failed to verify reservation", err)
	}

	return &models.VerificationResult{
		ID:             res.ID,
		Type:           res.Type,
		EventType:      res.EventType,
		NumberOfGuests: res.NumberOfGuests,
		FirstName:      res.FirstName,
		LastName:       res.LastName,
		ContactEmail:   res.ContactEmail,
	}, nil
}

// GetVerificationSummary returns the public scan landing-page view.
func (s *ReservationService) GetVerificationSummary(ctx context.Context, id uuid.UUID) (*models.VerificationSummary, error) {
	res, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.New(apperr.KindNotFound, "reservation not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindDependency, "failed to get reservation", err)
	}

	return &models.VerificationSummary{
		ID:             res.ID,
		Type:           res.Type,
		EventType:      res.EventType,
		Date:           res.Date,
		Time:           res.Time,
		NumberOfGuests: res.NumberOfGuests,
		Status:         res.Status,
		IsVerified:     res.IsVerified,
		FirstName:      res.FirstName,
		LastName:       res.LastName,
		ContactEmail:   res.ContactEmail,
	}, nil
}

// Reconcile repairs reservations the create workflow left incomplete: a
// missing QR payload is re-derived (same id, same payload) and an
// unsent confirmation is retried.
func (s *ReservationService) Reconcile(ctx context.Context) error {
	incomplete, err := s.repo.ListIncomplete(ctx)
	if err != nil {
		return err
	}

	for i := range incomplete {
		res := &incomplete[i]
		s.log.Info("reconciling reservation",
			zap.String("reservation_id", res.ID.String()),
			zap.Bool("missing_qr", res.QRCode == ""),
			zap.Bool("email_unsent", !res.EmailSent))
		s.completeCreate(ctx, res)
	}

	return nil
}

// RunReconciler loops Reconcile on the given interval until the context
// is cancelled.
func (s *ReservationService) RunReconciler(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reconcile(ctx); err != nil {
				s.log.Warn("reconciliation sweep failed", zap.Error(err))
			}
		}
	}
}
