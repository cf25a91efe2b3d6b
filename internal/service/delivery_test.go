package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

type mockDeliveryRepo struct {
	mock.Mock
}

func (m *mockDeliveryRepo) Create(ctx context.Context, d models.Delivery, items []models.DeliveryItem) (*models.Delivery, error) {
	args := m.Called(ctx, d, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Delivery, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) List(ctx context.Context, status *models.DeliveryStatus) ([]models.Delivery, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Delivery, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.DeliveryStatus) (*models.Delivery, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Delivery), args.Error(1)
}

func (m *mockDeliveryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func validDeliveryRequest() models.DeliveryRequest {
	fee := 5.0
	return models.DeliveryRequest{
		Items: []models.DeliveryItemRequest{
			{Patisserie: uuid.NewString(), Quantity: 2},
		},
		DeliveryAddress: &models.DeliveryAddress{
			Street:  "12 Quay Street",
			City:    "Auckland",
			State:   "Auckland",
			ZipCode: "1010",
		},
		DeliveryDate:  "2026-09-01",
		DeliveryTime:  "14:00",
		TotalAmount:   42.5,
		DeliveryFee:   &fee,
		ContactPhone:  "+64211234567",
		PaymentMethod: "card",
	}
}

func TestCreateDelivery(t *testing.T) {
	repo := new(mockDeliveryRepo)
	mail := &mockDispatcher{outcome: true}
	svc := NewDeliveryService(repo, mail, zap.NewNop())
	user := &models.User{ID: uuid.New(), Name: "Nadia", Email: "nadia@example.com"}

	created := &models.Delivery{ID: uuid.New(), UserID: user.ID, Status: models.DeliveryPending}
	repo.On("Create", mock.Anything, mock.MatchedBy(func(d models.Delivery) bool {
		return d.Status == models.DeliveryPending && !d.IsPaid && d.UserID == user.ID
	}), mock.MatchedBy(func(items []models.DeliveryItem) bool {
		return len(items) == 1 && items[0].Quantity == 2
	})).Return(created, nil)

	got, err := svc.Create(context.Background(), user, validDeliveryRequest())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, mail.deliverySends)
	repo.AssertExpectations(t)
}

func TestCreateDeliveryInvalid(t *testing.T) {
	svc := NewDeliveryService(new(mockDeliveryRepo), &mockDispatcher{}, zap.NewNop())
	user := &models.User{ID: uuid.New()}

	req := validDeliveryRequest()
	req.Items = nil
	req.PaymentMethod = "cheque"

	_, err := svc.Create(context.Background(), user, req)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.NotEmpty(t, apperr.DetailsOf(err))
}

func TestDeliveryStatusTransitions(t *testing.T) {
	cases := []struct {
		from    models.DeliveryStatus
		to      string
		allowed bool
	}{
		{models.DeliveryPending, "preparing", true},
		{models.DeliveryPending, "cancelled", true},
		{models.DeliveryPending, "delivered", false},
		{models.DeliveryPreparing, "out_for_delivery", true},
		{models.DeliveryPreparing, "pending", false},
		{models.DeliveryOutForDelivery, "delivered", true},
		{models.DeliveryOutForDelivery, "preparing", false},
	}

	for _, tc := range cases {
		repo := new(mockDeliveryRepo)
		svc := NewDeliveryService(repo, &mockDispatcher{}, zap.NewNop())

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(&models.Delivery{ID: id, Status: tc.from}, nil)
		if tc.allowed {
			repo.On("UpdateStatus", mock.Anything, id, models.DeliveryStatus(tc.to)).
				Return(&models.Delivery{ID: id, Status: models.DeliveryStatus(tc.to)}, nil)
		}

		_, err := svc.UpdateStatus(context.Background(), id, tc.to)
		if tc.allowed {
			assert.NoError(t, err, "%s -> %s", tc.from, tc.to)
		} else {
			assert.True(t, apperr.Is(err, apperr.KindConflict), "%s -> %s", tc.from, tc.to)
		}
	}
}

func TestDeliveryStatusTerminalFrozen(t *testing.T) {
	for _, from := range []models.DeliveryStatus{models.DeliveryDelivered, models.DeliveryCancelled} {
		repo := new(mockDeliveryRepo)
		svc := NewDeliveryService(repo, &mockDispatcher{}, zap.NewNop())

		id := uuid.New()
		repo.On("GetByID", mock.Anything, id).Return(&models.Delivery{ID: id, Status: from}, nil)

		_, err := svc.UpdateStatus(context.Background(), id, "preparing")
		assert.True(t, apperr.Is(err, apperr.KindConflict), "from %s", from)
	}
}

func TestDeliveryGetOwnership(t *testing.T) {
	repo := new(mockDeliveryRepo)
	svc := NewDeliveryService(repo, &mockDispatcher{}, zap.NewNop())

	owner := &models.User{ID: uuid.New(), Role: models.RoleUser}
	stranger := &models.User{ID: uuid.New(), Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}
	d := &models.Delivery{ID: uuid.New(), UserID: owner.ID}
	repo.On("GetByID", mock.Anything, d.ID).Return(d, nil)

	_, err := svc.Get(context.Background(), owner, d.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), admin, d.ID)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), stranger, d.ID)
	assert.True(t, apperr.Is(err, apperr.KindAuthorization))
}

func TestDeliveryListByRole(t *testing.T) {
	repo := new(mockDeliveryRepo)
	svc := NewDeliveryService(repo, &mockDispatcher{}, zap.NewNop())

	user := &models.User{ID: uuid.New(), Role: models.RoleUser}
	admin := &models.User{ID: uuid.New(), Role: models.RoleAdmin}

	repo.On("ListByUser", mock.Anything, user.ID).Return([]models.Delivery{}, nil)
	pending := models.DeliveryPending
	repo.On("List", mock.Anything, &pending).Return([]models.Delivery{}, nil)

	_, err := svc.List(context.Background(), user, "")
	require.NoError(t, err)

	_, err = svc.List(context.Background(), admin, "pending")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
