package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/config"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/models"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func testJWTConfig() config.JWT {
	return config.JWT{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessExpiresIn:  8,
		RefreshExpiresIn: 168,
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)
	assert.True(t, CheckPassword("hunter22", hash))
	assert.False(t, CheckPassword("wrong", hash))
}

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(new(mockUserRepo), testJWTConfig())
	userID := uuid.New()

	for _, kind := range []TokenKind{TokenAccess, TokenRefresh} {
		token, err := svc.IssueToken(userID, kind)
		require.NoError(t, err)

		got, err := svc.VerifyToken(token, kind)
		require.NoError(t, err)
		assert.Equal(t, userID, got)
	}
}

func TestVerifyTokenRejectsWrongKind(t *testing.T) {
	svc := NewAuthService(new(mockUserRepo), testJWTConfig())

	refresh, err := svc.IssueToken(uuid.New(), TokenRefresh)
	require.NoError(t, err)

	// A refresh token must never pass as an access token: the secrets
	// differ, so verification fails at the signature.
	_, err = svc.VerifyToken(refresh, TokenAccess)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestVerifyTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	cfg.AccessExpiresIn = -1
	svc := NewAuthService(new(mockUserRepo), cfg)

	token, err := svc.IssueToken(uuid.New(), TokenAccess)
	require.NoError(t, err)

	_, err = svc.VerifyToken(token, TokenAccess)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	assert.Contains(t, err.Error(), "token expired")
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc := NewAuthService(new(mockUserRepo), testJWTConfig())

	_, err := svc.VerifyToken("not-a-token", TokenAccess)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
	assert.Contains(t, err.Error(), "malformed token")
}

func TestRegister(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())

	created := &models.User{ID: uuid.New(), Name: "Amira", Email: "amira@example.com", Role: models.RoleUser}
	repo.On("GetByEmail", mock.Anything, "amira@example.com").Return(nil, repository.ErrNotFound)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		// The plaintext password never reaches the repository.
		return u.Email == "amira@example.com" && u.PasswordHash != "s3cret99" &&
			CheckPassword("s3cret99", u.PasswordHash) && u.Role == models.RoleUser
	})).Return(created, nil)

	user, tokens, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Amira",
		Email:    "amira@example.com",
		Password: "s3cret99",
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
	repo.AssertExpectations(t)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())

	existing := &models.User{ID: uuid.New(), Email: "amira@example.com"}
	repo.On("GetByEmail", mock.Anything, "amira@example.com").Return(existing, nil)

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{
		Name:     "Amira",
		Email:    "amira@example.com",
		Password: "s3cret99",
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestRegisterInvalidRequest(t *testing.T) {
	svc := NewAuthService(new(mockUserRepo), testJWTConfig())

	_, _, err := svc.Register(context.Background(), models.RegisterRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	details := apperr.DetailsOf(err)
	assert.NotEmpty(t, details)
}

func TestLogin(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())

	hash, err := HashPassword("s3cret99")
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Email: "amira@example.com", PasswordHash: hash}
	repo.On("GetByEmail", mock.Anything, "amira@example.com").Return(stored, nil)

	user, tokens, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "amira@example.com",
		Password: "s3cret99",
	})
	require.NoError(t, err)
	assert.Equal(t, stored.ID, user.ID)
	assert.NotEmpty(t, tokens.AccessToken)
}

func TestLoginInvalidCredentials(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())

	hash, err := HashPassword("s3cret99")
	require.NoError(t, err)
	stored := &models.User{ID: uuid.New(), Email: "amira@example.com", PasswordHash: hash}
	repo.On("GetByEmail", mock.Anything, "amira@example.com").Return(stored, nil)
	repo.On("GetByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrNotFound)

	// Wrong password and unknown account produce the same message so
	// the endpoint does not leak which emails exist.
	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "amira@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	wrongPass := err.Error()

	_, _, err = svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "wrong-pass"})
	require.Error(t, err)
	assert.Equal(t, wrongPass, err.Error())
	assert.True(t, apperr.Is(err, apperr.KindAuthentication))
}

func TestRefresh(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())
	userID := uuid.New()

	repo.On("GetByID", mock.Anything, userID).Return(&models.User{ID: userID}, nil)

	refresh, err := svc.IssueToken(userID, TokenRefresh)
	require.NoError(t, err)

	tokens, err := svc.Refresh(context.Background(), refresh)
	require.NoError(t, err)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)
}

func rawPatch(t *testing.T, fields map[string]any) map[string]json.RawMessage {
	t.Helper()
	patch := make(map[string]json.RawMessage, len(fields))
	for k, v := range fields {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		patch[k] = data
	}
	return patch
}

func TestUpdateProfile(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())
	user := &models.User{ID: uuid.New(), Name: "Amira", Email: "amira@example.com"}

	repo.On("Update", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Name == "Amira B" && u.Email == "amira@example.com"
	})).Return(&models.User{ID: user.ID, Name: "Amira B", Email: user.Email}, nil)

	updated, err := svc.UpdateProfile(context.Background(), user, rawPatch(t, map[string]any{
		"name": "Amira B",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Amira B", updated.Name)
}

func TestUpdateProfileRejectsUnknownField(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())
	user := &models.User{ID: uuid.New(), Name: "Amira", Email: "amira@example.com"}

	// One bad key rejects the whole patch; the valid name change must
	// not be applied.
	_, err := svc.UpdateProfile(context.Background(), user, rawPatch(t, map[string]any{
		"name": "Amira B",
		"role": "admin",
	}))
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfilePassword(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewAuthService(repo, testJWTConfig())
	user := &models.User{ID: uuid.New(), Name: "Amira", Email: "amira@example.com"}

	repo.On("Update", mock.Anything, mock.Anything).Return(user, nil)
	repo.On("UpdatePassword", mock.Anything, user.ID, mock.MatchedBy(func(hash string) bool {
		return CheckPassword("newpass99", hash)
	})).Return(nil)

	_, err := svc.UpdateProfile(context.Background(), user, rawPatch(t, map[string]any{
		"password": "newpass99",
	}))
	require.NoError(t, err)
	repo.AssertExpectations(t)
}
