package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km0-cafe/restaurant-service/internal/config"
	"github.com/km0-cafe/restaurant-service/internal/db/repository"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/service"
)

// stubUserRepo serves a single fixed account.
type stubUserRepo struct {
	user *models.User
}

func (s *stubUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if s.user != nil && s.user.ID == id {
		return s.user, nil
	}
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) Create(ctx context.Context, user models.User) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) Update(ctx context.Context, user models.User) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUserRepo) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return nil
}

func testAuthService(user *models.User) *service.AuthService {
	return service.NewAuthService(&stubUserRepo{user: user}, config.JWT{
		AccessSecret:     "access-secret",
		RefreshSecret:    "refresh-secret",
		AccessExpiresIn:  1,
		RefreshExpiresIn: 1,
	})
}

func okHandler(t *testing.T, want *models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := GetUser(r.Context())
		require.True(t, ok)
		assert.Equal(t, want.ID, user.ID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthAttachesUser(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleUser}
	auth := testAuthService(user)

	token, err := auth.IssueToken(user.ID, service.TokenAccess)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	Auth(auth)(okHandler(t, user)).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejections(t *testing.T) {
	user := &models.User{ID: uuid.New()}
	auth := testAuthService(user)

	refresh, err := auth.IssueToken(user.ID, service.TokenRefresh)
	require.NoError(t, err)

	deletedAccount := testAuthService(nil)
	orphan, err := deletedAccount.IssueToken(uuid.New(), service.TokenAccess)
	require.NoError(t, err)

	cases := []struct {
		name   string
		svc    *service.AuthService
		header string
	}{
		{"missing header", auth, ""},
		{"not bearer", auth, "Basic dXNlcjpwYXNz"},
		{"empty token", auth, "Bearer "},
		{"garbage token", auth, "Bearer not-a-token"},
		{"refresh token as access", auth, "Bearer " + refresh},
		{"deleted account", deletedAccount, "Bearer " + orphan},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			called := false
			Auth(tc.svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestRequireRole(t *testing.T) {
	cases := []struct {
		role    models.UserRole
		allowed []models.UserRole
		status  int
	}{
		{models.RoleAdmin, []models.UserRole{models.RoleAdmin}, http.StatusOK},
		{models.RoleVerifier, []models.UserRole{models.RoleAdmin, models.RoleVerifier}, http.StatusOK},
		{models.RoleUser, []models.UserRole{models.RoleAdmin}, http.StatusForbidden},
		{models.RoleVerifier, []models.UserRole{models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tc := range cases {
		user := &models.User{ID: uuid.New(), Role: tc.role}
		req := httptest.NewRequest(http.MethodPost, "/api/menu", nil)
		req = req.WithContext(WithUser(req.Context(), user))
		rec := httptest.NewRecorder()

		RequireRole(tc.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(rec, req)

		assert.Equal(t, tc.status, rec.Code, "role %s allowed %v", tc.role, tc.allowed)
	}
}

func TestRequireRoleWithoutPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/menu", nil)
	rec := httptest.NewRecorder()

	RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
