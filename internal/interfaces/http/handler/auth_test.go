package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	identityapp "github.com/lookupdesk/backend/internal/application/identity"
	"github.com/lookupdesk/backend/internal/domain/identity"
	"github.com/lookupdesk/backend/internal/infrastructure/auth"
	"github.com/lookupdesk/backend/internal/infrastructure/config"
	"github.com/lookupdesk/backend/internal/interfaces/http/middleware"
)

func testJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-32-characters",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
	})
}

func newAuthTestStack(userRepo *MockUserRepository) (*gin.Engine, *auth.JWTService) {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	jwtService := testJWTService()
	publisher := new(MockEventPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	authService := identityapp.NewAuthService(
		userRepo,
		jwtService,
		auth.NewInMemoryTokenBlacklist(),
		publisher,
		zap.NewNop(),
	)
	h := NewAuthHandler(authService)

	r := gin.New()
	authGroup := r.Group("/api/v1/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/refresh", h.RefreshToken)
	}
	protected := r.Group("/api/v1/auth")
	protected.Use(middleware.JWTAuthMiddleware(jwtService))
	{
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.GetCurrentUser)
	}
	return r, jwtService
}

func activeTestUser(t *testing.T) *identity.User {
	t.Helper()
	user, err := identity.NewUser("rahim@example.com", "Rahim Uddin", "01712345678", "secret123", identity.RoleCustomer)
	require.NoError(t, err)
	return user
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		require.NoError(t, err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func loginTestUser(t *testing.T, r *gin.Engine) (accessToken, refreshToken string) {
	t.Helper()
	w := postJSON(t, r, "/api/v1/auth/login", LoginRequest{
		Email:    "rahim@example.com",
		Password: "secret123",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data LoginResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Token.AccessToken, resp.Data.Token.RefreshToken
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Run("creates a customer account", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "karim@example.com").Return(false, nil)
		userRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		r, _ := newAuthTestStack(userRepo)
		w := postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
			Email:    "karim@example.com",
			Name:     "Karim",
			Password: "secret123",
		}, "")

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), "karim@example.com")
		assert.Contains(t, w.Body.String(), `"role":"customer"`)
		userRepo.AssertExpectations(t)
	})

	t.Run("duplicate email is a conflict", func(t *testing.T) {
		userRepo := new(MockUserRepository)
		userRepo.On("ExistsByEmail", mock.Anything, "rahim@example.com").Return(true, nil)

		r, _ := newAuthTestStack(userRepo)
		w := postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
			Email:    "rahim@example.com",
			Name:     "Rahim",
			Password: "secret123",
		}, "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "EMAIL_TAKEN")
	})

	t.Run("invalid payload fails validation", func(t *testing.T) {
		r, _ := newAuthTestStack(new(MockUserRepository))
		w := postJSON(t, r, "/api/v1/auth/register", RegisterRequest{
			Email: "not-an-email",
		}, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR")
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Run("valid credentials issue a token pair", func(t *testing.T) {
		user := activeTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "rahim@example.com").Return(user, nil)
		userRepo.On("Update", mock.Anything, user).Return(nil)

		r, _ := newAuthTestStack(userRepo)
		accessToken, refreshToken := loginTestUser(t, r)

		assert.NotEmpty(t, accessToken)
		assert.NotEmpty(t, refreshToken)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		user := activeTestUser(t)
		userRepo := new(MockUserRepository)
		userRepo.On("FindByEmail", mock.Anything, "rahim@example.com").Return(user, nil)

		r, _ := newAuthTestStack(userRepo)
		w := postJSON(t, r, "/api/v1/auth/login", LoginRequest{
			Email:    "rahim@example.com",
			Password: "wrong-password",
		}, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_CREDENTIALS")
	})
}

func TestAuthHandlerRefreshToken(t *testing.T) {
	user := activeTestUser(t)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByEmail", mock.Anything, "rahim@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	r, _ := newAuthTestStack(userRepo)
	_, refreshToken := loginTestUser(t, r)

	w := postJSON(t, r, "/api/v1/auth/refresh", RefreshTokenRequest{
		RefreshToken: refreshToken,
	}, "")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data RefreshTokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data.Token.AccessToken)
}

func TestAuthHandlerLogout(t *testing.T) {
	user := activeTestUser(t)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByEmail", mock.Anything, "rahim@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)

	r, _ := newAuthTestStack(userRepo)
	accessToken, _ := loginTestUser(t, r)

	w := postJSON(t, r, "/api/v1/auth/logout", nil, accessToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully")

	t.Run("without token is unauthorized", func(t *testing.T) {
		w := postJSON(t, r, "/api/v1/auth/logout", nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerGetCurrentUser(t *testing.T) {
	user := activeTestUser(t)
	userRepo := new(MockUserRepository)
	userRepo.On("FindByEmail", mock.Anything, "rahim@example.com").Return(user, nil)
	userRepo.On("Update", mock.Anything, user).Return(nil)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	r, _ := newAuthTestStack(userRepo)
	accessToken, _ := loginTestUser(t, r)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rahim@example.com")
	assert.Contains(t, w.Body.String(), "Rahim Uddin")
}
