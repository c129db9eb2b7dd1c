package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/agencyhub/backend/internal/application/identity"
	"github.com/agencyhub/backend/internal/domain/identity"
	"github.com/agencyhub/backend/internal/domain/shared"
	"github.com/agencyhub/backend/internal/infrastructure/auth"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/interfaces/http/dto"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testPassword = "correct horse battery"

type authFixture struct {
	router    *gin.Engine
	repo      *MockUserRepository
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	repo := new(MockUserRepository)
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-32-characters-long",
		Expiration: time.Hour,
		Issuer:     "agency-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc := appidentity.NewAuthService(repo, jwtService, blacklist, zap.NewNop())
	h := NewAuthHandler(svc, config.CookieConfig{Name: "session", Path: "/", SameSite: "strict"})

	jwtCfg := middleware.DefaultJWTConfig(jwtService)
	jwtCfg.TokenBlacklist = blacklist

	r := gin.New()
	r.POST("/api/v1/auth/login", h.Login)
	protected := r.Group("/api/v1/auth", middleware.JWTAuthMiddlewareWithConfig(jwtCfg))
	protected.POST("/logout", h.Logout)
	protected.GET("/me", h.Me)

	return &authFixture{router: r, repo: repo, jwt: jwtService, blacklist: blacklist}
}

func newTestUser(t *testing.T, role identity.Role) *identity.User {
	t.Helper()
	u, err := identity.NewUser("amal@agency.test", "Amal", testPassword, role)
	require.NoError(t, err)
	return u
}

func bearer(method, path, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("sets an http-only session cookie", func(t *testing.T) {
		f := newAuthFixture(t)
		user := newTestUser(t, identity.RoleSales)
		f.repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		f.repo.On("Save", mock.Anything, user).Return(nil)

		w := doRequest(f.router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": user.Email, "password": testPassword,
		})

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result appidentity.LoginResult
		decodeData(t, w, &result)
		assert.NotEmpty(t, result.Token)
		assert.Equal(t, "sales", result.User.Role)
		assert.NotEmpty(t, result.User.Navigation)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "session", cookies[0].Name)
		assert.Equal(t, result.Token, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		user := newTestUser(t, identity.RoleSales)
		f.repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

		w := doRequest(f.router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": user.Email, "password": "nope",
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)
		assert.Empty(t, w.Result().Cookies())
	})

	t.Run("unknown email answers like a wrong password", func(t *testing.T) {
		f := newAuthFixture(t)
		f.repo.On("FindByEmail", mock.Anything, "ghost@agency.test").Return(nil, shared.ErrNotFound)

		w := doRequest(f.router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "ghost@agency.test", "password": testPassword,
		})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "INVALID_CREDENTIALS", decodeResponse(t, w).Error.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		f := newAuthFixture(t)
		user := newTestUser(t, identity.RoleEmployee)
		user.Deactivate()
		f.repo.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)

		w := doRequest(f.router, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": user.Email, "password": testPassword,
		})

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "ACCOUNT_DEACTIVATED", decodeResponse(t, w).Error.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		f := newAuthFixture(t)
		w := doRequest(f.router, http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "not-an-email"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
		f.repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	f := newAuthFixture(t)
	user := newTestUser(t, identity.RoleManager)
	session, err := f.jwt.Issue(user)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, bearer(http.MethodPost, "/api/v1/auth/logout", session.Token))
	require.Equal(t, http.StatusNoContent, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)

	// the same token is now refused
	w = httptest.NewRecorder()
	f.router.ServeHTTP(w, bearer(http.MethodGet, "/api/v1/auth/me", session.Token))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeTokenRevoked, decodeResponse(t, w).Error.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns profile and navigation", func(t *testing.T) {
		f := newAuthFixture(t)
		user := newTestUser(t, identity.RoleEmployee)
		f.repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		session, err := f.jwt.Issue(user)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, bearer(http.MethodGet, "/api/v1/auth/me", session.Token))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var info appidentity.UserInfo
		decodeData(t, w, &info)
		assert.Equal(t, user.ID, info.ID)
		assert.Equal(t, "employee", info.Role)
		assert.ElementsMatch(t, user.Permissions.Codes(), info.Permissions)
	})

	t.Run("session cookie is accepted", func(t *testing.T) {
		f := newAuthFixture(t)
		user := newTestUser(t, identity.RoleEmployee)
		f.repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		session, err := f.jwt.Issue(user)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: session.Token})
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("no session", func(t *testing.T) {
		f := newAuthFixture(t)
		w := doRequest(f.router, http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
