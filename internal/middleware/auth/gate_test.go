package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vtzdude/Music-library/internal/models"
	"github.com/vtzdude/Music-library/internal/repo"
	"github.com/vtzdude/Music-library/internal/session"
	"github.com/vtzdude/Music-library/internal/tokens"
)

type gateEnv struct {
	e        *echo.Echo
	gate     *Gate
	tokens   *tokens.TokenService
	sessions *session.Service
}

func newGateEnv(t *testing.T) *gateEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Session{}))

	tokenSvc := &tokens.TokenService{Secret: []byte("test-jwt-secret"), Expiry: 15 * time.Minute}
	sessionSvc := &session.Service{Repo: &repo.GormRepo{DB: db}, Cap: 5}

	return &gateEnv{
		e:        echo.New(),
		gate:     NewGate(tokenSvc, sessionSvc),
		tokens:   tokenSvc,
		sessions: sessionSvc,
	}
}

// loginAs mints a token and records a matching live session, the way the
// login flow does.
func (env *gateEnv) loginAs(t *testing.T, role string) (uuid.UUID, string) {
	t.Helper()

	userID := uuid.New()
	token, _, err := env.tokens.CreateToken(userID.String(), role)
	require.NoError(t, err)
	_, err = env.sessions.CreateSession(context.Background(), userID, token)
	require.NoError(t, err)
	return userID, token
}

func (env *gateEnv) do(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	handler := mw(func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{
			"user_id": UserID(c),
			"role":    Role(c),
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	require.NoError(t, handler(c))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func requireRejection(t *testing.T, rec *httptest.ResponseRecorder, body map[string]any, status int) {
	t.Helper()
	assert.Equal(t, status, rec.Code)
	assert.Equal(t, float64(status), body["status"])
	assert.Equal(t, true, body["error"])
	assert.NotEmpty(t, body["message"])
}

func TestGate_MissingToken_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	rec, body := env.do(t, env.gate.RequireAuth, "")
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

func TestGate_MalformedHeader_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	rec, body := env.do(t, env.gate.RequireAuth, "Token abc")
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

func TestGate_InvalidToken_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	rec, body := env.do(t, env.gate.RequireAuth, "Bearer not-a-valid-jwt")
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

func TestGate_ExpiredToken_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	userID := uuid.New()
	token, _, err := env.tokens.CreateTokenWithExpiry(userID.String(), models.RoleAdmin, -time.Minute)
	require.NoError(t, err)
	_, err = env.sessions.CreateSession(context.Background(), userID, token)
	require.NoError(t, err)

	rec, body := env.do(t, env.gate.RequireAuth, "Bearer "+token)
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

// A structurally valid token with no live session must be rejected: the
// session check is mandatory, not short-circuited by signature success.
func TestGate_ValidTokenWithoutSession_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	token, _, err := env.tokens.CreateToken(uuid.NewString(), models.RoleAdmin)
	require.NoError(t, err)

	rec, body := env.do(t, env.gate.RequireAuth, "Bearer "+token)
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

func TestGate_LoggedOutToken_Unauthorized(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	userID, token := env.loginAs(t, models.RoleViewer)

	rec, _ := env.do(t, env.gate.RequireAuth, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)

	require.True(t, env.sessions.DeleteSession(context.Background(), userID, token))

	rec, body := env.do(t, env.gate.RequireAuth, "Bearer "+token)
	requireRejection(t, rec, body, http.StatusUnauthorized)
}

func TestGate_LiveSession_AttachesIdentity(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	userID, token := env.loginAs(t, models.RoleEditor)

	rec, body := env.do(t, env.gate.RequireAuth, "Bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID.String(), body["user_id"])
	assert.Equal(t, models.RoleEditor, body["role"])
}

func TestGate_RoleAllowList(t *testing.T) {
	t.Parallel()

	env := newGateEnv(t)
	mw := env.gate.RequireRoles(models.RoleAdmin, models.RoleEditor)

	_, viewerToken := env.loginAs(t, models.RoleViewer)
	rec, body := env.do(t, mw, "Bearer "+viewerToken)
	requireRejection(t, rec, body, http.StatusForbidden)

	_, editorToken := env.loginAs(t, models.RoleEditor)
	rec, _ = env.do(t, mw, "Bearer "+editorToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	_, adminToken := env.loginAs(t, models.RoleAdmin)
	rec, _ = env.do(t, mw, "Bearer "+adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)
}
