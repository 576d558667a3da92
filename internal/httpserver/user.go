package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/vtzdude/Music-library/internal/logging"
	authmw "github.com/vtzdude/Music-library/internal/middleware/auth"
	"github.com/vtzdude/Music-library/internal/service"
)

const defaultPageLimit = 10

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) Signup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_signup")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("signup_error", "status", 400, "error", err)
		return failResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Signup(ctx, req.Email, req.Password); err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	l.Info("signup_successful")
	return successResponse(c, http.StatusCreated, "user created", nil)
}

func (h *UserHTTP) AddUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_add")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_user_error", "status", 400, "error", err)
		return failResponse(c, http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.AddUser(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	l.Info("add_user_successful", "role", user.Role)
	return successResponse(c, http.StatusCreated, "user created", echo.Map{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
	})
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return failResponse(c, http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	l.Info("login_successful")
	return successResponse(c, http.StatusOK, "login successful", echo.Map{
		"token":      res.Token,
		"expires_at": res.ExpiresAt,
	})
}

func (h *UserHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_logout")

	userID, err := uuid.Parse(authmw.UserID(c))
	if err != nil {
		return failResponse(c, http.StatusUnauthorized, "unauthorized")
	}

	if !h.Svc.Logout(ctx, userID, authmw.Token(c)) {
		l.Error("logout_failed", "status", 400)
		return failResponse(c, http.StatusBadRequest, "could not log out")
	}

	l.Info("logout_successful")
	return successResponse(c, http.StatusOK, "logged out", nil)
}

func (h *UserHTTP) LogoutAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_logout_all")

	userID, err := uuid.Parse(authmw.UserID(c))
	if err != nil {
		return failResponse(c, http.StatusUnauthorized, "unauthorized")
	}

	count, ok := h.Svc.LogoutAll(ctx, userID)
	if !ok {
		l.Error("logout_all_failed", "status", 500)
		return failResponse(c, http.StatusInternalServerError, "could not log out")
	}

	l.Info("logout_all_successful", "sessions", count)
	return successResponse(c, http.StatusOK, "logged out everywhere", echo.Map{
		"sessions_revoked": count,
	})
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	limit := positiveIntQueryDefault(c, "limit", defaultPageLimit)
	offset := intQueryDefault(c, "offset", 0)
	role := c.QueryParam("role")

	users, total, err := h.Svc.ListUsers(ctx, limit, offset, role)
	if err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	return successResponse(c, http.StatusOK, "users retrieved", echo.Map{
		"rows":  users,
		"count": total,
	})
}

func (h *UserHTTP) UpdatePassword(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_update_password")

	userID, err := uuid.Parse(authmw.UserID(c))
	if err != nil {
		return failResponse(c, http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_password_error", "status", 400, "error", err)
		return failResponse(c, http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.UpdatePassword(ctx, userID, req.OldPassword, req.NewPassword); err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	l.Info("password_updated")
	return successResponse(c, http.StatusOK, "password updated", nil)
}

func (h *UserHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return failResponse(c, http.StatusBadRequest, "invalid user id")
	}

	if err := h.Svc.DeleteUser(ctx, id); err != nil {
		return failResponse(c, statusFor(err), err.Error())
	}

	l.Info("user_deleted", "target_id", id.String())
	return successResponse(c, http.StatusOK, "user deleted", nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrActionNotAllowed),
		errors.Is(err, service.ErrPasswordReuse):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUserAlreadyExist):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func intQueryDefault(c echo.Context, name string, def int) int {
	v := c.QueryParam(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// positiveIntQueryDefault is for limits, where zero would silently return no
// rows alongside a non-zero count.
func positiveIntQueryDefault(c echo.Context, name string, def int) int {
	n := intQueryDefault(c, name, def)
	if n <= 0 {
		return def
	}
	return n
}
