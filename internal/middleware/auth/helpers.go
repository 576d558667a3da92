package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
	ctxToken  = "token"
)

func bearerToken(r *http.Request) string {
	header := r.Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func setIdentity(c echo.Context, userID, role, token string) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
	c.Set(ctxToken, token)
}

func UserID(c echo.Context) string {
	v, _ := c.Get(ctxUserID).(string)
	return v
}

func Role(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}

func Token(c echo.Context) string {
	v, _ := c.Get(ctxToken).(string)
	return v
}

// Reject writes the rejection envelope used for every gate decision.
func Reject(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{
		"status":  status,
		"error":   true,
		"message": message,
	})
}
