package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/vtzdude/Music-library/internal/middleware/auth"
	"github.com/vtzdude/Music-library/internal/models"
)

type Deps struct {
	UserHandler *UserHTTP
	Gate        *authmw.Gate
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	user := v1.Group("/user")
	user.POST("/signup", d.UserHandler.Signup)
	user.POST("/login", d.UserHandler.Login)

	user.POST("/logout", d.UserHandler.Logout, d.Gate.RequireAuth)
	user.POST("/logout-all", d.UserHandler.LogoutAll, d.Gate.RequireAuth)
	user.PUT("/update-password", d.UserHandler.UpdatePassword, d.Gate.RequireAuth)

	admin := d.Gate.RequireRoles(models.RoleAdmin)
	user.POST("/add-user", d.UserHandler.AddUser, admin)
	user.GET("", d.UserHandler.ListUsers, admin)
	user.DELETE("/:id", d.UserHandler.DeleteUser, admin)
}
