package httpserver

import "github.com/labstack/echo/v4"

func successResponse(c echo.Context, status int, message string, data interface{}) error {
	return c.JSON(status, echo.Map{
		"status":  status,
		"error":   false,
		"message": message,
		"data":    data,
	})
}

func failResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{
		"status":  status,
		"error":   true,
		"message": message,
	})
}
