package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const serviceName = "cobranca-bot"

func Health() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":    "OK",
			"service":   serviceName,
			"timestamp": time.Now().UnixMilli(),
		})
	}
}
