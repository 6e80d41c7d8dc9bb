package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/tracewell/venuetrace/internal/config"
)

// storeError translates a repository failure into a 500 response.  The
// client-visible body stays generic; the underlying error is logged and
// only echoed back outside production.
func storeError(c echo.Context, cfg config.Config, err error, msg string) error {
	c.Logger().Errorf("%s: %v", msg, err)
	resp := echo.Map{"error": msg}
	if !cfg.Prod() {
		resp["detail"] = err.Error()
	}
	return c.JSON(http.StatusInternalServerError, resp)
}
