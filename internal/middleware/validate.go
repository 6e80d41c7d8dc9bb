package middleware

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/tracewell/venuetrace/internal/validate"
)

const formKey = "form"

// maxBodyBytes bounds how much request body the gate will read.
const maxBodyBytes = 1 << 20

// ValidateBody returns the pipeline stage that decodes the JSON body,
// rejects any field outside the schema's closed set, then runs the schema's
// rule chains.  Both failure modes are 400s; the handler only ever sees a
// body that passed the gate, retrievable via Form/FormString.
func ValidateBody(s *validate.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes))
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
			}

			body := map[string]any{}
			if len(strings.TrimSpace(string(raw))) > 0 {
				dec := json.NewDecoder(strings.NewReader(string(raw)))
				dec.UseNumber()
				if err := dec.Decode(&body); err != nil {
					return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
				}
			}

			// Unknown fields are rejected before any rule or business
			// logic can observe them.
			if err := s.CheckUnexpected(body); err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
			}

			for k, v := range body {
				if str, ok := v.(string); ok {
					body[k] = strings.TrimSpace(str)
				}
			}

			if errs := s.Validate(body); len(errs) > 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"error":  "validation failed",
					"errors": errs,
				})
			}

			c.Set(formKey, body)
			return next(c)
		}
	}
}

// Form returns the validated body stored by ValidateBody.
func Form(c echo.Context) map[string]any {
	if v := c.Get(formKey); v != nil {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

// FormString returns a string field from the validated body.
func FormString(c echo.Context, name string) string {
	if s, ok := Form(c)[name].(string); ok {
		return s
	}
	return ""
}

// FormNumber returns a numeric field from the validated body.
func FormNumber(c echo.Context, name string) (float64, bool) {
	return validate.Number(Form(c)[name])
}
