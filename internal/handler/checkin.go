package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/tracewell/venuetrace/internal/config"
	"github.com/tracewell/venuetrace/internal/middleware"
	"github.com/tracewell/venuetrace/internal/queue"
	"github.com/tracewell/venuetrace/internal/repository"
	queue_publisher "github.com/tracewell/venuetrace/internal/service"
)

// CheckInHandler records venue check-ins and serves the owner's history.
// Publish fans each recorded check-in out to the broker; it is replaceable
// so tests run without a broker.
type CheckInHandler struct {
	Cfg      config.Config
	CheckIns *repository.CheckInRepo
	Publish  func(ctx context.Context, event queue.CheckInRecordedEvent) error
}

func NewCheckInHandler(cfg config.Config, checkIns *repository.CheckInRepo) *CheckInHandler {
	return &CheckInHandler{
		Cfg:      cfg,
		CheckIns: checkIns,
		Publish:  queue_publisher.PublishCheckInRecorded,
	}
}

// CheckIn handles POST /users/check_in.  The owner is always the session's
// authenticated username; the validation gate has already rejected any
// client-supplied owner field via the closed field set.
func (h *CheckInHandler) CheckIn(c echo.Context) error {
	snap := middleware.CurrentSession(c)
	if snap == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	code := middleware.FormString(c, "check_in")
	date := middleware.FormString(c, "date")
	timeOfDay := middleware.FormString(c, "time")

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.CheckIns.Insert(ctx, code, date, timeOfDay, snap.Username); err != nil {
		return storeError(c, h.Cfg, err, "record check-in failed")
	}

	if h.Publish != nil {
		event := queue.CheckInRecordedEvent{
			Username:   snap.Username,
			VenueCode:  code,
			Date:       date,
			Time:       timeOfDay,
			RecordedAt: time.Now().UTC().Format(time.RFC3339),
		}
		// Fan-out is best-effort; a broker outage must not fail the check-in.
		go func() {
			pubCtx, pubCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer pubCancel()
			_ = h.Publish(pubCtx, event)
		}()
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "check-in recorded"})
}

// History handles POST /users/history, returning the caller's check-ins
// newest first.
func (h *CheckInHandler) History(c echo.Context) error {
	snap := middleware.CurrentSession(c)
	if snap == nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	records, err := h.CheckIns.ListByUsername(ctx, snap.Username)
	if err != nil {
		return storeError(c, h.Cfg, err, "list check-ins failed")
	}

	out := make([]echo.Map, 0, len(records))
	for _, r := range records {
		out = append(out, echo.Map{
			"check_in_code": r.Code,
			"date_":         r.Date,
			"time_":         r.Time,
		})
	}
	return c.JSON(http.StatusOK, out)
}
