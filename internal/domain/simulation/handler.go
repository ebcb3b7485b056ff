package simulation

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/attendsim/attendsim/internal/platform/risk"
)

// Handler exposes the clock, cursor, manual actions and the raw risk
// prediction endpoint.
type Handler struct {
	engine   *Engine
	provider risk.Provider
}

func NewHandler(engine *Engine, provider risk.Provider) *Handler {
	return &Handler{engine: engine, provider: provider}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/health", h.Health)
	g.POST("/predict", h.Predict)
	g.POST("/simulate/advance", h.Advance)
	g.GET("/simulate/status", h.Status)
	g.POST("/simulate/tick_today", h.Tick)
	g.POST("/actions/send_sms", h.SendSMS)
	g.POST("/actions/call_now", h.CallNow)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"ok":           true,
		"todayIndex":   h.engine.Today(),
		"startDateISO": h.engine.StartDateISO(),
		"todayDateISO": h.engine.TodayDateISO(),
	})
}

type predictRequest struct {
	Features map[string]any `json:"features"`
}

// Predict scores a raw feature map without touching any appointment.
func (h *Handler) Predict(c echo.Context) error {
	var req predictRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Features == nil {
		req.Features = map[string]any{}
	}
	p, err := h.provider.Predict(c.Request().Context(), req.Features)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "prediction failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"risk": risk.Round3(p)})
}

type advanceRequest struct {
	ToDate     *string `json:"toDate"`
	ToDayIndex *int    `json:"toDayIndex"`
}

// Advance moves the simulation forward one day. An explicit target, by
// date or index, is accepted only when it is exactly tomorrow.
func (h *Handler) Advance(c echo.Context) error {
	var req advanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	var target *int
	if req.ToDate != nil {
		d, err := h.engine.DayIndexForDate(*req.ToDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "toDate must be YYYY-MM-DD")
		}
		target = &d
	}
	if req.ToDayIndex != nil {
		if target != nil && *target != *req.ToDayIndex {
			return echo.NewHTTPError(http.StatusBadRequest, "toDate and toDayIndex disagree")
		}
		target = req.ToDayIndex
	}

	res, err := h.engine.Advance(c.Request().Context(), target)
	if err != nil {
		if errors.Is(err, ErrAdvanceRestricted) {
			return echo.NewHTTPError(http.StatusBadRequest, "Only +1 day advance is allowed")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "advance failed")
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) Status(c echo.Context) error {
	st, err := h.engine.Status(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "status failed")
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) Tick(c echo.Context) error {
	res, err := h.engine.Tick(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "tick failed")
	}
	return c.JSON(http.StatusOK, res)
}

type actionRequest struct {
	AppointmentID string `json:"appointment_id"`
	Template      string `json:"template"`
}

func (h *Handler) SendSMS(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.engine.SendSMS(c.Request().Context(), id, req.Template); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "send failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) CallNow(c echo.Context) error {
	var req actionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	if err := h.engine.CallNow(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "call failed")
	}
	return c.JSON(http.StatusOK, map[string]any{"ok": true})
}
