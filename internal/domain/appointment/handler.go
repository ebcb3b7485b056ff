package appointment

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SimClock is the slice of the simulation engine the appointment
// endpoints need: the current day, date resolution, and the idempotent
// live-risk refresh that read paths trigger when showing today.
type SimClock interface {
	Today() int
	DayIndexForDate(date string) (int, error)
	RefreshToday()
}

type Handler struct {
	svc   *Service
	clock SimClock
}

func NewHandler(svc *Service, clock SimClock) *Handler {
	return &Handler{svc: svc, clock: clock}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/appointments", h.List)
	api.GET("/appointments/:id", h.Get)
}

func (h *Handler) List(c echo.Context) error {
	day := h.clock.Today()
	if date := c.QueryParam("date"); date != "" {
		d, err := h.clock.DayIndexForDate(date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		day = d
	} else if raw := c.QueryParam("dayIndex"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid dayIndex")
		}
		day = d
	}

	if day == h.clock.Today() {
		h.clock.RefreshToday()
	}

	items, err := h.svc.ListDay(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	a, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "appointment not found")
	}
	return c.JSON(http.StatusOK, a)
}
