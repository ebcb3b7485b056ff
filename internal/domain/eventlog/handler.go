package eventlog

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Clock resolves calendar dates against the simulated timeline.
type Clock interface {
	DayIndexForDate(dateISO string) (int, error)
}

type Handler struct {
	service *Service
	clock   Clock
}

func NewHandler(service *Service, clock Clock) *Handler {
	return &Handler{service: service, clock: clock}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/logs", h.List)
}

// List returns all comms and outcome events for appointments on the
// requested date, oldest first.
func (h *Handler) List(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date required")
	}
	day, err := h.clock.DayIndexForDate(date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid date")
	}
	entries, err := h.service.ListForDay(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list logs")
	}
	if entries == nil {
		entries = []*Entry{}
	}
	return c.JSON(http.StatusOK, entries)
}
