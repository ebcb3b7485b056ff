package summary

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/day/summary", h.ByDate)
	g.GET("/day/:dayIndex/summary", h.ByIndex)
}

func (h *Handler) ByDate(c echo.Context) error {
	date := c.QueryParam("date")
	if date == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "date is required (YYYY-MM-DD)")
	}
	day, err := h.service.engine.DayIndexForDate(date)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date must be YYYY-MM-DD")
	}
	return h.respond(c, day)
}

func (h *Handler) ByIndex(c echo.Context) error {
	day, err := strconv.Atoi(c.Param("dayIndex"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "dayIndex must be an integer")
	}
	return h.respond(c, day)
}

func (h *Handler) respond(c echo.Context, day int) error {
	s, err := h.service.SummarizeDay(c.Request().Context(), day)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to summarize day")
	}
	return c.JSON(http.StatusOK, s)
}
