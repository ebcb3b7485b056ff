package deployment

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/deploy", h.Deploy)
}

type deployRequest struct {
	StrategyIDs []string `json:"strategy_ids"`
	TargetDate  *string  `json:"target_date"`
	TargetDay   *int     `json:"target_day"`
}

func (h *Handler) Deploy(c echo.Context) error {
	var req deployRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if len(req.StrategyIDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "strategy_ids required")
	}

	var targetDay int
	switch {
	case req.TargetDate != nil:
		d, err := h.service.clock.DayIndexForDate(*req.TargetDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "target_date must be YYYY-MM-DD")
		}
		targetDay = d
	case req.TargetDay != nil:
		targetDay = *req.TargetDay
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "target_date or target_day required")
	}

	dep, err := h.service.Deploy(c.Request().Context(), targetDay, req.StrategyIDs)
	if err != nil {
		var we *WindowError
		if errors.As(err, &we) {
			return c.JSON(http.StatusBadRequest, map[string]any{
				"error":      "strategy window exceeds available days",
				"max_window": we.MaxWindow,
				"available":  we.Available,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "deploy failed")
	}
	return c.JSON(http.StatusOK, dep)
}
