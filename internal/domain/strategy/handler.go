package strategy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/strategies", h.List)
	api.POST("/strategies", h.Create)
	api.PATCH("/strategies/:id", h.Patch)
}

func (h *Handler) List(c echo.Context) error {
	items, err := h.svc.List(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

// createRequest uses pointers for the ab block so missing fields can be
// told apart from zero values when validating the payload.
type createRequest struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	IsDefault bool     `json:"is_default"`
	Segment   *Segment `json:"segment"`
	AB        *struct {
		Split *float64       `json:"split"`
		A     *VariantConfig `json:"A"`
		B     *VariantConfig `json:"B"`
	} `json:"ab"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.AB == nil || req.AB.A == nil || req.AB.B == nil || req.AB.Split == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "name and ab {A, B, split} are required")
	}

	strat := &Strategy{
		ID:        req.ID,
		Name:      req.Name,
		IsDefault: req.IsDefault,
		Segment:   req.Segment,
		AB: ABConfig{
			Split: *req.AB.Split,
			A:     *req.AB.A,
			B:     *req.AB.B,
		},
	}
	if err := h.svc.Create(c.Request().Context(), strat); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, strat)
}

func (h *Handler) Patch(c echo.Context) error {
	var req PatchRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	strat, err := h.svc.Patch(c.Request().Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "strategy not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, strat)
}
