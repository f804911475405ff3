package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SeedFunc loads demo data into the store. Idempotent.
type SeedFunc func(ctx context.Context) error

// AdminHandler handles operational admin endpoints.
type AdminHandler struct {
	seed SeedFunc
}

func NewAdminHandler(seed SeedFunc) *AdminHandler {
	return &AdminHandler{seed: seed}
}

// Seed handles POST /v1/admin/seed. Inserts demo accounts and the starter
// shop catalog; existing rows are left untouched.
//
// @Summary      Seed demo data (admin only)
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/seed [post]
func (h *AdminHandler) Seed(c echo.Context) error {
	if err := h.seed(c.Request().Context()); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "seeded"})
}
