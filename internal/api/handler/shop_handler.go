package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/learnquest/gamification-system/internal/core/domain"
	"github.com/learnquest/gamification-system/internal/core/ports"
)

// ShopHandler handles the shop catalog, purchases, and the inventory view.
type ShopHandler struct {
	catalog ports.CatalogService
	ledger  ports.LedgerService
}

func NewShopHandler(catalog ports.CatalogService, ledger ports.LedgerService) *ShopHandler {
	return &ShopHandler{catalog: catalog, ledger: ledger}
}

type buyRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type purchaseResponse struct {
	ItemID       string `json:"item_id"`
	ItemName     string `json:"item_name"`
	Price        int64  `json:"price"`
	NewBalance   int64  `json:"new_balance"`
	AlreadyOwned bool   `json:"already_owned"`
	AcquiredAt   string `json:"acquired_at"`
}

type inventoryEntryResponse struct {
	Item       *domain.Item `json:"item"`
	Quantity   int          `json:"quantity"`
	AcquiredAt string       `json:"acquired_at"`
}

type createItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Price       int64  `json:"price" validate:"gte=0"`
	Category    string `json:"category" validate:"required,oneof=cosmetic consumable"`
	Icon        string `json:"icon"`
}

// List handles GET /v1/shop, the full catalog ordered by price ascending.
//
// @Summary      List shop items
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Item
// @Failure      401  {object}  errorResponse
// @Router       /v1/shop [get]
func (h *ShopHandler) List(c echo.Context) error {
	items, err := h.catalog.ListItems(c.Request().Context())
	if err != nil {
		return err
	}
	if items == nil {
		items = []*domain.Item{}
	}
	return c.JSON(http.StatusOK, items)
}

// Buy handles POST /v1/shop/buy. Buying an owned cosmetic again is an
// idempotent replay: 200 with already_owned=true and no debit.
//
// @Summary      Purchase a shop item
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      buyRequest  true  "Item to purchase"
// @Success      200   {object}  purchaseResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /v1/shop/buy [post]
func (h *ShopHandler) Buy(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	var req buyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	result, err := h.ledger.PurchaseItem(c.Request().Context(), userID, req.ItemID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, purchaseResponse{
		ItemID:       result.ItemID,
		ItemName:     result.ItemName,
		Price:        result.Price,
		NewBalance:   result.NewBalance,
		AlreadyOwned: result.AlreadyOwned,
		AcquiredAt:   result.AcquiredAt.UTC().Format(time.RFC3339),
	})
}

// Inventory handles GET /v1/inventory, the caller's owned items joined with
// catalog data.
//
// @Summary      List owned items
// @Tags         shop
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   inventoryEntryResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/inventory [get]
func (h *ShopHandler) Inventory(c echo.Context) error {
	userID, _, err := ctxClaims(c)
	if err != nil {
		return err
	}

	entries, err := h.ledger.Inventory(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	out := make([]inventoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, inventoryEntryResponse{
			Item:       e.Item,
			Quantity:   e.Quantity,
			AcquiredAt: e.AcquiredAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// CreateItem handles POST /v1/admin/items.
//
// @Summary      Add a shop item (admin only)
// @Tags         shop
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createItemRequest  true  "Item details"
// @Success      201   {object}  domain.Item
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/admin/items [post]
func (h *ShopHandler) CreateItem(c echo.Context) error {
	var req createItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	item, err := h.catalog.CreateItem(c.Request().Context(), ports.CreateItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Icon:        req.Icon,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, item)
}
