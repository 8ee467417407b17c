package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/service"
)

// CatalogHandler serves the public storefront page data.
type CatalogHandler struct {
	catalog *service.CatalogService
	log     zerolog.Logger
}

// NewCatalogHandler constructs a CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService, log zerolog.Logger) *CatalogHandler {
	if catalog == nil {
		panic("nil catalog service passed to NewCatalogHandler")
	}
	return &CatalogHandler{catalog: catalog, log: log}
}

type catalogItemResponse struct {
	ID              uint64 `json:"id"`
	Type            string `json:"type"`
	Name            string `json:"name"`
	UnitPrice       string `json:"unit_price"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	StockQuantity   *int   `json:"stock_quantity,omitempty"`
}

// Storefront handles GET /v1/sellers/:username.  It answers with the
// seller's display data and the active items; stock shows the live count
// so the page can grey out sold-out products.
func (h *CatalogHandler) Storefront(c echo.Context) error {
	username := c.Param("username")
	if username == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "seller username is required"})
	}

	seller, items, err := h.catalog.Storefront(c.Request().Context(), username)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]catalogItemResponse, 0, len(items))
	for _, it := range items {
		resp := catalogItemResponse{
			ID:            it.ID,
			Type:          it.Type,
			Name:          it.Name,
			UnitPrice:     it.UnitPrice.StringFixed(2),
			StockQuantity: it.StockQuantity,
		}
		if it.Type == model.ItemTypeService {
			resp.DurationMinutes = it.DurationMinutes
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"seller": echo.Map{
			"id":           seller.ID,
			"username":     seller.Username,
			"display_name": seller.DisplayName,
		},
		"items": out,
	})
}
