package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/service"
)

// SellerOrderHandler serves the seller's order book: manual order entry,
// listing and state-machine transitions.
type SellerOrderHandler struct {
	orders *service.OrderLedger
	log    zerolog.Logger
}

// NewSellerOrderHandler constructs a SellerOrderHandler.
func NewSellerOrderHandler(orders *service.OrderLedger, log zerolog.Logger) *SellerOrderHandler {
	if orders == nil {
		panic("nil order ledger passed to NewSellerOrderHandler")
	}
	return &SellerOrderHandler{orders: orders, log: log}
}

// Create handles POST /v1/seller/orders: the manual entry path, placed by
// the seller on a customer's behalf.  The order enters awaiting_approval
// with its stock already reserved.
func (h *SellerOrderHandler) Create(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Customer customerBody    `json:"customer"`
		Items    []orderLineBody `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), sellerID, body.Customer.toModel(),
		toLineRequests(body.Items), service.OrderEntryManual)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// List handles GET /v1/seller/orders?status=.
func (h *SellerOrderHandler) List(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orders, err := h.orders.ListForSeller(c.Request().Context(), sellerID, c.QueryParam("status"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out})
}

// UpdateStatus handles POST /v1/seller/orders/:id/status.  Entering
// cancelled or refunded restores the snapshotted stock in the same
// transaction; rejected transitions answer 409.
func (h *SellerOrderHandler) UpdateStatus(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	orderID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status is required"})
	}

	order, err := h.orders.TransitionStatus(c.Request().Context(), sellerID, orderID, body.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}
