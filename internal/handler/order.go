package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/service"
)

// OrderHandler serves the public storefront order endpoints.
type OrderHandler struct {
	orders *service.OrderLedger
	log    zerolog.Logger
}

// NewOrderHandler constructs an OrderHandler.
func NewOrderHandler(orders *service.OrderLedger, log zerolog.Logger) *OrderHandler {
	if orders == nil {
		panic("nil order ledger passed to NewOrderHandler")
	}
	return &OrderHandler{orders: orders, log: log}
}

type orderLineBody struct {
	ItemID   uint64 `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type orderLineResponse struct {
	ItemID    uint64 `json:"item_id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	UnitPrice string `json:"unit_price"`
	Quantity  int    `json:"quantity"`
}

type orderResponse struct {
	ID            uint64              `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        string              `json:"status"`
	PaymentStatus string              `json:"payment_status"`
	Items         []orderLineResponse `json:"items"`
	Subtotal      string              `json:"subtotal"`
	PlatformFee   string              `json:"platform_fee"`
	SellerAmount  string              `json:"seller_amount"`
	TotalAmount   string              `json:"total_amount"`
	Currency      string              `json:"currency"`
	ApprovedAt    *string             `json:"approved_at,omitempty"`
	PaidAt        *string             `json:"paid_at,omitempty"`
	CompletedAt   *string             `json:"completed_at,omitempty"`
	CancelledAt   *string             `json:"cancelled_at,omitempty"`
	CreatedAt     string              `json:"created_at"`
}

func toOrderResponse(o *model.Order) orderResponse {
	lines := make([]orderLineResponse, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, orderLineResponse{
			ItemID:    it.ItemID,
			Name:      it.Name,
			Type:      it.Type,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Quantity:  it.Quantity,
		})
	}
	return orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Items:         lines,
		Subtotal:      o.Subtotal.StringFixed(2),
		PlatformFee:   o.PlatformFee.StringFixed(2),
		SellerAmount:  o.SellerAmount.StringFixed(2),
		TotalAmount:   o.TotalAmount.StringFixed(2),
		Currency:      o.Currency,
		ApprovedAt:    formatTimePtr(o.ApprovedAt),
		PaidAt:        formatTimePtr(o.PaidAt),
		CompletedAt:   formatTimePtr(o.CompletedAt),
		CancelledAt:   formatTimePtr(o.CancelledAt),
		CreatedAt:     formatTime(o.CreatedAt),
	}
}

func toLineRequests(lines []orderLineBody) []service.LineRequest {
	out := make([]service.LineRequest, 0, len(lines))
	for _, ln := range lines {
		out = append(out, service.LineRequest{ItemID: ln.ItemID, Quantity: ln.Quantity})
	}
	return out
}

// Create handles POST /v1/orders: the storefront checkout path.  The
// order enters approved with stock already reserved; insufficient stock
// answers 409 with what is left.
func (h *OrderHandler) Create(c echo.Context) error {
	var body struct {
		SellerID uint64          `json:"seller_id"`
		Customer customerBody    `json:"customer"`
		Items    []orderLineBody `json:"items"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.SellerID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "seller_id is required"})
	}

	order, err := h.orders.CreateOrder(c.Request().Context(), body.SellerID, body.Customer.toModel(),
		toLineRequests(body.Items), service.OrderEntryCheckout)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

// Lookup handles GET /v1/orders/lookup?number=&phone=.  Both parameters
// are required; a mismatch on either reads as 404.
func (h *OrderHandler) Lookup(c echo.Context) error {
	number := c.QueryParam("number")
	phone := c.QueryParam("phone")
	if number == "" || phone == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "number and phone query parameters are required"})
	}

	order, err := h.orders.LookupForCustomer(c.Request().Context(), number, phone)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}
