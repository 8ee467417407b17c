package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/service"
)

// SellerBookingHandler serves the seller's calendar: listing bookings and
// driving their state machine.
type SellerBookingHandler struct {
	bookings *service.BookingLedger
	log      zerolog.Logger
}

// NewSellerBookingHandler constructs a SellerBookingHandler.
func NewSellerBookingHandler(bookings *service.BookingLedger, log zerolog.Logger) *SellerBookingHandler {
	if bookings == nil {
		panic("nil booking ledger passed to NewSellerBookingHandler")
	}
	return &SellerBookingHandler{bookings: bookings, log: log}
}

// List handles GET /v1/seller/bookings?from=&to=.  Both bounds are
// RFC3339; an omitted range defaults to the next seven days.
func (h *SellerBookingHandler) List(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	now := time.Now().UTC()
	from, to := now, now.Add(7*24*time.Hour)
	if v := c.QueryParam("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "from must be RFC3339"})
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "to must be RFC3339"})
		}
	}
	if !to.After(from) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "to must be after from"})
	}

	bookings, err := h.bookings.ListForSeller(c.Request().Context(), sellerID, from, to)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": out})
}

// UpdateStatus handles POST /v1/seller/bookings/:id/status.  Rejected
// transitions answer 409; a booking on another seller's calendar is 403.
func (h *SellerBookingHandler) UpdateStatus(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id := c.Param("id")
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Status == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "status is required"})
	}

	booking, err := h.bookings.TransitionStatus(c.Request().Context(), sellerID, id, body.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}
