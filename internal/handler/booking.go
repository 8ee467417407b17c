package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/service"
)

// BookingHandler serves the public booking endpoints.  The customer's
// phone number doubles as the credential for reads and cancellation.
type BookingHandler struct {
	bookings *service.BookingLedger
	log      zerolog.Logger
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingLedger, log zerolog.Logger) *BookingHandler {
	if bookings == nil {
		panic("nil booking ledger passed to NewBookingHandler")
	}
	return &BookingHandler{bookings: bookings, log: log}
}

type bookingResponse struct {
	ID                      string `json:"id"`
	ServiceID               uint64 `json:"service_id"`
	StartsAt                string `json:"starts_at"`
	EndsAt                  string `json:"ends_at"`
	Status                  string `json:"status"`
	CustomerName            string `json:"customer_name"`
	CancellationWindowHours int    `json:"cancellation_window_hours"`
	CreatedAt               string `json:"created_at"`
}

func toBookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{
		ID:                      b.ID,
		ServiceID:               b.ServiceID,
		StartsAt:                formatTime(b.StartsAt),
		EndsAt:                  formatTime(b.EndsAt),
		Status:                  b.Status,
		CustomerName:            b.Customer.Name,
		CancellationWindowHours: b.CancellationWindowHours,
		CreatedAt:               formatTime(b.CreatedAt),
	}
}

// Create handles POST /v1/bookings.  The start instant arrives as RFC3339;
// the end is derived server-side from the service duration.  A lost slot
// race answers 409.
func (h *BookingHandler) Create(c echo.Context) error {
	var body struct {
		ServiceID uint64       `json:"service_id"`
		StartsAt  string       `json:"starts_at"`
		Customer  customerBody `json:"customer"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.ServiceID == 0 {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "service_id is required"})
	}
	startsAt, err := time.Parse(time.RFC3339, body.StartsAt)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "starts_at must be RFC3339"})
	}

	booking, err := h.bookings.CreateBooking(c.Request().Context(), body.ServiceID, startsAt, body.Customer.toModel())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(booking))
}

// Cancel handles POST /v1/bookings/:id/cancel.  The body carries the
// customer's phone; a mismatch reads as 404.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	var body struct {
		Phone string `json:"phone"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.Phone == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "phone is required"})
	}

	booking, err := h.bookings.CancelByCustomer(c.Request().Context(), id, body.Phone)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}

// Get handles GET /v1/bookings/:id?phone=.
func (h *BookingHandler) Get(c echo.Context) error {
	id := c.Param("id")
	phone := c.QueryParam("phone")
	if phone == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "phone query parameter is required"})
	}

	booking, err := h.bookings.GetForCustomer(c.Request().Context(), id, phone)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(booking))
}
