package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/service"
)

// SlotHandler serves the public availability listing.
type SlotHandler struct {
	slots *service.SlotService
	log   zerolog.Logger
}

// NewSlotHandler constructs a SlotHandler.
func NewSlotHandler(slots *service.SlotService, log zerolog.Logger) *SlotHandler {
	if slots == nil {
		panic("nil slot service passed to NewSlotHandler")
	}
	return &SlotHandler{slots: slots, log: log}
}

type slotResponse struct {
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	DisplayStart string `json:"display_start"`
	DisplayEnd   string `json:"display_end"`
}

// ListSlots handles GET /v1/services/:id/slots?date=YYYY-MM-DD.  A closed
// or fully booked day answers 200 with an empty list; only an unknown or
// non-service item is a 404.
func (h *SlotHandler) ListSlots(c echo.Context) error {
	serviceID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid service id"})
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "date query parameter is required"})
	}

	slots, err := h.slots.ListAvailableSlots(c.Request().Context(), serviceID, date)
	if err != nil {
		return respondError(c, h.log, err)
	}

	out := make([]slotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, slotResponse{
			StartsAt:     formatTime(s.StartsAt),
			EndsAt:       formatTime(s.EndsAt),
			DisplayStart: s.DisplayStart,
			DisplayEnd:   s.DisplayEnd,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "slots": out})
}
