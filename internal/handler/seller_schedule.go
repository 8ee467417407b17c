package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/service"
)

// ScheduleHandler serves the seller's availability and policy endpoints.
// The acting seller always comes from the JWT context, never from the
// request body.
type ScheduleHandler struct {
	schedule *service.ScheduleService
	log      zerolog.Logger
}

// NewScheduleHandler constructs a ScheduleHandler.
func NewScheduleHandler(schedule *service.ScheduleService, log zerolog.Logger) *ScheduleHandler {
	if schedule == nil {
		panic("nil schedule service passed to NewScheduleHandler")
	}
	return &ScheduleHandler{schedule: schedule, log: log}
}

type ruleResponse struct {
	ID                  uint64 `json:"id"`
	Weekday             int    `json:"weekday"`
	StartLocal          string `json:"start_local"`
	EndLocal            string `json:"end_local"`
	SlotDurationMinutes int    `json:"slot_duration_minutes,omitempty"`
	IsBreak             bool   `json:"is_break"`
}

func toRuleResponse(r *model.AvailabilityRule) ruleResponse {
	return ruleResponse{
		ID:                  r.ID,
		Weekday:             r.Weekday,
		StartLocal:          r.StartLocal,
		EndLocal:            r.EndLocal,
		SlotDurationMinutes: r.SlotDurationMinutes,
		IsBreak:             r.IsBreak,
	}
}

func pathWeekday(c echo.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("weekday"))
	return n, err == nil
}

// GetSchedule handles GET /v1/seller/schedule: all active rules across
// the week, breaks included.
func (h *ScheduleHandler) GetSchedule(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rules, err := h.schedule.Schedule(c.Request().Context(), sellerID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	out := make([]ruleResponse, 0, len(rules))
	for i := range rules {
		out = append(out, toRuleResponse(&rules[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"rules": out})
}

// SetDayWindow handles PUT /v1/seller/schedule/:weekday.  The new window
// replaces the day's previous rules, breaks included.
func (h *ScheduleHandler) SetDayWindow(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	weekday, ok := pathWeekday(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekday"})
	}
	var body struct {
		StartLocal          string `json:"start_local"`
		EndLocal            string `json:"end_local"`
		SlotDurationMinutes int    `json:"slot_duration_minutes"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	rule, err := h.schedule.SetDayWindow(c.Request().Context(), sellerID, weekday,
		body.StartLocal, body.EndLocal, body.SlotDurationMinutes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, toRuleResponse(rule))
}

// AddBreak handles POST /v1/seller/schedule/:weekday/breaks.
func (h *ScheduleHandler) AddBreak(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	weekday, ok := pathWeekday(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekday"})
	}
	var body struct {
		StartLocal string `json:"start_local"`
		EndLocal   string `json:"end_local"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	rule, err := h.schedule.AddBreak(c.Request().Context(), sellerID, weekday, body.StartLocal, body.EndLocal)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, toRuleResponse(rule))
}

// CloseDay handles DELETE /v1/seller/schedule/:weekday.
func (h *ScheduleHandler) CloseDay(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	weekday, ok := pathWeekday(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid weekday"})
	}
	if err := h.schedule.CloseDay(c.Request().Context(), sellerID, weekday); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UpdatePolicy handles PUT /v1/seller/policy.  Existing bookings keep the
// window snapshotted at creation.
func (h *ScheduleHandler) UpdatePolicy(c echo.Context) error {
	sellerID, err := getSellerID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		LeadTimeHours           int `json:"lead_time_hours"`
		CancellationWindowHours int `json:"cancellation_window_hours"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := h.schedule.UpdatePolicy(c.Request().Context(), sellerID, body.LeadTimeHours, body.CancellationWindowHours); err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"lead_time_hours":           body.LeadTimeHours,
		"cancellation_window_hours": body.CancellationWindowHours,
	})
}
