// Package handler contains the HTTP layer.  Handlers bind and validate
// request shapes, call the service layer and translate its typed errors
// into status codes.  Business rules live below; nothing here opens a
// transaction.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vitrinshop/vitrin/internal/model"
	"github.com/vitrinshop/vitrin/internal/repository"
)

// customerBody is the customer block shared by booking and order requests.
type customerBody struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
	Note  string `json:"note"`
}

func (b customerBody) toModel() model.Customer {
	return model.Customer{Name: b.Name, Phone: b.Phone, Email: b.Email, Note: b.Note}
}

// getSellerID extracts the authenticated seller's ID placed in the context
// by the JWT middleware.
func getSellerID(c echo.Context) (uint64, error) {
	v := c.Get("seller_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid seller_id in context")
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// respondError maps service-layer errors onto HTTP responses.  Validation
// failures are 422, lost races and rejected transitions are 409, ownership
// mismatches are 403, missing entities are 404.  Anything unrecognized is
// logged with detail and answered with a generic 500 so internals never
// reach the client.
func respondError(c echo.Context, log zerolog.Logger, err error) error {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": verr.Error(), "field": verr.Field})
	}
	if errors.Is(err, model.ErrInvalidTimeFormat) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	}

	var stockErr *model.InsufficientStockError
	if errors.As(err, &stockErr) {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     stockErr.Error(),
			"item":      stockErr.ItemName,
			"available": stockErr.Available,
		})
	}

	switch {
	case errors.Is(err, model.ErrSlotAlreadyTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": "slot already taken"})
	case errors.Is(err, model.ErrCancellationWindowClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancellation window closed"})
	case errors.Is(err, model.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrSellerNotFound),
		errors.Is(err, repository.ErrItemNotFound),
		errors.Is(err, repository.ErrBookingNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrRuleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	}

	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled service error")
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error, please try again"})
}

func formatTime(t time.Time) string { return t.UTC().Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
