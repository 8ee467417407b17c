// Package middleware contains reusable HTTP middleware: seller
// authentication, Redis-backed rate limiting and response caching.
package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SellerAuth returns a middleware that validates a Bearer access token
// issued to a seller and injects the seller's numeric ID into the request
// context under "seller_id".  The subject claim carries the seller ID.
// Tokens are HS256; any other signing method is rejected.
func SellerAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.ErrUnauthorized
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sellerID, ok := sellerIDClaim(claims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			c.Set("seller_id", sellerID)
			return next(c)
		}
	}
}

// sellerIDClaim reads the seller ID from the subject claim, falling back
// to an explicit seller_id claim.  JSON numbers arrive as float64.
func sellerIDClaim(claims jwt.MapClaims) (uint64, bool) {
	for _, key := range []string{"sub", "seller_id"} {
		switch v := claims[key].(type) {
		case string:
			if n, err := strconv.ParseUint(v, 10, 64); err == nil && n > 0 {
				return n, true
			}
		case float64:
			if v > 0 {
				return uint64(v), true
			}
		}
	}
	return 0, false
}
