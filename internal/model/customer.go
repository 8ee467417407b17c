package model

import "strings"

// Customer holds the contact details a customer submits with a booking or
// order.  Customers are not accounts: the phone number doubles as the
// lookup credential for self-service status checks and cancellation.
type Customer struct {
	Name  string // customer display name
	Phone string // digits only after validation
	Email string // optional
	Note  string // optional free-form note to the seller
}

// Validate checks the customer fields and returns a *ValidationError for
// the first violation.  It runs before any transaction opens.
func (c *Customer) Validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if len([]rune(c.Name)) < 2 {
		return &ValidationError{Field: "name", Reason: "must be at least 2 characters"}
	}
	c.Phone = strings.TrimSpace(c.Phone)
	if !validPhone(c.Phone) {
		return &ValidationError{Field: "phone", Reason: "must be 10 to 15 digits"}
	}
	c.Email = strings.TrimSpace(c.Email)
	if c.Email != "" && !validEmail(c.Email) {
		return &ValidationError{Field: "email", Reason: "malformed address"}
	}
	return nil
}

// validPhone accepts 10 to 15 digits with an optional leading plus.
func validPhone(s string) bool {
	if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if len(s) < 10 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// validEmail applies a shape check only: one "@" with a dot somewhere after
// it.  Anything stricter belongs to a confirmation email flow, not here.
func validEmail(s string) bool {
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	dot := strings.LastIndex(s, ".")
	return dot > at+1 && dot < len(s)-1
}
