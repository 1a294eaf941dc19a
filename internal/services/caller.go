package services

import "strings"

// Caller is the authenticated shopper as read from the bearer token.
type Caller struct {
	UserID string
	Email  string
	Role   string
}

func (c Caller) IsAdmin() bool { return c.Role == "admin" }

func sameEmail(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	return a != "" && strings.EqualFold(a, b)
}
