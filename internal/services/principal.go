package services

import "strings"

// Principal is the caller of an operation. It is passed explicitly into
// every service call instead of being read from ambient request state.
type Principal struct {
	UserID    string `json:"user_id"`
	SiteAdmin bool   `json:"site_admin"`
}

func (p Principal) Authenticated() bool {
	return strings.TrimSpace(p.UserID) != ""
}
