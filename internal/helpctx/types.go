// Package helpctx tracks "who is looking at what" for the TrendVision help
// engine: the viewer's role, the dashboard page and section in front of them,
// the element they last touched, and a per-session identifier. The tracker is
// the single writer of this state; consumers read snapshots and subscribe to
// change events.
package helpctx

import (
	"fmt"
	"strings"
	"time"
)

// Role is a dashboard persona driving content personalization.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleCISO    Role = "ciso"
	RoleViewer  Role = "viewer"

	// DefaultRole substitutes for missing or invalid role values.
	DefaultRole = RoleAdmin
)

// Roles lists every valid role.
func Roles() []Role {
	return []Role{RoleAdmin, RoleAnalyst, RoleCISO, RoleViewer}
}

// ParseRole validates s against the fixed role set. The boolean reports
// whether s was valid; on failure the default role is returned.
func ParseRole(s string) (Role, bool) {
	role := Role(strings.TrimSpace(strings.ToLower(s)))
	switch role {
	case RoleAdmin, RoleAnalyst, RoleCISO, RoleViewer:
		return role, true
	default:
		return DefaultRole, false
	}
}

// ActiveElement records the element the user most recently interacted with.
// It is overwritten on every interaction, never accumulated.
type ActiveElement struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// Context is a snapshot of the tracked session state.
type Context struct {
	Role           Role           `json:"role"`
	CurrentPage    string         `json:"currentPage"`
	CurrentSection string         `json:"currentSection,omitempty"`
	ActiveElement  *ActiveElement `json:"activeElement,omitempty"`
	SessionID      string         `json:"sessionId"`
	Timestamp      time.Time      `json:"timestamp"`
}

// Key derives the colon-joined content lookup address for this snapshot:
// role:page, or role:page:section when a section is set.
func (c Context) Key() string {
	parts := []string{string(c.Role), c.CurrentPage}
	if c.CurrentSection != "" {
		parts = append(parts, c.CurrentSection)
	}
	return strings.Join(parts, ":")
}

func (c Context) String() string {
	return fmt.Sprintf("Context: %s (%s on %s)", c.Key(), c.Role, c.CurrentPage)
}

// Update describes a partial context mutation. Nil fields are left untouched.
type Update struct {
	Role    *Role
	Page    *string
	Section *string
}

// PageUnknown is the sentinel page identifier when detection finds no match.
const PageUnknown = "unknown"

// DetectPage infers a page identifier by matching the location (a URL path or
// similar) against the known dashboard page fragments.
func DetectPage(location string) string {
	switch {
	case strings.Contains(location, "attack-surface"):
		return "attack-surface"
	case strings.Contains(location, "workbench"):
		return "workbench"
	case strings.Contains(location, "endpoint-inventory"):
		return "endpoint-inventory"
	case strings.Contains(location, "index"):
		return "home"
	default:
		return PageUnknown
	}
}
