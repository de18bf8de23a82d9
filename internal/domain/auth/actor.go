package auth

import (
	"strings"

	"github.com/google/uuid"
)

// Role is the portal role carried in the bearer token.
type Role string

const (
	// RoleBidang is an operator of an organizational unit; owns and submits datasets.
	RoleBidang Role = "BIDANG"
	// RoleKabid is the head of an organizational unit (first-stage approver).
	RoleKabid Role = "KABID"
	// RolePusdatin is the data center reviewer (final approver).
	RolePusdatin Role = "PUSDATIN"
)

func (r Role) Valid() bool {
	switch r {
	case RoleBidang, RoleKabid, RolePusdatin:
		return true
	}
	return false
}

func ParseRole(raw string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(raw)))
	return r, r.Valid()
}

// Actor is the authenticated caller of a core operation.
type Actor struct {
	ID       uuid.UUID
	Role     Role
	BidangID uuid.UUID
}

// Complete reports whether the actor carries both an id and a role.
func (a Actor) Complete() bool {
	return a.ID != uuid.Nil && strings.TrimSpace(string(a.Role)) != ""
}

// HasUnit reports whether the actor is attached to an organizational unit.
func (a Actor) HasUnit() bool {
	return a.BidangID != uuid.Nil
}

// InUnit reports whether the actor belongs to the given organizational unit.
func (a Actor) InUnit(bidangID uuid.UUID) bool {
	return bidangID != uuid.Nil && a.BidangID == bidangID
}

// UnitTag is the organizational unit id as recorded on scoped transactions; "0" when absent.
func (a Actor) UnitTag() string {
	if a.BidangID == uuid.Nil {
		return "0"
	}
	return a.BidangID.String()
}
