package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// UnassignedUnit is the unit id recorded for actors that do not belong to a bidang.
const UnassignedUnit = "0"

// Context bundles a request context with an optional GORM transaction and the
// actor scope the transaction was opened under.
type Context struct {
	Ctx   context.Context
	Tx    *gorm.DB
	Scope *Scope
}

// Scope is the identity tag attached to a scoped transaction. Row-level
// security policies read the same values through current_setting('app.*').
type Scope struct {
	UserID string
	Role   string
	UnitID string
	Reason string
}

func (s *Scope) Unit() string {
	if s == nil || s.UnitID == "" {
		return UnassignedUnit
	}
	return s.UnitID
}
