package datasets

import "github.com/pusdatin/satudata-backend/internal/domain/auth"

// Operation is a lifecycle operation applied to a dataset.
type Operation string

const (
	OpSubmit         Operation = "submit"
	OpRevise         Operation = "revise"
	OpApproveKabid   Operation = "approve_kabid"
	OpRejectKabid    Operation = "reject_kabid"
	OpVerifyPusdatin Operation = "verify_pusdatin"
	OpRejectPusdatin Operation = "reject_pusdatin"
)

var AllOperations = []Operation{
	OpSubmit,
	OpRevise,
	OpApproveKabid,
	OpRejectKabid,
	OpVerifyPusdatin,
	OpRejectPusdatin,
}

// NextStatus returns the state reached by applying op in state from.
// ok is false for every pair the transition table does not list.
func NextStatus(from Status, op Operation) (to Status, ok bool) {
	switch from {
	case StatusDraft:
		switch op {
		case OpSubmit:
			return StatusSubmitted, true
		}
	case StatusSubmitted:
		switch op {
		case OpApproveKabid:
			return StatusApprovedByKabid, true
		case OpRejectKabid:
			return StatusRejectedByKabid, true
		}
	case StatusApprovedByKabid:
		switch op {
		case OpVerifyPusdatin:
			return StatusVerifiedByPusdatin, true
		case OpRejectPusdatin:
			return StatusRejectedByPusdatin, true
		}
	case StatusRejectedByKabid, StatusRejectedByPusdatin:
		switch op {
		case OpRevise:
			return StatusDraft, true
		}
	case StatusVerifiedByPusdatin:
	}
	return from, false
}

// Permission describes who may apply an operation.
type Permission struct {
	Role Role
	// OwnerUnit requires the actor to belong to the dataset's organizational unit.
	OwnerUnit bool
}

type Role = auth.Role

// PermissionFor returns the role requirement of op.
func PermissionFor(op Operation) Permission {
	switch op {
	case OpSubmit, OpRevise:
		return Permission{Role: auth.RoleBidang, OwnerUnit: true}
	case OpApproveKabid, OpRejectKabid:
		return Permission{Role: auth.RoleKabid, OwnerUnit: true}
	case OpVerifyPusdatin, OpRejectPusdatin:
		return Permission{Role: auth.RolePusdatin}
	}
	return Permission{}
}

// Allows reports whether actor satisfies the permission on d.
func (p Permission) Allows(actor auth.Actor, d *Dataset) bool {
	if p.Role == "" || actor.Role != p.Role {
		return false
	}
	if p.OwnerUnit {
		return d != nil && actor.InUnit(d.BidangID)
	}
	return true
}

func RequiresReason(op Operation) bool {
	return op == OpRejectKabid || op == OpRejectPusdatin
}
