package datasets

import "strings"

// Kind is the declared content kind of a dataset.
type Kind string

const (
	KindStructured   Kind = "STRUCTURED"
	KindUnstructured Kind = "UNSTRUCTURED"
)

func (k Kind) Valid() bool {
	switch k {
	case KindStructured, KindUnstructured:
		return true
	}
	return false
}

func ParseKind(raw string) (Kind, bool) {
	k := Kind(strings.ToUpper(strings.TrimSpace(raw)))
	return k, k.Valid()
}

// Status is the lifecycle state of a dataset.
type Status string

const (
	StatusDraft              Status = "DRAFT"
	StatusSubmitted          Status = "SUBMITTED"
	StatusApprovedByKabid    Status = "APPROVED_BY_KABID"
	StatusVerifiedByPusdatin Status = "VERIFIED_BY_PUSDATIN"
	StatusRejectedByKabid    Status = "REJECTED_BY_KABID"
	StatusRejectedByPusdatin Status = "REJECTED_BY_PUSDATIN"
)

// AllStatuses lists every lifecycle state.
var AllStatuses = []Status{
	StatusDraft,
	StatusSubmitted,
	StatusApprovedByKabid,
	StatusVerifiedByPusdatin,
	StatusRejectedByKabid,
	StatusRejectedByPusdatin,
}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusApprovedByKabid, StatusVerifiedByPusdatin,
		StatusRejectedByKabid, StatusRejectedByPusdatin:
		return true
	}
	return false
}

func (s Status) Rejected() bool {
	return s == StatusRejectedByKabid || s == StatusRejectedByPusdatin
}

// AccessLevel controls who may read a published dataset.
type AccessLevel string

const (
	AccessPublic     AccessLevel = "PUBLIC"
	AccessRestricted AccessLevel = "RESTRICTED"
	AccessPrivate    AccessLevel = "PRIVATE"
)

func (a AccessLevel) Valid() bool {
	switch a {
	case AccessPublic, AccessRestricted, AccessPrivate:
		return true
	}
	return false
}
