package booking

// Status is the lifecycle state of a single occurrence.
type Status string

const (
	// StatusPending is the initial state of every persisted occurrence.
	StatusPending Status = "pending"
	// StatusApproved marks an occurrence confirmed by an administrator.
	StatusApproved Status = "approved"
	// StatusRejected marks an occurrence declined by an administrator.
	StatusRejected Status = "rejected"
)

// Known reports whether s is one of the recognised lifecycle states.
func (s Status) Known() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// StatusSet selects which existing statuses count toward conflict detection.
type StatusSet map[Status]struct{}

// NewStatusSet builds a set from the listed statuses.
func NewStatusSet(statuses ...Status) StatusSet {
	set := make(StatusSet, len(statuses))
	for _, status := range statuses {
		set[status] = struct{}{}
	}
	return set
}

// Contains reports membership.
func (s StatusSet) Contains(status Status) bool {
	_, ok := s[status]
	return ok
}

// Statuses returns the members in a fixed pending/approved/rejected order.
func (s StatusSet) Statuses() []Status {
	out := make([]Status, 0, len(s))
	for _, status := range []Status{StatusPending, StatusApproved, StatusRejected} {
		if s.Contains(status) {
			out = append(out, status)
		}
	}
	return out
}

// Blocking policy: new requests only collide with already approved
// reservations, so overlapping pending requests may coexist until an
// administrator arbitrates. Edits collide with anything not rejected.
var (
	BlockingAtCreation = NewStatusSet(StatusApproved)
	BlockingAtApproval = NewStatusSet(StatusApproved)
	BlockingAtEdit     = NewStatusSet(StatusPending, StatusApproved)
)
