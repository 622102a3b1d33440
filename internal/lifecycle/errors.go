package lifecycle

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable code attached to a transition denial.
type Reason string

const (
	// Locally resolved denials; no remote call was made and retrying with
	// different input is always safe.
	ReasonAlreadyTerminal      Reason = "ALREADY_TERMINAL"
	ReasonIllegalTransition    Reason = "ILLEGAL_TRANSITION"
	ReasonRoleMismatch         Reason = "ROLE_MISMATCH"
	ReasonRelationshipMismatch Reason = "RELATIONSHIP_MISMATCH"
	ReasonPreconditionFailed   Reason = "PRECONDITION_FAILED"

	// A transition for the same trade is still in flight.
	ReasonTransitionInProgress Reason = "TRANSITION_IN_PROGRESS"

	// Remote-side outcomes. Local state is never mutated before remote
	// confirmation, so these always leave the client exactly as it was.
	ReasonRemoteRejected    Reason = "REMOTE_REJECTED"
	ReasonRemoteUnreachable Reason = "REMOTE_UNREACHABLE"
)

// Denial is the error returned for every refused transition.
type Denial struct {
	Reason Reason
	Detail string
}

func (d *Denial) Error() string {
	if d.Detail == "" {
		return string(d.Reason)
	}
	return fmt.Sprintf("%s: %s", d.Reason, d.Detail)
}

// Deny builds a Denial with a formatted detail message.
func Deny(reason Reason, format string, args ...any) *Denial {
	return &Denial{
		Reason: reason,
		Detail: fmt.Sprintf(format, args...),
	}
}

// DenialOf extracts the Denial from err, if any.
func DenialOf(err error) (*Denial, bool) {
	var d *Denial
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsReason reports whether err is a Denial carrying the given reason.
func IsReason(err error, reason Reason) bool {
	d, ok := DenialOf(err)
	return ok && d.Reason == reason
}

// Recoverable reports whether the denial leaves the caller free to retry the
// operation as a fresh user action. Every reason in the taxonomy is
// recoverable at the level of a single user action; none is fatal.
func (d *Denial) Recoverable() bool {
	return true
}
