// Package access defines the access decision types shared by the entity
// storage layer and the plugins that gate features on entity permissions.
// Results are tri-state so a policy can say "no opinion" (neutral) without
// granting or explicitly denying.
package access

// Operation names an action a caller wants to perform on an entity.
type Operation string

const (
	// OpView covers reading an entity's page or fragment.
	OpView Operation = "view"

	// OpUpdate covers editing an entity through any of its forms.
	OpUpdate Operation = "update"

	// OpDelete covers removing an entity.
	OpDelete Operation = "delete"
)

// state is the internal tag of a Result.
type state int

const (
	stateNeutral state = iota
	stateAllowed
	stateForbidden
)

// Result is an access decision. The zero value is neutral.
type Result struct {
	state  state
	reason string
}

// Allowed returns a result that grants access.
func Allowed() Result {
	return Result{state: stateAllowed}
}

// Neutral returns a result that neither grants nor denies access. Callers
// that need a yes/no answer must treat it as a denial.
func Neutral(reason string) Result {
	return Result{state: stateNeutral, reason: reason}
}

// Forbidden returns a result that explicitly denies access.
func Forbidden(reason string) Result {
	return Result{state: stateForbidden, reason: reason}
}

// AllowedIf returns Allowed when cond holds, Neutral otherwise.
func AllowedIf(cond bool, reason string) Result {
	if cond {
		return Allowed()
	}
	return Neutral(reason)
}

// IsAllowed reports whether the result grants access.
func (r Result) IsAllowed() bool { return r.state == stateAllowed }

// IsForbidden reports whether the result explicitly denies access.
func (r Result) IsForbidden() bool { return r.state == stateForbidden }

// IsNeutral reports whether the result carries no opinion.
func (r Result) IsNeutral() bool { return r.state == stateNeutral }

// Reason returns the human-readable explanation attached to a neutral or
// forbidden result. Allowed results have no reason.
func (r Result) Reason() string { return r.reason }

// String implements fmt.Stringer for logging.
func (r Result) String() string {
	switch r.state {
	case stateAllowed:
		return "allowed"
	case stateForbidden:
		return "forbidden"
	default:
		return "neutral"
	}
}
