// Package trackerr defines the tracking core's error taxonomy. Kinds
// that indicate a corrupted numerical state are recoverable at the
// particle level; kinds that indicate a modeling or caller bug are
// fatal and propagate to the caller untouched.
package trackerr

import "fmt"

// Kind classifies a tracking error.
type Kind int

const (
	// Numeric covers a non-PSD covariance, an SVD failure, or a NaN
	// entering a state vector. Recovered at the particle level.
	Numeric Kind = iota
	// Geometry covers a snap-to-polyline or subline-extraction failure.
	// Recovered at the particle level.
	Geometry
	// Topology covers state_diff finding none of its canonical cases,
	// or a required path-merge finding no overlap. Fatal.
	Topology
	// Contract covers a caller violation: non-positive Δt, wrong
	// motion-state dimensionality, or a required value that was nil.
	// Fatal.
	Contract
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "NumericError"
	case Geometry:
		return "GeometryError"
	case Topology:
		return "TopologyError"
	case Contract:
		return "ContractViolation"
	default:
		return "UnknownError"
	}
}

// Recoverable reports whether an error of this kind should be handled
// by dropping the affected particle at the next resample, rather than
// propagated as fatal.
func (k Kind) Recoverable() bool {
	return k == Numeric || k == Geometry
}

// Error is a tracking-core error tagged with its Kind.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %s: %v", e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Op, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap builds an Error of the given kind wrapping an underlying cause.
func Wrap(kind Kind, op, message string, err error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// IsKind reports whether err is a tracking Error of the given kind.
func IsKind(err error, kind Kind) bool {
	te, ok := err.(*Error)
	return ok && te.Kind == kind
}
