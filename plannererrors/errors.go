// Package plannererrors provides the structured error taxonomy used across
// the planning pipeline. A PlannerError preserves a message, an error chain
// via Cause, and a Kind describing how the engine should propagate the
// failure (abort the run, or keep going and drop the offending piece of
// work), matching the propagation rules each Kind documents.
package plannererrors

import (
	"errors"
	"fmt"
)

// Kind categorizes a planner failure so callers can decide whether to abort
// the run or continue. See each Kind constant's doc for the propagation
// rule it carries.
type Kind string

const (
	// KindParse marks a malformed domain or problem file. Fatal.
	KindParse Kind = "parse"
	// KindSemantic marks an undefined symbol, type mismatch, or inconsistent
	// initial state. Fatal.
	KindSemantic Kind = "semantic"
	// KindUnreachableGrounding marks an operator with no supporting ground
	// action. Non-fatal: the operator simply yields no actions.
	KindUnreachableGrounding Kind = "unreachable_grounding"
	// KindStaticContradiction marks a grounded action dropped because its
	// static preconditions can never hold. Non-fatal.
	KindStaticContradiction Kind = "static_contradiction"
	// KindValidatorRejection marks a plan node the validator rejected.
	// Non-fatal at the engine level: the node and its descendants are marked
	// invalid and the parent is re-validated.
	KindValidatorRejection Kind = "validator_rejection"
	// KindResourceExhaustion marks a wall-clock budget expiry. Non-fatal: the
	// search returns its best plan so far.
	KindResourceExhaustion Kind = "resource_exhaustion"
	// KindUnsolvable marks a search space exhausted with no goal plan found.
	// Non-fatal: clean "no plan" termination.
	KindUnsolvable Kind = "unsolvable"
)

// Fatal reports whether errors of this kind should abort the run, per §7's
// propagation rule: parsing and grounding errors abort; search-time
// rejections are local.
func (k Kind) Fatal() bool {
	return k == KindParse || k == KindSemantic
}

// PlannerError is a structured planner failure that preserves message and
// causal context while implementing the standard error interface. Errors may
// be nested via Cause to retain diagnostics across pipeline stages.
type PlannerError struct {
	Kind    Kind
	Message string
	Cause   *PlannerError
}

// New constructs a PlannerError of the given kind with the provided message.
func New(kind Kind, message string) *PlannerError {
	if message == "" {
		message = string(kind)
	}
	return &PlannerError{Kind: kind, Message: message}
}

// NewWithCause constructs a PlannerError that wraps an underlying error. The
// cause is converted into a PlannerError chain so the kind and message
// survive errors.Is/As through Unwrap.
func NewWithCause(kind Kind, message string, cause error) *PlannerError {
	if message == "" && cause != nil {
		message = cause.Error()
	}
	return &PlannerError{Kind: kind, Message: message, Cause: FromError(cause)}
}

// FromError converts an arbitrary error into a PlannerError chain, tagging
// it KindSemantic if it carries no kind of its own.
func FromError(err error) *PlannerError {
	if err == nil {
		return nil
	}
	var pe *PlannerError
	if errors.As(err, &pe) {
		return pe
	}
	return &PlannerError{Kind: KindSemantic, Message: err.Error(), Cause: FromError(errors.Unwrap(err))}
}

// Errorf formats according to a format specifier and returns the result as a
// PlannerError of the given kind.
func Errorf(kind Kind, format string, args ...any) *PlannerError {
	return New(kind, fmt.Sprintf(format, args...))
}

// Error implements the error interface.
func (e *PlannerError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Unwrap returns the underlying error to support errors.Is/As.
func (e *PlannerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is reports whether target is a PlannerError of the same Kind, letting
// callers write errors.Is(err, plannererrors.New(KindParse, "")).
func (e *PlannerError) Is(target error) bool {
	var pe *PlannerError
	if !errors.As(target, &pe) {
		return false
	}
	return e.Kind == pe.Kind
}
