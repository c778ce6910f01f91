// Package mperr defines the metapopulation engine's error taxonomy
// (spec.md §7): a fixed set of error kinds, not a hierarchy of types. The
// sentinels are github.com/pkg/errors values; call sites that add context
// do so with Wrap/Wrapf, which attach a message (not a new stack trace) and
// keep errors.Is identity. Some call sites return a sentinel unwrapped.
package mperr

import "github.com/pkg/errors"

// Sentinel kinds. Test with errors.Is(err, mperr.ErrXxx).
var (
	// ErrEmptyMetapop: selector called against an empty store.
	ErrEmptyMetapop = errors.New("mperr: empty metapopulation")

	// ErrNoExemplar: every tree in the store has been visited.
	ErrNoExemplar = errors.New("mperr: no exemplar available")

	// ErrEmptyRepresentation: the representation builder returned an empty
	// knob set for the chosen exemplar.
	ErrEmptyRepresentation = errors.New("mperr: empty representation")

	// ErrOptimiserFailure: the external optimiser returned an error.
	ErrOptimiserFailure = errors.New("mperr: optimiser failure")

	// ErrScoreInvalid: a candidate's raw score is <= score.SWorst or
	// non-finite. Candidates failing this check are dropped silently by
	// their caller; this sentinel exists for logging/tests, not as a value
	// that propagates to the driver.
	ErrScoreInvalid = errors.New("mperr: invalid score")

	// ErrMismatchedBscoreLength: domination compared two nonempty behavioral
	// vectors of differing length. Programmer error; aborts the run.
	ErrMismatchedBscoreLength = errors.New("mperr: mismatched behavioral score length")
)

// Wrap attaches call-site context to a sentinel while preserving
// errors.Is/errors.As compatibility.
func Wrap(err error, msg string) error {
	return errors.WithMessage(err, msg)
}

// Wrapf is Wrap with Printf-style formatting.
func Wrapf(err error, format string, args ...any) error {
	return errors.WithMessagef(err, format, args...)
}
