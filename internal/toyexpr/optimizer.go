package toyexpr

import (
	"context"
	"math/rand"

	"github.com/opencog/metapop/internal/contracts"
)

// HillClimber implements contracts.Optimizer: single-field-mutation hill
// climbing over a Representation's bit-field, the toy domain's inner local
// search (spec.md §1 scopes the real optimiser out of the core entirely —
// this one exists solely so cmd/metasearch has something concrete to hand
// the engine). Every scorer call — improving or not — gets folded into the
// deme by internal/deme's wrapper regardless of whether HillClimber itself
// accepts the move, matching spec.md §4.4's "every evaluated instance
// enters the deme" behavior.
type HillClimber struct {
	Rnd *rand.Rand
}

var _ contracts.Optimizer = HillClimber{}

// Optimise implements contracts.Optimizer. It starts from the all-zeros
// instance (every leaf knob set to the variable x and every operator knob
// set to +, not the exemplar's own values), then repeatedly proposes a
// single-field mutation, keeping it only if the resulting composite score's
// raw value does not decrease; it stops early on ctx cancellation.
func (h HillClimber) Optimise(ctx context.Context, fields []contracts.Field, scorer contracts.ScoringFunc, budget int) (int, error) {
	if len(fields) == 0 || budget <= 0 {
		return 0, nil
	}

	current := make([]byte, len(fields))
	currentScore, err := scorer(current)
	if err != nil {
		return 1, err
	}
	evals := 1

	for evals < budget {
		if err := ctx.Err(); err != nil {
			return evals, err
		}

		idx := h.Rnd.Intn(len(fields))
		maxVal := 1 << uint(fields[idx].Bits)

		candidate := make([]byte, len(current))
		copy(candidate, current)
		candidate[idx] = byte(h.Rnd.Intn(maxVal))

		candScore, serr := scorer(candidate)
		evals++
		if serr != nil {
			return evals, serr
		}
		if candScore.S >= currentScore.S {
			current = candidate
			currentScore = candScore
		}
	}
	return evals, nil
}
