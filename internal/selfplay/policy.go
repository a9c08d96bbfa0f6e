// Package selfplay implements C7 of spec.md §4.7: the worker loop that
// draws a team, runs the search driver (internal/search) at every decision
// point, samples a joint action from the selected policy, advances the
// real game state, and accumulates completed episodes into a frame buffer
// flushed to disk under a process-wide, monotonically increasing filename
// counter.
//
// Grounded on the teacher's cmd/a0trainer/matches.go: runMatches'
// errgroup.Group worker pool and runMatch's per-episode loop (play until
// finished, collect Example records, re-score post hoc once the winner is
// known) are generalized here from Hive's single-player turn structure to
// the joint two-player, simultaneous-move shape internal/search already
// provides, with the frame buffer and atomic filename counter added per
// SPEC_FULL.md's C7 expansion (spec.md §4.7, §5, §9 "Global filename
// counter").
package selfplay

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/generics"
)

// SampleMode is the worker's policy-sampling mode character, spec.md §4.7:
// "mode character in {e=empirical, n=nash, x=argmax-empirical, m=mixed
// with weight w}".
type SampleMode byte

const (
	SampleEmpirical       SampleMode = 'e'
	SampleNash            SampleMode = 'n'
	SampleArgmaxEmpirical SampleMode = 'x'
	SampleMixed           SampleMode = 'm'
)

// PolicyOptions configures how a worker turns one Search call's output
// into a sampled joint action (spec.md §4.7 "Action-sampling policy").
type PolicyOptions struct {
	Mode SampleMode

	// MixWeight is w in "mixed with weight w": the sampled distribution is
	// w*nash + (1-w)*empirical. Only read when Mode == SampleMixed.
	MixWeight float32

	// Temperature applies p_i <- p_i^tau before renormalizing. 0 means
	// "unset", treated as 1 (no-op), matching the spec's implicit default.
	Temperature float32

	// Floor zeros probabilities below Floor*sum(p) and renormalizes.
	Floor float32
}

// DefaultPolicyOptions is the spec-compliant no-op configuration: sample
// directly from the empirical policy, no temperature or floor reshaping.
func DefaultPolicyOptions() PolicyOptions {
	return PolicyOptions{Mode: SampleEmpirical, Temperature: 1}
}

// Resolve turns (empirical, nash) into the single distribution this
// worker's Mode samples from. argmaxEmpirical is only relevant for
// SampleArgmaxEmpirical, which ignores the shaping below and returns a
// one-hot distribution directly.
func (o PolicyOptions) resolve(empirical, nash []float32) ([]float32, error) {
	if len(empirical) == 0 {
		return nil, errors.New("selfplay: empty policy")
	}
	switch o.Mode {
	case SampleEmpirical, 0:
		return o.shape(empirical)
	case SampleNash:
		return o.shape(nash)
	case SampleArgmaxEmpirical:
		out := make([]float32, len(empirical))
		out[generics.ArgMax(empirical)] = 1
		return out, nil
	case SampleMixed:
		mixed := make([]float32, len(empirical))
		for i := range mixed {
			mixed[i] = o.MixWeight*nash[i] + (1-o.MixWeight)*empirical[i]
		}
		return o.shape(mixed)
	default:
		return nil, errors.Errorf("selfplay: unknown sample mode %q", rune(o.Mode))
	}
}

// shape applies temperature reshaping and the probability floor, per
// spec.md §4.7.
func (o PolicyOptions) shape(p []float32) ([]float32, error) {
	tau := o.Temperature
	if tau == 0 {
		tau = 1
	}
	out := make([]float32, len(p))
	var sum float32
	for i, v := range p {
		if v < 0 {
			v = 0
		}
		shaped := v
		if tau != 1 {
			shaped = float32(math.Pow(float64(v), float64(tau)))
		}
		out[i] = shaped
		sum += shaped
	}
	if sum <= 0 {
		return nil, errors.New("selfplay: zero-mass policy after temperature reshaping")
	}
	for i := range out {
		out[i] /= sum
	}

	if o.Floor > 0 {
		threshold := o.Floor // sum is already 1 after the normalization above.
		var floored float32
		for i, v := range out {
			if v < threshold {
				out[i] = 0
			} else {
				floored += v
			}
		}
		if floored <= 0 {
			return nil, errors.New("selfplay: zero-mass policy after floor")
		}
		for i := range out {
			out[i] /= floored
		}
	}
	return out, nil
}

// sampleIndex draws an index from a normalized distribution.
func sampleIndex(rng *rand.Rand, p []float32) int {
	r := rng.Float32()
	var cum float32
	for i, v := range p {
		cum += v
		if r <= cum {
			return i
		}
	}
	return len(p) - 1
}
