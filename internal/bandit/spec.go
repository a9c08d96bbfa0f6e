package bandit

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Factory builds fresh per-player Bandit instances from a parsed spec --
// one Factory per search tree/table, shared by every node (spec.md §6: CLI
// bandit spec is `"name-param1[-param2]"` where name is one of
// {ucb, ucb1, pucb, exp3, pexp3}).
type Factory struct {
	kind       string
	param1     float32
	hasParam2  bool
	param2     float32
}

// ParseSpec parses a bandit spec string like "ucb-1.0", "pucb-2.0" or
// "exp3-0.1", following the same "name-value[-value]" shape the teacher
// uses for its player configuration strings (internal/parameters), but
// with a dedicated parser here since the bandit spec is positional
// (hyphen-separated), not key=value.
func ParseSpec(spec string) (*Factory, error) {
	parts := strings.Split(spec, "-")
	if len(parts) < 2 {
		return nil, errors.Errorf("bandit: spec %q must be of the form name-param1[-param2]", spec)
	}
	name := strings.ToLower(parts[0])
	param1, err := strconv.ParseFloat(parts[1], 32)
	if err != nil {
		return nil, errors.Wrapf(err, "bandit: spec %q has invalid param1 %q", spec, parts[1])
	}
	f := &Factory{kind: name, param1: float32(param1)}
	if len(parts) >= 3 {
		param2, err := strconv.ParseFloat(parts[2], 32)
		if err != nil {
			return nil, errors.Wrapf(err, "bandit: spec %q has invalid param2 %q", spec, parts[2])
		}
		f.hasParam2 = true
		f.param2 = float32(param2)
	}
	switch name {
	case "ucb", "ucb1", "pucb", "exp3", "pexp3":
		// valid
	default:
		return nil, errors.Errorf("bandit: unknown bandit kind %q in spec %q", name, spec)
	}
	return f, nil
}

// New builds a fresh, uninitialized Bandit instance of the Factory's kind.
func (f *Factory) New() Bandit {
	switch f.kind {
	case "ucb":
		return NewUCB(f.param1)
	case "ucb1":
		return NewUCB1(f.param1)
	case "pucb":
		return NewPUCB(f.param1)
	case "exp3":
		return NewEXP3(f.param1)
	case "pexp3":
		return NewPEXP3(f.param1)
	}
	panic("bandit: unreachable Factory kind " + f.kind)
}

// NewJoint builds a fresh JointBandit from two new per-player instances.
func (f *Factory) NewJoint() *JointBandit {
	return NewJoint(f.New(), f.New())
}

// UsesPolicy reports whether this bandit kind consumes policy-prior
// logits (PUCB, PEXP3), so the search driver knows whether to call the
// evaluator's policy-capable variant.
func (f *Factory) UsesPolicy() bool {
	return f.kind == "pucb" || f.kind == "pexp3"
}

// String returns the canonical spec string, e.g. "pucb-2" for a factory
// parsed from "pucb-2.0".
func (f *Factory) String() string {
	s := f.kind + "-" + strconv.FormatFloat(float64(f.param1), 'g', -1, 32)
	if f.hasParam2 {
		s += "-" + strconv.FormatFloat(float64(f.param2), 'g', -1, 32)
	}
	return s
}
