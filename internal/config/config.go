// Package config assembles a worker's configuration from the CLI surface
// of spec.md §6: "--key=value" or "--flag" options naming an evaluator, a
// bandit, a search budget, and a handful of optional knobs. It is the only
// place spec strings (bandit/evaluator/budget/matrix-ucb) get parsed into
// the concrete types internal/search and internal/selfplay consume.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/gomlx/gomlx/backends"
	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/bandit"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator/heuristic"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator/neural"
	"github.com/janpfeifer/pkmn-mcts/internal/evaluator/rollout"
	"github.com/janpfeifer/pkmn-mcts/internal/parameters"
	"github.com/janpfeifer/pkmn-mcts/internal/search"
	"github.com/janpfeifer/pkmn-mcts/internal/selfplay"
)

// Worker is the fully resolved configuration for one selfplay-worker
// invocation.
type Worker struct {
	Evaluator evaluator.Evaluator
	Bandit    *bandit.Factory
	Budget    search.Budget // Flag is left nil; the worker owns its own terminate signal.
	MatrixUCB search.MatrixUCBParams
	RootNoise *search.RootNoiseParams
	UseTable  bool
	Threads   int
	Seed      uint64
	Dir       string

	KeepNode          bool
	BufferSize        int
	BuildTrajectories bool
	MaxTurns          int
	Policy            selfplay.PolicyOptions
	EarlyTermination  selfplay.EarlyTerminationParams
}

// ParseArgs assembles a Worker from argv (os.Args[1:]-shaped). backend is
// only invoked (and may be nil, if the caller knows no neural spec is in
// use) when --evaluator names a weights file path rather than "mc"/"fp";
// cmd/selfplay-worker passes the package-level GoMLX backend singleton,
// tests pass a stub backends.Backend.
func ParseArgs(args []string, backend func() backends.Backend) (Worker, error) {
	params := argsToParams(args)
	var cfg Worker

	evalSpec, err := parameters.PopParamOr(params, "evaluator", "")
	if err != nil {
		return cfg, err
	}
	if evalSpec == "" {
		return cfg, errors.New("config: --evaluator is required (one of \"mc\", \"fp\", or a weights file path)")
	}
	seed, err := parameters.PopParamOr(params, "seed", 0)
	if err != nil {
		return cfg, err
	}
	cfg.Seed = uint64(seed)

	cfg.Evaluator, err = buildEvaluator(evalSpec, cfg.Seed, backend)
	if err != nil {
		return cfg, err
	}

	banditSpec, err := parameters.PopParamOr(params, "bandit", "")
	if err != nil {
		return cfg, err
	}
	if banditSpec == "" {
		return cfg, errors.New("config: --bandit is required")
	}
	cfg.Bandit, err = bandit.ParseSpec(banditSpec)
	if err != nil {
		return cfg, errors.Wrap(err, "config: parsing --bandit")
	}

	budgetSpec, err := parameters.PopParamOr(params, "budget", "")
	if err != nil {
		return cfg, err
	}
	if budgetSpec == "" {
		return cfg, errors.New("config: --budget is required")
	}
	cfg.Budget, err = parseBudget(budgetSpec)
	if err != nil {
		return cfg, errors.Wrap(err, "config: parsing --budget")
	}

	matrixUCBSpec, err := parameters.PopParamOr(params, "matrix-ucb-name", "")
	if err != nil {
		return cfg, err
	}
	if matrixUCBSpec != "" {
		cfg.MatrixUCB, err = parseMatrixUCB(matrixUCBSpec)
		if err != nil {
			return cfg, errors.Wrap(err, "config: parsing --matrix-ucb-name")
		}
	}

	_, epsGiven := params["dirichlet-eps"]
	_, alphaGiven := params["dirichlet-alpha"]
	if epsGiven != alphaGiven {
		return cfg, errors.New("config: --dirichlet-eps and --dirichlet-alpha must be set together")
	}
	dirichletEps, err := parameters.PopParamOr(params, "dirichlet-eps", float32(0))
	if err != nil {
		return cfg, err
	}
	dirichletAlpha, err := parameters.PopParamOr(params, "dirichlet-alpha", float32(0))
	if err != nil {
		return cfg, err
	}
	if epsGiven {
		cfg.RootNoise = &search.RootNoiseParams{Eps: dirichletEps, Alpha: dirichletAlpha}
	}

	cfg.UseTable, err = parameters.PopParamOr(params, "use-table", false)
	if err != nil {
		return cfg, err
	}
	cfg.Threads, err = parameters.PopParamOr(params, "threads", 1)
	if err != nil {
		return cfg, err
	}
	if cfg.Threads < 1 {
		return cfg, errors.Errorf("config: --threads must be >= 1, got %d", cfg.Threads)
	}
	cfg.Dir, err = parameters.PopParamOr(params, "dir", ".")
	if err != nil {
		return cfg, err
	}

	cfg.KeepNode, err = parameters.PopParamOr(params, "keep-node", false)
	if err != nil {
		return cfg, err
	}
	cfg.BufferSize, err = parameters.PopParamOr(params, "buffer-size", 64)
	if err != nil {
		return cfg, err
	}
	cfg.BuildTrajectories, err = parameters.PopParamOr(params, "build-trajectories", false)
	if err != nil {
		return cfg, err
	}
	cfg.MaxTurns, err = parameters.PopParamOr(params, "max-turns", 200)
	if err != nil {
		return cfg, err
	}

	policySpec, err := parameters.PopParamOr(params, "policy", "")
	if err != nil {
		return cfg, err
	}
	cfg.Policy, err = parsePolicy(policySpec)
	if err != nil {
		return cfg, errors.Wrap(err, "config: parsing --policy")
	}

	earlyTermSpec, err := parameters.PopParamOr(params, "early-termination", "")
	if err != nil {
		return cfg, err
	}
	if earlyTermSpec != "" {
		threshold, err := strconv.ParseFloat(earlyTermSpec, 32)
		if err != nil {
			return cfg, errors.Wrapf(err, "config: parsing --early-termination %q", earlyTermSpec)
		}
		cfg.EarlyTermination = selfplay.EarlyTerminationParams{Enabled: true, Threshold: float32(threshold)}
	}

	if len(params) > 0 {
		return cfg, errors.Errorf("config: unrecognized options: %v", params)
	}
	return cfg, nil
}

// argsToParams turns "--key=value"/"--flag" argv entries into the
// parameters.Params shape the teacher's internal/parameters package
// expects ("key" -> "value", bare flags -> "").
func argsToParams(args []string) parameters.Params {
	params := make(parameters.Params, len(args))
	for _, arg := range args {
		arg = strings.TrimPrefix(arg, "--")
		if key, value, found := strings.Cut(arg, "="); found {
			params[key] = value
		} else {
			params[arg] = ""
		}
	}
	return params
}

// buildEvaluator resolves the evaluator spec of spec.md §6: "mc" (Monte
// Carlo rollout), "fp" (a zero-weight heuristic stub -- SPEC_FULL.md's
// non-goals explicitly exclude a trained heuristic or a team-building
// policy, so the simplest legal heuristic.Evaluator is the spec-compliant
// choice here), or a filesystem path to a neural weights checkpoint.
func buildEvaluator(spec string, seed uint64, backend func() backends.Backend) (evaluator.Evaluator, error) {
	switch spec {
	case "mc":
		return rollout.New(64, seed), nil
	case "fp":
		const maxBenchSize = 2 // reference.MaxTeamSize - 1 active slot.
		weights := make([]float32, heuristic.FeatureDim(maxBenchSize)+1)
		return heuristic.NewWithWeights(maxBenchSize, weights)
	default:
		if backend == nil {
			return nil, errors.Errorf("config: evaluator spec %q looks like a weights path but no GoMLX backend was supplied", spec)
		}
		return neural.New(backend(), neural.DefaultConfig(), spec)
	}
}

func parseBudget(spec string) (search.Budget, error) {
	if strings.HasSuffix(spec, "ms") {
		ms, err := strconv.Atoi(strings.TrimSuffix(spec, "ms"))
		if err != nil {
			return search.Budget{}, errors.Wrapf(err, "invalid millisecond budget %q", spec)
		}
		return search.Budget{Duration: time.Duration(ms) * time.Millisecond, HasDuration: true}, nil
	}
	if strings.HasSuffix(spec, "s") {
		s, err := strconv.Atoi(strings.TrimSuffix(spec, "s"))
		if err != nil {
			return search.Budget{}, errors.Wrapf(err, "invalid second budget %q", spec)
		}
		return search.Budget{Duration: time.Duration(s) * time.Second, HasDuration: true}, nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil {
		return search.Budget{}, errors.Wrapf(err, "invalid iteration budget %q", spec)
	}
	return search.Budget{Iterations: n}, nil
}

// parseMatrixUCB parses "delay-interval-minimum-c" per spec.md §6.
func parseMatrixUCB(spec string) (search.MatrixUCBParams, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 4 {
		return search.MatrixUCBParams{}, errors.Errorf("matrix-ucb spec %q must be delay-interval-minimum-c", spec)
	}
	delay, err := strconv.Atoi(parts[0])
	if err != nil {
		return search.MatrixUCBParams{}, err
	}
	interval, err := strconv.Atoi(parts[1])
	if err != nil {
		return search.MatrixUCBParams{}, err
	}
	minimum, err := strconv.Atoi(parts[2])
	if err != nil {
		return search.MatrixUCBParams{}, err
	}
	c, err := strconv.ParseFloat(parts[3], 32)
	if err != nil {
		return search.MatrixUCBParams{}, err
	}
	return search.MatrixUCBParams{Enabled: true, Delay: delay, Interval: interval, Minimum: minimum, C: float32(c)}, nil
}

// parsePolicy parses "mode[-temperature[-floor[-mixweight]]]" per spec.md
// §4.7's sampling modes (e/n/x/m), defaulting to empirical sampling at
// temperature 1 when spec is empty.
func parsePolicy(spec string) (selfplay.PolicyOptions, error) {
	opt := selfplay.DefaultPolicyOptions()
	if spec == "" {
		return opt, nil
	}
	parts := strings.Split(spec, "-")
	switch parts[0] {
	case "e":
		opt.Mode = selfplay.SampleEmpirical
	case "n":
		opt.Mode = selfplay.SampleNash
	case "x":
		opt.Mode = selfplay.SampleArgmaxEmpirical
	case "m":
		opt.Mode = selfplay.SampleMixed
	default:
		return opt, errors.Errorf("policy spec %q: unknown mode %q (want e, n, x, or m)", spec, parts[0])
	}
	if len(parts) > 1 {
		tau, err := strconv.ParseFloat(parts[1], 32)
		if err != nil {
			return opt, errors.Wrapf(err, "policy spec %q: invalid temperature", spec)
		}
		opt.Temperature = float32(tau)
	}
	if len(parts) > 2 {
		floor, err := strconv.ParseFloat(parts[2], 32)
		if err != nil {
			return opt, errors.Wrapf(err, "policy spec %q: invalid floor", spec)
		}
		opt.Floor = float32(floor)
	}
	if len(parts) > 3 {
		mix, err := strconv.ParseFloat(parts[3], 32)
		if err != nil {
			return opt, errors.Wrapf(err, "policy spec %q: invalid mix weight", spec)
		}
		opt.MixWeight = float32(mix)
	}
	if len(parts) > 4 {
		return opt, errors.Errorf("policy spec %q: too many components", spec)
	}
	return opt, nil
}
