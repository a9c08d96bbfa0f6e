// Package neural implements the GoMLX-backed evaluator: a two-stage
// feed-forward network producing both a leaf value and, per player, a prior
// over that player's legal actions.
//
// Grounded on the teacher's internal/ai/gomlx package: AlphaZeroFNN's
// board-tower (shared value/policy embedding) + action-tower split is
// generalized here into a non-active-unit sub-network (cached across the
// 240-point (status, has-pp) subspace via internal/encoding.SubCache,
// spec.md §4.3/§4.8) and an active-unit sub-network, whose outputs feed a
// shared main tower. The context.Exec wrapping (build once, Call per
// evaluation) and checkpoint handling follow policyscorer.go/boardscorer.go.
package neural

import (
	"sync"

	"github.com/gomlx/gomlx/backends"
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/layers/activations"
	fnnLayer "github.com/gomlx/gomlx/ml/layers/fnn"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/janpfeifer/pkmn-mcts/internal/encoding"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Config holds the network's hyperparameters, mirroring the defaults
// AlphaZeroFNN sets on its context (teacher's internal/ai/gomlx/
// alphazerofnn.go NewAlphaZeroFNN).
type Config struct {
	SubEmbedDim    int
	ActiveEmbedDim int
	BoardEmbedDim  int
	NumHiddenLayers int
	LearningRate   float64
}

// DefaultConfig returns the dimensions this package was grounded and tested
// with.
func DefaultConfig() Config {
	return Config{
		SubEmbedDim:     8,
		ActiveEmbedDim:  16,
		BoardEmbedDim:   32,
		NumHiddenLayers: 1,
		LearningRate:    0.001,
	}
}

// Evaluator wraps a GoMLX context and a pair of compiled executors: one for
// the non-active-unit sub-embedding (used to populate a SubCache) and one
// for the full forward pass (active-unit embedding + main tower -> value
// and per-player policy logits).
type Evaluator struct {
	cfg Config
	ctx *context.Context

	backend    backends.Backend
	checkpoint *checkpoints.Handler

	subEmbedExec *context.Exec
	forwardExec  *context.Exec

	mu sync.RWMutex
}

// New creates a neural Evaluator. If filePath is non-empty, it loads (or
// creates, if absent) a checkpoint there, mirroring newPolicyScorer's
// createCheckpoint step.
func New(b backends.Backend, cfg Config, filePath string) (*Evaluator, error) {
	e := &Evaluator{cfg: cfg, backend: b, ctx: context.New()}
	e.ctx.RngStateReset()
	e.ctx.SetParams(map[string]any{
		"learning_rate":             cfg.LearningRate,
		activations.ParamActivation: "sigmoid",
		regularizers.ParamL2:        1e-5,
		regularizers.ParamL1:        1e-5,
		fnnLayer.ParamNumHiddenLayers: cfg.NumHiddenLayers,
	})
	e.ctx = e.ctx.Checked(false)

	if filePath != "" {
		var err error
		e.checkpoint, err = checkpoints.Build(e.ctx).Dir(filePath).Immediate().Keep(10).Done()
		if err != nil {
			return nil, errors.Wrapf(err, "neural: failed to build checkpoint at %q", filePath)
		}
	}

	e.subEmbedExec = context.NewExec(e.backend, e.ctx, func(ctx *context.Context, inputs []*Node) *Node {
		return fnnLayer.New(ctx.In("sub_embed").In("fnn"), inputs[0], cfg.SubEmbedDim).Done()
	})
	e.forwardExec = context.NewExec(e.backend, e.ctx, e.forwardGraph)

	return e, nil
}

func (e *Evaluator) String() string {
	if e.checkpoint == nil {
		return "neural[GoMLX]"
	}
	return "neural[GoMLX]@" + e.checkpoint.Dir()
}

// activeEmbeddingGraph embeds a batch of ActiveDim-wide raw active-unit
// feature rows.
func (e *Evaluator) activeEmbeddingGraph(ctx *context.Context, active *Node) *Node {
	return fnnLayer.New(ctx.In("active_embed").In("fnn"), active, e.cfg.ActiveEmbedDim).Done()
}

// forwardGraph is the main tower: it takes, per player, the active-unit
// embedding and the pooled (summed) bench sub-embedding, concatenates both
// players' pair, and produces a value plus two fixed-width policy logit
// vectors (one per player, padded to engine.MaxActions; the caller trims to
// the true legal-action count).
func (e *Evaluator) forwardGraph(ctx *context.Context, inputs []*Node) []*Node {
	activeP1, benchSumP1 := inputs[0], inputs[1]
	activeP2, benchSumP2 := inputs[2], inputs[3]

	embedP1 := e.activeEmbeddingGraph(ctx, activeP1)
	embedP2 := e.activeEmbeddingGraph(ctx, activeP2)

	sideP1 := Concatenate([]*Node{embedP1, benchSumP1}, -1)
	sideP2 := Concatenate([]*Node{embedP2, benchSumP2}, -1)
	board := Concatenate([]*Node{sideP1, sideP2}, -1)

	boardCtx := ctx.In("board_tower")
	boardEmbed := fnnLayer.New(boardCtx.In("fnn"), board, e.cfg.BoardEmbedDim).Done()

	valueLogits := fnnLayer.New(boardCtx.In("value").In("fnn"), boardEmbed, 1).NumHiddenLayers(0, 0).Done()
	value := Tanh(valueLogits)

	policy1 := fnnLayer.New(boardCtx.In("policy1").In("fnn"), boardEmbed, engine.MaxActions).NumHiddenLayers(0, 0).Done()
	policy2 := fnnLayer.New(boardCtx.In("policy2").In("fnn"), boardEmbed, engine.MaxActions).NumHiddenLayers(0, 0).Done()

	return []*Node{value, policy1, policy2}
}

// buildSubCache precomputes the 240-entry sub-embedding table for one unit,
// keeping its fixed (stats, moves, types) fields and only varying (status,
// has-pp mask) across the cache's domain, per spec.md §4.3.
func (e *Evaluator) buildSubCache(unit encoding.UnitView) *encoding.SubCache {
	return encoding.NewSubCache(e.cfg.SubEmbedDim, func(status encoding.Status, mask uint8) []float32 {
		synthetic := unit
		synthetic.Status = status
		for i := range synthetic.Moves {
			synthetic.Moves[i].HasPP = mask&(1<<uint(i)) != 0
		}
		raw := make([]float32, encoding.NonActiveDim)
		encoding.EncodeNonActive(synthetic, raw)

		rawT := tensors.FromShape(shapes.Make(dtypes.Float32, 1, encoding.NonActiveDim))
		tensors.MutableFlatData(rawT, func(flat []float32) { copy(flat, raw) })
		embedT := e.subEmbedExec.Call(rawT)[0]
		return tensors.CopyFlatData[float32](embedT)
	})
}

// benchPooled sums the cached sub-embeddings of every benched unit, per
// spec.md's deep-sets-style pooling over a variable-size bench.
func (e *Evaluator) benchPooled(bench []encoding.UnitView) []float32 {
	pooled := make([]float32, e.cfg.SubEmbedDim)
	for _, unit := range bench {
		cache := e.buildSubCache(unit)
		entry, err := cache.Lookup(unit.PokemonKeyOf())
		if err != nil {
			// Lookup only fails for out-of-range keys, which PokemonKeyOf
			// cannot produce; treat as a precomputation bug, not a runtime
			// condition callers should branch on.
			panic(err)
		}
		for i, v := range entry {
			pooled[i] += v
		}
	}
	return pooled
}

func (e *Evaluator) forward(s engine.State) (value float32, policy1, policy2 []float32, err error) {
	fz, ok := s.(encoding.Featurizer)
	if !ok {
		return 0, nil, nil, errors.Errorf("neural: state type %T does not implement encoding.Featurizer", s)
	}

	activeP1 := make([]float32, encoding.ActiveDim)
	encoding.EncodeActive(fz.Active(engine.Player1), activeP1)
	activeP2 := make([]float32, encoding.ActiveDim)
	encoding.EncodeActive(fz.Active(engine.Player2), activeP2)

	benchSumP1 := e.benchPooled(fz.Bench(engine.Player1))
	benchSumP2 := e.benchPooled(fz.Bench(engine.Player2))

	activeP1T := rowTensor(activeP1)
	activeP2T := rowTensor(activeP2)
	benchSumP1T := rowTensor(benchSumP1)
	benchSumP2T := rowTensor(benchSumP2)

	e.mu.RLock()
	outputs := e.forwardExec.Call(activeP1T, benchSumP1T, activeP2T, benchSumP2T)
	e.mu.RUnlock()

	valueFlat := tensors.CopyFlatData[float32](outputs[0])
	policy1 = tensors.CopyFlatData[float32](outputs[1])
	policy2 = tensors.CopyFlatData[float32](outputs[2])
	return valueFlat[0], policy1, policy2, nil
}

func rowTensor(row []float32) *tensors.Tensor {
	t := tensors.FromShape(shapes.Make(dtypes.Float32, 1, len(row)))
	tensors.MutableFlatData(t, func(flat []float32) { copy(flat, row) })
	return t
}

// Evaluate implements evaluator.Evaluator.
func (e *Evaluator) Evaluate(s engine.State) (float32, error) {
	value, _, _, err := e.forward(s)
	return value, err
}

// Policy implements evaluator.PolicyEvaluator.
func (e *Evaluator) Policy(s engine.State, player engine.Player, legal []engine.ActionToken) ([]float32, error) {
	_, policy1, policy2, err := e.forward(s)
	if err != nil {
		return nil, err
	}
	padded := policy1
	if player == engine.Player2 {
		padded = policy2
	}
	if len(legal) > len(padded) {
		return nil, errors.Errorf("neural: %d legal actions exceeds the network's %d-action policy head", len(legal), len(padded))
	}
	return padded[:len(legal)], nil
}

// Save persists the model to its checkpoint directory, if any.
func (e *Evaluator) Save() error {
	if e.checkpoint == nil {
		return errors.New("neural: no checkpoint directory configured")
	}
	return e.checkpoint.Save()
}
