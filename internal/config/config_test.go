package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janpfeifer/pkmn-mcts/internal/selfplay"
)

func TestParseArgsBuildsAMonteCarloWorker(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc",
		"--bandit=ucb-1.4",
		"--budget=200",
		"--seed=7",
		"--threads=4",
		"--dir=/tmp/out",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Evaluator)
	assert.NotNil(t, cfg.Bandit)
	assert.Equal(t, 200, cfg.Budget.Iterations)
	assert.Equal(t, time.Duration(0), cfg.Budget.Duration)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, 4, cfg.Threads)
	assert.Equal(t, "/tmp/out", cfg.Dir)
	assert.False(t, cfg.MatrixUCB.Enabled)
}

func TestParseArgsBuildsAHeuristicWorker(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=fp",
		"--bandit=pucb-2.0",
		"--budget=500ms",
	}, nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Evaluator)
	assert.Equal(t, 500*time.Millisecond, cfg.Budget.Duration)
	assert.Equal(t, 0, cfg.Budget.Iterations)
}

func TestParseArgsParsesZeroDurationBudget(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=0ms",
	}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.Budget.HasDuration)
	assert.Equal(t, time.Duration(0), cfg.Budget.Duration)
}

func TestParseArgsParsesSecondBudgetSuffix(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc",
		"--bandit=ucb1-0.5",
		"--budget=3s",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, cfg.Budget.Duration)
}

func TestParseArgsRequiresEvaluator(t *testing.T) {
	_, err := ParseArgs([]string{"--bandit=ucb-1.0", "--budget=100"}, nil)
	assert.Error(t, err)
}

func TestParseArgsRequiresBandit(t *testing.T) {
	_, err := ParseArgs([]string{"--evaluator=mc", "--budget=100"}, nil)
	assert.Error(t, err)
}

func TestParseArgsRequiresBudget(t *testing.T) {
	_, err := ParseArgs([]string{"--evaluator=mc", "--bandit=ucb-1.0"}, nil)
	assert.Error(t, err)
}

func TestParseArgsRejectsUnrecognizedOption(t *testing.T) {
	_, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100", "--bogus=1",
	}, nil)
	assert.Error(t, err)
}

func TestParseArgsRejectsWeightsPathWithoutBackend(t *testing.T) {
	_, err := ParseArgs([]string{
		"--evaluator=/tmp/weights.bin", "--bandit=ucb-1.0", "--budget=100",
	}, nil)
	assert.Error(t, err)
}

func TestParseArgsParsesMatrixUCBSpec(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100",
		"--matrix-ucb-name=50-10-5-1.5",
	}, nil)
	require.NoError(t, err)
	require.True(t, cfg.MatrixUCB.Enabled)
	assert.Equal(t, 50, cfg.MatrixUCB.Delay)
	assert.Equal(t, 10, cfg.MatrixUCB.Interval)
	assert.Equal(t, 5, cfg.MatrixUCB.Minimum)
	assert.InDelta(t, 1.5, cfg.MatrixUCB.C, 1e-6)
}

func TestParseArgsRejectsZeroThreads(t *testing.T) {
	_, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100", "--threads=0",
	}, nil)
	assert.Error(t, err)
}

func TestParseArgsDefaultsUseTableToFalse(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100",
	}, nil)
	require.NoError(t, err)
	assert.False(t, cfg.UseTable)
}

func TestParseArgsAcceptsUseTableFlag(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100", "--use-table",
	}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.UseTable)
}

func TestParseArgsDefaultsSelfplayOptions(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100",
	}, nil)
	require.NoError(t, err)
	assert.False(t, cfg.KeepNode)
	assert.Equal(t, 64, cfg.BufferSize)
	assert.False(t, cfg.BuildTrajectories)
	assert.Equal(t, 200, cfg.MaxTurns)
	assert.Equal(t, selfplay.SampleEmpirical, cfg.Policy.Mode)
	assert.False(t, cfg.EarlyTermination.Enabled)
}

func TestParseArgsAcceptsSelfplayOptions(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100",
		"--keep-node", "--buffer-size=10", "--build-trajectories", "--max-turns=50",
		"--policy=m-2.0-0.05-0.25", "--early-termination=3.5",
	}, nil)
	require.NoError(t, err)
	assert.True(t, cfg.KeepNode)
	assert.Equal(t, 10, cfg.BufferSize)
	assert.True(t, cfg.BuildTrajectories)
	assert.Equal(t, 50, cfg.MaxTurns)
	assert.Equal(t, selfplay.SampleMixed, cfg.Policy.Mode)
	assert.InDelta(t, 2.0, cfg.Policy.Temperature, 1e-6)
	assert.InDelta(t, 0.05, cfg.Policy.Floor, 1e-6)
	assert.InDelta(t, 0.25, cfg.Policy.MixWeight, 1e-6)
	require.True(t, cfg.EarlyTermination.Enabled)
	assert.InDelta(t, 3.5, cfg.EarlyTermination.Threshold, 1e-6)
}

func TestParseArgsDefaultsRootNoiseToDisabled(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100",
	}, nil)
	require.NoError(t, err)
	assert.Nil(t, cfg.RootNoise)
}

func TestParseArgsAcceptsDirichletRootNoiseFlags(t *testing.T) {
	cfg, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=pucb-1.5", "--budget=100",
		"--dirichlet-eps=0.25", "--dirichlet-alpha=0.3",
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.RootNoise)
	assert.InDelta(t, 0.25, cfg.RootNoise.Eps, 1e-6)
	assert.InDelta(t, 0.3, cfg.RootNoise.Alpha, 1e-6)
}

func TestParseArgsRejectsLoneDirichletFlag(t *testing.T) {
	_, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=pucb-1.5", "--budget=100",
		"--dirichlet-eps=0.25",
	}, nil)
	assert.Error(t, err)
}

func TestParseArgsRejectsUnknownPolicyMode(t *testing.T) {
	_, err := ParseArgs([]string{
		"--evaluator=mc", "--bandit=ucb-1.0", "--budget=100", "--policy=z",
	}, nil)
	assert.Error(t, err)
}
