package selfplay

import (
	"context"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	err error
}

func (s stubRunner) Run(context.Context) error { return s.err }

func TestRunPoolReturnsNilWhenAllWorkersSucceed(t *testing.T) {
	err := RunPool(context.Background(), []Runner{stubRunner{}, stubRunner{}, stubRunner{}})
	assert.NoError(t, err)
}

func TestRunPoolAggregatesEveryWorkerError(t *testing.T) {
	errA := errors.New("worker a failed")
	errB := errors.New("worker b failed")

	err := RunPool(context.Background(), []Runner{
		stubRunner{err: errA},
		stubRunner{},
		stubRunner{err: errB},
	})
	require.Error(t, err)

	merr, ok := err.(*multierror.Error)
	require.True(t, ok)
	assert.Len(t, merr.Errors, 2)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
}
