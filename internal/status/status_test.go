package status

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

func TestRecordResult(t *testing.T) {
	var counters Counters
	counters.RecordResult(engine.Win)
	counters.RecordResult(engine.Loss)
	counters.RecordResult(engine.Tie)
	counters.RecordResult(engine.Win)

	assert.EqualValues(t, 2, counters.Player1Wins.Load())
	assert.EqualValues(t, 1, counters.Player2Wins.Load())
	assert.EqualValues(t, 1, counters.Ties.Load())
}

func TestLineReportsAllCounters(t *testing.T) {
	var counters Counters
	counters.Games.Store(3)
	counters.Frames.Store(120)
	counters.Errors.Store(1)
	counters.Iterations.Store(1000)

	var buf bytes.Buffer
	r := New(&counters, &buf, time.Millisecond)
	line := r.Line()

	assert.Contains(t, line, "games=3")
	assert.Contains(t, line, "frames=120")
	assert.Contains(t, line, "errors=1")
}

func TestLinePrefixesRunID(t *testing.T) {
	var counters Counters
	var buf bytes.Buffer
	r := New(&counters, &buf, time.Millisecond)
	r.RunID = "abc123"

	line := r.Line()
	assert.Contains(t, line, "run=abc123")
}

func TestRunStopsOnSignal(t *testing.T) {
	var counters Counters
	var buf bytes.Buffer
	r := New(&counters, &buf, time.Millisecond)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		r.Run(stop)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	close(stop)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after stop was closed")
	}
	assert.True(t, strings.Contains(buf.String(), "games=0") || buf.Len() == 0)
}

func TestNewDefaultsOutAndInterval(t *testing.T) {
	var counters Counters
	r := New(&counters, nil, 0)
	assert.Equal(t, 5*time.Second, r.Interval)
	assert.NotNil(t, r.Out)
}
