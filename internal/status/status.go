// Package status prints a periodic single-line worker status, the way
// spec.md §7 expects ("periodically print aggregate throughput and error
// counts to stderr"): games completed, frames written, errors absorbed,
// and iterations/sec, styled with lipgloss the same way the teacher's
// internal/ui/cli package styles its board and banner output.
package status

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/janpfeifer/pkmn-mcts/internal/engine"
)

// Counters are the atomic tallies a worker updates as it runs; Reporter
// reads them without synchronizing with the writers beyond the atomicity
// each field already provides.
type Counters struct {
	Games      atomic.Int64
	Frames     atomic.Int64
	Iterations atomic.Int64
	Errors     atomic.Int64

	// Per-matchup win/loss counters, process-wide atomics per spec.md §5
	// ("Per-matchup win/loss counters are process-wide atomics"). Player1Wins
	// counts episodes Player1 won outright; Player2Wins symmetrically;
	// Ties counts draws and early-termination-free exhausted-depth ties.
	Player1Wins atomic.Int64
	Player2Wins atomic.Int64
	Ties        atomic.Int64
}

// RecordResult increments the counter matching a completed episode's
// terminal result (from Player1's perspective).
func (c *Counters) RecordResult(result engine.Result) {
	switch result {
	case engine.Win:
		c.Player1Wins.Add(1)
	case engine.Loss:
		c.Player2Wins.Add(1)
	default: // engine.Tie, or engine.Ongoing (shouldn't happen, counted as a tie).
		c.Ties.Add(1)
	}
}

// Reporter prints one status line to Out every Interval, until Stop is
// closed. It is grounded on the teacher's board-printing UI only in
// spirit (lipgloss styling, terminal-width awareness); the content itself
// is spec.md's worker throughput line, which the teacher has no
// equivalent of.
type Reporter struct {
	Counters *Counters
	Out      io.Writer
	Interval time.Duration

	// RunID, if set, is prefixed to every printed line so multiple
	// concurrent selfplay-worker processes on one box (or across a fleet)
	// can be told apart in logs without relying on PID reuse. Empty by
	// default (no prefix).
	RunID string

	startedAt time.Time
	lastIter  int64
	lastAt    time.Time

	style lipgloss.Style
}

// New builds a Reporter. Out defaults to os.Stderr, Interval to 5s, if
// zero-valued.
func New(counters *Counters, out io.Writer, interval time.Duration) *Reporter {
	if out == nil {
		out = os.Stderr
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	now := time.Now()
	return &Reporter{
		Counters:  counters,
		Out:       out,
		Interval:  interval,
		startedAt: now,
		lastAt:    now,
		style: lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("4")).
			Padding(0, 1),
	}
}

// Run prints a status line every Interval until stop is closed or ctx-like
// cancellation is signaled by closing stop; it returns once stop closes.
func (r *Reporter) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			fmt.Fprintln(r.Out, r.line())
		}
	}
}

// Line renders one status line without waiting for the next tick; useful
// for a final summary print at shutdown.
func (r *Reporter) Line() string {
	return r.line()
}

func (r *Reporter) line() string {
	now := time.Now()
	iter := r.Counters.Iterations.Load()
	elapsed := now.Sub(r.lastAt).Seconds()
	var rate float64
	if elapsed > 0 {
		rate = float64(iter-r.lastIter) / elapsed
	}
	r.lastIter = iter
	r.lastAt = now

	text := fmt.Sprintf(
		"games=%d (p1=%d/p2=%d/tie=%d) frames=%d errors=%d iters/s=%.0f uptime=%s",
		r.Counters.Games.Load(),
		r.Counters.Player1Wins.Load(), r.Counters.Player2Wins.Load(), r.Counters.Ties.Load(),
		r.Counters.Frames.Load(), r.Counters.Errors.Load(),
		rate, now.Sub(r.startedAt).Round(time.Second),
	)
	if r.RunID != "" {
		text = fmt.Sprintf("run=%s %s", r.RunID, text)
	}

	rendered := r.style.Render(text)
	if width, _, err := term.GetSize(int(os.Stderr.Fd())); err == nil && width > 0 && width < len(text)+4 {
		return text
	}
	return rendered
}
