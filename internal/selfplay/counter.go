package selfplay

import "sync/atomic"

// Counter is the process-wide, monotonically increasing filename counter
// of spec.md §9 ("Global filename counter: a process-wide atomic counter
// owned by the driver; lifecycle = process."). One Counter is shared by
// every worker goroutine in a cmd/selfplay-worker invocation; Next is safe
// for concurrent use.
type Counter struct {
	n atomic.Uint64
}

// Next returns the next counter value, starting at 0.
func (c *Counter) Next() uint64 {
	return c.n.Add(1) - 1
}
