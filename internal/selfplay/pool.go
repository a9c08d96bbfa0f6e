package selfplay

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// Runner is the subset of Worker[Team] RunPool needs; it exists so RunPool
// itself stays non-generic (a []*Worker[reference.Team] and a
// []*Worker[someOtherTeam] can't share a slice type, but both satisfy this
// interface).
type Runner interface {
	Run(ctx context.Context) error
}

// RunPool runs every worker concurrently via an errgroup.Group goroutine
// each, the way cmd/selfplay-worker's driver always has, but -- unlike a
// bare errgroup.Wait(), which only ever surfaces the first goroutine's
// error -- collects every worker's shutdown error into one
// *multierror.Error (github.com/hashicorp/go-multierror, grounded on
// Elvenson-alphabeth/agent.go's Close), so a batch of simultaneous frame
// buffer flush failures on process shutdown is reported in full instead of
// silently dropping all but one.
func RunPool(ctx context.Context, workers []Runner) error {
	var wg errgroup.Group
	var mu sync.Mutex
	var errs *multierror.Error

	for _, w := range workers {
		w := w
		wg.Go(func() error {
			if err := w.Run(ctx); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	wg.Wait()
	return errs.ErrorOrNil()
}
