// selfplay-worker runs one process of the self-play pool described by
// spec.md §6: it drafts teams, searches and samples a joint action every
// turn until the battle is terminal, and flushes completed episodes (and,
// optionally, build trajectories) as compressed frame files under --dir.
//
// See -help for flags, plus the "--key=value" options documented in
// internal/config.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gomlx/gomlx/backends"
	"github.com/google/uuid"
	"k8s.io/klog/v2"

	"github.com/janpfeifer/pkmn-mcts/internal/build"
	"github.com/janpfeifer/pkmn-mcts/internal/config"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/engine/reference"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
	"github.com/janpfeifer/pkmn-mcts/internal/profilers"
	"github.com/janpfeifer/pkmn-mcts/internal/search"
	"github.com/janpfeifer/pkmn-mcts/internal/selfplay"
	"github.com/janpfeifer/pkmn-mcts/internal/status"
	"github.com/janpfeifer/pkmn-mcts/internal/ui/spinning"
)

// gomlxBackend is the package-level GoMLX backend singleton, built at most
// once and only if --evaluator ends up naming a neural weights file.
var gomlxBackend = sync.OnceValue(func() backends.Backend { return backends.New() })

var flagStatusInterval = flag.Duration("status_interval", 5*time.Second,
	"How often to print the aggregate status line to stderr.")

func main() {
	klog.InitFlags(nil)
	flagArgs, configArgs := splitRegisteredFlags(os.Args[1:])
	if err := flag.CommandLine.Parse(flagArgs); err != nil {
		klog.Exitf("selfplay-worker: parsing flags: %v", err)
	}

	cfg, err := config.ParseArgs(configArgs, gomlxBackend)
	if err != nil {
		klog.Exitf("selfplay-worker: %v", err)
	}

	runID := uuid.New().String()

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		klog.Exitf("selfplay-worker: creating --dir=%q: %v", cfg.Dir, err)
	}
	if err := writeArgsFile(cfg.Dir, runID, os.Args[1:]); err != nil {
		klog.Exitf("selfplay-worker: recording invocation: %v", err)
	}

	globalCtx, globalCancel := context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 5*time.Second)
	defer globalCancel()

	profilers.Setup(globalCtx)
	defer profilers.OnQuit()

	counters := &status.Counters{}
	reporter := status.New(counters, os.Stderr, *flagStatusInterval)
	reporter.RunID = runID
	stop := make(chan struct{})
	go reporter.Run(stop)

	err = runWorkerPool(globalCtx, cfg, counters)
	close(stop)
	fmt.Fprintln(os.Stderr, reporter.Line())

	if err != nil && globalCtx.Err() == nil {
		klog.Exitf("selfplay-worker: %v", err)
	}
}

// runWorkerPool launches cfg.Threads selfplay.Worker instances, each with
// its own RNG, frame buffer and search.Searcher sharing one atomic
// filename counter, and waits for all of them to return (spec.md §5: "each
// worker owns its ... frame buffer" while filenames are process-wide
// unique).
func runWorkerPool(ctx context.Context, cfg config.Worker, counters *status.Counters) error {
	workers := make([]selfplay.Runner, 0, cfg.Threads)
	var counter selfplay.Counter
	frameCodec := frame.NewCodec(reference.StateSize)
	buildCodec := build.NewCodec()

	for i := 0; i < cfg.Threads; i++ {
		workerIdx := i
		w := &selfplay.Worker[reference.Team]{
			Config: selfplay.Config{
				Budget:                  cfg.Budget,
				KeepNode:                cfg.KeepNode,
				Policy:                  cfg.Policy,
				MaxTurns:                cfg.MaxTurns,
				RecordBuildTrajectories: cfg.BuildTrajectories,
			},
			RNG:      rand.New(rand.NewSource(int64(cfg.Seed) + int64(workerIdx))),
			Provider: build.NewRandomProvider(),
			NewState: func(p1, p2 reference.Team) engine.State { return reference.NewBattle(p1, p2) },
			Searcher: search.New(search.Config{
				BanditFactory: cfg.Bandit,
				Evaluator:     cfg.Evaluator,
				UseTable:      cfg.UseTable,
				MatrixUCB:     cfg.MatrixUCB,
				RootNoise:     cfg.RootNoise,
			}, rand.New(rand.NewSource(int64(cfg.Seed)+int64(workerIdx)+1))),
			Counters: counters,
			Frames:   selfplay.NewFrameBuffer(cfg.Dir, cfg.BufferSize, &counter, frameCodec),
		}
		if cfg.EarlyTermination.Enabled {
			et := cfg.EarlyTermination
			w.EarlyTermination = &et
		}
		if cfg.BuildTrajectories {
			w.Builds = selfplay.NewBuildBuffer(cfg.Dir, cfg.BufferSize, &counter, buildCodec)
		}

		workers = append(workers, w)
	}
	return selfplay.RunPool(ctx, workers)
}

// splitRegisteredFlags partitions argv into the subset flag.CommandLine
// already has flags registered for (klog's verbosity flags, profilers'
// -prof/-cpu_profile, and this file's -status_interval) and the rest,
// which internal/config's own "--key=value" parser consumes. This lets a
// single process host both the teacher's flag-package-based ambient
// tooling and the spec's dedicated worker option grammar without either
// parser seeing the other's options.
func splitRegisteredFlags(args []string) (registered, rest []string) {
	for _, a := range args {
		name := strings.TrimLeft(a, "-")
		if eq := strings.IndexByte(name, '='); eq >= 0 {
			name = name[:eq]
		}
		if flag.CommandLine.Lookup(name) != nil {
			registered = append(registered, a)
		} else {
			rest = append(rest, a)
		}
	}
	return registered, rest
}

// writeArgsFile records the invocation at <dir>/args, one argument per
// line, per spec.md §6: "The args file at the root records the
// invocation." The first line is a run_id comment: a uuid.New() tag
// letting multiple concurrent selfplay-worker processes writing into
// sibling --dir trees be told apart in logs without relying on PID reuse.
func writeArgsFile(dir, runID string, args []string) error {
	content := fmt.Sprintf("# run_id: %s\n%s\n", runID, strings.Join(args, "\n"))
	return os.WriteFile(filepath.Join(dir, "args"), []byte(content), 0o644)
}
