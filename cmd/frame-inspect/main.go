// frame-inspect decodes and prints the contents of ".battle.data" episode
// files (internal/frame) and, optionally, ".build.data" team-building
// trajectory files (internal/build) written by cmd/selfplay-worker, for
// debugging and spot-checking self-play output.
//
// See -help for flags.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awalterschulze/gographviz"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/janpfeifer/pkmn-mcts/internal/build"
	"github.com/janpfeifer/pkmn-mcts/internal/engine"
	"github.com/janpfeifer/pkmn-mcts/internal/engine/reference"
	"github.com/janpfeifer/pkmn-mcts/internal/frame"
)

var (
	flagStateSize = flag.Int("state_size", reference.StateSize,
		"Serialized engine state width in bytes.")
	flagUpdates = flag.Bool("updates", false, "Print every turn's recorded update, not just the episode summary.")
	flagLimit   = flag.Int("limit", 0, "Stop after this many records (0 means no limit).")

	flagGraph = flag.Bool("graph", false,
		"Dump one turn's joint-action distribution (outer product of the two empirical policies) as a graphviz digraph, for debugging a single decision point.")
	flagGraphTurn = flag.Int("graph_turn", 0,
		"Which turn of the first episode to render with --graph.")
)

var resultNames = map[engine.Result]string{
	engine.Ongoing: "ongoing",
	engine.Win:     "p1-win",
	engine.Loss:    "p1-loss",
	engine.Tie:     "tie",
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if flag.NArg() == 0 {
		klog.Exit("frame-inspect: usage: frame-inspect [flags] <file> [<file>...]")
	}
	for _, path := range flag.Args() {
		if err := inspectFile(path); err != nil {
			klog.Exitf("frame-inspect: %s: %v", path, err)
		}
	}
}

func inspectFile(path string) error {
	if strings.HasSuffix(path, ".build.data") {
		return inspectBuildFile(path)
	}
	return inspectBattleFile(path)
}

func inspectBattleFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening")
	}
	defer f.Close()

	codec := frame.NewCodec(*flagStateSize)
	r, err := codec.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "opening zstd stream")
	}
	defer r.Close()

	fmt.Printf("%s:\n", path)
	count := 0
	for {
		if *flagLimit > 0 && count >= *flagLimit {
			break
		}
		rec, err := r.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading record")
		}
		fmt.Printf("  episode %d: result=%s turns=%d state_bytes=%d\n",
			count, resultNames[rec.Result], len(rec.Updates), len(rec.EngineState))
		if *flagUpdates {
			for i, u := range rec.Updates {
				fmt.Printf("    turn %3d: c1=%d c2=%d iters=%d v_empirical=%.4f v_nash=%.4f\n",
					i, u.C1, u.C2, u.Iterations, u.EmpiricalV, u.NashV)
			}
		}
		if *flagGraph && count == 0 {
			if *flagGraphTurn < 0 || *flagGraphTurn >= len(rec.Updates) {
				return errors.Errorf("--graph_turn=%d out of range for episode 0 (%d turns)", *flagGraphTurn, len(rec.Updates))
			}
			dot, err := jointValueDOT(rec.Updates[*flagGraphTurn])
			if err != nil {
				return errors.Wrap(err, "rendering --graph")
			}
			fmt.Println(dot)
		}
		count++
	}
	fmt.Printf("  %d episode(s)\n", count)
	return nil
}

// jointValueDOT renders a bipartite digraph of turn's joint-action
// distribution using github.com/awalterschulze/gographviz (grounded on
// Elvenson-alphabeth's tree/graph export convention). frame.Update only
// stores the two players' marginal policies, not the full m×n matrix the
// live search solved, so the edge weights here are the outer product of
// the two empirical marginals -- an approximation of the joint
// distribution, not a reconstruction of the actual visit/value matrix.
func jointValueDOT(u frame.Update) (string, error) {
	g := gographviz.NewGraph()
	if err := g.SetName("root"); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}

	p1Nodes := make([]string, len(u.P1Empirical))
	for i, p := range u.P1Empirical {
		name := fmt.Sprintf("p1_%d", i)
		p1Nodes[i] = name
		attrs := map[string]string{"label": fmt.Sprintf("%q", fmt.Sprintf("c1=%d p=%.3f", i, p))}
		if err := g.AddNode("root", name, attrs); err != nil {
			return "", err
		}
	}
	p2Nodes := make([]string, len(u.P2Empirical))
	for j, p := range u.P2Empirical {
		name := fmt.Sprintf("p2_%d", j)
		p2Nodes[j] = name
		attrs := map[string]string{"label": fmt.Sprintf("%q", fmt.Sprintf("c2=%d p=%.3f", j, p))}
		if err := g.AddNode("root", name, attrs); err != nil {
			return "", err
		}
	}
	for i, n1 := range p1Nodes {
		for j, n2 := range p2Nodes {
			weight := u.P1Empirical[i] * u.P2Empirical[j]
			attrs := map[string]string{"label": fmt.Sprintf("%q", fmt.Sprintf("%.4f", weight))}
			if err := g.AddEdge(n1, n2, true, attrs); err != nil {
				return "", err
			}
		}
	}
	return g.String(), nil
}

func inspectBuildFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening")
	}
	defer f.Close()

	codec := build.NewCodec()
	r, err := codec.NewReader(f)
	if err != nil {
		return errors.Wrap(err, "opening zstd stream")
	}
	defer r.Close()

	fmt.Printf("%s:\n", path)
	count := 0
	for {
		if *flagLimit > 0 && count >= *flagLimit {
			break
		}
		traj, err := r.ReadTrajectory()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "reading trajectory")
		}
		value := "none"
		if traj.Value != nil {
			value = fmt.Sprintf("%.4f", *traj.Value)
		}
		fmt.Printf("  trajectory %d: steps=%d value=%s\n", count, len(traj.Steps), value)
		if *flagUpdates {
			for i, s := range traj.Steps {
				fmt.Printf("    step %2d: chosen=%d of %d candidates (p=%.4f)\n",
					i, s.ChosenIndex, len(s.Candidates), s.Probability)
			}
		}
		count++
	}
	fmt.Printf("  %d trajectory(ies)\n", count)
	return nil
}
