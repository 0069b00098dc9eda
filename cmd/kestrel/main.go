// kestrel wires the engine to a single position and depth for ad hoc analysis. It does not
// speak UCI or CECP, read a move from stdin, or otherwise drive an interactive game: see
// pkg/engine for the reusable pieces a protocol front end would be built on top of.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/engine"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

var (
	position = flag.String("fen", "", "Position to analyze (default to standard start)")
	depth    = flag.Uint("depth", 6, "Search depth")
	hash     = flag.Uint("hash", 32, "Transposition table size, in MB")
	noise    = flag.Uint("noise", 0, "Evaluation noise in centipawns (zero if deterministic)")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	if *position == "" {
		*position = fen.Initial
	}

	root := search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}
	e := engine.New(ctx, root, engine.WithOptions(engine.Options{
		Hash:  *hash,
		Noise: *noise,
	}))

	if err := e.Reset(ctx, *position); err != nil {
		logw.Exitf(ctx, "invalid fen %q: %v", *position, err)
	}

	out, err := e.Analyze(ctx, search.Options{DepthLimit: lang.Some(*depth)})
	if err != nil {
		logw.Exitf(ctx, "analyze failed: %v", err)
	}

	var last search.PV
	for pv := range out {
		last = pv
		fmt.Println(pv)
	}

	start := time.Now()
	if _, err := e.Halt(ctx); err != nil {
		logw.Debugf(ctx, "halt after drain: %v", err)
	}
	logw.Debugf(ctx, "drained in %v", time.Since(start))

	if len(last.Moves) > 0 {
		fmt.Println("bestmove", last.Moves[0])
	}
}
