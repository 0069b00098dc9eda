package search

import (
	"context"
	"sync"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/seekerror/stdlib/pkg/util/contextx"
	"github.com/seekerror/stdlib/pkg/util/iox"
)

// Iterative is a search harness that drives Root through deepening plies, publishing a PV after
// each completed depth and stopping at a depth or time limit, whichever comes first.
type Iterative struct {
	Root Search
}

func (i Iterative) Launch(ctx context.Context, g *board.Game, table *tt.Table, noise eval.Noise, opt Options) (Handle, <-chan PV) {
	out := make(chan PV, 1)
	h := &handle{
		init: iox.NewAsyncCloser(),
		quit: iox.NewAsyncCloser(),
	}
	go h.process(ctx, i.Root, g, table, noise, opt, out)
	return h, out
}

type handle struct {
	init, quit iox.AsyncCloser

	mu sync.Mutex
	pv PV
}

func (h *handle) process(ctx context.Context, root Search, g *board.Game, table *tt.Table, noise eval.Noise, opt Options, out chan PV) {
	defer h.init.Close()
	defer close(out)

	sctx := &Context{Alpha: board.MinScore, Beta: board.MaxScore, TT: table, Noise: noise}
	soft, useSoft := EnforceTimeControl(ctx, h, opt.TimeControl, g.Turn())
	deadline := time.Now().Add(soft)

	wctx, cancel := contextx.WithQuitCancel(ctx, h.quit.Closed())
	defer cancel()

	depth := 1
	for !h.quit.IsClosed() {
		// Checked at the top of the loop, not only after a completed iteration, so a search
		// that is about to blow the soft budget never even starts the next ply.
		if useSoft && !time.Now().Before(deadline) && depth > 1 {
			return
		}

		start := time.Now()

		nodes, score, moves, err := root.Search(wctx, sctx, g, depth, h.quit.Closed())
		if err != nil {
			if err == ErrHalted {
				return
			}
			logw.Errorf(ctx, "search failed on %v at depth=%v: %v", g, depth, err)
			return
		}

		pv := PV{
			Depth: depth,
			Nodes: nodes,
			Score: score,
			Moves: moves,
			Time:  time.Since(start),
		}
		if table != nil {
			pv.Hash = table.Used()
		}

		logw.Debugf(ctx, "searched %v: %v", g.Position(), pv)

		h.mu.Lock()
		h.pv = pv
		h.mu.Unlock()

		select {
		case <-out:
		default:
		}
		out <- pv

		h.init.Close()

		if limit, ok := opt.DepthLimit.V(); ok && uint(depth) == limit {
			return
		}
		if isMateScore(score) {
			return // forced mate found at full width; deepening further cannot improve it.
		}
		if useSoft && !time.Now().Before(deadline) {
			return
		}
		depth++
	}
}

func isMateScore(s board.Score) bool {
	const matingMargin = 900
	return s >= board.MaxScore-matingMargin || s <= board.MinScore+matingMargin
}

func (h *handle) Halt() PV {
	<-h.init.Closed()
	h.quit.Close()

	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pv
}

// EnforceTimeControl starts a hard-limit timer, if tc is set, and returns the soft limit the
// caller should stop starting new iterations at.
func EnforceTimeControl(ctx context.Context, h Handle, tc lang.Optional[TimeControl], turn board.Color) (time.Duration, bool) {
	c, ok := tc.V()
	if !ok {
		return 0, false
	}

	soft, hard := c.Limits(turn)
	time.AfterFunc(hard, func() {
		h.Halt()
	})

	logw.Debugf(ctx, "time control limits for %v: [%v; %v]", c, soft, hard)
	return soft, true
}
