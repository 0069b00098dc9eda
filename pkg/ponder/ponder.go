// Package ponder runs the search engine on the current position in a background worker while
// control is with the opponent, sharing the transposition table with the foreground search.
package ponder

import (
	"context"
	"sync"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/seekerror/logw"
	"go.uber.org/atomic"
)

// Controller runs a Search on the shared game and transposition table while the foreground
// engine waits for the opponent's move. It never plays a move itself. StartPondering clones
// the game before searching, so the foreground's own Push/Pop on the live game is never raced
// against the worker's Push/Pop on its private copy.
type Controller struct {
	root  search.Search
	g     *board.Game
	table *tt.Table
	noise eval.Noise

	mu      sync.Mutex
	running bool
	stop    atomic.Bool
	quit    chan struct{}
	wg      sync.WaitGroup
}

// New returns a Controller that will ponder root against g and table whenever StartPondering
// is called. The game referenced at that time is cloned; later foreground moves on g are
// picked up only by the next StartPondering call.
func New(root search.Search, g *board.Game, table *tt.Table, noise eval.Noise) *Controller {
	return &Controller{root: root, g: g, table: table, noise: noise}
}

// StartPondering spawns exactly one background worker, deepening up to depth plies with an
// effectively unbounded time budget. A no-op if pondering is already running.
func (c *Controller) StartPondering(ctx context.Context, depth int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.stop.Store(false)
	c.quit = make(chan struct{})

	clone := c.g.Clone()
	quit := c.quit

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		sctx := &search.Context{Alpha: board.MinScore, Beta: board.MaxScore, TT: c.table, Noise: c.noise}
		for d := 1; d <= depth; d++ {
			if c.stop.Load() {
				return
			}
			if _, _, _, err := c.root.Search(ctx, sctx, clone, d, quit); err != nil {
				if err != search.ErrHalted {
					logw.Errorf(ctx, "pondering failed on %v at depth=%v: %v", clone, d, err)
				}
				return
			}
		}
	}()
}

// StopPondering stops the worker, if any, and waits for it to return before returning itself.
// Safe to call when not pondering, including when pondering was never started: a controller
// that never ran a worker has nothing to join, so Stop is then a no-op.
func (c *Controller) StopPondering() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.stop.Store(true)
	close(c.quit)
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
}
