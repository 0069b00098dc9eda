// Package search implements the engine's move-tree search: principal variation search with a
// quiescence leaf, iterative deepening, and the time/depth controls that drive them.
package search

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/seekerror/stdlib/pkg/lang"
)

// ErrHalted indicates the search was stopped via Handle.Halt before it completed naturally.
var ErrHalted = errors.New("search halted")

// PV is the principal variation found at some search depth.
type PV struct {
	Depth int
	Moves []board.Move
	Score board.Score
	Nodes uint64
	Hash  float64 // transposition table utilization, [0;1]
	Time  time.Duration
}

func (p PV) String() string {
	return fmt.Sprintf("depth=%v score=%v nodes=%v time=%v pv=%v", p.Depth, p.Score, p.Nodes, p.Time, p.Moves)
}

// Context carries the window and shared transposition table through one fixed-depth search.
type Context struct {
	Alpha, Beta board.Score
	TT          *tt.Table
	Noise       eval.Noise
}

// Search implements search of the game tree to a fixed depth. Implementations must be
// reentrant: the same Search is called once per iterative-deepening ply.
type Search interface {
	Search(ctx context.Context, sctx *Context, g *board.Game, depth int, quit <-chan struct{}) (uint64, board.Score, []board.Move, error)
}

// IsClosed reports whether quit has already been closed, without blocking.
func IsClosed(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}

// Options hold the dynamic, per-call limits a caller may place on a search.
type Options struct {
	// DepthLimit, if set, stops iterative deepening after the given ply. Zero means no limit.
	DepthLimit lang.Optional[uint]
	// TimeControl, if set, derives a soft/hard deadline from the game clock.
	TimeControl lang.Optional[TimeControl]
}

func (o Options) String() string {
	depth := "-"
	if v, ok := o.DepthLimit.V(); ok {
		depth = fmt.Sprintf("%v", v)
	}
	tc := "-"
	if v, ok := o.TimeControl.V(); ok {
		tc = v.String()
	}
	return fmt.Sprintf("[depth=%v, time=%v]", depth, tc)
}

// TimeControl mirrors the remaining clock for both sides and the moves-to-go count, if known.
type TimeControl struct {
	White, Black time.Duration
	MovesToGo    int // 0 == rest of game
}

func (t TimeControl) String() string {
	if t.MovesToGo == 0 {
		return fmt.Sprintf("%.1fs<>%.1fs", t.White.Seconds(), t.Black.Seconds())
	}
	return fmt.Sprintf("%.1fs<>%.1fs[moves=%v]", t.White.Seconds(), t.Black.Seconds(), t.MovesToGo)
}

// minTimeBudget is the floor a near-exhausted clock is still clamped up to: a search is always
// given at least a second to find a move, rather than bailing out instantly on an almost-flagged
// clock.
const minTimeBudget = time.Second

// Limits returns a soft and a hard deadline for the side to move: no new iteration should
// begin past the soft limit, and the in-progress iteration must be aborted by the hard limit.
// Assumes 40 moves left in the game if MovesToGo is unset. Both limits are clamped to a minimum
// of one second, even against an almost-exhausted clock.
func (t TimeControl) Limits(c board.Color) (soft, hard time.Duration) {
	remainder := t.White
	if c == board.Black {
		remainder = t.Black
	}

	moves := 40
	if t.MovesToGo > 0 {
		moves = t.MovesToGo + 1
	}

	soft = remainder / time.Duration(2*moves)
	if soft < minTimeBudget {
		soft = minTimeBudget
	}
	hard = 3 * soft
	return soft, hard
}

// Launcher starts a search and returns a handle to manage it and a channel of deepening PVs.
type Launcher interface {
	Launch(ctx context.Context, g *board.Game, t *tt.Table, noise eval.Noise, opt Options) (Handle, <-chan PV)
}

// Handle lets the caller stop an in-flight search and retrieve its best result so far.
type Handle interface {
	// Halt stops the search, if running, and returns the deepest completed PV. Idempotent.
	Halt() PV
}
