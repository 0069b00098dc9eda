package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/movegen"
	"github.com/kestrelchess/kestrel/pkg/ponder"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/seekerror/build"
	"github.com/seekerror/logw"
	"github.com/seekerror/stdlib/pkg/lang"
)

const engineName = "kestrel"

var version = build.NewVersion(0, 1, 0)

// Options are search creation options.
type Options struct {
	// Depth is the search depth limit. If zero, there is no limit. Overridden by search
	// options if provided.
	Depth uint
	// Hash is the transposition table size in MB. If zero, the engine will not use
	// a transposition table.
	Hash uint
	// Noise adds some centipawn randomness to the leaf evaluations.
	Noise uint
}

func (o Options) String() string {
	return fmt.Sprintf("{depth=%v, hash=%v, noise=%v}", o.Depth, o.Hash, o.Noise)
}

// Engine encapsulates game-playing logic, search, evaluation and pondering.
type Engine struct {
	launcher search.Launcher
	root     search.Search
	zt       *board.ZobristTable
	opts     Options

	g       *board.Game
	table   *tt.Table
	noise   eval.Noise
	active  search.Handle
	pondctl *ponder.Controller
	mu      sync.Mutex
}

// Option is an engine creation option.
type Option func(*Engine)

// WithOptions sets default runtime options.
func WithOptions(opts Options) Option {
	return func(e *Engine) {
		e.opts = opts
	}
}

// New returns a new Engine searching with root, which is typically search.PVS.
func New(ctx context.Context, root search.Search, opts ...Option) *Engine {
	e := &Engine{
		launcher: search.Iterative{Root: root},
		root:     root,
		zt:       board.NewZobristTable(),
	}
	for _, fn := range opts {
		fn(e)
	}

	if err := e.Reset(ctx, fen.Initial); err != nil {
		panic(fmt.Sprintf("invalid initial position: %v", err))
	}

	logw.Infof(ctx, "Initialized engine: %v, options=%v", e.Name(), e.opts)
	return e
}

// Name returns the engine name and version.
func (e *Engine) Name() string {
	return fmt.Sprintf("%v %v", engineName, version)
}

func (e *Engine) Options() Options {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.opts
}

func (e *Engine) SetDepth(depth uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Depth = depth
}

func (e *Engine) SetHash(size uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Hash = size
}

func (e *Engine) SetNoise(centipawns uint) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.Noise = centipawns
}

// Game returns a cloned copy of the current game, safe for the caller to inspect or mutate
// independently.
func (e *Engine) Game() *board.Game {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.g.Clone()
}

// Position returns the current position in FEN format. Convenience function.
func (e *Engine) Position() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return fen.Encode(e.g.Position(), e.g.NoProgress(), e.g.FullMoves())
}

// Reset resets the engine to a new starting position in FEN format.
func (e *Engine) Reset(ctx context.Context, position string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Reset %v, depth=%v, TT=%vMB, noise=%vcp", position, e.opts.Depth, e.opts.Hash, e.opts.Noise)

	e.stopLocked(ctx)

	pos, _, fullmoves, err := fen.Decode(e.zt, position)
	if err != nil {
		return err
	}
	e.g = board.NewGame(pos, fullmoves)

	e.table = nil
	if e.opts.Hash > 0 {
		e.table = tt.New(ctx, uint64(e.opts.Hash)<<20)
	}
	e.noise = nil
	if e.opts.Noise > 0 {
		e.noise = eval.NewRandom(int(e.opts.Noise), 0)
	}
	e.pondctl = ponder.New(e.root, e.g, e.table, e.noise)

	logw.Infof(ctx, "New game: %v", e.g)
	return nil
}

// Move selects the given move, usually an opponent move.
func (e *Engine) Move(ctx context.Context, move string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Move %v", move)

	candidate, err := board.ParseMove(move)
	if err != nil {
		return fmt.Errorf("invalid move: %v", err)
	}

	e.stopLocked(ctx)

	pos := e.g.Position()
	if !candidate.IsPromotion() {
		// A pawn reaching the last rank without a promotion letter promotes to a queen.
		if _, piece, ok := pos.Square(candidate.From); ok && piece == board.Pawn && board.PawnPromotionRank(pos.Turn()).IsSet(candidate.To) {
			candidate.Promotion = board.Queen
		}
	}
	for _, m := range movegen.Generate(pos) {
		if !candidate.Equals(m) {
			continue
		}
		if !movegen.IsLegal(pos, m) {
			return fmt.Errorf("illegal move: %v", m)
		}

		e.g.Push(m)
		logw.Infof(ctx, "Move %v: %v", m, e.g)
		return nil
	}
	return fmt.Errorf("invalid move: %v", candidate)
}

// TakeBack undoes the latest move.
func (e *Engine) TakeBack(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopLocked(ctx)

	m, ok := e.g.Pop()
	if !ok {
		return fmt.Errorf("no move to take back")
	}

	logw.Infof(ctx, "Takeback %v", m)
	return nil
}

// Analyze starts a foreground search of the current position. The search runs against a
// private clone of the game so the caller's own Push/Pop is never raced against it.
func (e *Engine) Analyze(ctx context.Context, opt search.Options) (<-chan search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := opt.DepthLimit.V(); !ok && e.opts.Depth > 0 {
		opt.DepthLimit = lang.Some(e.opts.Depth)
	}

	logw.Infof(ctx, "Analyze %v, opt=%v", e.g, opt)

	if e.active != nil {
		return nil, fmt.Errorf("search already active")
	}

	e.pondctl.StopPondering()

	handle, out := e.launcher.Launch(ctx, e.g.Clone(), e.table, e.noise, opt)
	e.active = handle
	return out, nil
}

// Halt halts the active search and returns the principal variation, if any.
func (e *Engine) Halt(ctx context.Context) (search.PV, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	logw.Infof(ctx, "Halt")

	pv, ok := e.haltSearchIfActiveLocked(ctx)
	if !ok {
		return search.PV{}, fmt.Errorf("no active search")
	}
	return pv, nil
}

// StartPondering begins searching the current position in the background, for use while
// waiting on the opponent's move. A no-op if a foreground search or pondering is already
// active.
func (e *Engine) StartPondering(ctx context.Context, depth int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != nil {
		return
	}
	e.pondctl.StartPondering(ctx, depth)
}

// StopPondering stops the pondering worker, if any, and waits for it to return. Safe to call
// whether or not pondering is active.
func (e *Engine) StopPondering(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pondctl.StopPondering()
}

func (e *Engine) stopLocked(ctx context.Context) {
	e.pondctl.StopPondering()
	_, _ = e.haltSearchIfActiveLocked(ctx)
}

func (e *Engine) haltSearchIfActiveLocked(ctx context.Context) (search.PV, bool) {
	if e.active != nil {
		pv := e.active.Halt()
		logw.Infof(ctx, "Search %v halted: %v", e.g, pv)

		e.active = nil
		return pv, true
	}
	return search.PV{}, false
}
