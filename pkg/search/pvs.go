package search

import (
	"context"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/movegen"
	"github.com/kestrelchess/kestrel/pkg/see"
	"github.com/kestrelchess/kestrel/pkg/tt"
)

// futilityMargin is the slack added to the static material/capture estimate at a frontier node
// before comparing it against alpha: roughly a minor piece's worth, so a quiet move that could
// plausibly swing the position by that much is never pruned away.
const futilityMargin = 300

// nullMoveReduction is how much shallower the verification search goes after a null move.
const nullMoveReduction = 3

// PVS implements principal variation search with alpha-beta, null-move pruning, futility
// pruning at frontier nodes, and zero-window re-searches for every move after the first.
// Pseudo-code:
//
//	function pvs(node, depth, α, β) is
//	    if depth = 0 then return quiesce(node, α, β)
//	    for each child of node do
//	        if child is first child then
//	            score := −pvs(child, depth−1, −β, −α)
//	        else
//	            score := −pvs(child, depth−1, −α−1, −α)
//	            if α < score < β then
//	                score := −pvs(child, depth−1, −β, −score)
//	        α := max(α, score)
//	        if α ≥ β then break
//	    return α
//
// See: https://en.wikipedia.org/wiki/Principal_variation_search.
type PVS struct {
	Eval eval.Evaluator
}

func (p PVS) Search(ctx context.Context, sctx *Context, g *board.Game, depth int, quit <-chan struct{}) (uint64, board.Score, []board.Move, error) {
	e := p.Eval
	if sctx.Noise != nil {
		e = noisyEval{inner: e, noise: sctx.Noise}
	}
	run := &runPVS{eval: e, g: g, tt: sctx.TT, quit: quit}
	score, moves := run.search(ctx, depth, 0, sctx.Alpha, sctx.Beta, false)
	if IsClosed(quit) {
		return 0, 0, nil, ErrHalted
	}
	return run.nodes, score, moves, nil
}

type runPVS struct {
	eval  eval.Evaluator
	g     *board.Game
	tt    *tt.Table
	nodes uint64
	quit  <-chan struct{}
}

// search returns the score and principal variation for the side to move at g's current
// position, from that side's own perspective (positive is good for whoever is to move).
func (r *runPVS) search(ctx context.Context, depth, level int, alpha, beta board.Score, isNullSearch bool) (board.Score, []board.Move) {
	if IsClosed(r.quit) {
		return alpha, nil
	}
	if result := r.g.Result(); result.Outcome == board.Draw {
		return 0, nil
	}

	pos := r.g.Position()
	turn := pos.Turn()
	hash := pos.Hash()

	alphaAtEntry := alpha
	if bound, score, move, ok := r.tt.Read(hash, turn, depth, level); ok {
		switch bound {
		case tt.ExactBound:
			return score, []board.Move{move}
		case tt.LowerBound:
			if score >= beta {
				return score, []board.Move{move}
			}
			if score > alpha {
				alpha = score
			}
		case tt.UpperBound:
			if score <= alpha {
				return score, []board.Move{move}
			}
			if score < beta {
				beta = score
			}
		}
	}

	if depth <= 0 {
		nodes, score := Quiescence{Eval: r.eval}.quiesce(ctx, r.g, r.tt, alpha, beta, level, r.quit)
		r.nodes += nodes
		return score, nil
	}

	r.nodes++

	moves := movegen.Generate(pos)
	isCheck := pos.IsChecked(turn)

	if level > 0 && !isNullSearch && len(moves) > 1 && depth > nullMoveReduction && !isCheck && hasNonPawnMaterial(pos, turn) {
		nullMove := board.NullMove
		pos.MakeMove(&nullMove)
		score, _ := r.search(ctx, depth-1-nullMoveReduction, level+1, -beta, -beta+1, true)
		pos.UnmakeMove(nullMove)

		if -score >= beta {
			return -score, nil
		}
	}

	ordered := order(pos, moves, r.tt, hash, turn, level)

	var pv []board.Move
	hasLegalMove := false
	bestMove := board.Move{}

	for {
		m, ok := ordered.Next()
		if !ok {
			break
		}
		if !movegen.IsLegal(pos, m) {
			continue
		}

		if level > 0 && !isCheck && depth == 1 {
			margin := materialScore(pos, turn) + m.Capture.Value() + futilityMargin
			if board.Score(margin) <= alpha {
				continue
			}
		}

		r.g.Push(m)

		var score board.Score
		var rem []board.Move
		if !hasLegalMove {
			score, rem = r.search(ctx, depth-1, level+1, -beta, -alpha, false)
		} else {
			score, rem = r.search(ctx, depth-1, level+1, -alpha-1, -alpha, false)
			if -score > alpha && -score < beta {
				score, rem = r.search(ctx, depth-1, level+1, -beta, -alpha, false)
			}
		}
		r.g.Pop()

		hasLegalMove = true

		if -score > alpha {
			alpha = -score
			bestMove = m
			pv = append([]board.Move{m}, rem...)
		}

		if alpha >= beta {
			r.tt.Write(hash, turn, tt.LowerBound, depth, level, alpha, m)
			return alpha, pv
		}
	}

	if !hasLegalMove {
		if result := r.g.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return board.MinScore, nil
		}
		return 0, nil
	}

	bound := tt.ExactBound
	if alpha <= alphaAtEntry {
		bound = tt.UpperBound
	}
	r.tt.Write(hash, turn, bound, depth, level, alpha, bestMove)

	return alpha, pv
}

// hasNonPawnMaterial reports whether side has at least a rook's worth of non-pawn material,
// the null-move-pruning precondition that guards against zugzwang in bare king-and-pawn endings.
// A lone minor piece (worth less than a rook) must not pass this guard.
func hasNonPawnMaterial(pos *board.Position, side board.Color) bool {
	total := 0
	for piece := board.Bishop; piece <= board.Queen; piece++ {
		total += pos.Pieces(side, piece).PopCount() * piece.Value()
	}
	return total >= board.Rook.Value()
}

func materialScore(pos *board.Position, side board.Color) int {
	total := 0
	for piece := board.Pawn; piece < board.NumPieces; piece++ {
		total += (pos.Pieces(side, piece).PopCount() - pos.Pieces(side.Opponent(), piece).PopCount()) * piece.Value()
	}
	return total
}

// order builds the PopBest move list for a node: the transposition-table hint, if any, is
// assigned the top priority so it is always returned first; everything else is priced by its
// static exchange value, so good captures come off the list ahead of quiet moves and losing
// captures come off last. The list is a lazy priority queue, not an eagerly sorted slice: a
// cutoff a few moves in never pays for ranking the moves it never looks at.
func order(pos *board.Position, moves []board.Move, table *tt.Table, hash board.ZobristHash, side board.Color, level int) *board.MoveList {
	var hint board.Move
	hasHint := false
	if _, _, m, ok := table.Read(hash, side, 0, level); ok {
		hint, hasHint = m, true
	}

	byExchangeValue := func(m board.Move) board.MovePriority {
		if !m.IsCapture() {
			return 0
		}
		return board.MovePriority(see.Evaluate(pos, m))
	}

	fn := byExchangeValue
	if hasHint {
		fn = board.First(hint, byExchangeValue)
	}
	return board.NewMoveList(moves, fn)
}

// noisyEval perturbs an inner evaluator's score by the search context's noise source, so the
// same evaluator can be reused un-noised elsewhere (tests, SEE-adjacent static calls) while a
// live game gets per-launch randomness without rebuilding the evaluator.
type noisyEval struct {
	inner eval.Evaluator
	noise eval.Noise
}

func (n noisyEval) Evaluate(g *board.Game, side board.Color) board.Score {
	return n.inner.Evaluate(g, side) + n.noise.Sample()
}
