package search

import (
	"context"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/movegen"
	"github.com/kestrelchess/kestrel/pkg/see"
	"github.com/kestrelchess/kestrel/pkg/tt"
)

// Quiescence mirrors the main PVS search at the frontier, but only plays out captures (or
// check evasions, when in check) to avoid the horizon effect: a position that looks quiet by
// material but has a hanging piece one ply below the search horizon.
type Quiescence struct {
	Eval eval.Evaluator
}

func (q Quiescence) quiesce(ctx context.Context, g *board.Game, table *tt.Table, alpha, beta board.Score, level int, quit <-chan struct{}) (uint64, board.Score) {
	var nodes uint64
	nodes++

	if IsClosed(quit) {
		return nodes, alpha
	}
	if result := g.Result(); result.Outcome == board.Draw {
		return nodes, 0
	}

	pos := g.Position()
	turn := pos.Turn()
	isCheck := pos.IsChecked(turn)

	if !isCheck {
		standPat := q.Eval.Evaluate(g, turn)
		if standPat >= beta {
			return nodes, beta
		}
		if standPat > alpha {
			alpha = standPat
		}

		margin := materialScore(pos, turn) + futilityMargin
		if board.Score(margin) <= alpha {
			return nodes, alpha
		}
	}

	var moves []board.Move
	if isCheck {
		moves = movegen.Generate(pos)
	} else {
		moves = movegen.GenerateCaptures(pos)
	}

	hasLegalMove := false
	ordered := order(pos, moves, table, pos.Hash(), turn, level)
	for {
		m, ok := ordered.Next()
		if !ok {
			break
		}
		if !isCheck && m.IsCapture() && see.IsLosing(pos, m) {
			continue
		}
		if !movegen.IsLegal(pos, m) {
			continue
		}
		hasLegalMove = true

		g.Push(m)
		childNodes, score := q.quiesce(ctx, g, table, -beta, -alpha, level+1, quit)
		g.Pop()
		nodes += childNodes

		if -score >= beta {
			return nodes, beta
		}
		if -score > alpha {
			alpha = -score
		}
	}

	if isCheck && !hasLegalMove {
		if result := g.AdjudicateNoLegalMoves(); result.Reason == board.Checkmate {
			return nodes, board.MinScore
		}
		return nodes, 0
	}

	return nodes, alpha
}
