package eval_test

import (
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func push(t *testing.T, g *board.Game, move string) {
	t.Helper()
	candidate, err := board.ParseMove(move)
	require.NoError(t, err)

	for _, m := range movegen.Generate(g.Position()) {
		if m.Equals(candidate) && movegen.IsLegal(g.Position(), m) {
			g.Push(m)
			return
		}
	}
	t.Fatalf("move %v not found or illegal", move)
}

func decode(t *testing.T, record string) *board.Game {
	t.Helper()
	zt := board.NewZobristTable()
	pos, _, fullmoves, err := fen.Decode(zt, record)
	require.NoError(t, err)
	return board.NewGame(pos, fullmoves)
}

func TestEvaluate_InitialPositionIsBalanced(t *testing.T) {
	g := decode(t, fen.Initial)
	e := eval.NewStandard(eval.DefaultWeights())

	assert.Equal(t, e.Evaluate(g, board.White), e.Evaluate(g, board.Black))
}

func TestEvaluate_CheckmateIsMaxForTheWinner(t *testing.T) {
	// Fool's mate: black has just delivered checkmate, white to move with no legal moves.
	g := decode(t, fen.Initial)
	for _, m := range []string{"f2f3", "e7e5", "g2g4", "d8h4"} {
		push(t, g, m)
	}
	g.AdjudicateNoLegalMoves()

	e := eval.NewStandard(eval.DefaultWeights())
	assert.Equal(t, board.MinScore, e.Evaluate(g, board.White))
	assert.Equal(t, board.MaxScore, e.Evaluate(g, board.Black))
}

func TestEvaluate_InsufficientMatingMaterialIsDraw(t *testing.T) {
	g := decode(t, "4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	e := eval.NewStandard(eval.DefaultWeights())

	assert.Equal(t, board.Score(0), e.Evaluate(g, board.White))
	assert.Equal(t, board.Score(0), e.Evaluate(g, board.Black))
}

func TestEvaluate_MaterialFavorsTheSideUpAPawn(t *testing.T) {
	g := decode(t, "4k3/8/8/8/8/8/4P3/4K3 w - - 0 1")
	e := eval.NewStandard(eval.DefaultWeights())

	assert.Greater(t, int(e.Evaluate(g, board.White)), 0)
	assert.Less(t, int(e.Evaluate(g, board.Black)), 0)
}

func TestNominalValue_MatchesPieceValue(t *testing.T) {
	assert.Equal(t, 100, eval.NominalValue(board.Pawn))
	assert.Equal(t, 900, eval.NominalValue(board.Queen))
}

func TestRandom_ZeroLimitNeverPerturbs(t *testing.T) {
	n := eval.NewRandom(0, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, board.Score(0), n.Sample())
	}
}

func TestRandom_SamplesWithinLimit(t *testing.T) {
	n := eval.NewRandom(40, 42)
	for i := 0; i < 1000; i++ {
		s := n.Sample()
		assert.GreaterOrEqual(t, int(s), -20)
		assert.Less(t, int(s), 20)
	}
}
