package see_test

import (
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/see"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_PawnTakesUndefendedRook(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.D4, board.White, board.Pawn},
		{board.E5, board.Black, board.Rook},
	}, board.White, 0, board.ZeroSquare, false)
	require.NoError(t, err)

	m := board.Move{From: board.D4, To: board.E5, Piece: board.Pawn, Capture: board.Rook}
	assert.Equal(t, board.Rook.Value(), see.Evaluate(pos, m))
	assert.False(t, see.IsLosing(pos, m))
}

func TestEvaluate_QueenTakesDefendedPawnLoses(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.D1, board.White, board.Queen},
		{board.D5, board.Black, board.Pawn},
		{board.E6, board.Black, board.Pawn},
	}, board.White, 0, board.ZeroSquare, false)
	require.NoError(t, err)

	m := board.Move{From: board.D1, To: board.D5, Piece: board.Queen, Capture: board.Pawn}
	assert.True(t, see.IsLosing(pos, m))
}
