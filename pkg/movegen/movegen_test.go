package movegen_test

import (
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/movegen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perft(pos *board.Position, depth int) uint64 {
	if depth == 0 {
		return 1
	}

	var nodes uint64
	for _, m := range movegen.LegalMoves(pos) {
		mm := m
		pos.MakeMove(&mm)
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(mm)
	}
	return nodes
}

func TestPerft_Initial(t *testing.T) {
	zt := board.NewZobristTable()
	pos, _, _, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)

	assert.Equal(t, uint64(20), perft(pos, 1))
	assert.Equal(t, uint64(400), perft(pos, 2))
	assert.Equal(t, uint64(8902), perft(pos, 3))
	assert.Equal(t, uint64(197281), perft(pos, 4))
}

func TestGenerateCaptures_OnlyCapturesAndNoQuiets(t *testing.T) {
	zt := board.NewZobristTable()
	pos, _, _, err := fen.Decode(zt, "r3k2r/8/8/3pP3/8/8/8/R3K2R w KQkq d6 0 1")
	require.NoError(t, err)

	for _, m := range movegen.GenerateCaptures(pos) {
		assert.True(t, m.IsCapture(), "non-capture %v returned by GenerateCaptures", m)
	}
}

func TestCastling_BlockedByAttackedSquare(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.H1, board.White, board.Rook},
		{board.E8, board.Black, board.King},
		{board.F8, board.Black, board.Rook},
	}, board.White, board.KingSide(board.White), board.ZeroSquare, false)
	require.NoError(t, err)

	for _, m := range movegen.Generate(pos) {
		assert.False(t, m.Type == board.MoveCastling, "castling should be blocked by rook on f8 covering f1")
	}
}
