package board_test

import (
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPosition_MakeUnmakeMove_RestoresHash(t *testing.T) {
	zt := board.NewZobristTable()
	pos := board.NewInitialPosition(zt)
	before := pos.Hash()

	m := board.Move{From: board.E2, To: board.E4, Piece: board.Pawn}
	pos.MakeMove(&m)
	assert.NotEqual(t, before, pos.Hash())
	assert.True(t, m.PreEnPassantLegal == false)

	pos.UnmakeMove(m)
	assert.Equal(t, before, pos.Hash())
	assert.Equal(t, before, zt.Hash(pos))
}

func TestPosition_MakeMove_FillsCaptureBeforeHashing(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.E4, board.White, board.Pawn},
		{board.D5, board.Black, board.Knight},
	}, board.White, 0, board.ZeroSquare, false)
	require.NoError(t, err)

	// Capture is deliberately left unset, as a hand-built Move may leave it: MakeMove must
	// fill it in before computing the incremental hash, not just before placing pieces.
	m := board.Move{From: board.E4, To: board.D5, Piece: board.Pawn}
	pos.MakeMove(&m)

	assert.Equal(t, board.Knight, m.Capture)
	assert.Equal(t, zt.Hash(pos), pos.Hash(), "incremental hash must match a from-scratch recompute")

	pos.UnmakeMove(m)
	c, p, ok := pos.Square(board.D5)
	require.True(t, ok)
	assert.Equal(t, board.Black, c)
	assert.Equal(t, board.Knight, p)
	assert.Equal(t, zt.Hash(pos), pos.Hash())
}

func TestPosition_DoublePush_SetsEnPassant(t *testing.T) {
	zt := board.NewZobristTable()
	pos := board.NewInitialPosition(zt)

	m := board.Move{From: board.E2, To: board.E4, Piece: board.Pawn}
	pos.MakeMove(&m)

	target, ok := pos.EnPassant()
	require.True(t, ok)
	assert.Equal(t, board.E3, target)

	pos.UnmakeMove(m)
	_, ok = pos.EnPassant()
	assert.False(t, ok)
}

func TestPosition_EnPassantCapture(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.D4, board.White, board.Pawn},
		{board.E4, board.Black, board.Pawn},
	}, board.Black, 0, board.D3, true)
	require.NoError(t, err)

	before := pos.Hash()
	m := board.Move{From: board.E4, To: board.D3, Piece: board.Pawn, Type: board.MoveEnPassant}
	pos.MakeMove(&m)

	assert.True(t, pos.IsEmpty(board.E4))
	assert.True(t, pos.IsEmpty(board.D4)) // captured pawn removed
	c, p, ok := pos.Square(board.D3)
	require.True(t, ok)
	assert.Equal(t, board.Black, c)
	assert.Equal(t, board.Pawn, p)

	pos.UnmakeMove(m)
	assert.Equal(t, before, pos.Hash())
	c, p, ok = pos.Square(board.D4)
	require.True(t, ok)
	assert.Equal(t, board.White, c)
	assert.Equal(t, board.Pawn, p)
}

func TestPosition_Castling(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.H1, board.White, board.Rook},
		{board.A1, board.White, board.Rook},
		{board.E8, board.Black, board.King},
	}, board.White, board.FullCastingRights, board.ZeroSquare, false)
	require.NoError(t, err)

	before := pos.Hash()
	m := board.Move{From: board.E1, To: board.G1, Piece: board.King, Type: board.MoveCastling}
	pos.MakeMove(&m)

	assert.True(t, pos.HasCastled(board.White))
	c, p, ok := pos.Square(board.F1)
	require.True(t, ok)
	assert.Equal(t, board.White, c)
	assert.Equal(t, board.Rook, p)
	assert.False(t, pos.Castling().IsAllowed(board.KingSide(board.White)))

	pos.UnmakeMove(m)
	assert.Equal(t, before, pos.Hash())
	assert.False(t, pos.HasCastled(board.White))
	assert.True(t, pos.Castling().IsAllowed(board.KingSide(board.White)))
}

func TestPosition_RookMoveForfeitsCastlingRight(t *testing.T) {
	zt := board.NewZobristTable()
	pos, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.H1, board.White, board.Rook},
		{board.E8, board.Black, board.King},
	}, board.White, board.Both(board.White), board.ZeroSquare, false)
	require.NoError(t, err)

	m := board.Move{From: board.H1, To: board.H4, Piece: board.Rook}
	pos.MakeMove(&m)

	assert.False(t, pos.Castling().IsAllowed(board.KingSide(board.White)))
	assert.True(t, pos.Castling().IsAllowed(board.QueenSide(board.White)))
}

func TestInsufficientMaterial(t *testing.T) {
	zt := board.NewZobristTable()

	bare, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
	}, board.White, 0, board.ZeroSquare, false)
	require.NoError(t, err)
	assert.True(t, board.InsufficientMaterial(bare))

	withRook, err := board.NewPosition(zt, []board.Placement{
		{board.E1, board.White, board.King},
		{board.E8, board.Black, board.King},
		{board.A1, board.White, board.Rook},
	}, board.White, 0, board.ZeroSquare, false)
	require.NoError(t, err)
	assert.False(t, board.InsufficientMaterial(withRook))
}
