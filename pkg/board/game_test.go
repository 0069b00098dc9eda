package board_test

import (
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGame_ThreefoldRepetitionIsDrawn(t *testing.T) {
	zt := board.NewZobristTable()
	pos := board.NewInitialPosition(zt)
	g := board.NewGame(pos, 1)

	// Shuffle both knights out and back twice: the position (and side to move) after every
	// full cycle exactly matches the starting position, so the third occurrence of that
	// hash should adjudicate the game as drawn by repetition.
	cycle := []board.Move{
		{From: board.G1, To: board.F3, Piece: board.Knight},
		{From: board.G8, To: board.F6, Piece: board.Knight},
		{From: board.F3, To: board.G1, Piece: board.Knight},
		{From: board.F6, To: board.G8, Piece: board.Knight},
	}

	for i := 0; i < 2; i++ {
		for _, m := range cycle {
			g.Push(m)
		}
	}

	result := g.Result()
	require.Equal(t, board.Draw, result.Outcome)
	assert.Equal(t, board.Repetition3, result.Reason)
}

func TestGame_PopUndoesRepetitionBookkeeping(t *testing.T) {
	zt := board.NewZobristTable()
	pos := board.NewInitialPosition(zt)
	g := board.NewGame(pos, 1)

	m := board.Move{From: board.G1, To: board.F3, Piece: board.Knight}
	g.Push(m)

	undone, ok := g.Pop()
	require.True(t, ok)
	assert.Equal(t, m.From, undone.From)
	assert.Equal(t, board.Undecided, g.Result().Outcome)
}
