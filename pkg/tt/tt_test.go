package tt_test

import (
	"context"
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable_WriteRead_RoundTrips(t *testing.T) {
	table := tt.New(context.Background(), 1<<20)

	m := board.Move{From: board.E2, To: board.E4}
	table.Write(0x1234, board.White, tt.ExactBound, 4, 2, 55, m)

	bound, score, best, found := table.Read(0x1234, board.White, 4, 2)
	require.True(t, found)
	assert.Equal(t, tt.ExactBound, bound)
	assert.Equal(t, board.Score(55), score)
	assert.Equal(t, m.From, best.From)
	assert.Equal(t, m.To, best.To)
}

func TestTable_Read_MissReturnsFalse(t *testing.T) {
	table := tt.New(context.Background(), 1<<16)
	_, _, _, found := table.Read(0xdeadbeef, board.White, 1, 0)
	assert.False(t, found)
}

func TestTable_Read_RequiresAtLeastAsDeep(t *testing.T) {
	table := tt.New(context.Background(), 1<<16)
	table.Write(42, board.White, tt.ExactBound, 2, 0, 10, board.Move{})

	_, _, _, found := table.Read(42, board.White, 4, 0)
	assert.False(t, found, "caller wants depth 4, stored entry only searched to depth 2")

	_, _, _, found = table.Read(42, board.White, 2, 0)
	assert.True(t, found)
}

func TestTable_Read_SideToMoveMustMatch(t *testing.T) {
	table := tt.New(context.Background(), 1<<16)
	table.Write(99, board.White, tt.ExactBound, 3, 0, 10, board.Move{})

	_, _, _, found := table.Read(99, board.Black, 3, 0)
	assert.False(t, found)
}

func TestTable_Write_SamePositionOverwritesInPlace(t *testing.T) {
	table := tt.New(context.Background(), 1<<16)
	table.Write(7, board.White, tt.LowerBound, 2, 3, 10, board.Move{})
	table.Write(7, board.White, tt.ExactBound, 5, 1, 20, board.Move{})

	bound, score, _, found := table.Read(7, board.White, 5, 1)
	require.True(t, found)
	assert.Equal(t, tt.ExactBound, bound)
	assert.Equal(t, board.Score(20), score)
}
