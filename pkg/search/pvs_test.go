package search_test

import (
	"context"
	"testing"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/kestrelchess/kestrel/pkg/tt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPVS_FindsHangingQueen(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable()

	// White to move, black queen on g5 hangs to the bishop on c1.
	pos, _, fullmoves, err := fen.Decode(zt, "rnb1kbnr/pppp1ppp/8/4p1q1/3PP3/8/PPP2PPP/RNBQKBNR w KQkq - 2 3")
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	pvs := search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}
	sctx := &search.Context{Alpha: board.MinScore, Beta: board.MaxScore, TT: tt.New(ctx, 1<<20)}

	_, score, moves, err := pvs.Search(ctx, sctx, g, 3, make(chan struct{}))
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Greater(t, int(score), 500, "expected a large material swing after winning the queen, got %v (pv=%v)", score, moves)
}

func TestPVS_FindsBackRankMate(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable()

	pos, _, fullmoves, err := fen.Decode(zt, "6k1/5ppp/8/8/8/8/8/R3K3 w - - 0 1")
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	pvs := search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}
	sctx := &search.Context{Alpha: board.MinScore, Beta: board.MaxScore, TT: tt.New(ctx, 1<<20)}

	_, score, moves, err := pvs.Search(ctx, sctx, g, 3, make(chan struct{}))
	require.NoError(t, err)
	require.NotEmpty(t, moves)
	assert.Equal(t, board.MaxScore, score, "expected mate, got score=%v pv=%v", score, moves)
}

func TestPVS_RespectsNilTranspositionTable(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable()

	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	pvs := search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}
	sctx := &search.Context{Alpha: board.MinScore, Beta: board.MaxScore, TT: nil}

	_, _, moves, err := pvs.Search(ctx, sctx, g, 2, make(chan struct{}))
	require.NoError(t, err)
	assert.NotEmpty(t, moves)
}
