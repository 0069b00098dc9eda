package ponder_test

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/ponder"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/stretchr/testify/require"
)

func TestController_StopWithoutStartIsNoOp(t *testing.T) {
	zt := board.NewZobristTable()
	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	c := ponder.New(search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}, g, nil, nil)

	done := make(chan struct{})
	go func() {
		c.StopPondering()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("StopPondering blocked on a controller that was never started")
	}
}

func TestController_StartThenStopJoinsWorker(t *testing.T) {
	zt := board.NewZobristTable()
	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	c := ponder.New(search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}, g, nil, nil)

	c.StartPondering(context.Background(), 6)
	time.Sleep(10 * time.Millisecond)
	c.StopPondering()

	// Game untouched: pondering operates on a clone, never on g itself.
	require.Equal(t, fullmoves, g.FullMoves())
}

func TestController_StartIsNoOpWhileRunning(t *testing.T) {
	zt := board.NewZobristTable()
	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	c := ponder.New(search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}, g, nil, nil)

	c.StartPondering(context.Background(), 6)
	c.StartPondering(context.Background(), 6) // no-op: already running
	c.StopPondering()
}
