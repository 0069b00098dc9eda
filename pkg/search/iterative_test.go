package search_test

import (
	"context"
	"testing"
	"time"

	"github.com/kestrelchess/kestrel/pkg/board"
	"github.com/kestrelchess/kestrel/pkg/board/fen"
	"github.com/kestrelchess/kestrel/pkg/eval"
	"github.com/kestrelchess/kestrel/pkg/search"
	"github.com/seekerror/stdlib/pkg/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIterative_RespectsDepthLimit(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable()

	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	it := search.Iterative{Root: search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}}

	handle, out := it.Launch(ctx, g, nil, nil, search.Options{DepthLimit: lang.Some(uint(3))})

	var last search.PV
	for pv := range out {
		last = pv
	}
	assert.Equal(t, 3, last.Depth)

	final := handle.Halt()
	assert.Equal(t, last.Depth, final.Depth)
}

func TestIterative_HaltStopsBeforeDepthLimit(t *testing.T) {
	ctx := context.Background()
	zt := board.NewZobristTable()

	pos, _, fullmoves, err := fen.Decode(zt, fen.Initial)
	require.NoError(t, err)
	g := board.NewGame(pos, fullmoves)

	it := search.Iterative{Root: search.PVS{Eval: eval.NewStandard(eval.DefaultWeights())}}

	handle, out := it.Launch(ctx, g, nil, nil, search.Options{DepthLimit: lang.Some(uint(20))})

	// Drain one PV so we know the worker has started, then stop it well short of depth 20.
	<-out
	final := handle.Halt()

	assert.Less(t, final.Depth, 20)

	// draining the channel after Halt must not block forever.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("output channel never closed after Halt")
		}
	}
}
