package eval

import (
	"math/rand"

	"github.com/kestrelchess/kestrel/pkg/board"
)

// Noise perturbs an evaluation by a small amount, so the engine doesn't play the exact same
// game twice at equal material. The zero value of Random satisfies this with no perturbation.
type Noise interface {
	Sample() board.Score
}

// Random adds up to limit centipawns of noise, split evenly above and below zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

// NewRandom returns a Noise sampling uniformly from [-limit/2, limit-limit/2) centipawns.
func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Sample() board.Score {
	if n.limit <= 0 {
		return 0
	}
	return board.Score(n.rand.Intn(n.limit) - n.limit/2)
}
