package board

import "fmt"

// Outcome is the game-level winner, if decided.
type Outcome uint8

const (
	Undecided Outcome = iota
	WhiteWins
	BlackWins
	Draw
)

// Loss returns the Outcome recording a loss for c.
func Loss(c Color) Outcome {
	if c == White {
		return BlackWins
	}
	return WhiteWins
}

func (o Outcome) String() string {
	switch o {
	case WhiteWins:
		return "1-0"
	case BlackWins:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// Reason records why a game ended.
type Reason uint8

const (
	NotOver Reason = iota
	Checkmate
	Stalemate
	Repetition3
	Repetition5
	NoProgress
	InsufficientMaterial
)

func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case Stalemate:
		return "stalemate"
	case Repetition3:
		return "threefold repetition"
	case Repetition5:
		return "fivefold repetition"
	case NoProgress:
		return "50-move rule"
	case InsufficientMaterial:
		return "insufficient material"
	default:
		return "in progress"
	}
}

// Result is the decided-or-not outcome of a game and the rule that decided it.
type Result struct {
	Outcome Outcome
	Reason  Reason
}

func (r Result) String() string {
	if r.Outcome == Undecided {
		return "*"
	}
	return fmt.Sprintf("%v (%v)", r.Outcome, r.Reason)
}
