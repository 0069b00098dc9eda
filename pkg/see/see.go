// Package see implements the static exchange evaluator: the minimax value of a sequence of
// captures on one square, used to prune losing captures from quiescence search and to order
// moves without having to actually search them.
package see

import (
	"github.com/kestrelchess/kestrel/pkg/board"
)

// Evaluate returns the net material gain, in centipawns, of playing the capture m and then
// letting both sides recapture on m.To with their least valuable attacker until one side
// declines or runs out of attackers. A positive result means the exchange favors the mover.
func Evaluate(pos *board.Position, m board.Move) int {
	if !m.IsCapture() {
		return 0
	}

	target := m.To
	mover := pos.Turn()
	attacker := m.Piece
	if m.IsPromotion() {
		attacker = m.Promotion
	}

	occupied := pos.All() &^ board.BitMask(m.From)
	if m.Type == board.MoveEnPassant {
		occupied &^= board.BitMask(enPassantVictim(mover, target))
	}

	gains := make([]int, 0, 16)
	gains = append(gains, m.Capture.Value())
	if m.IsPromotion() {
		gains[0] += m.Promotion.Value() - board.Pawn.Value()
	}

	side := mover.Opponent()
	for {
		from, piece, ok := leastValuableAttacker(pos, occupied, target, side)
		if !ok {
			break
		}

		gains = append(gains, attacker.Value()-gains[len(gains)-1])
		occupied &^= board.BitMask(from)
		attacker = piece
		side = side.Opponent()
	}

	// Fold the exchange back to front: each side stops recapturing whenever doing so would
	// make its running total worse than simply declining, i.e. negamax over the gain list.
	for i := len(gains) - 2; i >= 0; i-- {
		if -gains[i+1] < gains[i] {
			gains[i] = -gains[i+1]
		}
	}
	return gains[0]
}

// leastValuableAttacker returns the cheapest piece of side attacking target given occupied,
// a (possibly reduced) occupancy bitboard used to simulate the exchange square by square.
func leastValuableAttacker(pos *board.Position, occupied board.Bitboard, target board.Square, side board.Color) (board.Square, board.Piece, bool) {
	rotated := board.NewRotatedBitboard(occupied)

	order := [...]board.Piece{board.Pawn, board.Knight, board.Bishop, board.Rook, board.Queen, board.King}
	for _, piece := range order {
		candidates := pos.Pieces(side, piece) & occupied
		if piece == board.Pawn {
			candidates = reversePawnAttackers(pos, side, target) & occupied
		} else {
			candidates &= board.Attackboard(rotated, target, piece)
		}

		if candidates != 0 {
			return candidates.LastPopSquare(), piece, true
		}
	}
	return 0, board.NoPiece, false
}

// reversePawnAttackers returns side's pawns that attack target: a pawn of the opposite color
// "captures" from target onto the pawn's square, the same reversal Position.AttackersTo uses.
func reversePawnAttackers(pos *board.Position, side board.Color, target board.Square) board.Bitboard {
	return board.PawnCaptureboard(side.Opponent(), board.BitMask(target)) & pos.Pieces(side, board.Pawn)
}

func enPassantVictim(mover board.Color, to board.Square) board.Square {
	if mover == board.White {
		return board.NewSquare(to.File(), to.Rank()-1)
	}
	return board.NewSquare(to.File(), to.Rank()+1)
}

// IsLosing reports whether the capture m loses material for the side to move, i.e. is a
// candidate to prune from quiescence search.
func IsLosing(pos *board.Position, m board.Move) bool {
	return Evaluate(pos, m) < 0
}
