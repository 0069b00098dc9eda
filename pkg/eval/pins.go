package eval

import "github.com/kestrelchess/kestrel/pkg/board"

// Pin represents a pinned piece. A pinned piece cannot attack anything but the attacker itself,
// if the relative value of attacker/target is high enough. The evaluator does not call
// FindPins: its mobility and king-ring terms do not discount pinned pieces.
type Pin struct {
	Attacker, Pinned, Target board.Square
}

// FindPins returns all pins targeting the given piece of side.
func FindPins(pos *board.Position, side board.Color, piece board.Piece) []Pin {
	var ret []Pin

	bb := pos.Pieces(side, piece)
	for bb != 0 {
		target := bb.LastPopSquare()
		bb ^= board.BitMask(target)

		// Rook/Queen pins.

		rooks := board.RookAttackboard(pos.Occupancy(), target)
		pins := rooks & pos.Color(side)
		for pins != 0 {
			pinned := pins.LastPopSquare()
			pins ^= board.BitMask(pinned)

			attackers := pos.Pieces(side.Opponent(), board.Queen) | pos.Pieces(side.Opponent(), board.Rook)

			candidate := (board.RookAttackboard(pos.Occupancy().Xor(pinned), target) &^ rooks) & attackers
			if candidate != 0 {
				attacker := candidate.LastPopSquare()
				ret = append(ret, Pin{Attacker: attacker, Pinned: pinned, Target: target})
			}
		}

		// Bishop/Queen pins.

		bishops := board.BishopAttackboard(pos.Occupancy(), target)
		pins = bishops & pos.Color(side)
		for pins != 0 {
			pinned := pins.LastPopSquare()
			pins ^= board.BitMask(pinned)

			attackers := pos.Pieces(side.Opponent(), board.Queen) | pos.Pieces(side.Opponent(), board.Bishop)

			candidate := (board.BishopAttackboard(pos.Occupancy().Xor(pinned), target) &^ bishops) & attackers
			if candidate != 0 {
				attacker := candidate.LastPopSquare()
				ret = append(ret, Pin{Attacker: attacker, Pinned: pinned, Target: target})
			}
		}
	}

	return ret
}
