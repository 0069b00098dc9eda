package board

import "fmt"

// MoveType distinguishes the few move shapes that need special handling in MakeMove/UnmakeMove.
// Ordinary captures, pushes, and promotions are all MoveNormal — they are told apart by the
// Capture and Promotion fields, not by a dedicated type.
type MoveType uint8

const (
	MoveNormal MoveType = iota
	MoveCastling
	MoveEnPassant
	MoveNull
)

func (t MoveType) String() string {
	switch t {
	case MoveNormal:
		return "normal"
	case MoveCastling:
		return "castling"
	case MoveEnPassant:
		return "enpassant"
	case MoveNull:
		return "null"
	default:
		return "?"
	}
}

// Move represents a move together with everything MakeMove/UnmakeMove need to apply and then
// exactly reverse it. Capture is filled in by MakeMove if it is still NoPiece when called (the
// generator already knows it for normal captures and en passant, but not, e.g., for a null
// move). PreCastling and PreEnPassant* hold the position's pre-move state so UnmakeMove can
// restore it without consulting history.
//
// This is the struct form of the engine's packed-32-bit move record (see Pack/UnpackMove):
// reads and writes everywhere else in the engine go through named fields rather than bit
// twiddling, which is how moves are handled throughout the codebase.
type Move struct {
	From, To  Square
	Piece     Piece // the moving piece
	Capture   Piece // captured piece, NoPiece if none; filled by MakeMove if unset
	Promotion Piece // promoted-to piece, NoPiece if not a promotion
	Type      MoveType

	// Pre-move state, recorded by MakeMove for UnmakeMove's exclusive use.
	PreCastling        Castling
	PreEnPassantLegal  bool
	PreEnPassantTarget Square
}

// NullMove is the sentinel move used by null-move pruning: it flips the side to move and
// clears the en passant flag, and nothing else.
var NullMove = Move{Type: MoveNull}

// IsNull reports whether this move is the from==to sentinel, used as the "no legal move"
// result of BestMove, or the null move used by null-move pruning.
func (m Move) IsNull() bool {
	return m.Type == MoveNull || (m.From == m.To && m.Type == MoveNormal)
}

// IsCapture reports whether the move captures a piece, including en passant.
func (m Move) IsCapture() bool {
	return m.Capture != NoPiece
}

// IsPromotion reports whether the move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion != NoPiece
}

// Equals compares the squares and promotion — the fields that make two candidate moves the
// same move on the wire, ignoring the type and the prestate fields the generator and MakeMove
// fill in.
func (m Move) Equals(o Move) bool {
	return m.From == o.From && m.To == o.To && m.Promotion == o.Promotion
}

// ParseMove parses a move in pure algebraic coordinate notation, such as "e2e4" or "a7a8q".
// ParseMove does not see the board: without a promotion letter, Promotion stays NoPiece.
// Engine.Move promotes such a last-rank pawn move to a queen.
func ParseMove(str string) (Move, error) {
	runes := []rune(str)

	if len(runes) < 4 || len(runes) > 5 {
		return Move{}, fmt.Errorf("invalid move: %q", str)
	}

	from, err := ParseSquare(runes[0], runes[1])
	if err != nil {
		return Move{}, fmt.Errorf("invalid from square in %q: %w", str, err)
	}
	to, err := ParseSquare(runes[2], runes[3])
	if err != nil {
		return Move{}, fmt.Errorf("invalid to square in %q: %w", str, err)
	}

	m := Move{From: from, To: to}
	if len(runes) == 5 {
		promo, ok := ParsePiece(runes[4])
		if !ok || promo == Pawn || promo == King {
			return Move{}, fmt.Errorf("invalid promotion piece in %q", str)
		}
		m.Promotion = promo
	}
	return m, nil
}

func (m Move) String() string {
	if m.IsNull() {
		return "0000"
	}
	if m.Promotion != NoPiece {
		return fmt.Sprintf("%v%v%v", m.From, m.To, m.Promotion)
	}
	return fmt.Sprintf("%v%v", m.From, m.To)
}

// Pack encodes the move into the spec's packed-32-bit layout:
//
//	bits 0-5:   from square
//	bits 6-11:  to square
//	bits 12-14: captured piece
//	bits 15-17: promotion piece
//	bits 18-21: pre-move castling rights
//	bit  22:    pre-move en-passant-legal flag
//	bits 23-28: pre-move en-passant target
//	bits 29-30: move type
func (m Move) Pack() uint32 {
	var ep uint32
	if m.PreEnPassantLegal {
		ep = 1
	}
	return uint32(m.From) |
		uint32(m.To)<<6 |
		uint32(m.Capture)<<12 |
		uint32(m.Promotion)<<15 |
		uint32(m.PreCastling)<<18 |
		ep<<22 |
		uint32(m.PreEnPassantTarget)<<23 |
		uint32(m.Type)<<29
}

// UnpackMove decodes a move packed by Move.Pack. The moving Piece is not part of the packed
// layout (the spec leaves it implicit in the board it is applied to); callers that need it,
// such as the Zobrist incremental hash, carry it separately.
func UnpackMove(p uint32) Move {
	return Move{
		From:               Square(p & 0x3f),
		To:                 Square((p >> 6) & 0x3f),
		Capture:            Piece((p >> 12) & 0x7),
		Promotion:          Piece((p >> 15) & 0x7),
		PreCastling:        Castling((p >> 18) & 0xf),
		PreEnPassantLegal:  (p>>22)&0x1 != 0,
		PreEnPassantTarget: Square((p >> 23) & 0x3f),
		Type:               MoveType((p >> 29) & 0x3),
	}
}
