// Package movegen generates pseudo-legal moves from a board.Position. "Pseudo-legal" means
// every rule except leaving the mover's own king in check is enforced here; callers filter the
// rest by calling Position.IsChecked after trying the move, same as the teacher's search loop
// does for ordinary moves.
package movegen

import (
	"github.com/kestrelchess/kestrel/pkg/board"
)

// promotionPieces lists the pieces a pawn can promote to, queen first since it dominates move
// ordering almost always picks it.
var promotionPieces = [...]board.Piece{board.Queen, board.Rook, board.Bishop, board.Knight}

// Generate returns every pseudo-legal move available to the side to move, captures and quiets
// both, plus castling.
func Generate(pos *board.Position) []board.Move {
	moves := make([]board.Move, 0, 48)
	moves = appendPawnMoves(pos, moves, false)
	moves = appendPieceMoves(pos, moves, false)
	moves = appendCastling(pos, moves)
	return moves
}

// GenerateCaptures returns only pseudo-legal captures, the move set quiescence search explores
// at its leaves. En passant is included, and a capture onto the last rank fans out into all four
// promotions; promotions that do not capture are not included.
func GenerateCaptures(pos *board.Position) []board.Move {
	moves := make([]board.Move, 0, 16)
	moves = appendPawnMoves(pos, moves, true)
	moves = appendPieceMoves(pos, moves, true)
	return moves
}

// IsLegal reports whether m, already known pseudo-legal, does not leave the mover's own king in
// check. It applies and reverses the move on pos to find out.
func IsLegal(pos *board.Position, m board.Move) bool {
	mover := pos.Turn()
	mm := m
	pos.MakeMove(&mm)
	legal := !pos.IsChecked(mover)
	pos.UnmakeMove(mm)
	return legal
}

// LegalMoves filters Generate's output down to moves that don't leave the mover in check.
func LegalMoves(pos *board.Position) []board.Move {
	all := Generate(pos)
	ret := all[:0]
	for _, m := range all {
		if IsLegal(pos, m) {
			ret = append(ret, m)
		}
	}
	return ret
}

func appendPawnMoves(pos *board.Position, moves []board.Move, capturesOnly bool) []board.Move {
	turn := pos.Turn()
	opp := turn.Opponent()
	pawns := pos.Pieces(turn, board.Pawn)
	all := pos.All()
	promoRank := board.PawnPromotionRank(turn)

	bb := pawns
	for bb != 0 {
		from := bb.LastPopSquare()
		bb ^= board.BitMask(from)

		if !capturesOnly {
			pushes := board.PawnMoveboard(all, turn, board.BitMask(from))
			moves = appendPawnTargets(moves, from, pushes, board.NoPiece, board.MoveNormal, promoRank)

			doubles := board.PawnDoubleMoveboard(all, turn, board.BitMask(from))
			moves = appendPawnTargets(moves, from, doubles, board.NoPiece, board.MoveNormal, 0)
		}

		captures := board.PawnCaptureboard(turn, board.BitMask(from)) & pos.Color(opp)
		cb := captures
		for cb != 0 {
			to := cb.LastPopSquare()
			cb ^= board.BitMask(to)

			_, captured, _ := pos.Square(to)
			moves = appendPromotions(moves, from, to, captured, board.MoveNormal, promoRank)
		}

		if target, ok := pos.EnPassant(); ok {
			if board.PawnCaptureboard(turn, board.BitMask(from))&board.BitMask(target) != 0 {
				moves = append(moves, board.Move{From: from, To: target, Piece: board.Pawn, Capture: board.Pawn, Type: board.MoveEnPassant})
			}
		}
	}
	return moves
}

func appendPawnTargets(moves []board.Move, from board.Square, targets board.Bitboard, capture board.Piece, typ board.MoveType, promoRank board.Bitboard) []board.Move {
	for targets != 0 {
		to := targets.LastPopSquare()
		targets ^= board.BitMask(to)
		moves = appendPromotions(moves, from, to, capture, typ, promoRank)
	}
	return moves
}

func appendPromotions(moves []board.Move, from, to board.Square, capture board.Piece, typ board.MoveType, promoRank board.Bitboard) []board.Move {
	if promoRank.IsSet(to) {
		for _, promo := range promotionPieces {
			moves = append(moves, board.Move{From: from, To: to, Piece: board.Pawn, Capture: capture, Promotion: promo, Type: typ})
		}
		return moves
	}
	moves = append(moves, board.Move{From: from, To: to, Piece: board.Pawn, Capture: capture, Type: typ})
	return moves
}

func appendPieceMoves(pos *board.Position, moves []board.Move, capturesOnly bool) []board.Move {
	turn := pos.Turn()
	own := pos.Color(turn)
	opp := pos.Color(turn.Opponent())
	occ := pos.Occupancy()

	for _, piece := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		bb := pos.Pieces(turn, piece)
		for bb != 0 {
			from := bb.LastPopSquare()
			bb ^= board.BitMask(from)

			targets := board.Attackboard(occ, from, piece) &^ own
			if capturesOnly {
				targets &= opp
			}

			tb := targets
			for tb != 0 {
				to := tb.LastPopSquare()
				tb ^= board.BitMask(to)

				_, captured, _ := pos.Square(to)
				moves = append(moves, board.Move{From: from, To: to, Piece: piece, Capture: captured})
			}
		}
	}
	return moves
}

func appendCastling(pos *board.Position, moves []board.Move) []board.Move {
	turn := pos.Turn()
	if pos.IsChecked(turn) {
		return moves
	}

	rank := board.Rank1
	if turn == board.Black {
		rank = board.Rank8
	}
	king := board.NewSquare(board.FileE, rank)
	if pos.King(turn) != king {
		return moves
	}

	if pos.Castling().IsAllowed(board.KingSide(turn)) {
		f, g := board.NewSquare(board.FileF, rank), board.NewSquare(board.FileG, rank)
		if pos.IsEmpty(f) && pos.IsEmpty(g) && !pos.IsAttacked(f, turn.Opponent()) && !pos.IsAttacked(g, turn.Opponent()) {
			moves = append(moves, board.Move{From: king, To: g, Piece: board.King, Type: board.MoveCastling})
		}
	}
	if pos.Castling().IsAllowed(board.QueenSide(turn)) {
		d, c, b := board.NewSquare(board.FileD, rank), board.NewSquare(board.FileC, rank), board.NewSquare(board.FileB, rank)
		if pos.IsEmpty(d) && pos.IsEmpty(c) && pos.IsEmpty(b) && !pos.IsAttacked(d, turn.Opponent()) && !pos.IsAttacked(c, turn.Opponent()) {
			moves = append(moves, board.Move{From: king, To: c, Piece: board.King, Type: board.MoveCastling})
		}
	}
	return moves
}
