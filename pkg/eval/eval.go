// Package eval implements static position evaluation: material plus a weighted sum of
// positional features, returned as a centipawn score from the given side's perspective.
package eval

import (
	"github.com/kestrelchess/kestrel/pkg/board"
)

// Evaluator is a static position evaluator.
type Evaluator interface {
	// Evaluate returns the position score in centipawns from side's perspective.
	Evaluate(g *board.Game, side board.Color) board.Score
}

// Weights names every tunable coefficient of the evaluator, so callers can supply their own
// instead of being stuck with whatever is wired in at construction.
type Weights struct {
	Mobility             int
	CentreAttack         int
	ExtendedCentreAttack int
	Development          int
	KingRingAttack       int
	PassedPawn           int
	ProtectedPassedPawn  int
	DoubledPawn          int
	IsolatedPawn         int
	BishopPair           int
	RookOn7th            int
	EarlyQueenPenalty    int
	PawnShield           int
	EarlyKingPenalty     int
	CastlingForfeit      int
	PawnPST              [64]int
	KnightPST            [64]int
	KingMiddlegamePST    [64]int
	KingEndgamePST       [64]int
}

// DefaultWeights returns a reasonable, hand-picked set of weights. The piece-square tables
// follow the well-known Michniewski "simplified evaluation" values, given here from White's
// point of view with a1 first; Evaluate mirrors them for Black.
func DefaultWeights() Weights {
	return Weights{
		Mobility:             4,
		CentreAttack:         3,
		ExtendedCentreAttack: 1,
		Development:          8,
		KingRingAttack:       5,
		PassedPawn:           20,
		ProtectedPassedPawn:  10,
		DoubledPawn:          10,
		IsolatedPawn:         8,
		BishopPair:           30,
		RookOn7th:            20,
		EarlyQueenPenalty:    15,
		PawnShield:           10,
		EarlyKingPenalty:     10,
		CastlingForfeit:      25,
		PawnPST: [64]int{
			0, 0, 0, 0, 0, 0, 0, 0,
			5, 10, 10, -20, -20, 10, 10, 5,
			5, -5, -10, 0, 0, -10, -5, 5,
			0, 0, 0, 20, 20, 0, 0, 0,
			5, 5, 10, 25, 25, 10, 5, 5,
			10, 10, 20, 30, 30, 20, 10, 10,
			50, 50, 50, 50, 50, 50, 50, 50,
			0, 0, 0, 0, 0, 0, 0, 0,
		},
		KnightPST: [64]int{
			-50, -40, -30, -30, -30, -30, -40, -50,
			-40, -20, 0, 0, 0, 0, -20, -40,
			-30, 0, 10, 15, 15, 10, 0, -30,
			-30, 5, 15, 20, 20, 15, 5, -30,
			-30, 0, 15, 20, 20, 15, 0, -30,
			-30, 5, 10, 15, 15, 10, 5, -30,
			-40, -20, 0, 5, 5, 0, -20, -40,
			-50, -40, -30, -30, -30, -30, -40, -50,
		},
		KingMiddlegamePST: [64]int{
			20, 30, 10, 0, 0, 10, 30, 20,
			20, 20, 0, 0, 0, 0, 20, 20,
			-10, -20, -20, -20, -20, -20, -20, -10,
			-20, -30, -30, -40, -40, -30, -30, -20,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
			-30, -40, -40, -50, -50, -40, -40, -30,
		},
		KingEndgamePST: [64]int{
			-50, -30, -30, -30, -30, -30, -30, -50,
			-30, -30, 0, 0, 0, 0, -30, -30,
			-30, -10, 20, 30, 30, 20, -10, -30,
			-30, -10, 30, 40, 40, 30, -10, -30,
			-30, -10, 30, 40, 40, 30, -10, -30,
			-30, -10, 20, 30, 30, 20, -10, -30,
			-30, -20, -10, 0, 0, -10, -20, -30,
			-50, -40, -30, -20, -20, -30, -40, -50,
		},
	}
}

// NominalValue is the absolute nominal value of a piece. Mirrors board.Piece.Value, which the
// material term and search's futility margin call directly.
func NominalValue(p board.Piece) int {
	return p.Value()
}

// nonKingNonPawnCount counts every piece on the board except kings and pawns, used for the
// endgame predicate.
func nonKingNonPawnCount(pos *board.Position) int {
	n := 0
	for _, c := range [...]board.Color{board.White, board.Black} {
		for piece := board.Pawn + 1; piece < board.King; piece++ {
			n += pos.Pieces(c, piece).PopCount()
		}
	}
	return n
}

func isEndgame(pos *board.Position) bool {
	return nonKingNonPawnCount(pos) <= 4
}

// hasMatingMaterial reports whether side alone has enough material to deliver checkmate: any
// pawn, rook or queen, or at least two bishops, or at least two knights, or at least two minor
// pieces in total.
func hasMatingMaterial(pos *board.Position, side board.Color) bool {
	if pos.Pieces(side, board.Pawn) != 0 || pos.Pieces(side, board.Rook) != 0 || pos.Pieces(side, board.Queen) != 0 {
		return true
	}
	bishops := pos.Pieces(side, board.Bishop).PopCount()
	knights := pos.Pieces(side, board.Knight).PopCount()
	return bishops >= 2 || knights >= 2 || bishops+knights >= 2
}

var (
	whiteMinorHome = board.BitMask(board.B1) | board.BitMask(board.C1) | board.BitMask(board.F1) | board.BitMask(board.G1)
	blackMinorHome = board.BitMask(board.B8) | board.BitMask(board.C8) | board.BitMask(board.F8) | board.BitMask(board.G8)
)

func minorHome(c board.Color) board.Bitboard {
	if c == board.White {
		return whiteMinorHome
	}
	return blackMinorHome
}

func queenHome(c board.Color) board.Square {
	if c == board.White {
		return board.D1
	}
	return board.D8
}

func kingHome(c board.Color) board.Square {
	if c == board.White {
		return board.E1
	}
	return board.E8
}

func kingSideCastledSquare(c board.Color) board.Square {
	if c == board.White {
		return board.G1
	}
	return board.G8
}

func queenSideCastledSquare(c board.Color) board.Square {
	if c == board.White {
		return board.C1
	}
	return board.C8
}

// opponentSecondRank returns side's opponent's starting pawn rank, the "7th rank" a rook on it
// attacks from side's point of view.
func opponentSecondRank(c board.Color) board.Bitboard {
	if c == board.White {
		return board.BitRank(board.Rank7)
	}
	return board.BitRank(board.Rank2)
}

// pst looks up table for a piece of side on sq, mirroring vertically for Black so both colors
// read the table from their own perspective. The table is indexed a1-first, our Square numbers
// files H=0..A=7, so the file index is reversed too.
func pst(table *[64]int, sq board.Square, side board.Color) int {
	rank := int(sq.Rank())
	if side == board.Black {
		rank = 7 - rank
	}
	file := 7 - int(sq.File())
	return table[rank*8+file]
}

// Standard is the engine's default evaluator: material plus the full positional feature set,
// parameterized by Weights so callers can retune it without recompiling.
type Standard struct {
	Weights Weights
	Noise   Noise
}

// NewStandard returns a Standard evaluator with the given weights and no noise.
func NewStandard(w Weights) *Standard {
	return &Standard{Weights: w}
}

func (e *Standard) Evaluate(g *board.Game, side board.Color) board.Score {
	if result := g.Result(); result.Outcome != board.Undecided {
		if result.Reason == board.Checkmate {
			if result.Outcome == board.Loss(side) {
				return board.MinScore
			}
			return board.MaxScore
		}
		return 0
	}

	pos := g.Position()
	if !hasMatingMaterial(pos, board.White) && !hasMatingMaterial(pos, board.Black) {
		return 0
	}

	score := e.material(pos, side) + e.positional(pos, side)
	if e.Noise != nil {
		score += e.Noise.Sample()
	}
	return score
}

func (e *Standard) material(pos *board.Position, side board.Color) board.Score {
	var total int
	for piece := board.Pawn; piece < board.NumPieces; piece++ {
		total += (pos.Pieces(side, piece).PopCount() - pos.Pieces(side.Opponent(), piece).PopCount()) * piece.Value()
	}
	return board.Score(total)
}

// positional returns the positional balance from side's perspective: side's own feature score
// minus the opponent's, computed by the same per-side routine.
func (e *Standard) positional(pos *board.Position, side board.Color) board.Score {
	return board.Score(e.sideScore(pos, side) - e.sideScore(pos, side.Opponent()))
}

func (e *Standard) sideScore(pos *board.Position, side board.Color) int {
	w := &e.Weights
	endgame := isEndgame(pos)
	total := 0

	total += e.mobility(pos, side)
	if !endgame {
		total += e.centreAttack(pos, side)
		total += e.development(pos, side) * w.Development
		total += e.kingRingAttacks(pos, side) * w.KingRingAttack
	}

	bb := pos.Pieces(side, board.Pawn)
	for bb != 0 {
		sq := bb.LastPopSquare()
		bb ^= board.BitMask(sq)
		total += pst(&w.PawnPST, sq, side)
	}
	bb = pos.Pieces(side, board.Knight)
	for bb != 0 {
		sq := bb.LastPopSquare()
		bb ^= board.BitMask(sq)
		total += pst(&w.KnightPST, sq, side)
	}
	if endgame {
		total += pst(&w.KingEndgamePST, pos.King(side), side)
	} else {
		total += pst(&w.KingMiddlegamePST, pos.King(side), side)
	}

	total += e.pawnStructure(pos, side)

	if pos.Pieces(side, board.Bishop).PopCount() >= 2 {
		total += w.BishopPair
	}

	if !endgame {
		total += (pos.Pieces(side, board.Rook) & opponentSecondRank(side)).PopCount() * w.RookOn7th

		undeveloped := (pos.Pieces(side, board.Knight) | pos.Pieces(side, board.Bishop)) & minorHome(side)
		undevelopedCount := undeveloped.PopCount()

		if _, piece, ok := pos.Square(queenHome(side)); (!ok || piece != board.Queen) && pos.Pieces(side, board.Queen) != 0 {
			total -= undevelopedCount * w.EarlyQueenPenalty
		}

		if pos.King(side) != kingHome(side) && !pos.HasCastled(side) {
			total -= undevelopedCount * w.EarlyKingPenalty
		}

		if pos.King(side) == kingSideCastledSquare(side) || pos.King(side) == queenSideCastledSquare(side) {
			total += (board.KingShieldMask(side) & pos.Pieces(side, board.Pawn)).PopCount() * w.PawnShield
		}

		if !pos.HasCastled(side) && !pos.Castling().IsAllowed(board.Both(side)) {
			total -= w.CastlingForfeit
		}
	}

	return total
}

// mobility sums the pseudo-move count of every piece of side, including castling availability
// for the king. Computed directly from attack bitboards rather than full move generation, since
// mobility must be measured for either side regardless of whose turn it actually is.
func (e *Standard) mobility(pos *board.Position, side board.Color) int {
	w := &e.Weights
	own := pos.Color(side)
	occ := pos.Occupancy()

	count := 0
	for _, piece := range [...]board.Piece{board.Knight, board.Bishop, board.Rook, board.Queen, board.King} {
		bb := pos.Pieces(side, piece)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)
			count += (board.Attackboard(occ, sq, piece) &^ own).PopCount()
		}
	}

	pawns := pos.Pieces(side, board.Pawn)
	count += board.PawnMoveboard(pos.All(), side, pawns).PopCount()
	count += (board.PawnCaptureboard(side, pawns) & pos.Color(side.Opponent())).PopCount()

	if pos.Castling().IsAllowed(board.KingSide(side)) {
		count++
	}
	if pos.Castling().IsAllowed(board.QueenSide(side)) {
		count++
	}

	return count * w.Mobility
}

func (e *Standard) centreAttack(pos *board.Position, side board.Color) int {
	w := &e.Weights
	occ := pos.Occupancy()

	centre, extended := 0, 0
	for piece := board.Pawn; piece < board.NumPieces; piece++ {
		bb := pos.Pieces(side, piece)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)

			var attacks board.Bitboard
			if piece == board.Pawn {
				attacks = board.PawnCaptureboard(side, board.BitMask(sq))
			} else {
				attacks = board.Attackboard(occ, sq, piece)
			}

			centre += (attacks & board.CentreSquares()).PopCount()
			extended += (attacks & board.ExtendedCentreSquares()).PopCount()
		}
	}
	return centre*w.CentreAttack + extended*w.ExtendedCentreAttack
}

func (e *Standard) development(pos *board.Position, side board.Color) int {
	onHome := (pos.Pieces(side, board.Knight) | pos.Pieces(side, board.Bishop)) & minorHome(side)
	return -onHome.PopCount()
}

func (e *Standard) kingRingAttacks(pos *board.Position, side board.Color) int {
	occ := pos.Occupancy()
	ring := board.KingAttackboard(pos.King(side.Opponent()))

	count := 0
	for piece := board.Pawn; piece < board.NumPieces; piece++ {
		bb := pos.Pieces(side, piece)
		for bb != 0 {
			sq := bb.LastPopSquare()
			bb ^= board.BitMask(sq)

			var attacks board.Bitboard
			if piece == board.Pawn {
				attacks = board.PawnCaptureboard(side, board.BitMask(sq))
			} else {
				attacks = board.Attackboard(occ, sq, piece)
			}
			count += (attacks & ring).PopCount()
		}
	}
	return count
}

// pawnStructure scores passed (with protected-pawn bonus), doubled, and isolated pawns.
func (e *Standard) pawnStructure(pos *board.Position, side board.Color) int {
	w := &e.Weights
	own := pos.Pieces(side, board.Pawn)
	opp := pos.Pieces(side.Opponent(), board.Pawn)

	total := 0

	bb := own
	for bb != 0 {
		sq := bb.LastPopSquare()
		bb ^= board.BitMask(sq)

		if isPassed(sq, side, opp) {
			total += w.PassedPawn
			if isProtected(sq, side, own) {
				total += w.ProtectedPassedPawn
			}
		}
		if !hasAdjacentFilePawn(sq, own) {
			total -= w.IsolatedPawn
		}
	}

	for f := board.ZeroFile; f < board.NumFiles; f++ {
		n := (own & board.BitFile(f)).PopCount()
		if n >= 2 {
			total -= n * w.DoubledPawn
		}
	}

	return total
}

// isPassed reports whether the own pawn on sq has no enemy pawn on the same or an adjacent
// file ahead of it (from side's perspective).
func isPassed(sq board.Square, side board.Color, opp board.Bitboard) bool {
	ahead := aheadMask(sq, side)
	files := board.BitFile(sq.File())
	if sq.File() > board.ZeroFile {
		files |= board.BitFile(sq.File() - 1)
	}
	if sq.File() < board.NumFiles-1 {
		files |= board.BitFile(sq.File() + 1)
	}
	return opp&ahead&files == 0
}

// isProtected reports whether sq is defended by another own pawn.
func isProtected(sq board.Square, side board.Color, own board.Bitboard) bool {
	return board.PawnCaptureboard(side.Opponent(), board.BitMask(sq))&own != 0
}

func hasAdjacentFilePawn(sq board.Square, own board.Bitboard) bool {
	var files board.Bitboard
	if sq.File() > board.ZeroFile {
		files |= board.BitFile(sq.File() - 1)
	}
	if sq.File() < board.NumFiles-1 {
		files |= board.BitFile(sq.File() + 1)
	}
	return own&files != 0
}

func aheadMask(sq board.Square, side board.Color) board.Bitboard {
	var bb board.Bitboard
	if side == board.White {
		for r := sq.Rank() + 1; r < board.NumRanks; r++ {
			bb |= board.BitRank(r)
		}
	} else {
		for r := board.ZeroRank; r < sq.Rank(); r++ {
			bb |= board.BitRank(r)
		}
	}
	return bb
}
