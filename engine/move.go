package engine

// Piece codes follow the goosemg layout: type in the low three bits, 8 marks Black.
type Piece uint8

const (
	NoPiece     Piece = 0
	WhitePawn   Piece = 1
	WhiteKnight Piece = 2
	WhiteBishop Piece = 3
	WhiteRook   Piece = 4
	WhiteQueen  Piece = 5
	WhiteKing   Piece = 6

	BlackPawn   Piece = 1 | 8
	BlackKnight Piece = 2 | 8
	BlackBishop Piece = 3 | 8
	BlackRook   Piece = 4 | 8
	BlackQueen  Piece = 5 | 8
	BlackKing   Piece = 6 | 8
)

// PieceType is the colorless kind of a piece, used for table lookups.
type PieceType uint8

const (
	PieceTypeNone   PieceType = 0
	PieceTypePawn   PieceType = 1
	PieceTypeKnight PieceType = 2
	PieceTypeBishop PieceType = 3
	PieceTypeRook   PieceType = 4
	PieceTypeQueen  PieceType = 5
	PieceTypeKing   PieceType = 6
)

// Type strips the color.
func (p Piece) Type() PieceType { return PieceType(p & 7) }

// Color of the piece. NoPiece reports White.
func (p Piece) Color() Color {
	if p&8 != 0 {
		return Black
	}
	return White
}

// MakePiece combines a color and a type.
func MakePiece(c Color, pt PieceType) Piece {
	if pt == PieceTypeNone {
		return NoPiece
	}
	if c == Black {
		return Piece(pt) | 8
	}
	return Piece(pt)
}

type Color uint8

const (
	White Color = 0
	Black Color = 1
)

// Other returns the opposing side.
func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Square is a board index, a1 = 0 ... h8 = 63.
type Square uint8

// String renders the square in coordinate notation ("e4").
func (sq Square) String() string {
	return string([]byte{'a' + byte(sq%8), '1' + byte(sq/8)})
}

// Move encodes a chess move in 32 bits. It is equality comparable and carries the
// captured piece so the search can tell captures from quiet moves without the board.
type Move uint32

// NoMove is the zero move; no generator produces it.
const NoMove Move = 0

// Bitfield layout, LSB first.
const (
	moveFromShift    = 0  // 6 bits
	moveToShift      = 6  // 6 bits
	movePieceShift   = 12 // 4 bits
	moveCaptureShift = 16 // 4 bits
	movePromoteShift = 20 // 4 bits
	moveFlagShift    = 24 // 2 bits
)

// Move flags
const (
	FlagNone      = 0
	FlagCastle    = 1
	FlagEnPassant = 2
)

// NewMove packs the components of a move.
func NewMove(from, to Square, piece, captured, promotion Piece, flag uint8) Move {
	return Move(uint32(from&0x3F) |
		uint32(to&0x3F)<<moveToShift |
		uint32(piece&0xF)<<movePieceShift |
		uint32(captured&0xF)<<moveCaptureShift |
		uint32(promotion&0xF)<<movePromoteShift |
		uint32(flag&0x3)<<moveFlagShift)
}

func (m Move) From() Square { return Square((uint32(m) >> moveFromShift) & 0x3F) }

func (m Move) To() Square { return Square((uint32(m) >> moveToShift) & 0x3F) }

func (m Move) MovedPiece() Piece { return Piece((uint32(m) >> movePieceShift) & 0xF) }

// Captured returns the captured piece, NoPiece for non-captures.
func (m Move) Captured() Piece { return Piece((uint32(m) >> moveCaptureShift) & 0xF) }

// IsCapture reports whether the move takes a piece (en passant included).
func (m Move) IsCapture() bool { return m.Captured() != NoPiece }

func (m Move) Promotion() Piece { return Piece((uint32(m) >> movePromoteShift) & 0xF) }

func (m Move) Flags() uint8 { return uint8((uint32(m) >> moveFlagShift) & 0x3) }

// String gives the coordinate form used by UCI GUIs, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	switch m.Promotion().Type() {
	case PieceTypeKnight:
		s += "n"
	case PieceTypeBishop:
		s += "b"
	case PieceTypeRook:
		s += "r"
	case PieceTypeQueen:
		s += "q"
	}
	return s
}
