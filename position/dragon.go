package position

import (
	"fmt"
	"math/bits"

	"github.com/dylhunn/dragontoothmg"

	"chess-search/engine"
)

type dragonFrame struct {
	unapply func()
}

// DragonBoard adapts a dragontoothmg board. Its generator only yields legal
// moves, so OpponentInCheck never reports a rejected move.
type DragonBoard struct {
	b      dragontoothmg.Board
	frames []dragonFrame
	hist   history

	// engine moves already handed out, mapped back to the native encoding
	native map[engine.Move]dragontoothmg.Move
}

func NewDragonBoard(fen string) (*DragonBoard, error) {
	if err := ValidateFEN(fen); err != nil {
		return nil, err
	}
	p := &DragonBoard{
		b:      dragontoothmg.ParseFen(fen),
		frames: make([]dragonFrame, 0, engine.MaxPly),
		native: make(map[engine.Move]dragontoothmg.Move, 256),
	}
	p.hist.reset(p.b.Hash(), int(p.b.Halfmoveclock))
	return p, nil
}

func (p *DragonBoard) GenerateMoves(list *engine.MoveList) {
	for _, dm := range p.b.GenerateLegalMoves() {
		list.Add(p.convert(dm))
	}
}

func (p *DragonBoard) LegalMoves() []engine.Move {
	moves := p.b.GenerateLegalMoves()
	out := make([]engine.Move, len(moves))
	for i, dm := range moves {
		out[i] = p.convert(dm)
	}
	return out
}

// convert fills in the moved and captured pieces, which dragontoothmg moves do
// not carry.
func (p *DragonBoard) convert(dm dragontoothmg.Move) engine.Move {
	from := engine.Square(dm.From())
	to := engine.Square(dm.To())
	moved := p.PieceAt(from)
	captured := p.PieceAt(to)

	var flag uint8
	switch {
	case moved.Type() == engine.PieceTypePawn && from%8 != to%8 && captured == engine.NoPiece:
		flag = engine.FlagEnPassant
		captured = engine.MakePiece(moved.Color().Other(), engine.PieceTypePawn)
	case moved.Type() == engine.PieceTypeKing && engine.Abs(int(from)-int(to)) == 2:
		flag = engine.FlagCastle
	}

	promotion := engine.NoPiece
	if promo := dm.Promote(); promo != 0 {
		promotion = engine.MakePiece(moved.Color(), engine.PieceType(promo))
	}

	m := engine.NewMove(from, to, moved, captured, promotion, flag)
	p.native[m] = dm
	return m
}

func (p *DragonBoard) MakeMove(m engine.Move) {
	dm, ok := p.native[m]
	if !ok {
		panic(fmt.Sprintf("position: move %v was not generated by this board", m))
	}
	p.frames = append(p.frames, dragonFrame{unapply: p.b.Apply(dm)})
	p.hist.push(p.b.Hash(), int(p.b.Halfmoveclock))
}

func (p *DragonBoard) UndoMove(engine.Move) {
	n := len(p.frames)
	if n == 0 {
		panic("position: UndoMove without a matching MakeMove")
	}
	p.frames[n-1].unapply()
	p.frames = p.frames[:n-1]
	p.hist.pop()
}

// Play applies a legal coordinate move as an irreversible game move.
func (p *DragonBoard) Play(uci string) error {
	for _, m := range p.LegalMoves() {
		if m.String() == uci {
			p.b.Apply(p.native[m])
			p.hist.push(p.b.Hash(), int(p.b.Halfmoveclock))
			return nil
		}
	}
	return fmt.Errorf("position: %w %q", ErrUnknownMove, uci)
}

func (p *DragonBoard) OpponentInCheck() bool { return false }

func (p *DragonBoard) SideInCheck() bool { return p.b.OurKingInCheck() }

func (p *DragonBoard) FiftyMoveCounter() int { return int(p.b.Halfmoveclock) }

func (p *DragonBoard) IsRepetition() bool { return p.hist.threefold() }

func (p *DragonBoard) Key() uint64 { return p.b.Hash() }

func (p *DragonBoard) Ply() int { return len(p.frames) }

func (p *DragonBoard) SideToMove() engine.Color {
	if p.b.Wtomove {
		return engine.White
	}
	return engine.Black
}

func (p *DragonBoard) PieceAt(sq engine.Square) engine.Piece {
	bit := uint64(1) << sq
	color := engine.White
	bbs := &p.b.White
	if p.b.Black.All&bit != 0 {
		color = engine.Black
		bbs = &p.b.Black
	} else if bbs.All&bit == 0 {
		return engine.NoPiece
	}
	switch {
	case bbs.Pawns&bit != 0:
		return engine.MakePiece(color, engine.PieceTypePawn)
	case bbs.Knights&bit != 0:
		return engine.MakePiece(color, engine.PieceTypeKnight)
	case bbs.Bishops&bit != 0:
		return engine.MakePiece(color, engine.PieceTypeBishop)
	case bbs.Rooks&bit != 0:
		return engine.MakePiece(color, engine.PieceTypeRook)
	case bbs.Queens&bit != 0:
		return engine.MakePiece(color, engine.PieceTypeQueen)
	case bbs.Kings&bit != 0:
		return engine.MakePiece(color, engine.PieceTypeKing)
	}
	return engine.NoPiece
}

// Outcome classifies a position without legal moves: checkmate is a loss for
// the side in check, anything else a draw.
func (p *DragonBoard) Outcome(side engine.Color) engine.GameResult {
	if p.kingAttacked(side) {
		return engine.Loss
	}
	if p.kingAttacked(side.Other()) {
		return engine.Win
	}
	return engine.Draw
}

func (p *DragonBoard) kingAttacked(side engine.Color) bool {
	kings := p.b.White.Kings
	if side == engine.Black {
		kings = p.b.Black.Kings
	}
	if kings == 0 {
		return false
	}
	return p.b.UnderDirectAttack(side == engine.White, uint8(bits.TrailingZeros64(kings)))
}

func (p *DragonBoard) FEN() string { return p.b.ToFen() }

func (p *DragonBoard) String() string { return p.FEN() }
