// Package position binds chess move generators to the engine's Board and
// MoveGenerator interfaces.
package position

import (
	"fmt"

	gm "github.com/Oliverans/GooseEngineMG/goosemg"

	"chess-search/engine"
)

// frame is the undo record of one MakeMove. Illegal moves are rejected by
// goosemg without touching the board, so their frames only carry legal=false.
type frame struct {
	st    gm.MoveState
	legal bool
}

// Board adapts a goosemg board. Moves are generated pseudo-legal; legality is
// resolved by MakeMove and reported through OpponentInCheck.
type Board struct {
	b      *gm.Board
	frames []frame
	hist   history
	buf    []gm.Move
}

// NewBoard parses fen into a goosemg backed Board.
func NewBoard(fen string) (*Board, error) {
	if err := ValidateFEN(fen); err != nil {
		return nil, err
	}
	b, err := gm.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("position: parse fen %q: %w", fen, err)
	}
	p := &Board{
		b:      b,
		frames: make([]frame, 0, engine.MaxPly),
		buf:    make([]gm.Move, 0, 128),
	}
	p.hist.reset(b.Hash(), b.HalfmoveClock())
	return p, nil
}

// StartBoard returns the initial position.
func StartBoard() *Board {
	p, err := NewBoard(StartFEN)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Board) GenerateMoves(list *engine.MoveList) {
	p.buf = p.b.GeneratePseudoMovesInto(p.buf[:0])
	for _, m := range p.buf {
		list.Add(engine.Move(m))
	}
}

// LegalMoves lists the legal moves of the current position.
func (p *Board) LegalMoves() []engine.Move {
	moves := p.b.GenerateMoves()
	out := make([]engine.Move, len(moves))
	for i, m := range moves {
		out[i] = engine.Move(m)
	}
	return out
}

func (p *Board) MakeMove(m engine.Move) {
	ok, st := p.b.MakeMove(gm.Move(m))
	p.frames = append(p.frames, frame{st: st, legal: ok})
	if ok {
		p.hist.push(p.b.Hash(), p.b.HalfmoveClock())
	}
}

func (p *Board) UndoMove(m engine.Move) {
	n := len(p.frames)
	if n == 0 {
		panic("position: UndoMove without a matching MakeMove")
	}
	f := p.frames[n-1]
	p.frames = p.frames[:n-1]
	if f.legal {
		p.b.UnmakeMove(gm.Move(m), f.st)
		p.hist.pop()
	}
}

// Play applies a legal move given in coordinate notation as a game move. It
// cannot be undone and does not count towards Ply.
func (p *Board) Play(uci string) error {
	for _, m := range p.b.GenerateMoves() {
		if m.String() != uci {
			continue
		}
		if ok, _ := p.b.MakeMove(m); !ok {
			break
		}
		p.hist.push(p.b.Hash(), p.b.HalfmoveClock())
		return nil
	}
	return fmt.Errorf("position: %w %q", ErrUnknownMove, uci)
}

// ParseMove resolves a coordinate move against the legal moves of the position.
func (p *Board) ParseMove(uci string) (engine.Move, error) {
	for _, m := range p.LegalMoves() {
		if m.String() == uci {
			return m, nil
		}
	}
	return engine.NoMove, fmt.Errorf("position: %w %q", ErrUnknownMove, uci)
}

func (p *Board) OpponentInCheck() bool {
	if n := len(p.frames); n > 0 && !p.frames[n-1].legal {
		return true
	}
	return p.b.InCheck(p.b.SideToMove() ^ 1)
}

func (p *Board) SideInCheck() bool { return p.b.InCheck(p.b.SideToMove()) }

func (p *Board) FiftyMoveCounter() int { return p.b.HalfmoveClock() }

func (p *Board) IsRepetition() bool { return p.hist.threefold() }

func (p *Board) Key() uint64 { return p.b.Hash() }

// Ply counts the moves made through MakeMove that are still on the stack.
func (p *Board) Ply() int { return len(p.frames) }

func (p *Board) SideToMove() engine.Color { return engine.Color(p.b.SideToMove()) }

func (p *Board) PieceAt(sq engine.Square) engine.Piece {
	return engine.Piece(p.b.PieceAt(gm.Square(sq)))
}

// Outcome classifies a position without legal moves: checkmate is a loss for
// the side in check, anything else a draw.
func (p *Board) Outcome(side engine.Color) engine.GameResult {
	if p.b.InCheck(gm.Color(side)) {
		return engine.Loss
	}
	if p.b.InCheck(gm.Color(side.Other())) {
		return engine.Win
	}
	return engine.Draw
}

func (p *Board) FEN() string { return p.b.ToFEN() }

func (p *Board) String() string { return p.FEN() }

var (
	_ engine.Position = (*Board)(nil)
	_ engine.Position = (*DragonBoard)(nil)
)
