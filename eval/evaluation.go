// Package eval scores chess positions with tapered material and piece-square
// tables and gives the search its base move ordering.
package eval

import (
	"chess-search/engine"
)

// Evaluator implements engine.Evaluator. The zero value is ready to use.
type Evaluator struct {
	// Tempo is credited to the side to move.
	Tempo int32
}

func New() *Evaluator { return &Evaluator{} }

// Terms is the breakdown of one evaluation, always from White's point of view.
type Terms struct {
	MG    int
	EG    int
	Phase int
	Score int
}

// Explain evaluates b and returns the intermediate terms.
func (e *Evaluator) Explain(b engine.Board) Terms {
	var t Terms
	for sq := engine.Square(0); sq < 64; sq++ {
		p := b.PieceAt(sq)
		if p == engine.NoPiece {
			continue
		}
		pt := p.Type()
		idx := int(sq)
		sign := 1
		if p.Color() == engine.Black {
			idx ^= 56
			sign = -1
		}
		t.MG += sign * (pieceValueMG[pt] + psqtMG[pt][idx])
		t.EG += sign * (pieceValueEG[pt] + psqtEG[pt][idx])
		t.Phase += phaseWeight[pt]
	}

	// Promotions can push the phase past the starting material.
	t.Phase = engine.Min(t.Phase, totalPhase)
	t.Score = (t.MG*t.Phase + t.EG*(totalPhase-t.Phase)) / totalPhase
	return t
}

// Evaluate returns the static score relative to the side to move.
func (e *Evaluator) Evaluate(b engine.Board) int32 {
	score := int32(e.Explain(b).Score)
	if b.SideToMove() == engine.Black {
		score = -score
	}
	return score + e.Tempo
}
