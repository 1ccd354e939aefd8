package eval

import (
	"chess-search/engine"
)

// Most Valuable Victim - Least Valuable Aggressor; indexed [victim][attacker]
var mvvLva = [7][7]int32{
	{0, 0, 0, 0, 0, 0, 0},
	{0, 14, 13, 12, 11, 10, 0}, // victim Pawn
	{0, 24, 23, 22, 21, 20, 0}, // victim Knight
	{0, 34, 33, 32, 31, 30, 0}, // victim Bishop
	{0, 44, 43, 42, 41, 40, 0}, // victim Rook
	{0, 54, 53, 52, 51, 50, 0}, // victim Queen
	{0, 0, 0, 0, 0, 0, 0},      // victim King
}

// Keeps tactical moves above quiet ones and killers, below the hash move.
const scoreOffset int32 = 20000

// ScoreMoves sets the base ordering score of every move in the list.
func (e *Evaluator) ScoreMoves(list *engine.MoveList, b engine.Board) {
	for i := 0; i < list.Len(); i++ {
		list.SetScore(i, MoveScore(list.MoveAt(i)))
	}
}

// MoveScore is the board independent ordering score of m: promotions by the
// piece gained, captures by MVV-LVA, quiet moves zero.
func MoveScore(m engine.Move) int32 {
	switch {
	case m.Promotion() != engine.NoPiece:
		return scoreOffset + int32(pieceValueEG[m.Promotion().Type()])
	case m.IsCapture():
		return scoreOffset + mvvLva[m.Captured().Type()][m.MovedPiece().Type()]
	}
	return 0
}
