package position

import (
	"chess-search/engine"
)

// Perft counts the leaf nodes of the legal move tree of pos to depth. It uses
// the same generate, make, reject-if-illegal loop as the search, so it checks
// both the generator and the Board contract of a backend.
func Perft(pos engine.Position, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	list := engine.NewMoveList(64)
	pos.GenerateMoves(list)

	var nodes uint64
	for i := 0; i < list.Len(); i++ {
		m := list.MoveAt(i)
		pos.MakeMove(m)
		if !pos.OpponentInCheck() {
			nodes += Perft(pos, depth-1)
		}
		pos.UndoMove(m)
	}
	return nodes
}

// PerftDivide returns the perft count below each legal root move, keyed by the
// move in long algebraic notation.
func PerftDivide(pos engine.Position, depth int) map[string]uint64 {
	out := make(map[string]uint64)
	if depth <= 0 {
		return out
	}
	list := engine.NewMoveList(64)
	pos.GenerateMoves(list)
	for i := 0; i < list.Len(); i++ {
		m := list.MoveAt(i)
		pos.MakeMove(m)
		if !pos.OpponentInCheck() {
			out[m.String()] = Perft(pos, depth-1)
		}
		pos.UndoMove(m)
	}
	return out
}
