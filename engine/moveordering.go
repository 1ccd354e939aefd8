package engine

import (
	"golang.org/x/exp/slices"
)

type scoredMove struct {
	move  Move
	score int32
}

// MoveList holds the candidate moves of one node together with their ordering
// score. Next hands them out best first; scores changed mid-iteration are
// honoured for the moves not yet taken.
type MoveList struct {
	moves []scoredMove
	next  int
}

func NewMoveList(capacity int) *MoveList {
	return &MoveList{moves: make([]scoredMove, 0, capacity)}
}

// Add appends a move with a zero ordering score.
func (l *MoveList) Add(m Move) {
	l.moves = append(l.moves, scoredMove{move: m})
}

func (l *MoveList) Len() int { return len(l.moves) }

// SetScore overwrites the ordering score of the i-th move.
func (l *MoveList) SetScore(i int, score int32) { l.moves[i].score = score }

func (l *MoveList) MoveAt(i int) Move { return l.moves[i].move }

// ApplyMoveScore adds bonus to m if it is in the list. Moves the generator did
// not produce (a stale hash move, a killer from a sibling) are ignored.
func (l *MoveList) ApplyMoveScore(m Move, bonus int32) bool {
	if m == NoMove {
		return false
	}
	idx := slices.IndexFunc(l.moves, func(sm scoredMove) bool { return sm.move == m })
	if idx < 0 {
		return false
	}
	l.moves[idx].score += bonus
	return true
}

func (l *MoveList) HasMovesLeft() bool { return l.next < len(l.moves) }

// Next selects the best scored of the remaining moves, swaps it into place and
// returns it. Equal scores keep generation order.
func (l *MoveList) Next() Move {
	best := l.next
	for i := l.next + 1; i < len(l.moves); i++ {
		if l.moves[i].score > l.moves[best].score {
			best = i
		}
	}
	if best != l.next {
		picked := l.moves[best]
		copy(l.moves[l.next+1:best+1], l.moves[l.next:best])
		l.moves[l.next] = picked
	}
	m := l.moves[l.next].move
	l.next++
	return m
}

// orderMoves layers the hash move and killer bonuses over the evaluator's base
// scores.
func (r *run) orderMoves(list *MoveList, b Board, hashMove Move, ply int) {
	r.s.eval.ScoreMoves(list, b)
	if hashMove != NoMove {
		list.ApplyMoveScore(hashMove, r.s.cfg.HashMoveScore)
	}
	for _, killer := range r.killers.Killers(ply) {
		list.ApplyMoveScore(killer, r.s.cfg.KillerMoveScore)
	}
}
