package engine

// GameResult classifies a finished game relative to a queried side.
type GameResult uint8

const (
	Draw GameResult = iota
	Win
	Loss
)

func (r GameResult) String() string {
	switch r {
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "draw"
	}
}

// Board is the mutable game state the search walks. Every MakeMove must be
// undone by exactly one UndoMove, in LIFO order.
type Board interface {
	MakeMove(m Move)
	UndoMove(m Move)

	// OpponentInCheck reports whether the side that made the last move left its
	// own king attacked, i.e. the last move was not legal.
	OpponentInCheck() bool
	// SideInCheck reports whether the side to move is in check.
	SideInCheck() bool

	FiftyMoveCounter() int
	IsRepetition() bool
	Key() uint64
	Ply() int
	SideToMove() Color
	PieceAt(sq Square) Piece

	// Outcome classifies a position without legal moves for side.
	Outcome(side Color) GameResult
}

// MoveGenerator appends the pseudo-legal moves of the current position.
type MoveGenerator interface {
	GenerateMoves(list *MoveList)
}

// Position couples a board with the generator bound to it.
type Position interface {
	Board
	MoveGenerator
}

// Evaluator supplies the static score, from the side to move's point of view,
// and the base ordering score of each generated move.
type Evaluator interface {
	Evaluate(b Board) int32
	ScoreMoves(list *MoveList, b Board)
}

// Cache is the transposition cache keyed by Board.Key.
type Cache interface {
	Probe(key uint64) (Entry, bool)
	Store(e Entry)
}

// PredictionSink receives the predicted score after each search.
type PredictionSink interface {
	SetPrediction(score int32)
}
