package engine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// =============================================================================
// SCORE CONSTANTS
// =============================================================================
const (
	Infinity  int32 = 100000
	MateScore int32 = Infinity
	DrawScore int32 = 0

	// Scores beyond this are forced mates.
	MateThreshold = MateScore - MaxPly

	// Upper bound on any ply the search can reach, quiescence included.
	MaxPly = 64

	fiftyMoveLimit = 100
)

var ErrNoLegalMoves = errors.New("no legal moves at the root")

// Searcher runs fixed depth alpha-beta searches. A Searcher may be reused for
// consecutive calls; concurrent calls must not share one when cache writes are
// enabled.
type Searcher struct {
	cfg   Config
	eval  Evaluator
	cache Cache
	sink  PredictionSink
	log   zerolog.Logger
}

type Option func(*Searcher)

// WithCache replaces the Searcher's own transposition table.
func WithCache(c Cache) Option {
	return func(s *Searcher) { s.cache = c }
}

func WithPredictionSink(sink PredictionSink) Option {
	return func(s *Searcher) { s.sink = sink }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Searcher) { s.log = l }
}

func New(cfg Config, ev Evaluator, opts ...Option) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if ev == nil {
		return nil, errors.New("engine: nil evaluator")
	}
	s := &Searcher{cfg: cfg, eval: ev, log: log.Logger}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = NewTransTable(cfg.CacheSizeMB)
	}
	return s, nil
}

func (s *Searcher) Config() Config { return s.cfg }

// Result is what FindBestMove hands back: the chosen move, its score from the
// side to move's point of view and the diagnostics of the call.
type Result struct {
	Move   Move
	Score  int32
	Report Report
}

// run is the state of one search call. Everything the recursion mutates apart
// from the position lives here.
type run struct {
	s       *Searcher
	killers *KillerTable
	stats   Stats
}

func (s *Searcher) newRun() *run {
	return &run{s: s, killers: NewKillerTable(s.cfg.KillerSlots)}
}

// FindBestMove searches pos to the configured horizon and returns the best move.
// pos is mutated during the search and restored before returning.
func (s *Searcher) FindBestMove(pos Position) (Result, error) {
	start := time.Now()
	id := uuid.NewString()
	s.log.Debug().
		Str("search", id).
		Int("horizon", s.cfg.Horizon).
		Int("quiescence_ceiling", s.cfg.QuiescenceCeiling).
		Bool("cache_writes", s.cfg.CacheWrites).
		Msg("search-starting")

	r := s.newRun()
	move, score, err := r.rootSearch(pos)
	r.stats.Elapsed = time.Since(start)
	if err != nil {
		s.log.Warn().Str("search", id).Err(err).Msg("search-aborted")
		return Result{}, err
	}

	report := Report{ID: id, Score: score, Stats: r.stats}
	s.log.Info().
		Str("search", id).
		Str("move", move.String()).
		Str("prediction", FormatScore(score)).
		Dur("time", report.Elapsed).
		Int("max_depth", report.MaxDepth).
		Uint64("visited_nodes", report.Nodes()).
		Uint64("visited_normal_nodes", report.NormalNodes).
		Uint64("visited_quiesce_nodes", report.QuiescenceNodes).
		Float64("nodes_per_second", report.NodesPerSecond()).
		Uint64("transposition_uses", report.CacheHits).
		Msg("search-finished")

	if s.sink != nil {
		s.sink.SetPrediction(score)
	}
	return Result{Move: move, Score: score, Report: report}, nil
}

// Search runs the principal search on pos with an explicit window, starting at
// ply, with fresh killers and counters.
func (s *Searcher) Search(pos Position, alpha, beta int32, ply int) (int32, Stats) {
	start := time.Now()
	r := s.newRun()
	score := r.alphabeta(pos, alpha, beta, ply)
	r.stats.Elapsed = time.Since(start)
	return score, r.stats
}

func (r *run) rootSearch(pos Position) (Move, int32, error) {
	alpha, beta := -Infinity, Infinity
	r.stats.NormalNodes++

	list := NewMoveList(64)
	pos.GenerateMoves(list)

	var hashMove Move
	if entry, ok := r.s.cache.Probe(pos.Key()); ok {
		hashMove = entry.Move
	}
	r.orderMoves(list, pos, hashMove, 0)

	bestMove := NoMove
	for list.HasMovesLeft() {
		m := list.Next()
		pos.MakeMove(m)
		if !pos.OpponentInCheck() {
			score := -r.alphabeta(pos, -beta, -alpha, 1)
			// Strict improvement only: the first of equally scored moves wins.
			if score > alpha {
				alpha = score
				bestMove = m
			}
		}
		pos.UndoMove(m)
	}

	if bestMove == NoMove {
		return NoMove, 0, ErrNoLegalMoves
	}
	r.store(pos.Key(), r.s.cfg.Horizon, 0, Exact, alpha, bestMove)
	return bestMove, alpha, nil
}

func (r *run) alphabeta(pos Position, alpha, beta int32, ply int) int32 {
	r.stats.reachedDepth(ply)

	if ply >= r.s.cfg.Horizon {
		return r.quiescence(pos, alpha, beta, ply)
	}

	r.stats.NormalNodes++

	if isDraw(pos) {
		return DrawScore
	}

	originalAlpha := alpha
	draft := r.s.cfg.Horizon - ply
	key := pos.Key()

	hashMove, score, done := r.probe(key, &alpha, &beta, draft, ply)
	if done {
		return score
	}

	list := NewMoveList(64)
	pos.GenerateMoves(list)
	r.orderMoves(list, pos, hashMove, ply)

	hasLegalMove := false
	bestMove := NoMove

	for list.HasMovesLeft() {
		m := list.Next()

		pos.MakeMove(m)
		if !pos.OpponentInCheck() {
			hasLegalMove = true

			score := -r.alphabeta(pos, -beta, -alpha, ply+1)
			if score > alpha {
				alpha = score
				bestMove = m
			}
		}
		pos.UndoMove(m)

		if alpha >= beta {
			r.failHigh(m, ply)
			r.store(key, draft, ply, LowerBound, alpha, m)
			return alpha
		}
	}

	if !hasLegalMove {
		return terminalScore(pos, ply)
	}

	r.store(key, draft, ply, boundFor(alpha, originalAlpha, beta), alpha, bestMove)
	return alpha
}

func (r *run) quiescence(pos Position, alpha, beta int32, ply int) int32 {
	r.stats.QuiescenceNodes++
	r.stats.reachedDepth(ply)

	if isDraw(pos) {
		return DrawScore
	}

	cfg := &r.s.cfg
	originalAlpha := alpha
	draft := cfg.Horizon - ply
	key := pos.Key()

	hashMove, score, done := r.probe(key, &alpha, &beta, draft, ply)
	if done {
		return score
	}

	inCheck := pos.SideInCheck()

	if !inCheck {
		evalScore := r.s.eval.Evaluate(pos)
		if evalScore >= beta {
			r.stats.StandPatCutoffs++
			return beta
		}
		if ply >= cfg.QuiescenceCeiling {
			return evalScore
		}
		if evalScore > alpha {
			alpha = evalScore
		}
	} else if ply >= cfg.QuiescenceCeiling {
		return r.checkedAtCeiling(pos, ply)
	}

	list := NewMoveList(64)
	pos.GenerateMoves(list)
	r.orderMoves(list, pos, hashMove, ply)

	allowCheckingMoves := !inCheck && ply < cfg.CheckingMovesCeiling
	var checkingMoves []Move

	hasLegalMove := false
	hasAlphaRisen := false
	bestMove := NoMove

	for list.HasMovesLeft() {
		m := list.Next()

		pos.MakeMove(m)

		var score int32
		searched := false

		if !pos.OpponentInCheck() {
			hasLegalMove = true

			if inCheck || m.IsCapture() {
				searched = true
				score = -r.quiescence(pos, -beta, -alpha, ply+1)
				if score > alpha {
					alpha = score
					hasAlphaRisen = true
					bestMove = m
				}
			} else if allowCheckingMoves && pos.SideInCheck() {
				checkingMoves = append(checkingMoves, m)
			}
		}

		pos.UndoMove(m)

		if searched && score >= beta {
			r.failHigh(m, ply)
			r.store(key, draft, ply, LowerBound, beta, m)
			return beta
		}
	}

	if !hasLegalMove {
		return terminalScore(pos, ply)
	}

	if allowCheckingMoves && !hasAlphaRisen {
		for _, m := range checkingMoves {
			pos.MakeMove(m)
			score := -r.quiescence(pos, -beta, -alpha, ply+1)
			pos.UndoMove(m)

			if score > alpha {
				alpha = score
				bestMove = m
			}
			if score >= beta {
				r.failHigh(m, ply)
				r.store(key, draft, ply, LowerBound, beta, m)
				return beta
			}
		}
	}

	r.store(key, draft, ply, boundFor(alpha, originalAlpha, beta), alpha, bestMove)
	return alpha
}

// checkedAtCeiling resolves a position in check at the quiescence ceiling
// without recursing: mate if nothing is legal, the static score otherwise.
func (r *run) checkedAtCeiling(pos Position, ply int) int32 {
	list := NewMoveList(64)
	pos.GenerateMoves(list)
	for i := 0; i < list.Len(); i++ {
		m := list.MoveAt(i)
		pos.MakeMove(m)
		legal := !pos.OpponentInCheck()
		pos.UndoMove(m)
		if legal {
			return r.s.eval.Evaluate(pos)
		}
	}
	return terminalScore(pos, ply)
}

// probe looks the key up and tightens the window with a usable entry. done is
// set when the entry alone decides the node.
func (r *run) probe(key uint64, alpha, beta *int32, draft, ply int) (hashMove Move, score int32, done bool) {
	entry, ok := r.s.cache.Probe(key)
	if !ok {
		return NoMove, 0, false
	}
	hashMove = entry.Move
	if int(entry.Draft) < draft {
		return hashMove, 0, false
	}

	r.stats.CacheHits++
	score = scoreFromCache(entry.Score, ply)
	switch entry.Bound {
	case Exact:
		return hashMove, score, true
	case LowerBound:
		*alpha = Max(*alpha, score)
	case UpperBound:
		*beta = Min(*beta, score)
	}
	if *alpha >= *beta {
		return hashMove, score, true
	}
	return hashMove, 0, false
}

func (r *run) store(key uint64, draft, ply int, bound Bound, score int32, m Move) {
	if !r.s.cfg.CacheWrites {
		return
	}
	r.stats.CacheStores++
	r.s.cache.Store(Entry{
		Key:   key,
		Draft: int8(draft),
		Bound: bound,
		Score: scoreToCache(score, ply),
		Move:  m,
	})
}

func (r *run) failHigh(m Move, ply int) {
	r.stats.BetaCutoffs++
	if r.s.cfg.KillerCaptures || !m.IsCapture() {
		r.killers.Record(m, ply)
	}
}

func isDraw(b Board) bool {
	return b.FiftyMoveCounter() >= fiftyMoveLimit || b.IsRepetition()
}

// terminalScore scores a node without legal moves. Shorter mates score higher.
func terminalScore(b Board, ply int) int32 {
	switch b.Outcome(b.SideToMove()) {
	case Win:
		return MateScore - int32(ply)
	case Loss:
		return -(MateScore - int32(ply))
	default:
		return DrawScore
	}
}
