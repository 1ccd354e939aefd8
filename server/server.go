// Package server exposes the searcher over HTTP and streams predictions over a
// websocket.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"chess-search/engine"
	"chess-search/eval"
	"chess-search/position"
)

// Server owns one Searcher. Searches are serialised because they share its
// transposition table.
type Server struct {
	mu       sync.Mutex
	cfg      engine.Config
	eval     *eval.Evaluator
	searcher *engine.Searcher
	hub      *PredictionHub
	log      zerolog.Logger
}

func New(cfg engine.Config, log zerolog.Logger) (*Server, error) {
	s := &Server{
		cfg:  cfg,
		eval: eval.New(),
		hub:  NewPredictionHub(),
		log:  log,
	}
	searcher, err := engine.New(cfg, s.eval,
		engine.WithPredictionSink(s.hub),
		engine.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	s.searcher = searcher
	return s, nil
}

func (s *Server) Hub() *PredictionHub { return s.hub }

type positionRequest struct {
	FEN   string   `json:"fen"`
	Moves []string `json:"moves"`
}

type reportDTO struct {
	ID                 string  `json:"id"`
	TimeMs             int64   `json:"time_ms"`
	MaxDepth           int     `json:"max_depth"`
	Prediction         string  `json:"prediction"`
	VisitedNodes       uint64  `json:"visited_nodes"`
	NodesPerSecond     float64 `json:"nodes_per_second"`
	VisitedNormalNodes uint64  `json:"visited_normal_nodes"`
	VisitedQuiesce     uint64  `json:"visited_quiesce_nodes"`
	TranspositionUses  uint64  `json:"transposition_uses"`
	BetaCutoffs        uint64  `json:"beta_cutoffs"`
}

type searchResponse struct {
	Move   string    `json:"move"`
	SAN    string    `json:"san"`
	Score  int32     `json:"score"`
	Report reportDTO `json:"report"`
}

type legalMove struct {
	UCI string `json:"uci"`
	SAN string `json:"san"`
}

func reportToDTO(r engine.Report) reportDTO {
	return reportDTO{
		ID:                 r.ID,
		TimeMs:             r.Elapsed.Milliseconds(),
		MaxDepth:           r.MaxDepth,
		Prediction:         engine.FormatScore(r.Score),
		VisitedNodes:       r.Nodes(),
		NodesPerSecond:     r.NodesPerSecond(),
		VisitedNormalNodes: r.NormalNodes,
		VisitedQuiesce:     r.QuiescenceNodes,
		TranspositionUses:  r.CacheHits,
		BetaCutoffs:        r.BetaCutoffs,
	}
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/config", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.cfg)
	})

	r.Post("/api/search", s.handleSearch)
	r.Post("/api/eval", s.handleEval)
	r.Post("/api/moves", s.handleMoves)

	r.Get("/ws/prediction", s.servePredictionWS)
	return r
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	res, err := s.searcher.FindBestMove(b)
	s.mu.Unlock()
	if errors.Is(err, engine.ErrNoLegalMoves) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("search-failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	san, err := position.SAN(b.FEN(), res.Move.String())
	if err != nil {
		s.log.Warn().Err(err).Str("fen", req.FEN).Str("move", res.Move.String()).Msg("san-failed")
		san = res.Move.String()
	}
	writeJSON(w, http.StatusOK, searchResponse{
		Move:   res.Move.String(),
		SAN:    san,
		Score:  res.Score,
		Report: reportToDTO(res.Report),
	})
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}
	terms := s.eval.Explain(b)
	writeJSON(w, http.StatusOK, map[string]any{
		"score": s.eval.Evaluate(b),
		"mg":    terms.MG,
		"eg":    terms.EG,
		"phase": terms.Phase,
		"white": terms.Score,
	})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	_, b, ok := s.decodePosition(w, r)
	if !ok {
		return
	}
	fen := b.FEN()
	moves := lo.Map(b.LegalMoves(), func(m engine.Move, _ int) legalMove {
		san, err := position.SAN(fen, m.String())
		if err != nil {
			san = m.String()
		}
		return legalMove{UCI: m.String(), SAN: san}
	})
	writeJSON(w, http.StatusOK, moves)
}

// decodePosition reads a positionRequest and builds the board it describes. On
// failure the error response is already written.
func (s *Server) decodePosition(w http.ResponseWriter, r *http.Request) (positionRequest, *position.Board, bool) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return req, nil, false
	}
	if req.FEN == "" {
		req.FEN = position.StartFEN
	}
	b, err := position.NewBoard(req.FEN)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return req, nil, false
	}
	for _, mv := range req.Moves {
		if err := b.Play(mv); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return req, nil, false
		}
	}
	return req, b, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
