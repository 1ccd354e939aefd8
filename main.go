package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chess-search/engine"
	"chess-search/eval"
	"chess-search/position"
)

func main() {
	configPath := flag.String("config", "", "JSON search config (defaults apply for missing keys)")
	backend := flag.String("backend", "goose", "move generator: goose or dragon")
	logLevel := flag.String("loglevel", "info", "zerolog level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := engine.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configPath); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}

	c, err := newConsole(cfg, *backend, os.Stdout)
	if err != nil {
		log.Fatal().Err(err).Msg("startup")
	}
	if err := c.run(os.Stdin); err != nil {
		log.Fatal().Err(err).Msg("input")
	}
}

// gamePosition is what the console needs on top of the search contract.
type gamePosition interface {
	engine.Position
	FEN() string
	Play(uci string) error
	LegalMoves() []engine.Move
}

func newPosition(backend, fen string) (gamePosition, error) {
	switch backend {
	case "goose":
		return position.NewBoard(fen)
	case "dragon":
		return position.NewDragonBoard(fen)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// console is a line oriented front end: set up a position, search it, look at
// the evaluation.
type console struct {
	cfg      engine.Config
	backend  string
	out      io.Writer
	ev       *eval.Evaluator
	tt       *engine.TransTable
	searcher *engine.Searcher
	pos      gamePosition
	// start and played reproduce pos for the SAN line.
	start  string
	played []string
}

func newConsole(cfg engine.Config, backend string, out io.Writer) (*console, error) {
	c := &console{cfg: cfg, backend: backend, out: out, ev: eval.New(), start: position.StartFEN}
	if err := c.rebuildSearcher(); err != nil {
		return nil, err
	}
	pos, err := newPosition(backend, position.StartFEN)
	if err != nil {
		return nil, err
	}
	c.pos = pos
	return c, nil
}

// rebuildSearcher applies c.cfg. The transposition table survives unless its
// size changed.
func (c *console) rebuildSearcher() error {
	if c.tt == nil || c.searcher == nil || c.searcher.Config().CacheSizeMB != c.cfg.CacheSizeMB {
		c.tt = engine.NewTransTable(c.cfg.CacheSizeMB)
	}
	s, err := engine.New(c.cfg, c.ev, engine.WithLogger(log.Logger), engine.WithCache(c.tt))
	if err != nil {
		return err
	}
	c.searcher = s
	return nil
}

func (c *console) println(a ...any) { fmt.Fprintln(c.out, a...) }

func (c *console) run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		tokens := strings.Fields(scanner.Text())
		if len(tokens) == 0 { // ignore blank lines
			continue
		}
		if !c.handle(tokens) {
			return nil
		}
	}
	return scanner.Err()
}

// handle executes one command and reports whether the loop should continue.
func (c *console) handle(tokens []string) bool {
	switch strings.ToLower(tokens[0]) {
	case "quit":
		return false
	case "position":
		c.position(tokens[1:])
	case "go":
		c.search(tokens[1:])
	case "eval":
		terms := c.ev.Explain(c.pos)
		c.println("mg:", terms.MG, "eg:", terms.EG, "phase:", terms.Phase)
		c.println("score:", c.ev.Evaluate(c.pos), "(side to move)")
	case "moves":
		moves := c.pos.LegalMoves()
		names := make([]string, len(moves))
		for i, m := range moves {
			names[i] = m.String()
		}
		c.println(strings.Join(names, " "))
	case "fen", "d":
		c.println(c.pos.FEN())
	case "line":
		c.line()
	case "clear":
		c.tt.Clear()
		c.println("cache cleared")
	case "set":
		c.set(tokens[1:])
	default:
		c.println("unknown command", tokens[0])
	}
	return true
}

func (c *console) position(args []string) {
	if len(args) == 0 {
		c.println("malformed position command")
		return
	}
	var fen string
	rest := args[1:]
	switch strings.ToLower(args[0]) {
	case "startpos":
		fen = position.StartFEN
	case "fen":
		var fields []string
		for len(rest) > 0 && strings.ToLower(rest[0]) != "moves" {
			fields = append(fields, rest[0])
			rest = rest[1:]
		}
		fen = strings.Join(fields, " ")
	default:
		c.println("invalid position subcommand", args[0])
		return
	}

	pos, err := newPosition(c.backend, fen)
	if err != nil {
		c.println("error:", err)
		return
	}
	var played []string
	if len(rest) > 0 && strings.ToLower(rest[0]) == "moves" {
		for _, mv := range rest[1:] {
			mv = strings.ToLower(mv)
			if err := pos.Play(mv); err != nil {
				c.println("error:", err)
				return
			}
			played = append(played, mv)
		}
	}
	c.pos = pos
	c.start = fen
	c.played = played
}

// line prints the moves played since the last position command in SAN.
func (c *console) line() {
	if len(c.played) == 0 {
		c.println("(no moves)")
		return
	}
	sans, err := position.Line(c.start, c.played)
	if err != nil {
		c.println("error:", err)
		return
	}
	c.println(strings.Join(sans, " "))
}

func (c *console) search(args []string) {
	if len(args) == 2 && args[0] == "depth" {
		depth, err := strconv.Atoi(args[1])
		if err != nil {
			c.println("malformed depth", args[1])
			return
		}
		cfg := c.cfg
		cfg.Horizon = depth
		if err := cfg.Validate(); err != nil {
			c.println("error:", err)
			return
		}
		s, err := engine.New(cfg, c.ev, engine.WithLogger(log.Logger), engine.WithCache(c.tt))
		if err != nil {
			c.println("error:", err)
			return
		}
		c.report(s)
		return
	}
	c.report(c.searcher)
}

func (c *console) report(s *engine.Searcher) {
	fen := c.pos.FEN()
	res, err := s.FindBestMove(c.pos)
	if err != nil {
		c.println("error:", err)
		return
	}
	fmt.Fprint(c.out, res.Report.String())
	san, err := position.SAN(fen, res.Move.String())
	if err != nil {
		san = "?"
	}
	c.println("bestmove", res.Move.String(), san)
}

func (c *console) set(args []string) {
	if len(args) != 2 {
		c.println("usage: set <option> <value>")
		return
	}
	cfg := c.cfg
	key, raw := strings.ToLower(args[0]), args[1]
	var err error
	switch key {
	case "cache_writes":
		cfg.CacheWrites, err = strconv.ParseBool(raw)
	case "killer_captures":
		cfg.KillerCaptures, err = strconv.ParseBool(raw)
	case "horizon":
		cfg.Horizon, err = strconv.Atoi(raw)
	case "quiescence_ceiling":
		cfg.QuiescenceCeiling, err = strconv.Atoi(raw)
	case "checking_moves_ceiling":
		cfg.CheckingMovesCeiling, err = strconv.Atoi(raw)
	case "killer_slots":
		cfg.KillerSlots, err = strconv.Atoi(raw)
	case "cache_size_mb":
		cfg.CacheSizeMB, err = strconv.Atoi(raw)
	case "hash_move_score", "killer_move_score":
		var v int64
		v, err = strconv.ParseInt(raw, 10, 32)
		if key == "hash_move_score" {
			cfg.HashMoveScore = int32(v)
		} else {
			cfg.KillerMoveScore = int32(v)
		}
	default:
		c.println("unknown option", key)
		return
	}
	if err != nil {
		c.println("malformed value", raw)
		return
	}
	if err := cfg.Validate(); err != nil {
		c.println("error:", err)
		return
	}
	c.cfg = cfg
	if err := c.rebuildSearcher(); err != nil {
		c.println("error:", err)
	}
}
