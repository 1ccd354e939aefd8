package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/profile"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"chess-search/engine"
	"chess-search/eval"
	"chess-search/position"
)

type benchResult struct {
	fen    string
	move   string
	san    string
	score  int32
	report engine.Report
}

func main() {
	depthFlag := flag.Int("depth", 0, "search horizon in plies (0 = config value)")
	repeatFlag := flag.Int("repeat", 1, "number of passes over the positions")
	fenFlag := flag.String("fen", "", "FEN to search (empty = startpos)")
	suiteFlag := flag.String("suite", "", "file with one FEN per line, overrides -fen")
	configFlag := flag.String("config", "", "JSON search config")
	backendFlag := flag.String("backend", "goose", "move generator: goose or dragon")
	parallelFlag := flag.Int("parallel", 1, "positions searched concurrently")
	cacheWrites := flag.Bool("cache-writes", false, "store search results in the transposition cache")
	profileFlag := flag.String("profile", "", "cpu or mem")
	profileDir := flag.String("profiledir", ".", "directory the profile is written to")
	logLevel := flag.String("loglevel", "warn", "zerolog level")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if lvl, err := zerolog.ParseLevel(*logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cfg := engine.DefaultConfig()
	if *configFlag != "" {
		var err error
		if cfg, err = engine.LoadConfig(*configFlag); err != nil {
			log.Fatal().Err(err).Msg("config")
		}
	}
	if *depthFlag > 0 {
		cfg.Horizon = *depthFlag
	}
	if *cacheWrites {
		cfg.CacheWrites = true
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	if *repeatFlag < 1 || *parallelFlag < 1 {
		log.Fatal().Int("repeat", *repeatFlag).Int("parallel", *parallelFlag).Msg("repeat and parallel must be positive")
	}

	fens := []string{position.StartFEN}
	if *fenFlag != "" {
		fens = []string{*fenFlag}
	}
	if *suiteFlag != "" {
		var err error
		if fens, err = readSuite(*suiteFlag); err != nil {
			log.Fatal().Err(err).Str("suite", *suiteFlag).Msg("suite")
		}
	}

	switch *profileFlag {
	case "":
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfile, profile.ProfilePath(*profileDir), profile.NoShutdownHook).Stop()
	default:
		log.Fatal().Str("profile", *profileFlag).Msg("unknown profile kind")
	}

	fmt.Printf("Running %d pass(es) over %d position(s) at horizon %d (%s)\n",
		*repeatFlag, len(fens), cfg.Horizon, *backendFlag)

	var all []benchResult
	start := time.Now()
	for i := 0; i < *repeatFlag; i++ {
		results, err := runPass(context.Background(), cfg, *backendFlag, fens, *parallelFlag)
		if err != nil {
			log.Fatal().Err(err).Int("pass", i+1).Msg("search failed")
		}
		for _, r := range results {
			fmt.Printf("[%d] %-8s %-8s %-10s nodes=%d time=%s\n",
				i+1, r.move, r.san, engine.FormatScore(r.score), r.report.Nodes(), r.report.Elapsed)
		}
		all = append(all, results...)
	}
	wall := time.Since(start)

	nodes := lo.SumBy(all, func(r benchResult) uint64 { return r.report.Nodes() })
	quiesce := lo.SumBy(all, func(r benchResult) uint64 { return r.report.QuiescenceNodes })
	hits := lo.SumBy(all, func(r benchResult) uint64 { return r.report.CacheHits })
	searchTime := lo.SumBy(all, func(r benchResult) time.Duration { return r.report.Elapsed })
	maxDepth := lo.Max(lo.Map(all, func(r benchResult, _ int) int { return r.report.MaxDepth }))

	fmt.Println("-----")
	fmt.Printf("searches:       %d\n", len(all))
	fmt.Printf("wall time:      %s\n", wall)
	fmt.Printf("search time:    %s\n", searchTime)
	fmt.Printf("nodes:          %d (%d quiescence)\n", nodes, quiesce)
	fmt.Printf("max depth:      %d\n", maxDepth)
	fmt.Printf("cache hits:     %d\n", hits)
	if wall > 0 {
		fmt.Printf("nodes/second:   %.0f\n", float64(nodes)/wall.Seconds())
	}
}

// runPass searches every position once, each on its own Searcher so no cache
// is shared between goroutines.
func runPass(ctx context.Context, cfg engine.Config, backend string, fens []string, parallel int) ([]benchResult, error) {
	results := make([]benchResult, len(fens))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)
	for i, fen := range fens {
		i, fen := i, fen
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pos, err := newPosition(backend, fen)
			if err != nil {
				return err
			}
			s, err := engine.New(cfg, eval.New(), engine.WithLogger(log.Logger))
			if err != nil {
				return err
			}
			res, err := s.FindBestMove(pos)
			if err != nil {
				return fmt.Errorf("%s: %w", fen, err)
			}
			san, err := position.SAN(fen, res.Move.String())
			if err != nil {
				san = "?"
			}
			results[i] = benchResult{fen: fen, move: res.Move.String(), san: san, score: res.Score, report: res.Report}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func newPosition(backend, fen string) (engine.Position, error) {
	switch backend {
	case "goose":
		return position.NewBoard(fen)
	case "dragon":
		return position.NewDragonBoard(fen)
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

// readSuite reads FENs one per line. Blank lines and lines starting with '#'
// are skipped; anything after a ';' is dropped so EPD files work too.
func readSuite(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var fens []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := position.ValidateFEN(line); err != nil {
			return nil, err
		}
		fens = append(fens, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(fens) == 0 {
		return nil, fmt.Errorf("%s: no positions", path)
	}
	return fens, nil
}
