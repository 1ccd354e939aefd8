package main

import (
	"bytes"
	"strings"
	"testing"

	"chess-search/engine"
	"chess-search/position"
)

func testConsole(t *testing.T, backend string) (*console, *bytes.Buffer) {
	t.Helper()
	cfg := engine.DefaultConfig()
	cfg.Horizon = 2
	cfg.QuiescenceCeiling = 6
	cfg.CheckingMovesCeiling = 0
	cfg.CacheSizeMB = 1
	var out bytes.Buffer
	c, err := newConsole(cfg, backend, &out)
	if err != nil {
		t.Fatalf("newConsole: %v", err)
	}
	return c, &out
}

func TestConsoleFindsMate(t *testing.T) {
	for _, backend := range []string{"goose", "dragon"} {
		c, out := testConsole(t, backend)
		input := "position fen 6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1\ngo\nquit\n"
		if err := c.run(strings.NewReader(input)); err != nil {
			t.Fatalf("%s: run: %v", backend, err)
		}
		if !strings.Contains(out.String(), "bestmove a1a8 Ra8#") {
			t.Errorf("%s: output missing mate:\n%s", backend, out.String())
		}
		if !strings.Contains(out.String(), "prediction: mate 1") {
			t.Errorf("%s: output missing mate prediction:\n%s", backend, out.String())
		}
	}
}

func TestConsolePositionWithMoves(t *testing.T) {
	c, out := testConsole(t, "goose")
	input := "position startpos moves e2e4 e7e5\nfen\n"
	if err := c.run(strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"
	if got := strings.TrimSpace(out.String()); got != want {
		t.Errorf("fen = %q, want %q", got, want)
	}
}

func TestConsoleRejectsBadInput(t *testing.T) {
	c, out := testConsole(t, "goose")
	input := strings.Join([]string{
		"position startpos moves e2e5",
		"position fen not-a-fen",
		"frobnicate",
		"set horizon 0",
		"set nonsense 3",
		"go depth x",
	}, "\n")
	if err := c.run(strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d output lines, want 6:\n%s", len(lines), out.String())
	}
	if c.pos.FEN() != position.StartFEN {
		t.Errorf("rejected commands changed the position to %s", c.pos.FEN())
	}
	if c.cfg.Horizon != 2 {
		t.Errorf("rejected option changed horizon to %d", c.cfg.Horizon)
	}
}

func TestConsoleSetRebuildsSearcher(t *testing.T) {
	c, _ := testConsole(t, "goose")
	if err := c.run(strings.NewReader("set horizon 3\nset cache_writes true\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := c.searcher.Config()
	if got.Horizon != 3 || !got.CacheWrites {
		t.Errorf("searcher config = %+v", got)
	}
}

func TestConsoleMovesAndEval(t *testing.T) {
	c, out := testConsole(t, "dragon")
	if err := c.run(strings.NewReader("moves\neval\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), out.String())
	}
	if n := len(strings.Fields(lines[0])); n != 20 {
		t.Errorf("start position lists %d moves, want 20", n)
	}
	if !strings.HasPrefix(lines[2], "score: ") {
		t.Errorf("eval line = %q", lines[2])
	}
}

func TestConsoleSetsEveryOption(t *testing.T) {
	c, out := testConsole(t, "goose")
	input := strings.Join([]string{
		"set killer_captures false",
		"set hash_move_score 25000",
		"set killer_move_score 1500",
		"set killer_slots 3",
		"set quiescence_ceiling 8",
		"set checking_moves_ceiling 4",
		"set cache_size_mb 2",
	}, "\n")
	oldTable := c.tt
	if err := c.run(strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
	got := c.searcher.Config()
	if got.KillerCaptures || got.HashMoveScore != 25000 || got.KillerMoveScore != 1500 ||
		got.KillerSlots != 3 || got.QuiescenceCeiling != 8 || got.CheckingMovesCeiling != 4 || got.CacheSizeMB != 2 {
		t.Errorf("searcher config = %+v", got)
	}
	if c.tt == oldTable {
		t.Error("cache size change kept the old table")
	}
}

func TestConsoleLineAndClear(t *testing.T) {
	c, out := testConsole(t, "goose")
	input := strings.Join([]string{
		"position startpos moves e2e4 e7e5 g1f3",
		"line",
		"set cache_writes true",
		"go",
	}, "\n")
	if err := c.run(strings.NewReader(input)); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.HasPrefix(out.String(), "e4 e5 Nf3\n") {
		t.Fatalf("line output:\n%s", out.String())
	}
	if c.tt.Len() == 0 {
		t.Fatal("search with cache writes left the table empty")
	}

	out.Reset()
	if err := c.run(strings.NewReader("clear\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if c.tt.Len() != 0 || strings.TrimSpace(out.String()) != "cache cleared" {
		t.Fatalf("after clear: %d entries, output %q", c.tt.Len(), out.String())
	}

	out.Reset()
	if err := c.run(strings.NewReader("position startpos\nline\n")); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "(no moves)" {
		t.Fatalf("line without moves = %q", out.String())
	}
}
