package engine

import (
	"fmt"
	"strings"
	"time"
)

// Stats is the counter set of a single FindBestMove call.
type Stats struct {
	NormalNodes     uint64
	QuiescenceNodes uint64
	MaxDepth        int
	CacheHits       uint64
	CacheStores     uint64
	BetaCutoffs     uint64
	StandPatCutoffs uint64
	Elapsed         time.Duration
}

func (s *Stats) Nodes() uint64 { return s.NormalNodes + s.QuiescenceNodes }

func (s *Stats) NodesPerSecond() float64 {
	secs := s.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.Nodes()) / secs
}

func (s *Stats) reachedDepth(ply int) {
	if ply > s.MaxDepth {
		s.MaxDepth = ply
	}
}

// Report is the diagnostic summary handed back with every search result.
type Report struct {
	ID    string
	Score int32
	Stats
}

// String formats the report one "key: value" per line.
func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "time: %.3fs\n", r.Elapsed.Seconds())
	fmt.Fprintf(&sb, "max_depth: %d\n", r.MaxDepth)
	fmt.Fprintf(&sb, "prediction: %s\n", FormatScore(r.Score))
	fmt.Fprintf(&sb, "visited_nodes: %d\n", r.Nodes())
	fmt.Fprintf(&sb, "nodes_per_second: %.0f\n", r.NodesPerSecond())
	fmt.Fprintf(&sb, "visited_normal_nodes: %d\n", r.NormalNodes)
	fmt.Fprintf(&sb, "visited_quiesce_nodes: %d\n", r.QuiescenceNodes)
	fmt.Fprintf(&sb, "transposition_uses: %d\n", r.CacheHits)
	return sb.String()
}

// FormatScore prints centipawns, or "mate N" / "mate -N" in moves when the score
// is a forced mate.
func FormatScore(score int32) string {
	switch {
	case score > MateThreshold:
		return fmt.Sprintf("mate %d", (MateScore-score+1)/2)
	case score < -MateThreshold:
		return fmt.Sprintf("mate -%d", (MateScore+score+1)/2)
	}
	return fmt.Sprintf("cp %d", score)
}
