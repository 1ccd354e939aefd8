package engine

import (
	"unsafe"
)

// Bound tells how a cached score relates to the true value.
type Bound uint8

const (
	NoBound Bound = iota
	Exact
	LowerBound
	UpperBound
)

const clusterSize = 4

// Entry is one transposition cache slot. Draft is the remaining full-width depth
// the score was searched with; quiescence results have a draft <= 0.
type Entry struct {
	Key   uint64
	Draft int8
	Bound Bound
	Score int32
	Move  Move
}

// TransTable is a clustered, fixed size transposition cache. It is not safe
// for concurrent writers.
type TransTable struct {
	entries      []Entry
	clusterCount uint64
	used         uint64
}

// NewTransTable sizes the table to roughly sizeMB megabytes.
func NewTransTable(sizeMB int) *TransTable {
	tt := &TransTable{}
	entrySize := uint64(unsafe.Sizeof(Entry{}))
	totalBytes := uint64(sizeMB) * 1024 * 1024
	clusterCount := totalBytes / (entrySize * clusterSize)
	if clusterCount == 0 {
		clusterCount = 1
	}
	tt.clusterCount = clusterCount
	tt.entries = make([]Entry, clusterCount*clusterSize)
	return tt
}

func (tt *TransTable) Probe(key uint64) (Entry, bool) {
	base := int((key % tt.clusterCount) * clusterSize)
	for i := 0; i < clusterSize; i++ {
		e := tt.entries[base+i]
		if e.Bound != NoBound && e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Store writes e, preferring the slot already holding the key, then an empty
// slot, then the shallowest entry of the cluster.
func (tt *TransTable) Store(e Entry) {
	base := int((e.Key % tt.clusterCount) * clusterSize)
	target := -1
	for i := 0; i < clusterSize; i++ {
		if slot := tt.entries[base+i]; slot.Bound != NoBound && slot.Key == e.Key {
			target = base + i
			break
		}
	}
	if target == -1 {
		for i := 0; i < clusterSize; i++ {
			if tt.entries[base+i].Bound == NoBound {
				target = base + i
				tt.used++
				break
			}
		}
	}
	if target == -1 {
		target = base
		for i := 1; i < clusterSize; i++ {
			if tt.entries[base+i].Draft < tt.entries[target].Draft {
				target = base + i
			}
		}
	}
	tt.entries[target] = e
}

// Len reports the number of occupied slots.
func (tt *TransTable) Len() int { return int(tt.used) }

func (tt *TransTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = Entry{}
	}
	tt.used = 0
}

// boundFor classifies a node result against the window it was searched with.
func boundFor(score, originalAlpha, beta int32) Bound {
	switch {
	case score <= originalAlpha:
		return UpperBound
	case score >= beta:
		return LowerBound
	default:
		return Exact
	}
}

// Mate scores are stored relative to the node, not the root, so a hit at a
// different ply still reports the right distance to mate.
func scoreToCache(score int32, ply int) int32 {
	switch {
	case score > MateThreshold:
		return score + int32(ply)
	case score < -MateThreshold:
		return score - int32(ply)
	}
	return score
}

func scoreFromCache(score int32, ply int) int32 {
	switch {
	case score > MateThreshold:
		return score - int32(ply)
	case score < -MateThreshold:
		return score + int32(ply)
	}
	return score
}
