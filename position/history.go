package position

// state captures what repetition and fifty-move detection need from a position.
type state struct {
	key    uint64
	rule50 int
}

// history is the stack of every position reached, game moves and search moves
// alike. The top always mirrors the current board.
type history struct {
	states []state
}

func (h *history) reset(key uint64, rule50 int) {
	h.states = h.states[:0]
	h.push(key, rule50)
}

func (h *history) push(key uint64, rule50 int) {
	h.states = append(h.states, state{key: key, rule50: rule50})
}

func (h *history) pop() {
	if len(h.states) <= 1 {
		panic("position: history underflow")
	}
	h.states = h.states[:len(h.states)-1]
}

// repetitions counts earlier occurrences of the current position. Only the
// reversible window since the last capture or pawn move is scanned.
func (h *history) repetitions() int {
	n := len(h.states)
	if n <= 1 {
		return 0
	}
	curr := h.states[n-1]
	start := n - 1 - curr.rule50
	if start < 0 {
		start = 0
	}
	count := 0
	for i := start; i <= n-2; i++ {
		if h.states[i].key == curr.key {
			count++
		}
	}
	return count
}

// threefold reports whether the current position occurred at least twice before.
func (h *history) threefold() bool {
	return h.repetitions() >= 2
}
