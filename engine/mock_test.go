package engine

import (
	"math/rand"

	"lukechampine.com/frand"
)

// Synthetic game trees. Nodes are expanded on first use from a generator seeded
// by the node key, so a tree is identical however it is walked.

type treeParams struct {
	horizon int
	// children per full-width node
	branch int
	// children per quiescence node
	qsBranch int
	// percentages
	checkPct   int
	drawPct    int
	illegalPct int
	capturePct int
}

var defaultTree = treeParams{
	horizon:    3,
	branch:     4,
	qsBranch:   3,
	checkPct:   20,
	drawPct:    5,
	illegalPct: 15,
	capturePct: 50,
}

type mockEdge struct {
	move    Move
	illegal bool
	child   *mockNode
}

type mockNode struct {
	key      uint64
	ply      int
	eval     int32
	inCheck  bool
	draw     bool
	expanded bool
	children []mockEdge
	gens     int
}

type mockTree struct {
	p    treeParams
	root *mockNode
}

func splitmix(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func newMockTree(seed uint64, p treeParams) *mockTree {
	t := &mockTree{p: p}
	t.root = t.newNode(splitmix(seed), 0)
	t.root.draw = false
	return t
}

func (t *mockTree) newNode(key uint64, ply int) *mockNode {
	rng := rand.New(rand.NewSource(int64(key)))
	return &mockNode{
		key:     key,
		ply:     ply,
		eval:    int32(rng.Intn(401) - 200),
		inCheck: rng.Intn(100) < t.p.checkPct,
		draw:    rng.Intn(100) < t.p.drawPct,
	}
}

func (t *mockTree) expand(n *mockNode) {
	if n.expanded {
		return
	}
	n.expanded = true

	rng := rand.New(rand.NewSource(int64(splitmix(n.key ^ 0x5bd1e995))))
	quiescent := n.ply >= t.p.horizon
	count := rng.Intn(t.p.branch + 1)
	if quiescent {
		count = rng.Intn(t.p.qsBranch + 1)
	}
	// The root always has a move and quiet quiescence nodes are never without
	// one, so stand-pat never hides a stalemate.
	mustHaveLegal := n.ply == 0 || (quiescent && !n.inCheck)
	if mustHaveLegal && count == 0 {
		count = 1
	}

	hasLegal := false
	for i := 0; i < count; i++ {
		captured := NoPiece
		if rng.Intn(100) < t.p.capturePct {
			captured = BlackPawn
		}
		illegal := rng.Intn(100) < t.p.illegalPct
		hasLegal = hasLegal || !illegal
		n.children = append(n.children, mockEdge{
			move:    NewMove(Square(i), Square(i+8), WhiteKnight, captured, NoPiece, FlagNone),
			illegal: illegal,
			child:   t.newNode(splitmix(n.key*31+uint64(i)+1), n.ply+1),
		})
	}
	if mustHaveLegal && !hasLegal {
		n.children[0].illegal = false
	}
}

// walk visits every node the search could reach at or before maxPly.
func (t *mockTree) walk(n *mockNode, maxPly int, fn func(*mockNode)) {
	fn(n)
	if n.ply >= maxPly {
		return
	}
	t.expand(n)
	for _, e := range n.children {
		t.walk(e.child, maxPly, fn)
	}
}

func terminalRef(n *mockNode, ply int) int32 {
	if n.inCheck {
		return -(MateScore - int32(ply))
	}
	return DrawScore
}

// negamax is the unpruned reference search, quiescence rules included. It
// leaves out the quiet checking pass, whose result depends on the window; use
// alphaBeta for configurations with CheckingMovesCeiling > 0.
func (t *mockTree) negamax(n *mockNode, ply int, cfg Config) int32 {
	if ply >= cfg.Horizon {
		return t.quiesce(n, ply, cfg)
	}
	if n.draw {
		return DrawScore
	}
	t.expand(n)
	best, legal := -Infinity, false
	for _, e := range n.children {
		if e.illegal {
			continue
		}
		legal = true
		best = Max(best, -t.negamax(e.child, ply+1, cfg))
	}
	if !legal {
		return terminalRef(n, ply)
	}
	return best
}

func (t *mockTree) quiesce(n *mockNode, ply int, cfg Config) int32 {
	if n.draw {
		return DrawScore
	}
	if !n.inCheck && ply >= cfg.QuiescenceCeiling {
		return n.eval
	}
	t.expand(n)

	best, legal := -Infinity, false
	if !n.inCheck {
		best = n.eval
	}
	for _, e := range n.children {
		if e.illegal {
			continue
		}
		legal = true
		if ply >= cfg.QuiescenceCeiling {
			break
		}
		if n.inCheck || e.move.IsCapture() {
			best = Max(best, -t.quiesce(e.child, ply+1, cfg))
		}
	}
	switch {
	case !legal:
		return terminalRef(n, ply)
	case ply >= cfg.QuiescenceCeiling:
		return n.eval
	}
	return best
}

// alphaBeta is a plain fail-hard reference that walks children in generation
// order with no cache or ordering. Quiet checking moves are tried after the
// captures when none of them raised alpha, below CheckingMovesCeiling.
func (t *mockTree) alphaBeta(n *mockNode, alpha, beta int32, ply int, cfg Config) int32 {
	if ply >= cfg.Horizon {
		return t.quiesceWindow(n, alpha, beta, ply, cfg)
	}
	if n.draw {
		return DrawScore
	}
	t.expand(n)
	legal := false
	for _, e := range n.children {
		if e.illegal {
			continue
		}
		legal = true
		if score := -t.alphaBeta(e.child, -beta, -alpha, ply+1, cfg); score > alpha {
			alpha = score
		}
		if alpha >= beta {
			return alpha
		}
	}
	if !legal {
		return terminalRef(n, ply)
	}
	return alpha
}

func (t *mockTree) quiesceWindow(n *mockNode, alpha, beta int32, ply int, cfg Config) int32 {
	if n.draw {
		return DrawScore
	}
	t.expand(n)
	if !n.inCheck {
		if n.eval >= beta {
			return beta
		}
		if ply >= cfg.QuiescenceCeiling {
			return n.eval
		}
		alpha = Max(alpha, n.eval)
	} else if ply >= cfg.QuiescenceCeiling {
		for _, e := range n.children {
			if !e.illegal {
				return n.eval
			}
		}
		return terminalRef(n, ply)
	}

	allowChecks := !n.inCheck && ply < cfg.CheckingMovesCeiling
	var checks []*mockNode
	legal, raised := false, false
	for _, e := range n.children {
		if e.illegal {
			continue
		}
		legal = true
		switch {
		case n.inCheck || e.move.IsCapture():
			score := -t.quiesceWindow(e.child, -beta, -alpha, ply+1, cfg)
			if score > alpha {
				alpha = score
				raised = true
			}
			if score >= beta {
				return beta
			}
		case allowChecks && e.child.inCheck:
			checks = append(checks, e.child)
		}
	}
	if !legal {
		return terminalRef(n, ply)
	}
	if allowChecks && !raised {
		for _, child := range checks {
			score := -t.quiesceWindow(child, -beta, -alpha, ply+1, cfg)
			alpha = Max(alpha, score)
			if score >= beta {
				return beta
			}
		}
	}
	return alpha
}

type mockPos struct {
	tree    *mockTree
	stack   []*mockNode
	illegal []bool
	shuffle bool
}

func newMockPos(t *mockTree) *mockPos {
	return &mockPos{tree: t, stack: []*mockNode{t.root}}
}

func (p *mockPos) top() *mockNode { return p.stack[len(p.stack)-1] }

func (p *mockPos) GenerateMoves(list *MoveList) {
	n := p.top()
	p.tree.expand(n)
	n.gens++
	moves := make([]Move, len(n.children))
	for i, e := range n.children {
		moves[i] = e.move
	}
	if p.shuffle {
		frand.Shuffle(len(moves), func(i, j int) { moves[i], moves[j] = moves[j], moves[i] })
	}
	for _, m := range moves {
		list.Add(m)
	}
}

func (p *mockPos) MakeMove(m Move) {
	for _, e := range p.top().children {
		if e.move == m {
			p.stack = append(p.stack, e.child)
			p.illegal = append(p.illegal, e.illegal)
			return
		}
	}
	panic("mock: move not generated here")
}

func (p *mockPos) UndoMove(Move) {
	if len(p.illegal) == 0 {
		panic("mock: unpaired undo")
	}
	p.stack = p.stack[:len(p.stack)-1]
	p.illegal = p.illegal[:len(p.illegal)-1]
}

func (p *mockPos) OpponentInCheck() bool {
	return len(p.illegal) > 0 && p.illegal[len(p.illegal)-1]
}

func (p *mockPos) SideInCheck() bool { return p.top().inCheck }

func (p *mockPos) FiftyMoveCounter() int {
	if p.top().draw {
		return 100
	}
	return 0
}

func (p *mockPos) IsRepetition() bool   { return false }
func (p *mockPos) Key() uint64          { return p.top().key }
func (p *mockPos) Ply() int             { return len(p.illegal) }
func (p *mockPos) SideToMove() Color    { return Color(p.Ply() % 2) }
func (p *mockPos) PieceAt(Square) Piece { return NoPiece }
func (p *mockPos) Outcome(Color) GameResult {
	if p.top().inCheck {
		return Loss
	}
	return Draw
}

// mockEval reads the node's static score; with noise it hands out random
// ordering scores.
type mockEval struct {
	noise bool
}

func (mockEval) Evaluate(b Board) int32 { return b.(*mockPos).top().eval }

func (e mockEval) ScoreMoves(list *MoveList, _ Board) {
	if !e.noise {
		return
	}
	for i := 0; i < list.Len(); i++ {
		list.SetScore(i, int32(frand.Intn(1000)))
	}
}

type predictionRecorder struct {
	scores []int32
}

func (r *predictionRecorder) SetPrediction(score int32) { r.scores = append(r.scores, score) }
