// Package ai picks placements for the machine board by simulating every
// rotation and column shift on clones of the match.
package ai

import (
	"fmt"
	"math"
	"math/rand/v2"
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
	"tetris-duel/internal/piece"
)

const (
	MaxOffset        = 5
	HistorySize      = 5
	DefaultTolerance = 0.1
)

// Move is a target rotation state plus a column shift from the current
// anchor.
type Move struct {
	Rotation int `json:"rotation"`
	Offset   int `json:"offset"`
}

// Candidates enumerates the moves tried for kind k.
func Candidates(k piece.Kind) []Move {
	rotations := 1
	if !k.IsVariant() {
		rotations = piece.RotationCount(k)
	}
	out := make([]Move, 0, rotations*(2*MaxOffset+1))
	for rot := 0; rot < rotations; rot++ {
		for off := -MaxOffset; off <= MaxOffset; off++ {
			out = append(out, Move{Rotation: rot, Offset: off})
		}
	}
	return out
}

// Commands turns m into the input sequence that reproduces it from pose a:
// rotations first, then sideways steps, then a hard drop.
func (m Move) Commands(a game.ActivePiece) []game.Command {
	var cmds []game.Command
	n := piece.RotationCount(a.Kind)
	turns := ((m.Rotation-a.Rotation)%n + n) % n
	for i := 0; i < turns; i++ {
		cmds = append(cmds, game.Rotate)
	}
	step := game.MoveRight
	off := m.Offset
	if off < 0 {
		step = game.MoveLeft
		off = -off
	}
	for i := 0; i < off; i++ {
		cmds = append(cmds, step)
	}
	return append(cmds, game.HardDrop)
}

// Searcher keeps the seeded generator and the recent-move history between
// decisions. One Searcher serves one match.
type Searcher struct {
	Role      game.Role
	Tolerance float64

	mu      sync.Mutex
	weights config.Weights
	rng     *rand.Rand
	history []Move
	workers int
}

func NewSearcher(w config.Weights, seed uint64) *Searcher {
	return &Searcher{
		Role:      game.Machine,
		Tolerance: DefaultTolerance,
		weights:   w,
		rng:       rand.New(rand.NewPCG(seed, ^seed)),
		workers:   runtime.GOMAXPROCS(0),
	}
}

func (s *Searcher) Weights() config.Weights {
	return s.weights
}

// History returns the remembered moves, oldest first.
func (s *Searcher) History() []Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Move(nil), s.history...)
}

// Reset forgets the move history.
func (s *Searcher) Reset() {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
}

type scored struct {
	move  Move
	value float64
	ok    bool
}

// BestMove returns the chosen move for the searcher's role, or false when
// there is nothing to decide: no active piece, a finished match, no legal
// candidate, or a failure while simulating. st is only read.
func (s *Searcher) BestMove(st *game.State) (Move, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := st.Player(s.Role)
	if st.Over || p.Active == nil || !p.Active.Kind.Valid() {
		return Move{}, false
	}

	base, err := snapshot(st)
	if err != nil {
		log.Warn().Err(err).Msg("ai-snapshot-failed")
		return Move{}, false
	}

	cands := Candidates(p.Active.Kind)
	// Noise is drawn up front so parallel evaluation stays reproducible.
	noise := make([]float64, len(cands))
	if s.weights.Jitter > 0 {
		for i := range noise {
			noise[i] = (s.rng.Float64()*2 - 1) * s.weights.Jitter
		}
	}

	results := make([]scored, len(cands))
	var g errgroup.Group
	g.SetLimit(s.workers)
	for i, c := range cands {
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("evaluate %+v: %v", c, r)
				}
			}()
			v, ok := s.evaluate(base, c)
			results[i] = scored{move: c, value: v, ok: ok}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Err(err).Msg("ai-evaluate-failed")
		return Move{}, false
	}

	best := math.Inf(-1)
	for i := range results {
		if !results[i].ok {
			continue
		}
		results[i].value += noise[i] - s.penalty(results[i].move)
		best = max(best, results[i].value)
	}
	if math.IsInf(best, -1) {
		return Move{}, false
	}

	var ties []Move
	for _, r := range results {
		if r.ok && r.value >= best-s.Tolerance {
			ties = append(ties, r.move)
		}
	}
	choice := ties[s.rng.IntN(len(ties))]
	s.remember(choice)

	log.Debug().
		Stringer("piece", p.Active.Kind).
		Int("rotation", choice.Rotation).
		Int("offset", choice.Offset).
		Int("ties", len(ties)).
		Float64("best", best).
		Msg("ai-move")
	return choice, true
}

// Evaluate scores a single candidate without noise or history penalty.
func (s *Searcher) Evaluate(st *game.State, m Move) (float64, bool) {
	return s.evaluate(st, m)
}

func (s *Searcher) evaluate(base *game.State, m Move) (float64, bool) {
	sim := base.Clone()
	a := sim.Player(s.Role).Active
	a.Rotation = m.Rotation
	a.Col += m.Offset
	if sim.CheckCollision(s.Role) {
		return 0, false
	}
	sim.HardDrop(s.Role)
	p := sim.Player(s.Role)
	return Measure(p.Grid, p.LastCleared).Value(s.weights), true
}

// penalty is zero for moves outside the history and grows with recency;
// the most recent move costs Recency*HistorySize.
func (s *Searcher) penalty(m Move) float64 {
	n := len(s.history)
	for age := 0; age < n; age++ {
		if s.history[n-1-age] == m {
			return s.weights.Recency * float64(HistorySize-age)
		}
	}
	return 0
}

func (s *Searcher) remember(m Move) {
	s.history = append(s.history, m)
	if len(s.history) > HistorySize {
		s.history = s.history[len(s.history)-HistorySize:]
	}
}

func snapshot(st *game.State) (c *game.State, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("clone state: %v", r)
		}
	}()
	return st.Clone(), nil
}
