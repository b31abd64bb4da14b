package game

import (
	"math/rand/v2"

	"tetris-duel/internal/piece"
)

// State is a whole match: two boards sharing one set of rules. It is not
// safe for concurrent use; callers serialize every mutating call.
type State struct {
	Rules   Rules          `json:"-"`
	Players [2]PlayerState `json:"players"`
	// Over halts the match as soon as either board tops out.
	Over         bool `json:"over"`
	SpecialTicks int  `json:"specialTicks"`

	src    *rand.PCG
	rng    *rand.Rand
	events []Event
}

// New returns an initialized match whose piece draws are driven by seed.
func New(rules Rules, seed uint64) *State {
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	s := &State{Rules: rules, src: src, rng: rand.New(src)}
	s.Initialize()
	return s
}

// Initialize discards all match history: empty grids, zero scores, fresh
// thresholds, and a new active and next piece for both players.
func (s *State) Initialize() {
	for _, r := range Roles {
		s.Players[r] = PlayerState{
			Grid:             NewGrid(s.Rules.Width, s.Rules.Height),
			VariantThreshold: s.Rules.VariantStep,
		}
	}
	s.Over = false
	s.SpecialTicks = 0
	s.events = nil
	for _, r := range Roles {
		s.Players[r].Next = s.generatePiece(r)
	}
	for _, r := range Roles {
		s.spawn(r)
	}
}

// Clone returns a deep copy, including the PRNG position, that shares
// nothing with s. Pending events are not copied.
func (s *State) Clone() *State {
	src := *s.src
	out := &State{
		Rules:        s.Rules,
		Over:         s.Over,
		SpecialTicks: s.SpecialTicks,
		src:          &src,
	}
	out.rng = rand.New(out.src)
	out.Rules.ClearBonus = append([]int(nil), s.Rules.ClearBonus...)
	for _, r := range Roles {
		out.Players[r] = s.Players[r].clone()
	}
	return out
}

func (s *State) Player(r Role) *PlayerState {
	return &s.Players[r]
}

// DrainEvents returns the events emitted since the last call.
func (s *State) DrainEvents() []Event {
	ev := s.events
	s.events = nil
	return ev
}

func (s *State) emit(kind EventKind, r Role, v int) {
	s.events = append(s.events, Event{Kind: kind, Role: r, Value: v})
}

func (s *State) live(r Role) bool {
	return !s.Over && s.Players[r].Active != nil
}

func (s *State) generatePiece(r Role) piece.Kind {
	p := &s.Players[r]
	if p.Score >= p.VariantThreshold {
		p.VariantThreshold += s.Rules.VariantStep
		k := piece.Variants[s.rng.IntN(len(piece.Variants))]
		s.emit(EventVariantAwarded, r, p.VariantThreshold)
		return k
	}
	if p.GiftPending {
		p.GiftPending = false
		k := piece.Easy[s.rng.IntN(len(piece.Easy))]
		s.emit(EventGiftGranted, r, 0)
		return k
	}
	return piece.Standard[s.rng.IntN(len(piece.Standard))]
}

// spawn promotes the queued piece of r to the spawn anchor and queues a
// fresh one. A spawn collision ends the match.
func (s *State) spawn(r Role) {
	p := &s.Players[r]
	p.Active = &ActivePiece{
		Kind: p.Next,
		Row:  0,
		Col:  p.Grid.Width/2 - 2,
	}
	p.Next = s.generatePiece(r)
	if s.CheckCollision(r) {
		p.GameOver = true
		s.Over = true
		s.emit(EventGameOver, r, p.Score)
	}
}

// CheckCollision reports whether the active piece of r is out of bounds or
// overlaps a locked cell. A player without a piece never collides.
func (s *State) CheckCollision(r Role) bool {
	p := &s.Players[r]
	if p.Active == nil {
		return false
	}
	return p.Grid.Collides(p.Active.Matrix(), p.Active.Row, p.Active.Col)
}

// Move shifts the active piece. A blocked downward step locks the piece;
// a blocked sideways step is simply reverted. It reports whether the shift
// was committed.
func (s *State) Move(r Role, dRow, dCol int) bool {
	if !s.live(r) {
		return false
	}
	a := s.Players[r].Active
	a.Row += dRow
	a.Col += dCol
	if !s.CheckCollision(r) {
		return true
	}
	a.Row -= dRow
	a.Col -= dCol
	if dRow > 0 {
		s.lockAndResolve(r)
	}
	return false
}

// Rotate advances the rotation state and reverts it on collision.
// Variants have a single state so this never changes them.
func (s *State) Rotate(r Role) bool {
	if !s.live(r) {
		return false
	}
	a := s.Players[r].Active
	old := a.Rotation
	a.Rotation = (old + 1) % piece.RotationCount(a.Kind)
	if s.CheckCollision(r) {
		a.Rotation = old
		return false
	}
	return a.Rotation != old
}

func (s *State) HardDrop(r Role) {
	for s.Move(r, 1, 0) {
	}
}

// Tick is one gravity step for r.
func (s *State) Tick(r Role) bool {
	return s.Move(r, 1, 0)
}

func (s *State) lockAndResolve(r Role) {
	p := &s.Players[r]
	a := p.Active
	p.Grid.Stamp(a.Matrix(), a.Row, a.Col, a.Kind)

	k := p.Grid.ClearFullRows()
	p.LastCleared = k

	gained := s.Rules.clearScore(k)
	if k == s.Rules.GiftLines {
		s.Players[r.Opponent()].GiftPending = true
		s.emit(EventGiftPending, r.Opponent(), k)
	}
	if a.Kind.IsVariant() {
		gained += s.Rules.VariantBonus
		s.emit(EventVariantBonus, r, s.Rules.VariantBonus)
	}
	if k > 0 {
		s.emit(EventLinesCleared, r, k)
	}

	before := p.Score
	p.Score += gained
	p.Lines += k
	if step := s.Rules.GentlePauseStep; step > 0 && p.Score/step > before/step {
		s.emit(EventGentlePause, r, p.Score)
	}

	s.spawn(r)
}

// HandleInput routes cmd to the matching operation. Unknown commands and
// input after the match has ended are ignored.
func (s *State) HandleInput(r Role, cmd Command) {
	if !r.Valid() {
		return
	}
	switch cmd {
	case MoveLeft:
		s.Move(r, 0, -1)
	case MoveRight:
		s.Move(r, 0, 1)
	case SoftDrop:
		s.Move(r, 1, 0)
	case Rotate:
		s.Rotate(r)
	case HardDrop:
		s.HardDrop(r)
	}
}

// AdvanceSpecialEvents steps the special-event counter and emits a rainbow
// event every SpecialEventInterval steps. It reports whether one fired.
func (s *State) AdvanceSpecialEvents() bool {
	if s.Over || s.Rules.SpecialEventInterval <= 0 {
		return false
	}
	s.SpecialTicks++
	if s.SpecialTicks < s.Rules.SpecialEventInterval {
		return false
	}
	s.SpecialTicks = 0
	s.emit(EventRainbow, NoRole, 0)
	return true
}
