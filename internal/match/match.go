package match

import (
	"sync"
	"time"

	"tetris-duel/internal/ai"
	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
	"tetris-duel/internal/shared"
)

// Match owns one game.State. Every access goes through its mutex, which
// is the single command queue the engine requires.
type Match struct {
	ID        string
	Code      string
	CreatedAt time.Time
	Seed      uint64

	mu       sync.Mutex
	state    *game.State
	searcher *ai.Searcher
	running  bool
	// both boards run slowed until this instant.
	pausedUntil time.Time
}

type Store interface {
	GetMatch(code string) (*Match, bool)
	SaveMatch(m *Match)
	DeleteMatch(code string)
	ListMatches() []*Match
}

// apply runs fn under the match lock and returns the events it produced.
func (x *Match) apply(fn func(st *game.State)) []game.Event {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(x.state)
	return x.state.DrainEvents()
}

func (x *Match) view(fn func(st *game.State)) {
	x.mu.Lock()
	defer x.mu.Unlock()
	fn(x.state)
}

func (x *Match) Over() bool {
	var over bool
	x.view(func(st *game.State) { over = st.Over })
	return over
}

// Weights are the search weights of the machine player.
func (x *Match) Weights() config.Weights {
	return x.searcher.Weights()
}

func (x *Match) Running() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.running
}

func (x *Match) setRunning(v bool) {
	x.mu.Lock()
	x.running = v
	x.mu.Unlock()
}

// beginGentlePause opens a pause window of length d unless one is
// already open. An open window is never extended.
func (x *Match) beginGentlePause(now time.Time, d time.Duration) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if now.Before(x.pausedUntil) {
		return false
	}
	x.pausedUntil = now.Add(d)
	return true
}

func (x *Match) paused(now time.Time) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return now.Before(x.pausedUntil)
}

// Snapshot returns the render projection of one player.
func (x *Match) Snapshot(r game.Role) game.RenderState {
	var rs game.RenderState
	x.view(func(st *game.State) { rs = st.RenderState(r) })
	return rs
}

func (x *Match) Summary() shared.Summary {
	x.mu.Lock()
	defer x.mu.Unlock()
	s := shared.Summary{
		ID:           x.ID,
		Code:         x.Code,
		CreatedAt:    x.CreatedAt,
		Over:         x.state.Over,
		Running:      x.running,
		GentlePause:  time.Now().Before(x.pausedUntil),
		SpecialTicks: x.state.SpecialTicks,
	}
	for _, r := range game.Roles {
		s.Players = append(s.Players, x.state.RenderState(r))
	}
	return s
}
