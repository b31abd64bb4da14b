package store

import (
	"sort"
	"sync"

	"tetris-duel/internal/match"
)

type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*match.Match
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: map[string]*match.Match{},
	}
}

func (m *MemoryStore) GetMatch(code string) (*match.Match, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	x, ok := m.matches[code]
	return x, ok
}

func (m *MemoryStore) SaveMatch(x *match.Match) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[x.Code] = x
}

func (m *MemoryStore) DeleteMatch(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.matches, code)
}

// ListMatches returns every stored match, oldest first.
func (m *MemoryStore) ListMatches() []*match.Match {
	m.mu.RLock()
	out := make([]*match.Match, 0, len(m.matches))
	for _, x := range m.matches {
		out = append(out, x)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Code < out[j].Code
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
