package match

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"tetris-duel/internal/ai"
	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
	"tetris-duel/internal/shared"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrUnknownRole    = errors.New("unknown player")
	ErrUnknownCommand = errors.New("unknown command")
	ErrAlreadyRunning = errors.New("match already running")
)

type Manager struct {
	store Store
	cfg   config.Config
	hub   Broadcaster

	mu      sync.Mutex
	drivers map[string]*runner
	wg      sync.WaitGroup
}

// runner tracks one driver goroutine; done closes once it has exited and
// been unregistered.
type runner struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(s Store, cfg config.Config, hub Broadcaster) *Manager {
	if hub == nil {
		hub = nopBroadcaster{}
	}
	return &Manager{store: s, cfg: cfg, hub: hub, drivers: map[string]*runner{}}
}

func (m *Manager) SetHub(hub Broadcaster) {
	m.hub = hub
}

func (m *Manager) Config() config.Config {
	return m.cfg
}

// Create starts a fresh match. A zero seed picks one from the clock.
func (m *Manager) Create(seed uint64) *Match {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	code := randCode(6)
	for {
		if _, taken := m.store.GetMatch(code); !taken {
			break
		}
		code = randCode(6)
	}
	x := &Match{
		ID:        uuid.NewString(),
		Code:      code,
		CreatedAt: time.Now(),
		Seed:      seed,
		state:     game.New(m.cfg.Rules, seed),
		searcher:  ai.NewSearcher(m.cfg.Weights, seed^0x5bd1e995),
	}
	x.state.DrainEvents()
	m.store.SaveMatch(x)
	log.Info().Str("match", code).Str("id", x.ID).Uint64("seed", seed).Msg("match-created")
	return x
}

func (m *Manager) Get(code string) (*Match, error) {
	x, ok := m.store.GetMatch(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, code)
	}
	return x, nil
}

func (m *Manager) List() []shared.Summary {
	all := m.store.ListMatches()
	out := make([]shared.Summary, 0, len(all))
	for _, x := range all {
		out = append(out, x.Summary())
	}
	return out
}

// ParseInput resolves wire names into a role and a command.
func ParseInput(player, command string) (game.Role, game.Command, error) {
	r, ok := game.ParseRole(player)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRole, player)
	}
	c, ok := game.ParseCommand(command)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
	return r, c, nil
}

func (m *Manager) Input(code string, r game.Role, cmd game.Command) (game.RenderState, error) {
	return m.mutate(code, r, func(st *game.State) { st.HandleInput(r, cmd) })
}

func (m *Manager) Tick(code string, r game.Role) (game.RenderState, error) {
	return m.mutate(code, r, func(st *game.State) { st.Tick(r) })
}

func (m *Manager) Snapshot(code string, r game.Role) (game.RenderState, error) {
	if !r.Valid() {
		return game.RenderState{}, ErrUnknownRole
	}
	x, err := m.Get(code)
	if err != nil {
		return game.RenderState{}, err
	}
	return x.Snapshot(r), nil
}

func (m *Manager) Summary(code string) (shared.Summary, error) {
	x, err := m.Get(code)
	if err != nil {
		return shared.Summary{}, err
	}
	return x.Summary(), nil
}

// MachineMove runs the search and replays its choice through HandleInput
// while holding the match lock, so no other command interleaves.
func (m *Manager) MachineMove(code string) (shared.MachineMove, error) {
	x, err := m.Get(code)
	if err != nil {
		return shared.MachineMove{}, err
	}
	var out shared.MachineMove
	events := x.apply(func(st *game.State) {
		mv, ok := x.searcher.BestMove(st)
		if !ok {
			return
		}
		cmds := mv.Commands(*st.Player(game.Machine).Active)
		for _, c := range cmds {
			st.HandleInput(game.Machine, c)
		}
		out = shared.MachineMove{
			Move:     &shared.MoveDTO{Rotation: mv.Rotation, Offset: mv.Offset},
			Commands: cmds,
		}
	})
	m.publish(x, events)
	return out, nil
}

// Reset reinitializes both boards in place, clears the machine's move
// history and ends any gentle pause. A running driver keeps going on the
// new game.
func (m *Manager) Reset(code string) (shared.Summary, error) {
	x, err := m.Get(code)
	if err != nil {
		return shared.Summary{}, err
	}
	events := x.apply(func(st *game.State) {
		st.Initialize()
		x.searcher.Reset()
		x.pausedUntil = time.Time{}
	})
	log.Info().Str("match", code).Msg("match-reset")
	m.publish(x, events)
	return x.Summary(), nil
}

// AdvanceSpecial steps the special-event counter once.
func (m *Manager) AdvanceSpecial(code string) ([]game.Event, error) {
	x, err := m.Get(code)
	if err != nil {
		return nil, err
	}
	events := x.apply(func(st *game.State) { st.AdvanceSpecialEvents() })
	m.publishEvents(x, events)
	return events, nil
}

func (m *Manager) mutate(code string, r game.Role, fn func(st *game.State)) (game.RenderState, error) {
	if !r.Valid() {
		return game.RenderState{}, ErrUnknownRole
	}
	x, err := m.Get(code)
	if err != nil {
		return game.RenderState{}, err
	}
	events := x.apply(fn)
	m.publish(x, events)
	return x.Snapshot(r), nil
}

func (m *Manager) publish(x *Match, events []game.Event) {
	m.publishEvents(x, events)
	m.hub.Broadcast(x.Code, "state", x.Summary())
}

func (m *Manager) publishEvents(x *Match, events []game.Event) {
	for _, ev := range events {
		m.hub.Broadcast(x.Code, string(ev.Kind), ev)
		switch ev.Kind {
		case game.EventGentlePause:
			if x.beginGentlePause(time.Now(), m.cfg.Timing.GentlePause) {
				log.Info().Str("match", x.Code).Stringer("player", ev.Role).Int("score", ev.Value).Msg("gentle-pause")
			}
		case game.EventGameOver:
			log.Info().Str("match", x.Code).Stringer("loser", ev.Role).Msg("game-over")
		default:
			log.Debug().Str("match", x.Code).Str("event", string(ev.Kind)).Stringer("player", ev.Role).Int("value", ev.Value).Msg("game-event")
		}
	}
}

// Start launches a Driver for the match. The driver stops when ctx is
// cancelled, Stop is called, or the game ends.
func (m *Manager) Start(ctx context.Context, code string) error {
	x, err := m.Get(code)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.drivers[code]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, code)
	}
	ctx, cancel := context.WithCancel(ctx)
	rn := &runner{cancel: cancel, done: make(chan struct{})}
	m.drivers[code] = rn
	x.setRunning(true)

	d := NewDriver(m, code, m.cfg.Timing)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer close(rn.done)
		if err := d.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("match", code).Msg("driver-stopped")
		}
		x.setRunning(false)
		m.mu.Lock()
		delete(m.drivers, code)
		m.mu.Unlock()
		cancel()
		m.hub.Broadcast(code, "state", x.Summary())
	}()
	log.Info().Str("match", code).Msg("driver-started")
	return nil
}

// Stop cancels the match's driver and waits until it has exited, so a
// Start right after Stop succeeds.
func (m *Manager) Stop(code string) {
	m.mu.Lock()
	rn, ok := m.drivers[code]
	m.mu.Unlock()
	if !ok {
		return
	}
	rn.cancel()
	<-rn.done
}

// Delete stops the match's driver and forgets the match.
func (m *Manager) Delete(code string) error {
	if _, err := m.Get(code); err != nil {
		return err
	}
	m.Stop(code)
	m.store.DeleteMatch(code)
	log.Info().Str("match", code).Msg("match-deleted")
	return nil
}

// Shutdown stops every driver and waits for them to exit.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	for _, rn := range m.drivers {
		rn.cancel()
	}
	m.mu.Unlock()
	m.wg.Wait()
}

const letters = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randCode(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.IntN(len(letters))]
	}
	return string(b)
}
