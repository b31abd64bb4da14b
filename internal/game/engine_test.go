package game

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetris-duel/internal/piece"
)

func newState(t *testing.T) *State {
	t.Helper()
	return New(DefaultRules(), 42)
}

func setActive(s *State, r Role, k piece.Kind, rot, row, col int) {
	s.Players[r].Active = &ActivePiece{Kind: k, Rotation: rot, Row: row, Col: col}
}

// fillBottom fills the last n rows of r's grid except column gap.
func fillBottom(s *State, r Role, n, gap int) {
	g := s.Players[r].Grid
	for row := g.Height - n; row < g.Height; row++ {
		for c := 0; c < g.Width; c++ {
			if c != gap {
				g.Cells[row][c] = piece.Z
			}
		}
	}
}

func hasEvent(events []Event, kind EventKind, r Role) bool {
	return slices.ContainsFunc(events, func(e Event) bool { return e.Kind == kind && e.Role == r })
}

func TestInitialize(t *testing.T) {
	s := newState(t)
	for _, r := range Roles {
		p := s.Player(r)
		assert.Equal(t, NewGrid(10, 20), p.Grid, "%v grid", r)
		assert.Zero(t, p.Score)
		assert.Zero(t, p.Lines)
		assert.Equal(t, 3000, p.VariantThreshold)
		assert.False(t, p.GiftPending)
		assert.False(t, p.GameOver)
		require.NotNil(t, p.Active)
		assert.Equal(t, 0, p.Active.Row)
		assert.Equal(t, 3, p.Active.Col)
		assert.Equal(t, 0, p.Active.Rotation)
		assert.Contains(t, piece.Standard, p.Active.Kind)
		assert.Contains(t, piece.Standard, p.Next)
	}
	assert.False(t, s.Over)
	assert.Zero(t, s.SpecialTicks)
}

func TestInitializeResetsPlayedMatch(t *testing.T) {
	s := newState(t)
	s.Players[Human].Score = 4200
	s.Players[Human].VariantThreshold = 6000
	s.Players[Machine].GiftPending = true
	s.Players[Machine].GameOver = true
	s.Over = true
	fillBottom(s, Human, 3, 0)

	s.Initialize()

	for _, r := range Roles {
		p := s.Player(r)
		assert.Equal(t, NewGrid(10, 20), p.Grid)
		assert.Zero(t, p.Score)
		assert.Equal(t, 3000, p.VariantThreshold)
		assert.False(t, p.GiftPending)
		assert.False(t, p.GameOver)
	}
	assert.False(t, s.Over)
}

func TestCheckCollisionMatchesCellOracle(t *testing.T) {
	s := newState(t)
	g := s.Players[Human].Grid
	rng := rand.New(rand.NewPCG(7, 7))
	for r := 8; r < g.Height; r++ {
		for c := 0; c < g.Width; c++ {
			if rng.IntN(3) == 0 {
				g.Cells[r][c] = piece.J
			}
		}
	}
	oracle := func(m piece.Matrix, row, col int) bool {
		for _, cell := range m.Cells() {
			rr, cc := row+cell[0], col+cell[1]
			if rr < 0 || rr >= g.Height || cc < 0 || cc >= g.Width {
				return true
			}
			if g.Cells[rr][cc] != piece.Empty {
				return true
			}
		}
		return false
	}

	kinds := append(piece.Standard[:], piece.Variants[:]...)
	for _, k := range kinds {
		for rot := 0; rot < piece.RotationCount(k); rot++ {
			for row := -5; row < g.Height+2; row++ {
				for col := -5; col < g.Width+2; col++ {
					setActive(s, Human, k, rot, row, col)
					want := oracle(piece.ShapeOf(k, rot), row, col)
					if got := s.CheckCollision(Human); got != want {
						t.Fatalf("%v rot %d at (%d,%d): got %v, want %v", k, rot, row, col, got, want)
					}
				}
			}
		}
	}
}

func TestScoreByLinesCleared(t *testing.T) {
	tests := []struct {
		lines int
		want  int
	}{
		{0, 0}, {1, 50}, {2, 200}, {3, 350}, {4, 500},
	}
	for _, test := range tests {
		t.Run(string(rune('0'+test.lines)), func(t *testing.T) {
			s := newState(t)
			fillBottom(s, Human, test.lines, 0)
			// vertical I occupies matrix column 2.
			setActive(s, Human, piece.I, 1, 0, -2)

			s.HardDrop(Human)

			p := s.Player(Human)
			assert.Equal(t, test.want, p.Score)
			assert.Equal(t, test.lines, p.Lines)
			assert.Equal(t, test.lines, p.LastCleared)
			assert.Equal(t, test.lines == 2, s.Players[Machine].GiftPending)
			assert.False(t, p.GiftPending)
		})
	}
}

func TestVariantLockEarnsFlatBonus(t *testing.T) {
	s := newState(t)
	setActive(s, Human, piece.Heart, 0, 0, 3)
	s.HardDrop(Human)
	assert.Equal(t, 100, s.Players[Human].Score)
	assert.Zero(t, s.Players[Human].Lines)
	assert.True(t, hasEvent(s.DrainEvents(), EventVariantBonus, Human))
}

func TestVariantLockWithClearAddsBonus(t *testing.T) {
	s := newState(t)
	g := s.Players[Human].Grid
	// Heart's bottom row is "..#.."; fill the last row except col 5.
	for c := 0; c < g.Width; c++ {
		if c != 5 {
			g.Cells[g.Height-1][c] = piece.S
		}
	}
	setActive(s, Human, piece.Heart, 0, 0, 3)
	s.HardDrop(Human)
	assert.Equal(t, 1, s.Players[Human].LastCleared)
	assert.Equal(t, 50+100, s.Players[Human].Score)
}

func TestGiftGoesToOpponentAndIsConsumedOnce(t *testing.T) {
	s := newState(t)
	machineActive := *s.Players[Machine].Active
	machineNext := s.Players[Machine].Next

	fillBottom(s, Human, 2, 0)
	setActive(s, Human, piece.I, 1, 0, -2)
	s.HardDrop(Human)

	require.True(t, s.Players[Machine].GiftPending)
	assert.True(t, hasEvent(s.DrainEvents(), EventGiftPending, Machine))
	// the opponent's falling and queued pieces are untouched by the lock.
	assert.Equal(t, machineActive, *s.Players[Machine].Active)
	assert.Equal(t, machineNext, s.Players[Machine].Next)

	s.HardDrop(Machine)
	assert.False(t, s.Players[Machine].GiftPending)
	assert.Contains(t, piece.Easy, s.Players[Machine].Next)
	assert.True(t, hasEvent(s.DrainEvents(), EventGiftGranted, Machine))
}

func TestGiftDrawsOnlyEasyPieces(t *testing.T) {
	s := newState(t)
	for i := 0; i < 200; i++ {
		s.Players[Machine].GiftPending = true
		k := s.generatePiece(Machine)
		assert.Contains(t, piece.Easy, k)
		assert.False(t, s.Players[Machine].GiftPending)
	}
}

func TestVariantThreshold(t *testing.T) {
	s := newState(t)
	p := s.Player(Human)

	p.Score = 2999
	for i := 0; i < 500; i++ {
		assert.False(t, s.generatePiece(Human).IsVariant())
	}
	assert.Equal(t, 3000, p.VariantThreshold)

	p.Score = 3000
	p.GiftPending = true
	k := s.generatePiece(Human)
	assert.True(t, k.IsVariant())
	assert.Equal(t, 6000, p.VariantThreshold)
	assert.True(t, p.GiftPending, "variant draw takes precedence and leaves the gift queued")

	assert.False(t, s.generatePiece(Human).IsVariant())
	assert.False(t, p.GiftPending)
	assert.Equal(t, 6000, p.VariantThreshold)
}

func TestMoveSidewaysBlockedDoesNotLock(t *testing.T) {
	s := newState(t)
	setActive(s, Human, piece.O, 0, 5, -1)
	assert.False(t, s.Move(Human, 0, -1))
	assert.Equal(t, ActivePiece{Kind: piece.O, Row: 5, Col: -1}, *s.Players[Human].Active)
	assert.Equal(t, NewGrid(10, 20), s.Players[Human].Grid)
}

func TestMoveDownBlockedLocksAndSpawns(t *testing.T) {
	s := newState(t)
	next := s.Players[Human].Next
	setActive(s, Human, piece.O, 0, 17, 0)

	assert.False(t, s.Move(Human, 1, 0))

	g := s.Players[Human].Grid
	assert.Equal(t, piece.O, g.At(18, 1))
	assert.Equal(t, piece.O, g.At(19, 2))
	a := s.Players[Human].Active
	assert.Equal(t, ActivePiece{Kind: next, Row: 0, Col: 3}, *a)
}

func TestTickIsGravityStep(t *testing.T) {
	s := newState(t)
	setActive(s, Machine, piece.T, 0, 0, 3)
	assert.True(t, s.Tick(Machine))
	assert.Equal(t, 1, s.Players[Machine].Active.Row)
}

func TestRotate(t *testing.T) {
	s := newState(t)

	setActive(s, Human, piece.T, 3, 5, 3)
	assert.True(t, s.Rotate(Human))
	assert.Equal(t, 0, s.Players[Human].Active.Rotation)

	setActive(s, Human, piece.Star, 0, 5, 3)
	assert.False(t, s.Rotate(Human))
	assert.Equal(t, 0, s.Players[Human].Active.Rotation)

	// vertical I against the left wall cannot turn flat.
	setActive(s, Human, piece.I, 1, 5, -2)
	assert.False(t, s.Rotate(Human))
	assert.Equal(t, 1, s.Players[Human].Active.Rotation)
}

func TestSpawnCollisionEndsMatch(t *testing.T) {
	s := newState(t)
	g := s.Players[Machine].Grid
	for r := 0; r < 3; r++ {
		for c := 0; c < g.Width; c++ {
			if c != 0 {
				g.Cells[r][c] = piece.L
			}
		}
	}
	setActive(s, Machine, piece.O, 0, 5, -1)
	s.HardDrop(Machine)

	assert.True(t, s.Players[Machine].GameOver)
	assert.False(t, s.Players[Human].GameOver)
	assert.True(t, s.Over)
	assert.True(t, hasEvent(s.DrainEvents(), EventGameOver, Machine))

	before := s.Clone()
	for _, cmd := range []Command{MoveLeft, MoveRight, SoftDrop, Rotate, HardDrop} {
		s.HandleInput(Human, cmd)
		s.HandleInput(Machine, cmd)
	}
	s.Tick(Human)
	if diff := cmp.Diff(before.Players, s.Players); diff != "" {
		t.Errorf("input after game over changed state (-want +got):\n%s", diff)
	}
}

func TestHandleInput(t *testing.T) {
	tests := []struct {
		cmd  Command
		want ActivePiece
	}{
		{MoveLeft, ActivePiece{Kind: piece.T, Row: 4, Col: 2}},
		{MoveRight, ActivePiece{Kind: piece.T, Row: 4, Col: 4}},
		{SoftDrop, ActivePiece{Kind: piece.T, Row: 5, Col: 3}},
		{Rotate, ActivePiece{Kind: piece.T, Rotation: 1, Row: 4, Col: 3}},
		{NoCommand, ActivePiece{Kind: piece.T, Row: 4, Col: 3}},
		{Command(99), ActivePiece{Kind: piece.T, Row: 4, Col: 3}},
	}
	for _, test := range tests {
		t.Run(test.cmd.String(), func(t *testing.T) {
			s := newState(t)
			setActive(s, Human, piece.T, 0, 4, 3)
			s.HandleInput(Human, test.cmd)
			assert.Equal(t, test.want, *s.Players[Human].Active)
		})
	}
}

func TestHardDropViaInputLocks(t *testing.T) {
	s := newState(t)
	setActive(s, Human, piece.O, 0, 0, 3)
	s.HandleInput(Human, HardDrop)
	assert.Equal(t, piece.O, s.Players[Human].Grid.At(19, 4))
	assert.Equal(t, 0, s.Players[Human].Active.Row)
}

func TestCloneIsIsolated(t *testing.T) {
	s := newState(t)
	c := s.Clone()
	require.Equal(t, s.Players, c.Players)

	c.HardDrop(Machine)
	c.Players[Human].Grid.Cells[19][0] = piece.I
	c.Players[Human].Active.Col = 0

	assert.Equal(t, NewGrid(10, 20), s.Players[Machine].Grid)
	assert.Equal(t, piece.Empty, s.Players[Human].Grid.At(19, 0))
	assert.Equal(t, 3, s.Players[Human].Active.Col)
	assert.Empty(t, s.events)
}

func TestCloneSharesRandomSequence(t *testing.T) {
	s := newState(t)
	c := s.Clone()
	for i := 0; i < 50; i++ {
		assert.Equal(t, s.generatePiece(Human), c.generatePiece(Human))
	}
}

func TestSeedReproducibility(t *testing.T) {
	a := New(DefaultRules(), 9)
	b := New(DefaultRules(), 9)
	for i := 0; i < 30; i++ {
		a.HardDrop(Human)
		b.HardDrop(Human)
	}
	assert.Equal(t, a.Players, b.Players)
}

func TestGentlePauseEvent(t *testing.T) {
	s := newState(t)
	s.Players[Human].Score = 900
	fillBottom(s, Human, 2, 0)
	setActive(s, Human, piece.I, 1, 0, -2)
	s.HardDrop(Human)
	assert.Equal(t, 1100, s.Players[Human].Score)
	assert.True(t, hasEvent(s.DrainEvents(), EventGentlePause, Human))
}

func TestAdvanceSpecialEvents(t *testing.T) {
	s := newState(t)
	fired := 0
	for i := 0; i < 240; i++ {
		if s.AdvanceSpecialEvents() {
			fired++
		}
	}
	assert.Equal(t, 2, fired)
	assert.Zero(t, s.SpecialTicks)
	assert.True(t, hasEvent(s.DrainEvents(), EventRainbow, NoRole))

	s.AdvanceSpecialEvents()
	assert.Equal(t, 1, s.SpecialTicks)
}

func TestRenderStateOverlaysActivePiece(t *testing.T) {
	s := newState(t)
	setActive(s, Human, piece.O, 0, 0, 3)
	s.Players[Human].Score = 150

	rs := s.RenderState(Human)

	assert.Equal(t, piece.O, rs.Grid[1][4])
	assert.Equal(t, piece.O, rs.Grid[2][5])
	assert.Equal(t, piece.Empty, s.Players[Human].Grid.At(1, 4), "render must not write the live grid")
	assert.Equal(t, 150, rs.Score)
	assert.Equal(t, s.Players[Human].Next, rs.Next)
	assert.NotEmpty(t, rs.NextPreview)
	assert.False(t, rs.GameOver)
}

func TestEventJSON(t *testing.T) {
	tests := []struct {
		desc  string
		event Event
		want  string
	}{
		{
			desc:  "Player event",
			event: Event{Kind: EventGiftPending, Role: Machine, Value: 2},
			want:  `{"kind":"gift_pending","player":"machine","value":2}`,
		},
		{
			desc:  "Human is not dropped",
			event: Event{Kind: EventGameOver, Role: Human},
			want:  `{"kind":"game_over","player":"human"}`,
		},
		{
			desc:  "Match-wide event has no player",
			event: Event{Kind: EventRainbow, Role: NoRole},
			want:  `{"kind":"rainbow"}`,
		},
	}
	for _, test := range tests {
		t.Run(test.desc, func(t *testing.T) {
			b, err := json.Marshal(test.event)
			require.NoError(t, err)
			assert.JSONEq(t, test.want, string(b))

			var back Event
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, test.event, back)
		})
	}
}
