package game

import (
	"encoding/json"
	"fmt"
	"strings"

	"tetris-duel/internal/piece"
)

// Role selects one of the two boards.
type Role int

const (
	Human Role = iota
	Machine
)

// NoRole tags match-wide events that belong to neither board.
const NoRole Role = -1

// Roles lists both roles in slot order.
var Roles = [2]Role{Human, Machine}

func (r Role) Opponent() Role {
	if r == Human {
		return Machine
	}
	return Human
}

func (r Role) Valid() bool {
	return r == Human || r == Machine
}

func (r Role) String() string {
	switch r {
	case Human:
		return "human"
	case Machine:
		return "machine"
	case NoRole:
		return "match"
	}
	return fmt.Sprintf("Role(%d)", int(r))
}

func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(s) {
	case "human", "player":
		return Human, true
	case "machine", "ai", "bot":
		return Machine, true
	}
	return 0, false
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, ok := ParseRole(string(b))
	if !ok {
		return fmt.Errorf("unknown role %q", b)
	}
	*r = v
	return nil
}

// Command is a discrete input accepted by HandleInput.
type Command int

const (
	NoCommand Command = iota
	MoveLeft
	MoveRight
	SoftDrop
	Rotate
	HardDrop
)

var commandNames = map[Command]string{
	MoveLeft:  "left",
	MoveRight: "right",
	SoftDrop:  "down",
	Rotate:    "rotate",
	HardDrop:  "drop",
}

func (c Command) String() string {
	if n, ok := commandNames[c]; ok {
		return n
	}
	return "none"
}

// ParseCommand accepts the command names plus the key names a keyboard
// collaborator would send.
func ParseCommand(s string) (Command, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "move_left":
		return MoveLeft, true
	case "right", "move_right":
		return MoveRight, true
	case "down", "soft_drop":
		return SoftDrop, true
	case "rotate", "up":
		return Rotate, true
	case "drop", "hard_drop", "space":
		return HardDrop, true
	}
	return NoCommand, false
}

func (c Command) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Command) UnmarshalText(b []byte) error {
	v, ok := ParseCommand(string(b))
	if !ok {
		return fmt.Errorf("unknown command %q", b)
	}
	*c = v
	return nil
}

// ActivePiece is the falling piece of one player.
type ActivePiece struct {
	Kind     piece.Kind `json:"kind"`
	Rotation int        `json:"rotation"`
	Row      int        `json:"row"`
	Col      int        `json:"col"`
}

func (p ActivePiece) Matrix() piece.Matrix {
	return piece.ShapeOf(p.Kind, p.Rotation)
}

type PlayerState struct {
	Grid             Grid         `json:"grid"`
	Active           *ActivePiece `json:"active"`
	Next             piece.Kind   `json:"next"`
	Score            int          `json:"score"`
	Lines            int          `json:"lines"`
	VariantThreshold int          `json:"variantThreshold"`
	GiftPending      bool         `json:"giftPending"`
	GameOver         bool         `json:"gameOver"`
	LastCleared      int          `json:"lastCleared"`
}

func (p PlayerState) clone() PlayerState {
	out := p
	out.Grid = p.Grid.Clone()
	if p.Active != nil {
		a := *p.Active
		out.Active = &a
	}
	return out
}

// Rules are the tunable constants of the engine.
type Rules struct {
	Width  int
	Height int
	// Score at which the first variant piece is awarded and the step by
	// which the threshold advances afterwards.
	VariantStep  int
	VariantBonus int
	LinePoints   int
	// ClearBonus is indexed by rows cleared in one lock; counts past the
	// end use the last entry.
	ClearBonus []int
	// GiftLines is the exact clear count that grants the opponent a gift.
	GiftLines            int
	GentlePauseStep      int
	SpecialEventInterval int
}

func DefaultRules() Rules {
	return Rules{
		Width:                10,
		Height:               20,
		VariantStep:          3000,
		VariantBonus:         100,
		LinePoints:           50,
		ClearBonus:           []int{0, 0, 100, 200, 300},
		GiftLines:            2,
		GentlePauseStep:      1000,
		SpecialEventInterval: 120,
	}
}

func (r Rules) clearScore(k int) int {
	if k <= 0 {
		return 0
	}
	bonus := 0
	if n := len(r.ClearBonus); n > 0 {
		if k < n {
			bonus = r.ClearBonus[k]
		} else {
			bonus = r.ClearBonus[n-1]
		}
	}
	return r.LinePoints*k + bonus
}

// EventKind tags engine notifications for drivers.
type EventKind string

const (
	EventLinesCleared   EventKind = "lines_cleared"
	EventGiftPending    EventKind = "gift_pending"
	EventGiftGranted    EventKind = "gift_granted"
	EventVariantAwarded EventKind = "variant_awarded"
	EventVariantBonus   EventKind = "variant_bonus"
	EventGentlePause    EventKind = "gentle_pause"
	EventRainbow        EventKind = "rainbow"
	EventGameOver       EventKind = "game_over"
)

// Event is one engine notification. Role is NoRole for match-wide events,
// which carry no "player" on the wire.
type Event struct {
	Kind  EventKind
	Role  Role
	Value int
}

type wireEvent struct {
	Kind  EventKind `json:"kind"`
	Role  *Role     `json:"player,omitempty"`
	Value int       `json:"value,omitempty"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	w := wireEvent{Kind: e.Kind, Value: e.Value}
	if e.Role.Valid() {
		r := e.Role
		w.Role = &r
	}
	return json.Marshal(w)
}

func (e *Event) UnmarshalJSON(b []byte) error {
	var w wireEvent
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	*e = Event{Kind: w.Kind, Role: NoRole, Value: w.Value}
	if w.Role != nil {
		e.Role = *w.Role
	}
	return nil
}
