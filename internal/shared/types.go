package shared

import (
	"encoding/json"
	"time"

	"tetris-duel/internal/game"
)

// Summary is the public view of a match returned by the HTTP API and
// pushed over websockets.
type Summary struct {
	ID           string             `json:"id"`
	Code         string             `json:"code"`
	CreatedAt    time.Time          `json:"created_at"`
	Over         bool               `json:"over"`
	Running      bool               `json:"running"`
	GentlePause  bool               `json:"gentle_pause"`
	SpecialTicks int                `json:"special_ticks"`
	Players      []game.RenderState `json:"players"`
}

// Frame is the websocket envelope in both directions.
type Frame struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// InputData is the payload of an inbound "input" frame.
type InputData struct {
	Player  string `json:"player"`
	Command string `json:"command"`
}

// MachineMove reports what the search chose. Move is nil when the search
// had nothing to decide.
type MachineMove struct {
	Move     *MoveDTO       `json:"move"`
	Commands []game.Command `json:"commands,omitempty"`
}

type MoveDTO struct {
	Rotation int `json:"rotation"`
	Offset   int `json:"offset"`
}
