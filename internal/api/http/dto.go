package http

// CreateMatchRequest is the payload for POST /matches.
type CreateMatchRequest struct {
	Seed     uint64 `json:"seed"`
	Autoplay bool   `json:"autoplay"`
}

// InputRequest is the payload for POST /matches/:code/input.
type InputRequest struct {
	Player  string `json:"player"`
	Command string `json:"command" binding:"required"`
}

// TickRequest is the payload for POST /matches/:code/tick.
type TickRequest struct {
	Player string `json:"player" binding:"required"`
}
