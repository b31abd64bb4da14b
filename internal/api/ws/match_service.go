package ws

import (
	"tetris-duel/internal/game"
	"tetris-duel/internal/shared"
)

// MatchService is the part of the match manager the hub drives.
type MatchService interface {
	Input(code string, r game.Role, cmd game.Command) (game.RenderState, error)
	Reset(code string) (shared.Summary, error)
	Summary(code string) (shared.Summary, error)
}
