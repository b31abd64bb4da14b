package game

import "tetris-duel/internal/piece"

// RenderState is the read-only projection handed to display collaborators.
type RenderState struct {
	Player      Role           `json:"player"`
	Grid        [][]piece.Kind `json:"grid"`
	Active      *ActivePiece   `json:"active,omitempty"`
	Next        piece.Kind     `json:"next"`
	NextPreview piece.Matrix   `json:"nextPreview,omitempty"`
	Score       int            `json:"score"`
	Lines       int            `json:"lines"`
	GiftPending bool           `json:"giftPending"`
	// Lost is set on the player whose spawn collided; GameOver on both
	// once the match halts.
	Lost     bool `json:"lost"`
	GameOver bool `json:"gameOver"`
}

// RenderState copies the locked grid of r with the active piece overlaid.
func (s *State) RenderState(r Role) RenderState {
	p := &s.Players[r]
	g := p.Grid.Clone()
	var active *ActivePiece
	if p.Active != nil {
		a := *p.Active
		active = &a
		g.Stamp(a.Matrix(), a.Row, a.Col, a.Kind)
	}
	rs := RenderState{
		Player:      r,
		Grid:        g.Cells,
		Active:      active,
		Next:        p.Next,
		Score:       p.Score,
		Lines:       p.Lines,
		GiftPending: p.GiftPending,
		Lost:        p.GameOver,
		GameOver:    s.Over,
	}
	if p.Next.Valid() {
		rs.NextPreview = piece.ShapeOf(p.Next, 0)
	}
	return rs
}
