package ai

import (
	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
)

// Features are the board measurements the heuristic weighs.
type Features struct {
	HeightSum int `json:"heightSum"`
	Lines     int `json:"lines"`
	Holes     int `json:"holes"`
	Bumpiness int `json:"bumpiness"`
}

func Measure(g game.Grid, cleared int) Features {
	heights := g.Heights()
	f := Features{Lines: cleared, Holes: g.Holes()}
	for i, h := range heights {
		f.HeightSum += h
		if i > 0 {
			f.Bumpiness += abs(h - heights[i-1])
		}
	}
	return f
}

// Value is the weighted sum without noise or penalties.
func (f Features) Value(w config.Weights) float64 {
	return w.Height*float64(f.HeightSum) +
		w.Lines*float64(f.Lines) +
		w.Holes*float64(f.Holes) +
		w.Bumpiness*float64(f.Bumpiness)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
