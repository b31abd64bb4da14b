package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tetris-duel/internal/ai"
	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
	"tetris-duel/internal/piece"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		line string
		cmd  game.Command
		quit bool
	}{
		{"a\n", game.MoveLeft, false},
		{"D\n", game.MoveRight, false},
		{"s\n", game.SoftDrop, false},
		{"w\r\n", game.Rotate, false},
		{" \n", game.HardDrop, false},
		{"x\n", game.HardDrop, false},
		{"rotate\n", game.Rotate, false},
		{"\n", game.NoCommand, false},
		{"?\n", game.NoCommand, false},
		{"q\n", game.NoCommand, true},
	}
	for _, test := range tests {
		t.Run(strings.TrimSpace(test.line), func(t *testing.T) {
			cmd, quit := parseKey(test.line)
			assert.Equal(t, test.cmd, cmd)
			assert.Equal(t, test.quit, quit)
		})
	}
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, ".", glyph(piece.Empty))
	assert.Equal(t, "T", glyph(piece.T))
	assert.Equal(t, "h", glyph(piece.Heart))
	assert.Equal(t, "*", glyph(piece.Star))
}

func TestPlay(t *testing.T) {
	st := game.New(game.DefaultRules(), 4)
	bot := ai.NewSearcher(config.DefaultWeights(), 4)
	var out bytes.Buffer

	play(st, bot, strings.NewReader("a\nx\nq\n"), &out)

	assert.False(t, st.Over)
	assert.Len(t, bot.History(), 2)
	assert.Contains(t, out.String(), "YOU")
	stacked := 0
	for _, h := range st.Player(game.Human).Grid.Heights() {
		stacked += h
	}
	assert.Positive(t, stacked)
}

func TestPlayStopsAtEOF(t *testing.T) {
	st := game.New(game.DefaultRules(), 4)
	bot := ai.NewSearcher(config.DefaultWeights(), 4)
	var out bytes.Buffer
	play(st, bot, strings.NewReader(""), &out)
	assert.Empty(t, bot.History())
	assert.Equal(t, 1, strings.Count(out.String(), "YOU"))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestPrintFinal(t *testing.T) {
	st := game.New(game.DefaultRules(), 4)
	var out bytes.Buffer
	require.NoError(t, printFinal(&out, st))

	var final map[string]game.RenderState
	require.NoError(t, json.Unmarshal(out.Bytes(), &final))
	assert.Equal(t, game.Human, final["human"].Player)
	assert.Equal(t, game.Machine, final["machine"].Player)

	assert.EqualError(t, printFinal(failingWriter{}, st), "closed")
}
