package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tetris-duel/internal/ai"
	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
	"tetris-duel/internal/piece"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg := config.Get()
	seed := uint64(time.Now().UnixNano())
	st := game.New(cfg.Rules, seed)
	bot := ai.NewSearcher(cfg.Weights, seed^0x5bd1e995)

	play(st, bot, os.Stdin, os.Stdout)

	fmt.Println("\nGame over!")
	if err := printFinal(os.Stdout, st); err != nil {
		log.Error().Err(err).Msg("final-state")
		os.Exit(1)
	}
}

// printFinal writes both boards as indented JSON.
func printFinal(w io.Writer, st *game.State) error {
	out := map[string]interface{}{
		"human":   st.RenderState(game.Human),
		"machine": st.RenderState(game.Machine),
	}
	js, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(js))
	return err
}

// play runs the duel until the match ends, input runs out, or the human
// quits. Each line is one human command; the machine answers with a full
// placement and gravity then ticks both boards.
func play(st *game.State, bot *ai.Searcher, in io.Reader, out io.Writer) {
	reader := bufio.NewReader(in)
	for !st.Over {
		printBoards(out, st)
		fmt.Fprintln(out, "a/d move, s down, w rotate, space or x drop, q quit")
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		cmd, quit := parseKey(line)
		if quit {
			return
		}
		if cmd != game.NoCommand {
			st.HandleInput(game.Human, cmd)
		}
		if mv, ok := bot.BestMove(st); ok {
			for _, c := range mv.Commands(*st.Player(game.Machine).Active) {
				st.HandleInput(game.Machine, c)
			}
		}
		st.Tick(game.Human)
		st.Tick(game.Machine)
		for _, ev := range st.DrainEvents() {
			fmt.Fprintf(out, "* %s %s %d\n", ev.Role, ev.Kind, ev.Value)
		}
	}
}

func parseKey(line string) (cmd game.Command, quit bool) {
	raw := strings.TrimRight(line, "\r\n")
	if raw == " " {
		return game.HardDrop, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "q", "quit":
		return game.NoCommand, true
	case "a":
		return game.MoveLeft, false
	case "d":
		return game.MoveRight, false
	case "s":
		return game.SoftDrop, false
	case "w":
		return game.Rotate, false
	case "x":
		return game.HardDrop, false
	}
	if c, ok := game.ParseCommand(strings.TrimSpace(raw)); ok {
		return c, false
	}
	return game.NoCommand, false
}

func glyph(k piece.Kind) string {
	switch k {
	case piece.Empty:
		return "."
	case piece.Heart:
		return "h"
	case piece.Star:
		return "*"
	}
	return k.String()
}

func printBoards(w io.Writer, st *game.State) {
	h, m := st.RenderState(game.Human), st.RenderState(game.Machine)
	fmt.Fprintf(w, "\nYOU %-6d lines %-3d     CPU %-6d lines %-3d\n", h.Score, h.Lines, m.Score, m.Lines)
	for r := range h.Grid {
		var b strings.Builder
		for _, k := range h.Grid[r] {
			b.WriteString(glyph(k) + " ")
		}
		b.WriteString("   ")
		for _, k := range m.Grid[r] {
			b.WriteString(glyph(k) + " ")
		}
		fmt.Fprintln(w, b.String())
	}
	fmt.Fprintf(w, "next: %s   next: %s\n", glyph(h.Next), glyph(m.Next))
}
