package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tetris-duel/internal/game"
	"tetris-duel/internal/match"
)

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, match.ErrMatchNotFound):
		status = http.StatusNotFound
	case errors.Is(err, match.ErrUnknownRole), errors.Is(err, match.ErrUnknownCommand):
		status = http.StatusBadRequest
	case errors.Is(err, match.ErrAlreadyRunning):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func roleParam(c *gin.Context, raw string) (game.Role, bool) {
	if raw == "" {
		return game.Human, true
	}
	r, ok := game.ParseRole(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown player: " + raw})
	}
	return r, ok
}

// CreateMatchHandler starts a new match, optionally with its own driver.
func CreateMatchHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateMatchRequest
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
				return
			}
		}
		x := mm.Create(req.Seed)
		if req.Autoplay {
			if err := mm.Start(context.Background(), x.Code); err != nil {
				writeError(c, err)
				return
			}
		}
		c.JSON(http.StatusCreated, gin.H{"code": x.Code, "match": x.Summary()})
	}
}

func ListMatchesHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"matches": mm.List()})
	}
}

func GetMatchHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mm.Summary(c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": s})
	}
}

// StateHandler returns the render state of one player, human by default.
func StateHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := roleParam(c, c.Query("player"))
		if !ok {
			return
		}
		rs, err := mm.Snapshot(c.Param("code"), r)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": rs})
	}
}

func InputHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req InputRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "command required"})
			return
		}
		if req.Player == "" {
			req.Player = game.Human.String()
		}
		r, cmd, err := match.ParseInput(req.Player, req.Command)
		if err != nil {
			writeError(c, err)
			return
		}
		rs, err := mm.Input(c.Param("code"), r, cmd)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": rs})
	}
}

func TickHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TickRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "player required"})
			return
		}
		r, ok := roleParam(c, req.Player)
		if !ok {
			return
		}
		rs, err := mm.Tick(c.Param("code"), r)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"state": rs})
	}
}

// MachineMoveHandler runs one search for the machine and applies it.
// The move is null when there was nothing to decide.
func MachineMoveHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		out, err := mm.MachineMove(c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	}
}

func ResetHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := mm.Reset(c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": s})
	}
}

func StartHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		if err := mm.Start(context.Background(), code); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func StopHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		if _, err := mm.Get(code); err != nil {
			writeError(c, err)
			return
		}
		mm.Stop(code)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

func DeleteMatchHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := mm.Delete(c.Param("code")); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
