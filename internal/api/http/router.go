package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"tetris-duel/internal/api/ws"
	"tetris-duel/internal/match"
)

func SetupRouter(mm *match.Manager, hub *ws.Hub) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/ws", hub.HandleWS)

	// --- MATCH ENDPOINTS ---
	r.POST("/matches", CreateMatchHandler(mm))
	r.GET("/matches", ListMatchesHandler(mm))
	r.GET("/matches/:code", GetMatchHandler(mm))
	r.DELETE("/matches/:code", DeleteMatchHandler(mm))
	r.POST("/matches/:code/start", StartHandler(mm))
	r.POST("/matches/:code/stop", StopHandler(mm))

	// --- GAME ENDPOINTS ---
	r.GET("/matches/:code/state", StateHandler(mm))
	r.POST("/matches/:code/input", InputHandler(mm))
	r.POST("/matches/:code/tick", TickHandler(mm))
	r.POST("/matches/:code/machine-move", MachineMoveHandler(mm))
	r.POST("/matches/:code/reset", ResetHandler(mm))

	// --- CONFIG ENDPOINTS ---
	r.GET("/config/weights", GetWeightsHandler(mm))
	r.GET("/matches/:code/weights", GetMatchWeightsHandler(mm))

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	}
}
