package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tetris-duel/internal/match"
)

// GetWeightsHandler returns the search weights new matches start with.
func GetWeightsHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := mm.Config()
		c.JSON(http.StatusOK, gin.H{
			"weights": cfg.Weights,
			"rules": gin.H{
				"width":                  cfg.Rules.Width,
				"height":                 cfg.Rules.Height,
				"variant_step":           cfg.Rules.VariantStep,
				"special_event_interval": cfg.Rules.SpecialEventInterval,
			},
		})
	}
}

// GetMatchWeightsHandler returns the weights the match's machine plays with.
func GetMatchWeightsHandler(mm *match.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		x, err := mm.Get(c.Param("code"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"match": x.Code, "weights": x.Weights()})
	}
}
