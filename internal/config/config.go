package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"tetris-duel/internal/game"
)

// Weights drive the placement heuristic of the machine player.
type Weights struct {
	Height    float64 `json:"height"`
	Lines     float64 `json:"lines"`
	Holes     float64 `json:"holes"`
	Bumpiness float64 `json:"bumpiness"`
	// Jitter bounds the uniform noise added to each candidate.
	Jitter float64 `json:"jitter"`
	// Recency scales the penalty for repeating one of the last moves.
	Recency float64 `json:"recency"`
}

func DefaultWeights() Weights {
	return Weights{
		Height:    -0.510066,
		Lines:     0.760666,
		Holes:     -0.35663,
		Bumpiness: -0.184483,
		Jitter:    0.1,
		Recency:   0.05,
	}
}

// Timing is owned by drivers; the engine never sees it.
type Timing struct {
	GravityHuman   time.Duration
	GravityMachine time.Duration
	MachineDelay   time.Duration
	// GentlePause is how long both boards run slowed after either player
	// crosses a gentle pause boundary.
	GentlePause time.Duration
	// GentleFactor stretches both gravity periods during a gentle pause.
	GentleFactor float64
	// SpecialEvent is the cadence of AdvanceSpecialEvents.
	SpecialEvent time.Duration
}

type Config struct {
	HTTPAddr  string
	LogLevel  string
	LogPretty bool
	Rules     game.Rules
	Weights   Weights
	Timing    Timing
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getenvMillis(key string, def int) time.Duration {
	return time.Duration(getenvInt(key, def)) * time.Millisecond
}

func Load() Config {
	rules := game.DefaultRules()
	rules.Width = getenvInt("GRID_WIDTH", rules.Width)
	rules.Height = getenvInt("GRID_HEIGHT", rules.Height)
	rules.VariantStep = getenvInt("VARIANT_STEP", rules.VariantStep)
	rules.SpecialEventInterval = getenvInt("SPECIAL_EVENT_INTERVAL", rules.SpecialEventInterval)

	w := DefaultWeights()
	return Config{
		HTTPAddr:  getenv("HTTP_ADDR", ":8080"),
		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty: getenvBool("LOG_PRETTY", false),
		Rules:     rules,
		Weights: Weights{
			Height:    getenvFloat("W_HEIGHT", w.Height),
			Lines:     getenvFloat("W_LINES", w.Lines),
			Holes:     getenvFloat("W_HOLES", w.Holes),
			Bumpiness: getenvFloat("W_BUMPINESS", w.Bumpiness),
			Jitter:    getenvFloat("W_JITTER", w.Jitter),
			Recency:   getenvFloat("W_RECENCY", w.Recency),
		},
		Timing: Timing{
			GravityHuman:   getenvMillis("GRAVITY_HUMAN_MS", 500),
			GravityMachine: getenvMillis("GRAVITY_MACHINE_MS", 500),
			MachineDelay:   getenvMillis("AI_DELAY_MS", 1500),
			GentlePause:    getenvMillis("GENTLE_PAUSE_MS", 10000),
			GentleFactor:   getenvFloat("GENTLE_PAUSE_FACTOR", 1.2),
			SpecialEvent:   getenvMillis("SPECIAL_EVENT_MS", 1000),
		},
	}
}

var (
	once sync.Once
	cfg  Config
)

// Get returns the process-wide configuration, loading it on first use.
func Get() *Config {
	once.Do(func() { cfg = Load() })
	return &cfg
}
