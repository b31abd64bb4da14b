package match

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"tetris-duel/internal/config"
	"tetris-duel/internal/game"
)

// Driver owns the clocks of one match: gravity per role, the machine's
// decision cadence and the special-event counter. All mutations still go
// through the Manager, so they serialize with user input.
type Driver struct {
	mgr    *Manager
	code   string
	timing config.Timing
	now    func() time.Time

	// paused mirrors the match's gentle pause as last applied to the
	// gravity tickers.
	paused bool
}

func NewDriver(m *Manager, code string, t config.Timing) *Driver {
	return &Driver{mgr: m, code: code, timing: t, now: time.Now}
}

// Run blocks until ctx is cancelled or the match is over.
func (d *Driver) Run(ctx context.Context) error {
	human := newTicker(d.timing.GravityHuman)
	defer human.Stop()
	machine := newTicker(d.timing.GravityMachine)
	defer machine.Stop()
	think := newTicker(d.timing.MachineDelay)
	defer think.Stop()
	special := newTicker(d.timing.SpecialEvent)
	defer special.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-human.C:
			_, err = d.mgr.Tick(d.code, game.Human)
		case <-machine.C:
			_, err = d.mgr.Tick(d.code, game.Machine)
		case <-think.C:
			_, err = d.mgr.MachineMove(d.code)
		case <-special.C:
			_, err = d.mgr.AdvanceSpecial(d.code)
		}
		if err != nil {
			return err
		}
		x, err := d.mgr.Get(d.code)
		if err != nil {
			return err
		}
		if x.Over() {
			log.Info().Str("match", d.code).Msg("driver-finished")
			return nil
		}
		if p := x.paused(d.now()); p != d.paused {
			d.paused = p
			resetTicker(human, d.gravityPeriod(d.timing.GravityHuman))
			resetTicker(machine, d.gravityPeriod(d.timing.GravityMachine))
			log.Debug().Str("match", d.code).Bool("paused", p).Msg("gravity-rescaled")
		}
	}
}

// gravityPeriod stretches base by GentleFactor while a gentle pause is
// active. The pause applies to both boards.
func (d *Driver) gravityPeriod(base time.Duration) time.Duration {
	if !d.paused || d.timing.GentleFactor <= 0 {
		return base
	}
	return time.Duration(float64(base) * d.timing.GentleFactor)
}

// newTicker tolerates a zero period, which disables that clock.
func newTicker(period time.Duration) *time.Ticker {
	if period <= 0 {
		t := time.NewTicker(time.Hour)
		t.Stop()
		return t
	}
	return time.NewTicker(period)
}

// resetTicker leaves disabled clocks stopped.
func resetTicker(t *time.Ticker, period time.Duration) {
	if period > 0 {
		t.Reset(period)
	}
}
