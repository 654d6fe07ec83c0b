package cubefield

import (
	"time"
)

// Clock supplies monotonic time readings.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type Time struct {
	Now   time.Time
	Dt    time.Duration
	Clock Clock

	started bool
}

// DtSeconds returns the last tick's delta in seconds.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeModule struct {
	Clock Clock
}

func (mod TimeModule) Install(app *App, cmd *Commands) error {
	clock := mod.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	cmd.AddResources(&Time{Clock: clock})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude),
	)
	return nil
}

// The first tick only records the start time; its Dt is zero so setup time
// never reaches the simulation.
func timeSystem(t *Time) {
	now := t.Clock.Now()

	if t.started {
		t.Dt = now.Sub(t.Now)
		if t.Dt < 0 {
			t.Dt = 0
		}
	} else {
		t.Dt = 0
		t.started = true
	}
	t.Now = now
}
