package cubefield

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type scriptedClock struct {
	times []time.Time
}

func (c *scriptedClock) Now() time.Time {
	now := c.times[0]
	c.times = c.times[1:]
	return now
}

func TestTimeSystem(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := &scriptedClock{times: []time.Time{
		start,
		start.Add(16 * time.Millisecond),
		start.Add(10 * time.Millisecond),
		start.Add(30 * time.Millisecond),
	}}
	tm := &Time{Clock: clock}

	timeSystem(tm)
	assert.Equal(t, time.Duration(0), tm.Dt, "first tick")

	timeSystem(tm)
	assert.Equal(t, 16*time.Millisecond, tm.Dt)
	assert.InDelta(t, 0.016, tm.DtSeconds(), 1e-6)

	timeSystem(tm)
	assert.Equal(t, time.Duration(0), tm.Dt, "clock went backwards")

	timeSystem(tm)
	assert.Equal(t, 20*time.Millisecond, tm.Dt)
}

func TestTimeModule_DefaultsToSystemClock(t *testing.T) {
	app, err := NewAppBuilder().UseModule(TimeModule{}).Build()
	assert.NoError(t, err)
	assert.Equal(t, SystemClock{}, Resource[Time](app).Clock)
}
