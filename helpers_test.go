package cubefield

import (
	"sync"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// newHeadlessApp wires the full update pipeline against a RecordingRenderer.
func newHeadlessApp(clock Clock, extra ...Module) (*App, *RecordingRenderer, error) {
	rec := NewRecordingRenderer()
	app, err := NewAppBuilder().
		UseModule(
			TimeModule{Clock: clock},
			InputModule{},
			FlyingCameraModule{},
			SceneModule{Def: SceneDefFromConfig(DefaultConfig().Scene)},
			SpinModule{},
			InstancesModule{},
			ProjectionModule{Width: 800, Height: 600},
			RenderModule{Name: RendererRecording, Renderer: rec},
		).
		UseModule(extra...).
		Build()
	return app, rec, err
}
