package cubefield

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockResource1 struct {
	name string
}
type MockResource2 struct {
	name string
}

func NewMockResource1(name string) *MockResource1 {
	return &MockResource1{name: name}
}
func NewMockResource2(name string) *MockResource2 {
	return &MockResource2{name: name}
}

func TestApp_addResources(t *testing.T) {
	app := newApp()

	resource1 := NewMockResource1("Resource1")
	app.addResources(resource1)
	assert.Contains(t, app.resources, reflect.TypeOf(resource1).Elem(), "Resource1 should be in resources map.")

	require.PanicsWithValue(t, fmt.Sprintf("%s is already in resources", reflect.TypeOf(resource1)), func() {
		app.addResources(resource1)
	})

	resource2 := NewMockResource2("Resource2")
	app.addResources(resource2)
	assert.Contains(t, app.resources, reflect.TypeOf(resource2).Elem(), "Resource2 should be in resources map.")

	assert.Same(t, resource2, Resource[MockResource2](app))
	assert.Nil(t, Resource[Frame](app))
}

func TestApp_addResourcesRejectsValues(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() { app.addResources(MockResource1{}) })
}

func TestApp_callSystemResolvesResourcesAndCommands(t *testing.T) {
	app := newApp()
	res := NewMockResource1("a")
	app.addResources(res)

	var gotRes *MockResource1
	var gotCmd *Commands
	err := app.callSystem(func(r *MockResource1, cmd *Commands) {
		gotRes, gotCmd = r, cmd
	})
	require.NoError(t, err)
	assert.Same(t, res, gotRes)
	require.NotNil(t, gotCmd)
	assert.Same(t, app, gotCmd.app)
}

func TestApp_callSystemPanicsOnMissingDependency(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() {
		_ = app.callSystem(func(r *MockResource2) {})
	})
}

func TestApp_callSystemReturnsSystemError(t *testing.T) {
	app := newApp()
	boom := errors.New("boom")
	err := app.callSystem(func() error { return boom })
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, app.callSystem(func() error { return nil }))
}

func TestApp_stagesRunInOrder(t *testing.T) {
	app := newApp()
	custom := Stage{Name: "Custom"}
	app.UseStage(custom, AfterStage(Update))

	var order []string
	record := func(name string) func() { return func() { order = append(order, name) } }
	app.UseSystem(System(record("render")).InStage(Render))
	app.UseSystem(System(record("custom")).InStage(custom))
	app.UseSystem(System(record("update-1")))
	app.UseSystem(System(record("update-2")).InStage(Update))
	app.UseSystem(System(record("prelude")).InStage(Prelude))

	require.NoError(t, app.tick())
	assert.Equal(t, []string{"prelude", "update-1", "update-2", "custom", "render"}, order)
	assert.Equal(t, uint64(1), app.Ticks())
}

func TestApp_UseStagePanics(t *testing.T) {
	app := newApp()
	assert.Panics(t, func() { app.UseStage(Stage{Name: "X"}, BeforeStage(Stage{Name: "Missing"})) })
	assert.Panics(t, func() { app.UseStage(Update, BeforeStage(Render)) })
	assert.Panics(t, func() { app.UseSystem(System(func() {}).InStage(Stage{Name: "Missing"})) })
}

func TestApp_RunStopsOnCommand(t *testing.T) {
	app := newApp()
	calls := 0
	app.UseSystem(System(func(cmd *Commands) {
		calls++
		if calls == 3 {
			cmd.Stop()
		}
	}))

	assert.Equal(t, Idle, app.State())
	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, 3, calls)
	assert.Equal(t, uint64(3), app.Ticks())
	assert.Equal(t, Stopped, app.State())
}

func TestApp_RunOnlyOnce(t *testing.T) {
	app := newApp()
	app.Stop()
	require.NoError(t, app.Run(context.Background()))
	assert.ErrorIs(t, app.Run(context.Background()), ErrAlreadyStarted)
}

func TestApp_RunStopsOnContextCancel(t *testing.T) {
	app := newApp()
	app.SetPace(time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	ticks := 0
	app.UseSystem(System(func() {
		ticks++
		if ticks == 2 {
			cancel()
		}
	}))

	require.NoError(t, app.Run(ctx))
	assert.Equal(t, 2, ticks)
	assert.Equal(t, Stopped, app.State())
}

func TestApp_RunReturnsSystemError(t *testing.T) {
	app := newApp()
	boom := errors.New("device lost")
	app.UseSystem(System(func() error { return boom }).InStage(Render))
	ran := false
	app.UseSystem(System(func() { ran = true }).InStage(Finale))

	err := app.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ran, "later stages must not run after a failing system")
	assert.Equal(t, Stopped, app.State())
}

func TestApp_CleanupsRunInReverse(t *testing.T) {
	app := newApp()
	var order []int
	app.UseCleanup(func() { order = append(order, 1) })
	app.UseCleanup(func() { order = append(order, 2) })
	app.Stop()

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []int{2, 1}, order)
}

func TestRunState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "running", Running.String())
	assert.Equal(t, "stopped", Stopped.String())
	assert.Equal(t, "RunState(7)", RunState(7).String())
}
