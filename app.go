package cubefield

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sync/atomic"
	"time"
)

type systemFn any

type RunState int32

const (
	Idle RunState = iota
	Running
	Stopped
)

func (s RunState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	}
	return fmt.Sprintf("RunState(%d)", int32(s))
}

var ErrAlreadyStarted = errors.New("app already started")

type App struct {
	stages    []Stage
	systems   map[string][]systemFn
	resources map[reflect.Type]any
	cleanups  []func()

	// pace is the minimum wall time between tick starts; zero leaves pacing to
	// the surface present.
	pace time.Duration

	state         atomic.Int32
	stopRequested atomic.Bool
	ticks         uint64
}

func newApp() *App {
	app := &App{
		systems:   make(map[string][]systemFn),
		resources: make(map[reflect.Type]any),
	}
	for _, stage := range defaultStages {
		app.stages = append(app.stages, stage)
		app.systems[stage.Name] = make([]systemFn, 0)
	}
	return app
}

func (app *App) Commands() *Commands {
	return &Commands{
		app: app,
	}
}

func (app *App) State() RunState {
	return RunState(app.state.Load())
}

// Ticks returns how many ticks have completed.
func (app *App) Ticks() uint64 {
	return app.ticks
}

// SetPace sets the minimum interval between tick starts.
func (app *App) SetPace(d time.Duration) *App {
	app.pace = d
	return app
}

// Stop asks the loop to finish after the current tick. Safe from any goroutine.
func (app *App) Stop() {
	app.stopRequested.Store(true)
}

// UseCleanup registers fn to run once Run returns. Cleanups run in reverse
// registration order.
func (app *App) UseCleanup(fn func()) *App {
	app.cleanups = append(app.cleanups, fn)
	return app
}

// Run ticks the app until ctx is done, a system requests a stop, or a system
// returns an error. It may be called once.
func (app *App) Run(ctx context.Context) error {
	if !app.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyStarted
	}
	defer app.shutdown()

	log := app.Logger()
	log.Infof("app running with %d stages", len(app.stages))

	var timer *time.Timer
	if app.pace > 0 {
		timer = time.NewTimer(0)
		defer timer.Stop()
	}

	for {
		if app.stopRequested.Load() {
			log.Infof("stop requested after %d ticks", app.ticks)
			return nil
		}
		if err := ctx.Err(); err != nil {
			log.Infof("context done after %d ticks: %v", app.ticks, err)
			return nil
		}

		if timer != nil {
			select {
			case <-ctx.Done():
				continue
			case <-timer.C:
			}
			timer.Reset(app.pace)
		}

		if err := app.tick(); err != nil {
			return fmt.Errorf("tick %d: %w", app.ticks, err)
		}
	}
}

func (app *App) shutdown() {
	app.state.Store(int32(Stopped))
	for i := len(app.cleanups) - 1; i >= 0; i-- {
		app.cleanups[i]()
	}
	app.cleanups = nil
	_ = app.Logger().Sync()
}

func (app *App) tick() error {
	for _, stage := range app.stages {
		for _, system := range app.systems[stage.Name] {
			if err := app.callSystem(system); err != nil {
				return err
			}
		}
	}
	app.ticks++
	return nil
}

func (app *App) addResources(resources ...any) *App {
	for _, resource := range resources {
		resourceType := reflect.TypeOf(resource)
		if resourceType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("%s is not a pointer resource", resourceType))
		}
		if _, ok := app.resources[resourceType.Elem()]; ok {
			panic(fmt.Sprintf("%s is already in resources", resourceType))
		}

		app.resources[resourceType.Elem()] = resource
	}
	return app
}

func (app *App) hasResource(t reflect.Type) bool {
	_, ok := app.resources[t]
	return ok
}

// Resource returns the resource of type T, or nil if none was added.
func Resource[T any](app *App) *T {
	r, ok := app.resources[reflect.TypeFor[T]()]
	if !ok {
		return nil
	}
	return r.(*T)
}

var (
	typeOfCommands = reflect.TypeOf(Commands{})
	typeOfError    = reflect.TypeOf((*error)(nil)).Elem()
)

// callSystem resolves the pointer parameters of system from resources and
// calls it. A system may return a single error.
func (app *App) callSystem(system systemFn) error {
	systemType := reflect.TypeOf(system)
	systemValue := reflect.ValueOf(system)

	args := make([]reflect.Value, systemType.NumIn())

	for i := 0; i < systemType.NumIn(); i++ {
		argType := systemType.In(i)
		if argType.Kind() != reflect.Pointer {
			panic(fmt.Sprintf("system %s: parameter %d (%s) is not a pointer",
				systemName(systemValue), i, argType))
		}
		underlyingType := argType.Elem()

		if underlyingType == typeOfCommands {
			args[i] = reflect.ValueOf(&Commands{app: app})
		} else if resource, argIsResource := app.resources[underlyingType]; argIsResource {
			args[i] = reflect.ValueOf(resource)
		} else {
			msg := fmt.Sprintf("Unable to resolve System dependency.\nSystem: %s\nSystem type: %s\nDependency: %s",
				systemName(systemValue),
				fmt.Sprint(systemType),
				fmt.Sprint(argType),
			)
			panic(msg)
		}
	}

	results := systemValue.Call(args)
	if len(results) == 1 && systemType.Out(0) == typeOfError && !results[0].IsNil() {
		return fmt.Errorf("%s: %w", systemName(systemValue), results[0].Interface().(error))
	}
	return nil
}

func systemName(v reflect.Value) string {
	if f := runtime.FuncForPC(v.Pointer()); f != nil {
		return f.Name()
	}
	return "<unknown>"
}
