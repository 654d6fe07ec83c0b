package cubefield

import (
	"errors"
	"fmt"
	"reflect"
)

type Module interface {
	Install(app *App, cmd *Commands) error
}

type AppBuilder struct {
	app     *App
	modules []Module
}

func NewAppBuilder() *AppBuilder {
	return &AppBuilder{app: newApp()}
}

func (b *AppBuilder) UseModule(modules ...Module) *AppBuilder {
	b.modules = append(b.modules, modules...)

	return b
}

// Build installs every module in order. Install errors do not stop the
// remaining modules; they are joined and returned together.
func (b *AppBuilder) Build() (*App, error) {
	app := b.app
	commands := &Commands{app: app}

	var errs []error
	for _, module := range b.modules {
		if err := module.Install(app, commands); err != nil {
			errs = append(errs, fmt.Errorf("install %s: %w", moduleName(module), err))
		}
	}
	if len(errs) > 0 {
		// Release whatever the successful modules acquired.
		app.shutdown()
		return nil, errors.Join(errs...)
	}

	return app, nil
}

func moduleName(m Module) string {
	t := reflect.TypeOf(m)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}
