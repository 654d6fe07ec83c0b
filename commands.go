package cubefield

type Commands struct {
	app *App
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

// Stop ends the run loop once the current tick finishes.
func (cmd *Commands) Stop() *Commands {
	cmd.app.Stop()
	return cmd
}

func (cmd *Commands) Logger() Logger {
	return cmd.app.Logger()
}
