package cubefield

// Lifetime stops the app after a fixed number of ticks.
type Lifetime struct {
	TicksLeft uint64
}

// LifecycleModule bounds a run to Ticks ticks. Zero means unbounded and
// installs nothing.
type LifecycleModule struct {
	Ticks uint64
}

func (mod LifecycleModule) Install(app *App, cmd *Commands) error {
	if mod.Ticks == 0 {
		return nil
	}
	cmd.AddResources(&Lifetime{TicksLeft: mod.Ticks})
	app.UseSystem(
		System(lifetimeSystem).
			InStage(Finale),
	)
	return nil
}

func lifetimeSystem(lt *Lifetime, cmd *Commands) {
	if lt.TicksLeft == 0 {
		return
	}
	lt.TicksLeft--
	if lt.TicksLeft == 0 {
		cmd.Logger().Infof("tick budget spent, stopping")
		cmd.Stop()
	}
}
