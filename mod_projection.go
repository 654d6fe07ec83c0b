package cubefield

import (
	"reflect"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/core"
)

var (
	typeOfInputQueue = reflect.TypeFor[InputQueue]()
	typeOfViewport   = reflect.TypeFor[Viewport]()
)

// Viewport is the framebuffer size in pixels. Changed is set by Resize and
// cleared once the projection has been rebuilt.
type Viewport struct {
	Width, Height int
	Changed       bool
}

func (v *Viewport) Resize(width, height int) {
	if width == v.Width && height == v.Height {
		return
	}
	v.Width, v.Height = width, height
	v.Changed = true
}

// Minimized reports a zero-area framebuffer; nothing can be drawn into it.
func (v *Viewport) Minimized() bool {
	return v.Width <= 0 || v.Height <= 0
}

type Projection struct {
	FovYDeg float32
	ZNear   float32
	ZFar    float32

	Matrix mgl32.Mat4
	// Dirty is set whenever Matrix changes and cleared by the render system
	// after handing it to the renderer.
	Dirty bool
}

type ProjectionModule struct {
	FovYDeg float32
	ZNear   float32
	ZFar    float32
	Width   int
	Height  int
}

func (mod ProjectionModule) Install(app *App, cmd *Commands) error {
	p := &Projection{
		FovYDeg: mod.FovYDeg,
		ZNear:   mod.ZNear,
		ZFar:    mod.ZFar,
	}
	if p.FovYDeg == 0 {
		p.FovYDeg = core.DefaultFovY
	}
	if p.ZNear == 0 {
		p.ZNear = core.DefaultZNear
	}
	if p.ZFar == 0 {
		p.ZFar = core.DefaultZFar
	}

	viewport := Resource[Viewport](app)
	if viewport == nil {
		viewport = &Viewport{}
		cmd.AddResources(viewport)
	}
	if viewport.Width == 0 && viewport.Height == 0 {
		viewport.Resize(mod.Width, mod.Height)
	}
	p.rebuild(viewport)
	viewport.Changed = false

	cmd.AddResources(p)
	app.UseSystem(
		System(projectionSystem).
			InStage(PostUpdate),
	)
	return nil
}

func (p *Projection) rebuild(v *Viewport) {
	p.Matrix = core.Perspective(p.FovYDeg, core.InvAspect(v.Width, v.Height), p.ZNear, p.ZFar)
	p.Dirty = true
}

func projectionSystem(viewport *Viewport, projection *Projection) {
	if !viewport.Changed {
		return
	}
	viewport.Changed = false
	if viewport.Minimized() {
		return
	}
	projection.rebuild(viewport)
}
