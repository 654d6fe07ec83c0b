package cubefield

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// CubeIndexCount is the number of indices drawn per cube: 6 faces, 2
// triangles each.
const CubeIndexCount = 36

// Renderer consumes one tick's output.
type Renderer interface {
	// UploadInstances copies data into the instance buffer at byteOffset.
	UploadInstances(data []float32, byteOffset uint64) error
	SetViewMatrix(view mgl32.Mat4)
	SetProjection(proj mgl32.Mat4)
	// DrawInstanced clears the target and draws instanceCount cubes.
	DrawInstanced(indexCount, instanceCount uint32) error
}

// RendererName identifies a concrete renderer.
type RendererName string

const (
	RendererWGPU      RendererName = "wgpu"
	RendererRecording RendererName = "recording"
)

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name RendererName
}

// ensureSingleRenderer enforces a single renderer invariant.
func ensureSingleRenderer(app *App, name RendererName) error {
	t := reflect.TypeFor[RendererTag]()
	if res, ok := app.resources[t]; ok {
		tag := res.(*RendererTag)
		if tag.Name != name {
			return fmt.Errorf("multiple renderers installed: %s and %s", tag.Name, name)
		}
		return nil
	}
	app.addResources(&RendererTag{Name: name})
	return nil
}

// RenderContext carries the active renderer to the render system.
type RenderContext struct {
	Renderer   Renderer
	IndexCount uint32
}

// RenderModule installs r as the app's renderer and schedules the render
// system. ClientModule uses it for the GPU pass; headless runs pass a
// RecordingRenderer.
type RenderModule struct {
	Name     RendererName
	Renderer Renderer
}

func (mod RenderModule) Install(app *App, cmd *Commands) error {
	if mod.Renderer == nil {
		return fmt.Errorf("render module %q: nil renderer", mod.Name)
	}
	if err := ensureSingleRenderer(app, mod.Name); err != nil {
		return err
	}
	cmd.AddResources(&RenderContext{Renderer: mod.Renderer, IndexCount: CubeIndexCount})
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)
	app.Logger().Infof("renderer selected: %s", mod.Name)
	return nil
}

func renderSystem(frame *Frame, projection *Projection, viewport *Viewport, rc *RenderContext) error {
	r := rc.Renderer
	if projection.Dirty {
		r.SetProjection(projection.Matrix)
		projection.Dirty = false
	}
	if viewport.Minimized() {
		return nil
	}
	if err := r.UploadInstances(frame.Instances, 0); err != nil {
		return fmt.Errorf("upload instances: %w", err)
	}
	r.SetViewMatrix(frame.View)
	if err := r.DrawInstanced(rc.IndexCount, frame.InstanceCount()); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	return nil
}

type DrawCall struct {
	IndexCount    uint32
	InstanceCount uint32
}

// RecordingRenderer keeps what it was given instead of drawing. It backs
// headless runs and tests.
type RecordingRenderer struct {
	mu          sync.Mutex
	instances   []float32
	view        mgl32.Mat4
	projection  mgl32.Mat4
	uploads     int
	projections int
	draws       []DrawCall
}

func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{view: mgl32.Ident4(), projection: mgl32.Ident4()}
}

func (r *RecordingRenderer) UploadInstances(data []float32, byteOffset uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if byteOffset%4 != 0 {
		return fmt.Errorf("unaligned instance offset %d", byteOffset)
	}
	start := int(byteOffset / 4)
	if need := start + len(data); need > len(r.instances) {
		r.instances = slices.Grow(r.instances, need-len(r.instances))[:need]
	}
	copy(r.instances[start:], data)
	r.uploads++
	return nil
}

func (r *RecordingRenderer) SetViewMatrix(view mgl32.Mat4) {
	r.mu.Lock()
	r.view = view
	r.mu.Unlock()
}

func (r *RecordingRenderer) SetProjection(proj mgl32.Mat4) {
	r.mu.Lock()
	r.projection = proj
	r.projections++
	r.mu.Unlock()
}

func (r *RecordingRenderer) DrawInstanced(indexCount, instanceCount uint32) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if need := int(instanceCount) * 16; need > len(r.instances) {
		return fmt.Errorf("draw of %d instances exceeds uploaded buffer of %d floats", instanceCount, len(r.instances))
	}
	r.draws = append(r.draws, DrawCall{IndexCount: indexCount, InstanceCount: instanceCount})
	return nil
}

// Instances returns a copy of the uploaded instance data.
func (r *RecordingRenderer) Instances() []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.instances)
}

func (r *RecordingRenderer) View() mgl32.Mat4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.view
}

func (r *RecordingRenderer) Projection() mgl32.Mat4 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projection
}

func (r *RecordingRenderer) Draws() []DrawCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.draws)
}

func (r *RecordingRenderer) Uploads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads
}

func (r *RecordingRenderer) ProjectionUpdates() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projections
}
