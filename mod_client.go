package cubefield

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/gpu"
)

// ClientModule brings up the GPU on the shared window and installs the cube
// pass as the app's renderer. PlatformWindowModule must be installed first.
type ClientModule struct {
	ClearColor [4]float64
	LightPos   mgl32.Vec3
	MinShade   float32
	// Texture is an image path; empty keeps the placeholder.
	Texture string
}

// clientState tracks which texture version the GPU holds.
type clientState struct {
	gpu       *GpuState
	pass      *gpu.CubePass
	textureId AssetId
	uploaded  uint
}

func (mod ClientModule) Install(app *App, cmd *Commands) error {
	ws := Resource[WindowState](app)
	if ws == nil {
		return fmt.Errorf("client module needs a window; install PlatformWindowModule first")
	}
	assets := Resource[AssetServer](app)
	if assets == nil {
		return fmt.Errorf("client module needs AssetServerModule")
	}

	gs, err := createGpuState(ws)
	if err != nil {
		return err
	}
	app.UseCleanup(gs.release)

	scene := Resource[Scene](app)
	capacity := uint32(0)
	if scene != nil {
		capacity = uint32(scene.Len())
	}
	pass, err := gpu.NewCubePass(gpu.Config{
		Device:  gs.device,
		Queue:   gs.queue,
		Surface: gs.surface,
		Format:  gs.surfaceConfig.Format,
		Width:   gs.surfaceConfig.Width,
		Height:  gs.surfaceConfig.Height,
		ClearColor: wgpu.Color{
			R: mod.ClearColor[0], G: mod.ClearColor[1], B: mod.ClearColor[2], A: mod.ClearColor[3],
		},
		LightPos:         mod.LightPos,
		MinShade:         mod.MinShade,
		InstanceCapacity: capacity,
	})
	if err != nil {
		return err
	}
	app.UseCleanup(pass.Release)

	state := &clientState{gpu: gs, pass: pass}
	if mod.Texture != "" {
		state.textureId = assets.LoadTextureAsync(mod.Texture)
	} else {
		state.textureId = assets.CreateTexture(PlaceholderImage(), "placeholder")
	}
	// Upload the placeholder now so the first frame has something bound.
	if tex, ok := assets.Texture(state.textureId); ok {
		if err := uploadTexture(pass, tex); err != nil {
			return err
		}
		state.uploaded = tex.Version
	}
	cmd.AddResources(state)

	if err := (RenderModule{Name: RendererWGPU, Renderer: pass}).Install(app, cmd); err != nil {
		return err
	}
	app.UseSystem(
		System(surfaceResizeSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(textureUploadSystem).
			InStage(PreRender),
	)
	return nil
}

func uploadTexture(pass *gpu.CubePass, tex *TextureAsset) error {
	levels := make([][]byte, len(tex.Levels))
	for i, l := range tex.Levels {
		levels[i] = l.Texels
	}
	if err := pass.SetTexture(tex.Width(), tex.Height(), levels); err != nil {
		return fmt.Errorf("upload texture %s: %w", tex.Source, err)
	}
	return nil
}

func surfaceResizeSystem(state *clientState, viewport *Viewport) error {
	if !state.gpu.resizeSurface(viewport.Width, viewport.Height) {
		return nil
	}
	return state.pass.Resize(uint32(viewport.Width), uint32(viewport.Height))
}

func textureUploadSystem(state *clientState, assets *AssetServer, cmd *Commands) {
	tex, ok := assets.Texture(state.textureId)
	if !ok || tex.Version == state.uploaded {
		return
	}
	if err := uploadTexture(state.pass, tex); err != nil {
		cmd.Logger().Warnf("%v", err)
	}
	// Skip this version either way so a bad texture is not retried every tick.
	state.uploaded = tex.Version
}
