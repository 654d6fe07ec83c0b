package gpu

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gekko3d/cubefield/rt/core"
	"github.com/gekko3d/cubefield/rt/shaders"
)

const (
	depthFormat = wgpu.TextureFormatDepth24Plus

	instanceStride = core.FloatsPerInstance * 4

	// cameraUniformFloats is view + proj + light_pos + params.
	cameraUniformFloats = 16 + 16 + 4 + 4
)

// Config describes the surface a CubePass draws into.
type Config struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Surface *wgpu.Surface
	Format  wgpu.TextureFormat
	Width   uint32
	Height  uint32

	ClearColor wgpu.Color
	LightPos   mgl32.Vec3
	MinShade   float32
	// InstanceCapacity is the initial instance buffer size in instances.
	InstanceCapacity uint32
}

// CubePass draws every cube instance with one indexed, instanced draw call.
type CubePass struct {
	device  *wgpu.Device
	queue   *wgpu.Queue
	surface *wgpu.Surface

	Pipeline *wgpu.RenderPipeline

	VertexBuffer   *wgpu.Buffer
	IndexBuffer    *wgpu.Buffer
	InstanceBuffer *wgpu.Buffer
	InstanceCap    uint32
	CameraBuffer   *wgpu.Buffer

	CameraBindGroup  *wgpu.BindGroup
	TextureBindGroup *wgpu.BindGroup
	texture          *wgpu.Texture
	textureView      *wgpu.TextureView
	sampler          *wgpu.Sampler

	depthTexture *wgpu.Texture
	depthView    *wgpu.TextureView

	clearColor   wgpu.Color
	camera       [cameraUniformFloats]float32
	cameraDirty  bool
	instanceSize uint64
}

func NewCubePass(cfg Config) (*CubePass, error) {
	if cfg.Device == nil || cfg.Queue == nil || cfg.Surface == nil {
		return nil, errors.New("cube pass: device, queue and surface are required")
	}
	p := &CubePass{
		device:     cfg.Device,
		queue:      cfg.Queue,
		surface:    cfg.Surface,
		clearColor: cfg.ClearColor,
	}

	pipeline, err := createCubePipeline(cfg.Device, cfg.Format)
	if err != nil {
		return nil, err
	}
	p.Pipeline = pipeline

	vertices := CubeVertices()
	vSize := uint64(len(vertices)) * uint64(unsafe.Sizeof(CubeVertex{}))
	p.VertexBuffer, err = cfg.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "CubeVertexBuffer",
		Contents: unsafe.Slice((*byte)(unsafe.Pointer(&vertices[0])), vSize),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, fmt.Errorf("vertex buffer: %w", err)
	}
	p.IndexBuffer, err = cfg.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "CubeIndexBuffer",
		Contents: wgpu.ToBytes(CubeIndices()),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		return nil, fmt.Errorf("index buffer: %w", err)
	}

	if err := p.ensureInstanceCapacity(max(cfg.InstanceCapacity, 1)); err != nil {
		return nil, err
	}

	p.CameraBuffer, err = cfg.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "CubeCameraBuffer",
		Size:  cameraUniformFloats * 4,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("camera buffer: %w", err)
	}
	p.CameraBindGroup, err = cfg.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "CubeCameraBG",
		Layout: p.Pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: p.CameraBuffer, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("camera bind group: %w", err)
	}

	p.sampler, err = cfg.Device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeRepeat,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	ident := mgl32.Ident4()
	p.SetViewMatrix(ident)
	p.SetProjection(ident)
	p.camera[32], p.camera[33], p.camera[34], p.camera[35] = cfg.LightPos[0], cfg.LightPos[1], cfg.LightPos[2], 1
	p.camera[36] = cfg.MinShade

	if err := p.Resize(cfg.Width, cfg.Height); err != nil {
		return nil, err
	}
	return p, nil
}

func createCubePipeline(device *wgpu.Device, format wgpu.TextureFormat) (*wgpu.RenderPipeline, error) {
	shaderModule, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "CubeShader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.CubeWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("cube shader: %w", err)
	}
	defer shaderModule.Release()

	instanceAttributes := make([]wgpu.VertexAttribute, 4)
	for col := range instanceAttributes {
		instanceAttributes[col] = wgpu.VertexAttribute{
			Format:         wgpu.VertexFormatFloat32x4,
			Offset:         uint64(col * 16),
			ShaderLocation: uint32(3 + col),
		}
	}

	pipeline, err := device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "CubePipeline",
		Vertex: wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: uint64(unsafe.Sizeof(CubeVertex{})),
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 20, ShaderLocation: 2},
					},
				},
				{
					ArrayStride: instanceStride,
					StepMode:    wgpu.VertexStepModeInstance,
					Attributes:  instanceAttributes,
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("cube pipeline: %w", err)
	}
	return pipeline, nil
}

func (p *CubePass) ensureInstanceCapacity(instances uint32) error {
	if p.InstanceBuffer != nil && p.InstanceCap >= instances {
		return nil
	}
	if p.InstanceBuffer != nil {
		p.InstanceBuffer.Release()
	}
	p.InstanceCap = instances + 64
	buf, err := p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "CubeInstanceBuffer",
		Size:  uint64(p.InstanceCap) * instanceStride,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		p.InstanceBuffer, p.InstanceCap = nil, 0
		return fmt.Errorf("instance buffer: %w", err)
	}
	p.InstanceBuffer = buf
	p.instanceSize = 0
	return nil
}

// UploadInstances writes packed model matrices at byteOffset, growing the
// buffer when needed. Growing discards earlier contents, so a grown buffer
// must be refilled from offset 0.
func (p *CubePass) UploadInstances(data []float32, byteOffset uint64) error {
	if len(data) == 0 {
		return nil
	}
	if byteOffset%instanceStride != 0 {
		return fmt.Errorf("instance offset %d is not a multiple of %d", byteOffset, instanceStride)
	}
	size := uint64(len(data)) * 4
	end := byteOffset + size
	if err := p.ensureInstanceCapacity(uint32((end + instanceStride - 1) / instanceStride)); err != nil {
		return err
	}
	if err := p.queue.WriteBuffer(p.InstanceBuffer, byteOffset, wgpu.ToBytes(data)); err != nil {
		return fmt.Errorf("write instances: %w", err)
	}
	p.instanceSize = max(p.instanceSize, end)
	return nil
}

func (p *CubePass) SetViewMatrix(view mgl32.Mat4) {
	copy(p.camera[0:16], view[:])
	p.cameraDirty = true
}

func (p *CubePass) SetProjection(proj mgl32.Mat4) {
	copy(p.camera[16:32], proj[:])
	p.cameraDirty = true
}

// SetTexture replaces the cube texture. levels holds tightly packed RGBA8
// texels for each mip level, largest first.
func (p *CubePass) SetTexture(width, height uint32, levels [][]byte) error {
	if len(levels) == 0 {
		return errors.New("texture has no levels")
	}
	texture, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "CubeTexture",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: uint32(len(levels)),
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}

	w, h := width, height
	for level, texels := range levels {
		if uint32(len(texels)) != w*h*4 {
			texture.Release()
			return fmt.Errorf("mip level %d: got %d bytes, want %d", level, len(texels), w*h*4)
		}
		err := p.queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  texture,
				MipLevel: uint32(level),
				Origin:   wgpu.Origin3D{},
				Aspect:   wgpu.TextureAspectAll,
			},
			texels,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  w * 4,
				RowsPerImage: h,
			},
			&wgpu.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		)
		if err != nil {
			texture.Release()
			return fmt.Errorf("write mip level %d: %w", level, err)
		}
		w, h = max(w/2, 1), max(h/2, 1)
	}

	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("texture view: %w", err)
	}
	bindGroup, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "CubeTextureBG",
		Layout: p.Pipeline.GetBindGroupLayout(1),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
		},
	})
	if err != nil {
		view.Release()
		texture.Release()
		return fmt.Errorf("texture bind group: %w", err)
	}

	p.releaseTexture()
	p.texture, p.textureView, p.TextureBindGroup = texture, view, bindGroup
	return nil
}

func (p *CubePass) releaseTexture() {
	if p.TextureBindGroup != nil {
		p.TextureBindGroup.Release()
	}
	if p.textureView != nil {
		p.textureView.Release()
	}
	if p.texture != nil {
		p.texture.Release()
	}
	p.texture, p.textureView, p.TextureBindGroup = nil, nil, nil
}

// Resize recreates the depth buffer. The surface itself is configured by the
// owner of the device.
func (p *CubePass) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	depth, err := p.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "CubeDepth",
		Size:          wgpu.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	view, err := depth.CreateView(nil)
	if err != nil {
		depth.Release()
		return fmt.Errorf("depth view: %w", err)
	}
	if p.depthView != nil {
		p.depthView.Release()
		p.depthTexture.Release()
	}
	p.depthTexture, p.depthView = depth, view
	return nil
}

// DrawInstanced clears the next surface texture and draws instanceCount
// cubes. Nothing is drawn until a texture has been set.
func (p *CubePass) DrawInstanced(indexCount, instanceCount uint32) error {
	if p.cameraDirty {
		if err := p.queue.WriteBuffer(p.CameraBuffer, 0, wgpu.ToBytes(p.camera[:])); err != nil {
			return fmt.Errorf("write camera: %w", err)
		}
		p.cameraDirty = false
	}
	if need := uint64(instanceCount) * instanceStride; need > p.instanceSize {
		return fmt.Errorf("draw of %d instances exceeds uploaded %d bytes", instanceCount, p.instanceSize)
	}

	nextTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("acquire surface texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "CubePass",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: p.clearColor,
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            p.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		},
	})
	if p.TextureBindGroup != nil && instanceCount > 0 {
		pass.SetPipeline(p.Pipeline)
		pass.SetBindGroup(0, p.CameraBindGroup, nil)
		pass.SetBindGroup(1, p.TextureBindGroup, nil)
		pass.SetVertexBuffer(0, p.VertexBuffer, 0, wgpu.WholeSize)
		pass.SetVertexBuffer(1, p.InstanceBuffer, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(p.IndexBuffer, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		pass.DrawIndexed(indexCount, instanceCount, 0, 0, 0)
	}
	if err := pass.End(); err != nil {
		return fmt.Errorf("end pass: %w", err)
	}
	pass.Release()

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()
	p.queue.Submit(cmd)
	p.surface.Present()
	return nil
}

func (p *CubePass) Release() {
	p.releaseTexture()
	if p.depthView != nil {
		p.depthView.Release()
		p.depthTexture.Release()
	}
	for _, b := range []*wgpu.Buffer{p.VertexBuffer, p.IndexBuffer, p.InstanceBuffer, p.CameraBuffer} {
		if b != nil {
			b.Release()
		}
	}
	if p.CameraBindGroup != nil {
		p.CameraBindGroup.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.Pipeline != nil {
		p.Pipeline.Release()
	}
}
