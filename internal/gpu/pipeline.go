package gpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// targetFormat is the color format every pipeline renders into.
const targetFormat = gputypes.TextureFormatBGRA8Unorm

// depthFormat backs the per-frame depth buffer used for draw-order
// resolution. The stencil aspect is unused (Always/Keep).
const depthFormat = gputypes.TextureFormatDepth24PlusStencil8

// pipelineSpec describes one primitive pipeline for construction.
type pipelineSpec struct {
	label  string
	source string

	// textured adds atlas texture + sampler bindings after the shared
	// globals uniform.
	textured bool

	// vertex is the vertex buffer layout; instanceVertexLayout for the
	// quad pipelines, pathVertexLayout for paths.
	vertex []gputypes.VertexBufferLayout
}

// primitivePipeline owns the GPU objects of one primitive kind: shader
// module, bind group layout, pipeline layout, and render pipeline.
// Bind groups are owned by the renderer, which knows which buffers and
// texture views to bind each frame.
type primitivePipeline struct {
	device hal.Device

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.RenderPipeline
}

// newPrimitivePipeline compiles the shader and builds the render
// pipeline with premultiplied blending, SDF-based AA (single sample),
// and a less-equal depth test for draw-order resolution.
func newPrimitivePipeline(device hal.Device, spec pipelineSpec) (*primitivePipeline, error) {
	p := &primitivePipeline{device: device}

	shader, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  spec.label + "_shader",
		Source: hal.ShaderSource{WGSL: spec.source},
	})
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", spec.label, err)
	}
	p.shader = shader

	entries := []gputypes.BindGroupLayoutEntry{
		{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		},
	}
	if spec.textured {
		entries = append(entries,
			gputypes.BindGroupLayoutEntry{
				Binding:    1,
				Visibility: gputypes.ShaderStageFragment,
				Texture: &gputypes.TextureBindingLayout{
					SampleType:    gputypes.TextureSampleTypeFloat,
					ViewDimension: gputypes.TextureViewDimension2D,
				},
			},
			gputypes.BindGroupLayoutEntry{
				Binding:    2,
				Visibility: gputypes.ShaderStageFragment,
				Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
			},
		)
	}

	bindLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   spec.label + "_bind_layout",
		Entries: entries,
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s bind layout: %w", spec.label, err)
	}
	p.bindLayout = bindLayout

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            spec.label + "_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{bindLayout},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s pipeline layout: %w", spec.label, err)
	}
	p.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  spec.label + "_pipeline",
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    spec.vertex,
		},
		Fragment: &hal.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    targetFormat,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		DepthStencil: &hal.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: true,
			DepthCompare:      gputypes.CompareFunctionLessEqual,
			StencilFront: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilBack: hal.StencilFaceState{
				Compare:     gputypes.CompareFunctionAlways,
				FailOp:      hal.StencilOperationKeep,
				DepthFailOp: hal.StencilOperationKeep,
				PassOp:      hal.StencilOperationKeep,
			},
			StencilReadMask:  0x00,
			StencilWriteMask: 0x00,
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		// Edge AA comes from the SDF fragment paths, not MSAA.
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		p.destroy()
		return nil, fmt.Errorf("create %s pipeline: %w", spec.label, err)
	}
	p.pipeline = pipeline

	return p, nil
}

// destroy releases all pipeline resources in reverse creation order.
// Safe to call on a partially constructed pipeline.
func (p *primitivePipeline) destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.bindLayout != nil {
		p.device.DestroyBindGroupLayout(p.bindLayout)
		p.bindLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// instanceVertexLayout is the shared per-instance layout of the quad
// pipelines. Matches the Instance struct in the WGSL sources.
func instanceVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: instanceStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},  // bounds
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: 1}, // color / uv
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 2}, // aux color
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: 3}, // params
				{Format: gputypes.VertexFormatFloat32x4, Offset: 64, ShaderLocation: 4}, // clip bounds
				{Format: gputypes.VertexFormatFloat32x4, Offset: 80, ShaderLocation: 5}, // transform a,b,c,d
				{Format: gputypes.VertexFormatFloat32x2, Offset: 96, ShaderLocation: 6}, // transform tx,ty
			},
		},
	}
}

// pathVertexLayout is the per-vertex layout of the path pipeline.
func pathVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: pathVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x4, Offset: 8, ShaderLocation: 1},  // color
				{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2}, // depth, clip radius
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 3}, // clip bounds
			},
		},
	}
}
