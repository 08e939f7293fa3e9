package pixelperfect

import (
	"github.com/gogpu/gputypes"

	"github.com/phanxgames/pixelperfect/render"
)

// PostProcessPipeline is the render-world resource holding everything the
// post-process pass needs that never changes after startup.
type PostProcessPipeline struct {
	Layout     *render.BindGroupLayout
	Sampler    *render.Sampler
	PipelineID render.CachedRenderPipelineID
}

// NewPostProcessPipeline creates the bind group layout and sampler and
// queues the pipeline on cache. The pipeline compiles in the background.
func NewPostProcessPipeline(d *render.Device, cache *render.PipelineCache) *PostProcessPipeline {
	layout := d.CreateBindGroupLayout("pixel_perfect_bind_group_layout",
		// screen texture
		gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		gputypes.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
		// camera settings
		gputypes.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: CameraUniformSize,
			},
		},
		gputypes.BindGroupLayoutEntry{
			Binding:    3,
			Visibility: gputypes.ShaderStageFragment,
			Buffer: &gputypes.BufferBindingLayout{
				Type:           gputypes.BufferBindingTypeUniform,
				MinBindingSize: render.ViewUniformSize,
			},
		},
	)

	sampler := d.CreateSampler(gputypes.DefaultSamplerDescriptor())

	id := cache.QueueRenderPipeline(render.RenderPipelineDescriptor{
		Label:  "pixel_perfect_pipeline",
		Layout: []*render.BindGroupLayout{layout},
		Vertex: render.FullscreenVertexState(),
		Fragment: render.FragmentState{
			Shader:     &render.Shader{Label: "pixel_perfect", Source: []byte(pixelPerfectShaderSrc)},
			EntryPoint: "Fragment",
			Targets: []gputypes.ColorTargetState{{
				Format:    render.DefaultTextureFormat,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
			Uniforms: map[uint32][]render.UniformField{
				2: cameraUniformFields,
				3: viewUniformFields,
			},
		},
		Primitive:   gputypes.DefaultPrimitiveState(),
		Multisample: gputypes.DefaultMultisampleState(),
	})

	return &PostProcessPipeline{Layout: layout, Sampler: sampler, PipelineID: id}
}
