package scene

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/verdant-labs/groveview/common"
	"github.com/verdant-labs/groveview/engine/camera"
	"github.com/verdant-labs/groveview/engine/hud"
	"github.com/verdant-labs/groveview/engine/light"
	"github.com/verdant-labs/groveview/engine/loader"
	"github.com/verdant-labs/groveview/engine/model"
	"github.com/verdant-labs/groveview/engine/renderer"
	"github.com/verdant-labs/groveview/engine/renderer/bind_group_provider"
	"github.com/verdant-labs/groveview/engine/renderer/pipeline"
	"github.com/verdant-labs/groveview/engine/renderer/shader"
	"github.com/verdant-labs/groveview/engine/renderer/shaders"
	"github.com/verdant-labs/groveview/level"
)

// Pipeline cache keys for the passes the scene registers with its renderer.
const (
	pipelineKeyLit    = "lit"
	pipelineKeyLabel  = "label"
	pipelineKeyHUD    = "hud"
	pipelineKeyShadow = "shadow_depth"
)

// Scenery tuning constants. Label textures are rasterized at a fixed pixel
// density and mapped to world units, so longer stage names produce wider quads
// at the same text height.
const (
	groundHalfExtent   = 30.0
	labelPixelsPerUnit = 96.0
	labelClearance     = 0.6
	labelRasterScale   = 2
	labelRasterPad     = 6
)

var (
	groundColor    = [4]float32{0.33, 0.38, 0.30, 1}
	labelTextColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	labelBackColor = color.RGBA{A: 0xA0}
)

// assetArrival carries the outcome of one asynchronous stage asset fetch from
// the worker pool back to the render goroutine.
type assetArrival struct {
	index int
	stage level.StageDescriptor
	model model.Model
	err   error
}

// nodePart is one drawable mesh of a scene node: its vertex/index buffers plus
// the texture bind group sampled by the fragment stage.
type nodePart struct {
	name       string
	meshBGP    bind_group_provider.BindGroupProvider
	textureBGP bind_group_provider.BindGroupProvider
}

// sceneNode is one placed renderable in the 3D scene. A node owns a single
// model uniform buffer shared between the forward pass and the shadow pass,
// and one or more mesh parts drawn with that transform.
type sceneNode struct {
	name       string
	stageIndex int

	// inWorldFrame marks nodes whose x/y position is shifted by the transition
	// driver every frame. The ground plane stays outside the world frame so it
	// always sits under whichever stage is centered.
	inWorldFrame bool

	// billboard nodes ignore rotationY and yaw toward the camera each frame.
	billboard bool

	pipelineKey string

	position  [3]float32
	rotationY float32
	scale     float32

	castShadows    bool
	receiveShadows bool

	// modelBGP owns the model uniform buffer and the forward-pass bind group.
	// shadowModelBGP wraps the same buffer in a bind group matching the shadow
	// pipeline's vertex-only layout.
	modelBGP       bind_group_provider.BindGroupProvider
	shadowModelBGP bind_group_provider.BindGroupProvider

	parts []*nodePart
}

// release frees the node's GPU resources. The shared fallback texture provider
// is skipped; the scene owns and releases it once.
func (n *sceneNode) release(shared bind_group_provider.BindGroupProvider) {
	for _, part := range n.parts {
		if part.meshBGP != nil {
			part.meshBGP.Release()
		}
		if part.textureBGP != nil && part.textureBGP != shared {
			part.textureBGP.Release()
		}
	}
	n.parts = nil
	if n.shadowModelBGP != nil {
		// The shadow provider borrows the model uniform buffer from modelBGP.
		// Detach it so only the owning provider releases the buffer.
		n.shadowModelBGP.SetBuffer(0, nil)
		n.shadowModelBGP.Release()
		n.shadowModelBGP = nil
	}
	if n.modelBGP != nil {
		n.modelBGP.Release()
		n.modelBGP = nil
	}
}

// hudElementGPU holds the GPU-side resources for one visible HUD element. The
// whole set is rebuilt whenever the overlay's revision changes, which only
// happens on navigation, resize, and load-state transitions.
type hudElementGPU struct {
	key        string
	meshBGP    bind_group_provider.BindGroupProvider
	textureBGP bind_group_provider.BindGroupProvider
}

// Scene owns everything the viewer renders: the stage nodes laid out from the
// registry, the ground plane, lights, the shadow pass resources, and the GPU
// side of the HUD overlay. It connects navigation (via the transition driver)
// to the per-frame world-frame offset that keeps the current stage centered at
// the origin.
//
// Threading: Update runs on the engine's tick goroutine; PrepareFrame,
// PrepareShadows, and DrawCalls run on the render goroutine. All other methods
// are safe to call from input callbacks on the main thread.
type Scene interface {
	// Name returns the scene's identifier used in log output.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active reports whether the engine should update and render this scene.
	//
	// Returns:
	//   - bool: true if the scene is active
	Active() bool

	// SetActive sets whether the engine should update and render this scene.
	//
	// Parameters:
	//   - active: the new active state
	SetActive(active bool)

	// Camera returns the camera this scene renders through.
	//
	// Returns:
	//   - camera.Camera: the scene camera
	Camera() camera.Camera

	// Renderer returns the renderer this scene draws with.
	//
	// Returns:
	//   - renderer.Renderer: the renderer
	Renderer() renderer.Renderer

	// Navigator returns the stage navigator driving this scene.
	//
	// Returns:
	//   - level.Navigator: the navigator
	Navigator() level.Navigator

	// TransitionDriver returns the driver animating the world-frame offset.
	//
	// Returns:
	//   - level.TransitionDriver: the transition driver
	TransitionDriver() level.TransitionDriver

	// Hud returns the overlay model rendered on top of the 3D scene.
	//
	// Returns:
	//   - hud.Hud: the overlay
	Hud() hud.Hud

	// AddLight adds a light to the scene. Nil lights are ignored.
	//
	// Parameters:
	//   - l: the light to add
	AddLight(l light.Light)

	// Lights returns a snapshot copy of the scene's lights.
	//
	// Returns:
	//   - []light.Light: the lights
	Lights() []light.Light

	// Update advances time-driven scene state. It runs on the engine's tick
	// goroutine at the configured tick rate.
	//
	// Parameters:
	//   - deltaTime: seconds elapsed since the previous tick
	Update(deltaTime float32)

	// PrepareFrame readies GPU state for the next frame: it integrates
	// completed asset fetches, samples the transition driver for the world
	// frame offset, writes the frame and per-node model uniforms, and syncs
	// the HUD's GPU resources with the overlay model. Runs on the render
	// goroutine before DrawCalls.
	PrepareFrame()

	// PrepareShadows renders the shadow depth map for the frame. It selects
	// the first enabled shadow-casting directional light, writes the light's
	// view-projection uniforms, and encodes a depth-only pass over every
	// shadow-casting node. A scene with no such light skips the pass. Runs on
	// the render goroutine between PrepareFrame and the forward pass.
	PrepareShadows()

	// DrawCalls encodes the forward pass: lit scenery first, then the
	// alpha-blended stage labels, then the HUD overlay in pixel space. Must be
	// called between the renderer's BeginFrame and EndFrame.
	//
	// Returns:
	//   - error: the first draw submission error, or nil
	DrawCalls() error

	// Resize updates the camera aspect ratio and re-lays-out the HUD for a
	// new surface size. Zero or negative dimensions are ignored.
	//
	// Parameters:
	//   - width: new surface width in pixels
	//   - height: new surface height in pixels
	Resize(width, height int)

	// HandleClick maps a cursor position to a HUD action and performs it:
	// the PREV button retreats the navigator, the NEXT button advances it.
	//
	// Parameters:
	//   - x: cursor x in surface pixels
	//   - y: cursor y in surface pixels
	//
	// Returns:
	//   - bool: true if a HUD element consumed the click
	HandleClick(x, y float64) bool

	// Release frees every GPU resource the scene owns and detaches it from
	// the navigator. The scene must not be used afterwards.
	Release()
}

type scene struct {
	mu   *sync.RWMutex
	name string

	active bool

	cam     camera.Camera
	r       renderer.Renderer
	nav     level.Navigator
	ldr     loader.Loader
	overlay hud.Hud
	driver  level.TransitionDriver

	lights []light.Light

	nodes []*sceneNode

	// Shadow mapping parameters, adjustable through builder options.
	shadowHalfExtent      float32
	shadowNear            float32
	shadowFar             float32
	shadowBias            float32
	shadowNormalBiasScale float32
	shadowMapResolution   int

	shadowDepthView    *wgpu.TextureView
	shadowDepthTexture *wgpu.Texture

	// Bind group layout descriptors captured at pipeline registration time so
	// node and HUD providers can be initialized against the merged layouts the
	// backend built.
	modelGroupDesc   wgpu.BindGroupLayoutDescriptor
	textureGroupDesc wgpu.BindGroupLayoutDescriptor
	shadowModelDesc  wgpu.BindGroupLayoutDescriptor
	hudTextureDesc   wgpu.BindGroupLayoutDescriptor

	// frameBGP carries the per-frame camera/light uniforms plus the shadow map
	// texture and comparison sampler. shadowPassBGP carries the light's
	// view-projection for the depth-only pass. hudScreenBGP carries the
	// surface size for the overlay pass.
	frameBGP      bind_group_provider.BindGroupProvider
	shadowPassBGP bind_group_provider.BindGroupProvider
	hudScreenBGP  bind_group_provider.BindGroupProvider

	// whiteTexBGP is a shared 1x1 white texture bound for meshes that have no
	// texture of their own, so one pipeline serves both textured and
	// vertex-colored geometry.
	whiteTexBGP bind_group_provider.BindGroupProvider

	// transitionDuration seeds the transition driver at construction.
	transitionDuration float32

	// fetchWorkers bounds the worker pool that resolves external stage assets.
	fetchWorkers  int
	fetchPool     worker.DynamicWorkerPool
	arrivals      chan assetArrival
	pendingAssets int

	hudRevision uint64
	hudGPU      []*hudElementGPU

	unsubscribe func()

	writePool []bind_group_provider.BufferWrite
	drawPool  []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// variantBuilders maps each stage variant to the method that builds its scene
// nodes. Dispatch stays closed over the tag set; adding a variant means
// registering a builder here.
var variantBuilders = map[level.VariantTag]func(s *scene, index int, stage level.StageDescriptor) error{
	level.VariantPlaceholder:   (*scene).buildPlaceholderStage,
	level.VariantExternalAsset: (*scene).buildExternalAssetStage,
}

// NewScene constructs a scene from a stage registry: it registers the render
// and shadow pipelines, creates the shadow map, builds the ground plane and
// one node group per stage, kicks off asynchronous fetches for external-asset
// stages, and subscribes the HUD info panel to navigation changes.
//
// Parameters:
//   - name: scene identifier used in log output
//   - cam: the camera to render through (must be non-nil)
//   - r: the renderer to draw with (must be non-nil)
//   - nav: the navigator over the stage registry (must be non-nil)
//   - ldr: the loader used to resolve external stage assets (must be non-nil)
//   - overlay: the HUD overlay model (must be non-nil)
//   - options: optional configuration (see scene_builder.go)
//
// Returns:
//   - Scene: the constructed scene
//
// Panics if any required dependency is nil or if GPU resource creation fails;
// a scene that cannot render is an authoring error, not a runtime condition.
func NewScene(name string, cam camera.Camera, r renderer.Renderer, nav level.Navigator, ldr loader.Loader, overlay hud.Hud, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}
	if nav == nil {
		panic("scene: NewScene requires a non-nil Navigator")
	}
	if ldr == nil {
		panic("scene: NewScene requires a non-nil Loader")
	}
	if overlay == nil {
		panic("scene: NewScene requires a non-nil Hud")
	}

	s := &scene{
		mu:      &sync.RWMutex{},
		name:    name,
		active:  true,
		cam:     cam,
		r:       r,
		nav:     nav,
		ldr:     ldr,
		overlay: overlay,

		shadowHalfExtent:      40.0,
		shadowNear:            0.1,
		shadowFar:             200.0,
		shadowBias:            0.001,
		shadowNormalBiasScale: 3.0,
		shadowMapResolution:   2048,

		transitionDuration: 1.5,
		fetchWorkers:       2,

		hudRevision: ^uint64(0),

		// Draw submission consumes the bind groups synchronously, so one
		// 3-slot scratch slice serves every draw in a frame.
		drawPool: make([]bind_group_provider.BindGroupProvider, 0, 3),
	}
	for _, opt := range options {
		opt(s)
	}

	s.driver = level.NewTransitionDriver(nav, level.WithDuration(s.transitionDuration))
	s.fetchPool = worker.NewDynamicWorkerPool(s.fetchWorkers, 16, 5*time.Second)
	s.arrivals = make(chan assetArrival, nav.Registry().Len())

	if err := s.initPipelines(); err != nil {
		panic(fmt.Sprintf("scene %q: pipeline registration failed: %v", name, err))
	}
	if err := s.initSharedBindGroups(); err != nil {
		panic(fmt.Sprintf("scene %q: bind group init failed: %v", name, err))
	}
	if err := s.buildGround(); err != nil {
		panic(fmt.Sprintf("scene %q: ground plane init failed: %v", name, err))
	}

	for i, stage := range nav.Registry().Stages() {
		build, ok := variantBuilders[stage.Variant]
		if !ok {
			panic(fmt.Sprintf("scene %q: stage %d (%s) has unknown variant %v", name, i, stage.Name, stage.Variant))
		}
		if err := build(s, i, stage); err != nil {
			panic(fmt.Sprintf("scene %q: stage %d (%s) init failed: %v", name, i, stage.Name, err))
		}
	}

	current := nav.Current()
	overlay.SetStageInfo(current.Name, current.Description)
	s.unsubscribe = nav.Subscribe(func(_ int, stage level.StageDescriptor) {
		s.overlay.SetStageInfo(stage.Name, stage.Description)
	})

	return s
}

// initPipelines compiles the scene's shaders, registers the three forward
// pipelines and the shadow pipeline, and captures the merged bind group layout
// descriptors that per-node providers are initialized against.
func (s *scene) initPipelines() error {
	litVS := shader.NewShader("lit_vs", shader.ShaderTypeVertex, shaders.Lit)
	litFS := shader.NewShader("lit_fs", shader.ShaderTypeFragment, shaders.Lit)
	labelVS := shader.NewShader("label_vs", shader.ShaderTypeVertex, shaders.Label)
	labelFS := shader.NewShader("label_fs", shader.ShaderTypeFragment, shaders.Label)
	hudVS := shader.NewShader("hud_vs", shader.ShaderTypeVertex, shaders.HUD)
	hudFS := shader.NewShader("hud_fs", shader.ShaderTypeFragment, shaders.HUD)
	shadowVS := shader.NewShader("shadow_vs", shader.ShaderTypeVertex, shaders.Shadow)

	err := s.r.RegisterPipelines(
		pipeline.NewPipeline(pipelineKeyLit,
			pipeline.WithVertexShader(litVS),
			pipeline.WithFragmentShader(litFS),
			pipeline.WithCullMode(wgpu.CullModeBack),
		),
		pipeline.NewPipeline(pipelineKeyLabel,
			pipeline.WithVertexShader(labelVS),
			pipeline.WithFragmentShader(labelFS),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthWriteEnabled(false),
		),
		pipeline.NewPipeline(pipelineKeyHUD,
			pipeline.WithVertexShader(hudVS),
			pipeline.WithFragmentShader(hudFS),
			pipeline.WithBlendEnabled(true),
			pipeline.WithDepthTestEnabled(false),
			pipeline.WithDepthWriteEnabled(false),
		),
	)
	if err != nil {
		return err
	}

	// Front-face culling plus a slope-scaled depth bias keeps the closed stage
	// geometry from self-shadowing.
	err = s.r.RegisterShadowPipeline(pipeline.NewPipeline(pipelineKeyShadow,
		pipeline.WithVertexShader(shadowVS),
		pipeline.WithCullMode(wgpu.CullModeFront),
		pipeline.WithDepthBias(2, 1.5),
	))
	if err != nil {
		return err
	}

	s.modelGroupDesc = mergedGroupDescriptor(litVS, litFS, 1)
	s.textureGroupDesc = mergedGroupDescriptor(litVS, litFS, 2)
	s.hudTextureDesc = mergedGroupDescriptor(hudVS, hudFS, 1)
	s.shadowModelDesc = shadowVS.BindGroupLayoutDescriptor(1)

	// The frame group carries the shadow map and comparison sampler, so the
	// shadow resources have to exist before the frame bind group does.
	view, tex, err := s.r.CreateShadowDepthTexture(s.shadowMapResolution, s.shadowMapResolution)
	if err != nil {
		return err
	}
	s.shadowDepthView = view
	s.shadowDepthTexture = tex

	sampler, err := s.r.CreateComparisonSampler()
	if err != nil {
		return err
	}

	s.frameBGP = bind_group_provider.NewBindGroupProvider("frame data")
	s.frameBGP.SetTextureView(2, view)
	s.frameBGP.SetSampler(3, sampler)
	return s.r.InitBindGroup(s.frameBGP, mergedGroupDescriptor(litVS, litFS, 0), nil, nil)
}

// initSharedBindGroups creates the providers shared across draws: the shadow
// pass uniform, the HUD screen uniform, and the 1x1 white fallback texture.
func (s *scene) initSharedBindGroups() error {
	shadowVS := shader.NewShader("shadow_pass_vs", shader.ShaderTypeVertex, shaders.Shadow)
	s.shadowPassBGP = bind_group_provider.NewBindGroupProvider("shadow pass")
	if err := s.r.InitBindGroup(s.shadowPassBGP, shadowVS.BindGroupLayoutDescriptor(0), nil, nil); err != nil {
		return err
	}

	hudVS := shader.NewShader("hud_screen_vs", shader.ShaderTypeVertex, shaders.HUD)
	hudFS := shader.NewShader("hud_screen_fs", shader.ShaderTypeFragment, shaders.HUD)
	s.hudScreenBGP = bind_group_provider.NewBindGroupProvider("hud screen")
	if err := s.r.InitBindGroup(s.hudScreenBGP, mergedGroupDescriptor(hudVS, hudFS, 0), nil, nil); err != nil {
		return err
	}

	s.whiteTexBGP = bind_group_provider.NewBindGroupProvider("white texture")
	white := common.TextureStagingData{Pixels: []byte{0xFF, 0xFF, 0xFF, 0xFF}, Width: 1, Height: 1}
	if err := s.r.InitTextureView(s.whiteTexBGP, 0, white); err != nil {
		return err
	}
	if err := s.r.InitSampler(s.whiteTexBGP, 1, clampSampler()); err != nil {
		return err
	}
	return s.r.InitBindGroup(s.whiteTexBGP, s.textureGroupDesc, nil, nil)
}

// buildGround adds the shared ground plane. It sits outside the world frame at
// the origin, so it reads as the terrain under whichever stage is centered. It
// receives shadows but casts none.
func (s *scene) buildGround() error {
	_, err := s.addModelNode(model.NewGroundPlane(groundHalfExtent, groundColor), nodeSpec{
		name:           "ground",
		stageIndex:     -1,
		pipelineKey:    pipelineKeyLit,
		scale:          1,
		receiveShadows: true,
	})
	return err
}

// buildPlaceholderStage adds the colored box and floating name label for a
// placeholder stage. The box is lifted by half its height so it rests on the
// ground plane when the stage is centered.
func (s *scene) buildPlaceholderStage(index int, stage level.StageDescriptor) error {
	params := stage.Placeholder
	if params == nil {
		return fmt.Errorf("placeholder stage has no parameters")
	}

	box := model.NewBox(params.Size, [4]float32{params.Color[0], params.Color[1], params.Color[2], 1})
	_, err := s.addModelNode(box, nodeSpec{
		name:         fmt.Sprintf("stage %d box", index),
		stageIndex:   index,
		inWorldFrame: true,
		pipelineKey:  pipelineKeyLit,
		position: [3]float32{
			stage.Position[0],
			stage.Position[1] + params.Size[1]/2,
			stage.Position[2],
		},
		scale:          1,
		castShadows:    true,
		receiveShadows: true,
	})
	if err != nil {
		return err
	}
	return s.addStageLabel(index, stage, params.Size[1]+labelClearance)
}

// buildExternalAssetStage schedules the stage's remote model fetch on the
// worker pool. The stage renders nothing until the fetch resolves; the result
// is integrated on the render goroutine by PrepareFrame.
func (s *scene) buildExternalAssetStage(index int, stage level.StageDescriptor) error {
	if stage.Asset == nil {
		return fmt.Errorf("external-asset stage has no parameters")
	}

	s.pendingAssets++
	s.overlay.SetLoading(true)

	s.fetchPool.SubmitTask(worker.Task{
		ID: index,
		Do: func() (any, error) {
			m, err := s.ldr.Load(stage.Asset.URL)
			s.arrivals <- assetArrival{index: index, stage: stage, model: m, err: err}
			return nil, nil
		},
	})
	return nil
}

// addStageLabel adds the billboard quad showing a stage's name, floating
// clearanceY above the stage anchor.
func (s *scene) addStageLabel(index int, stage level.StageDescriptor, clearanceY float32) error {
	tex := hud.RasterizeLine(stage.Name, labelRasterScale, labelTextColor, labelBackColor, labelRasterPad)
	w := float32(tex.Width) / labelPixelsPerUnit
	h := float32(tex.Height) / labelPixelsPerUnit

	_, err := s.addModelNode(model.NewLabelQuad(w, h, tex), nodeSpec{
		name:         fmt.Sprintf("stage %d label", index),
		stageIndex:   index,
		inWorldFrame: true,
		billboard:    true,
		pipelineKey:  pipelineKeyLabel,
		position: [3]float32{
			stage.Position[0],
			stage.Position[1] + clearanceY + h/2,
			stage.Position[2],
		},
		scale: 1,
	})
	return err
}

// nodeSpec collects the placement and draw parameters for addModelNode.
type nodeSpec struct {
	name           string
	stageIndex     int
	inWorldFrame   bool
	billboard      bool
	pipelineKey    string
	position       [3]float32
	rotationY      float32
	scale          float32
	castShadows    bool
	receiveShadows bool
}

// addModelNode uploads a model's meshes and creates the node's uniform and
// bind groups. The shadow-pass provider shares the forward pass's model
// uniform buffer so both passes see the same transform.
func (s *scene) addModelNode(mdl model.Model, spec nodeSpec) (*sceneNode, error) {
	node := &sceneNode{
		name:           spec.name,
		stageIndex:     spec.stageIndex,
		inWorldFrame:   spec.inWorldFrame,
		billboard:      spec.billboard,
		pipelineKey:    spec.pipelineKey,
		position:       spec.position,
		rotationY:      spec.rotationY,
		scale:          spec.scale,
		castShadows:    spec.castShadows,
		receiveShadows: spec.receiveShadows,
	}

	node.modelBGP = bind_group_provider.NewBindGroupProvider(spec.name + " model")
	if err := s.r.InitBindGroup(node.modelBGP, s.modelGroupDesc, nil, nil); err != nil {
		return nil, fmt.Errorf("model bind group: %w", err)
	}

	node.shadowModelBGP = bind_group_provider.NewBindGroupProvider(spec.name + " shadow model")
	node.shadowModelBGP.SetBuffer(0, node.modelBGP.Buffer(0))
	if err := s.r.InitBindGroup(node.shadowModelBGP, s.shadowModelDesc, nil, nil); err != nil {
		node.release(s.whiteTexBGP)
		return nil, fmt.Errorf("shadow model bind group: %w", err)
	}

	for _, mesh := range mdl.Meshes() {
		part := &nodePart{name: spec.name + " " + mesh.Name}

		part.meshBGP = bind_group_provider.NewBindGroupProvider(part.name)
		if err := s.r.InitMeshBuffers(part.meshBGP, mesh.VertexBytes(), mesh.IndexBytes(), len(mesh.Indices)); err != nil {
			node.release(s.whiteTexBGP)
			return nil, fmt.Errorf("mesh %s: %w", mesh.Name, err)
		}

		part.textureBGP = s.whiteTexBGP
		if mesh.Texture != nil {
			texBGP := bind_group_provider.NewBindGroupProvider(part.name + " texture")
			if err := s.r.InitTextureView(texBGP, 0, *mesh.Texture); err != nil {
				node.release(s.whiteTexBGP)
				return nil, fmt.Errorf("mesh %s texture: %w", mesh.Name, err)
			}
			if err := s.r.InitSampler(texBGP, 1, clampSampler()); err != nil {
				texBGP.Release()
				node.release(s.whiteTexBGP)
				return nil, fmt.Errorf("mesh %s sampler: %w", mesh.Name, err)
			}
			if err := s.r.InitBindGroup(texBGP, s.textureGroupDesc, nil, nil); err != nil {
				texBGP.Release()
				node.release(s.whiteTexBGP)
				return nil, fmt.Errorf("mesh %s texture bind group: %w", mesh.Name, err)
			}
			part.textureBGP = texBGP
		}

		node.parts = append(node.parts, part)
	}

	s.nodes = append(s.nodes, node)
	return node, nil
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) Navigator() level.Navigator {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nav
}

func (s *scene) TransitionDriver() level.TransitionDriver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.driver
}

func (s *scene) Hud() hud.Hud {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlay
}

func (s *scene) AddLight(l light.Light) {
	if l == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, l)
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]light.Light, len(s.lights))
	copy(out, s.lights)
	return out
}

func (s *scene) Update(deltaTime float32) {
	s.driver.Update(deltaTime)
}

func (s *scene) PrepareFrame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.r == nil {
		return
	}

	s.integrateArrivals()

	s.cam.Update()
	var camX, camY, camZ float32
	if ctrl := s.cam.Controller(); ctrl != nil {
		camX, camY, camZ = ctrl.Position()
	}

	frame := GPUFrameData{
		ViewProj:       s.cam.ViewProjectionMatrix(),
		CameraPosition: [3]float32{camX, camY, camZ},
		AmbientColor:   light.AccumulateAmbient(s.lights),
	}
	if key := light.SelectKeyLight(s.lights); key != nil {
		frame.LightDirection = key.Direction()
		frame.LightColor = key.Color()
		frame.LightIntensity = key.Intensity()
	}

	writes := s.writePool[:0]
	writes = append(writes, bind_group_provider.BufferWrite{Provider: s.frameBGP, Binding: 0, Data: frame.Marshal()})

	worldX, worldY := s.driver.Position()
	for _, node := range s.nodes {
		pos := node.position
		if node.inWorldFrame {
			pos[0] += worldX
			pos[1] += worldY
		}
		yaw := node.rotationY
		if node.billboard {
			yaw = float32(math.Atan2(float64(camX-pos[0]), float64(camZ-pos[2])))
		}

		var data GPUModelData
		common.BuildModelMatrix(data.Model[:], pos[0], pos[1], pos[2], 0, yaw, 0, node.scale, node.scale, node.scale)
		if node.receiveShadows {
			data.Params[0] = 1
		}
		writes = append(writes, bind_group_provider.BufferWrite{Provider: node.modelBGP, Binding: 0, Data: data.Marshal()})
	}

	writes = s.syncHudElements(writes)

	s.r.WriteBuffers(writes)
	s.writePool = writes[:0]
}

// integrateArrivals drains completed asset fetches into scene nodes. A failed
// fetch is logged once and its stage renders nothing from then on.
func (s *scene) integrateArrivals() {
	for {
		select {
		case arrival := <-s.arrivals:
			s.pendingAssets--
			if arrival.err != nil {
				log.Printf("scene %q: stage %d (%s): asset fetch failed, stage stays empty: %v", s.name, arrival.index, arrival.stage.Name, arrival.err)
			} else if err := s.addAssetNodes(arrival.index, arrival.stage, arrival.model); err != nil {
				log.Printf("scene %q: stage %d (%s): asset upload failed, stage stays empty: %v", s.name, arrival.index, arrival.stage.Name, err)
			}
			if s.pendingAssets <= 0 {
				s.overlay.SetLoading(false)
			}
		default:
			return
		}
	}
}

// addAssetNodes places a fetched external asset at its stage anchor with the
// configured per-instance offset, rotation, and scale.
func (s *scene) addAssetNodes(index int, stage level.StageDescriptor, mdl model.Model) error {
	params := stage.Asset
	_, err := s.addModelNode(mdl, nodeSpec{
		name:         fmt.Sprintf("stage %d asset %s", index, mdl.Name()),
		stageIndex:   index,
		inWorldFrame: true,
		pipelineKey:  pipelineKeyLit,
		position: [3]float32{
			stage.Position[0] + params.Offset[0],
			stage.Position[1] + params.Offset[1],
			stage.Position[2] + params.Offset[2],
		},
		rotationY:      params.RotationY * math.Pi / 180,
		scale:          params.Scale,
		castShadows:    true,
		receiveShadows: true,
	})
	return err
}

// syncHudElements rebuilds the HUD's GPU resources when the overlay revision
// changes and appends the screen uniform write. Rebuilding wholesale is fine
// here: revisions only move on navigation, resize, and load-state changes,
// and element textures change size when they change at all.
func (s *scene) syncHudElements(writes []bind_group_provider.BufferWrite) []bind_group_provider.BufferWrite {
	elements, revision := s.overlay.Snapshot()
	if revision == s.hudRevision {
		return writes
	}
	s.hudRevision = revision

	for _, elem := range s.hudGPU {
		elem.meshBGP.Release()
		elem.textureBGP.Release()
	}
	s.hudGPU = s.hudGPU[:0]

	for i := range elements {
		element := &elements[i]
		if !element.Visible || element.Texture == nil {
			continue
		}

		gpuElem := &hudElementGPU{key: element.Key}
		gpuElem.meshBGP = bind_group_provider.NewBindGroupProvider(element.Key)
		if err := s.r.InitMeshBuffers(gpuElem.meshBGP, element.VertexBytes(), element.IndexBytes(), 6); err != nil {
			log.Printf("scene %q: hud element %s: mesh init failed: %v", s.name, element.Key, err)
			continue
		}
		gpuElem.textureBGP = bind_group_provider.NewBindGroupProvider(element.Key + " texture")
		if err := s.r.InitTextureView(gpuElem.textureBGP, 0, *element.Texture); err != nil {
			log.Printf("scene %q: hud element %s: texture init failed: %v", s.name, element.Key, err)
			gpuElem.meshBGP.Release()
			continue
		}
		if err := s.r.InitSampler(gpuElem.textureBGP, 1, clampSampler()); err != nil {
			log.Printf("scene %q: hud element %s: sampler init failed: %v", s.name, element.Key, err)
			gpuElem.meshBGP.Release()
			gpuElem.textureBGP.Release()
			continue
		}
		if err := s.r.InitBindGroup(gpuElem.textureBGP, s.hudTextureDesc, nil, nil); err != nil {
			log.Printf("scene %q: hud element %s: bind group init failed: %v", s.name, element.Key, err)
			gpuElem.meshBGP.Release()
			gpuElem.textureBGP.Release()
			continue
		}

		s.hudGPU = append(s.hudGPU, gpuElem)
	}

	return append(writes, bind_group_provider.BufferWrite{Provider: s.hudScreenBGP, Binding: 0, Data: s.overlay.ScreenData()})
}

func (s *scene) PrepareShadows() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.r == nil || s.shadowDepthView == nil {
		return
	}

	var shadowLight light.Light
	for _, l := range s.lights {
		if l.Enabled() && l.CastsShadows() && l.Type() == light.LightTypeDirectional {
			shadowLight = l
			break
		}
	}
	if shadowLight == nil {
		return
	}

	// Center the shadow frustum on the camera target so the map follows the
	// viewer's focus as the world frame shifts.
	var centerX, centerY, centerZ float32
	if ctrl := s.cam.Controller(); ctrl != nil {
		centerX, centerY, centerZ = ctrl.Target()
	}

	texel := 1.0 / float32(s.shadowMapResolution)
	shadowData := light.GPUShadowData{
		TexelSize: [2]float32{texel, texel},
		Bias:      s.shadowBias,
	}
	shadowData.ComputeDirectionalLightVP(shadowLight.Direction(), centerX, centerY, centerZ, s.shadowHalfExtent, s.shadowNear, s.shadowFar)
	shadowData.ComputeNormalBias(s.shadowHalfExtent, s.shadowNormalBiasScale, s.shadowMapResolution)

	shadowUniform := light.GPUShadowUniform{LightVP: shadowData.LightVP}
	s.r.WriteBuffers([]bind_group_provider.BufferWrite{
		{Provider: s.frameBGP, Binding: 1, Data: shadowData.Marshal()},
		{Provider: s.shadowPassBGP, Binding: 0, Data: shadowUniform.Marshal()},
	})

	if err := s.r.BeginShadowFrame(); err != nil {
		log.Printf("scene %q: shadow frame skipped: %v", s.name, err)
		return
	}
	s.r.BeginShadowPass(s.shadowDepthView)
	groups := append(s.drawPool[:0], s.shadowPassBGP, nil)
	for _, node := range s.nodes {
		if !node.castShadows {
			continue
		}
		groups[1] = node.shadowModelBGP
		for _, part := range node.parts {
			if err := s.r.ShadowDrawCall(pipelineKeyShadow, part.meshBGP, 1, groups); err != nil {
				log.Printf("scene %q: shadow draw %s: %v", s.name, part.name, err)
			}
		}
	}
	s.r.EndShadowPass()
	s.r.EndShadowFrame()
}

func (s *scene) DrawCalls() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.r == nil {
		return nil
	}

	groups := s.drawPool[:0]

	// Opaque scenery first, then the alpha-blended labels so they composite
	// over the geometry behind them.
	for _, key := range [2]string{pipelineKeyLit, pipelineKeyLabel} {
		for _, node := range s.nodes {
			if node.pipelineKey != key {
				continue
			}
			for _, part := range node.parts {
				groups = append(groups[:0], s.frameBGP, node.modelBGP, part.textureBGP)
				if err := s.r.DrawCall(key, part.meshBGP, 1, groups); err != nil {
					return fmt.Errorf("draw %s: %w", part.name, err)
				}
			}
		}
	}

	for _, elem := range s.hudGPU {
		groups = append(groups[:0], s.hudScreenBGP, elem.textureBGP)
		if err := s.r.DrawCall(pipelineKeyHUD, elem.meshBGP, 1, groups); err != nil {
			return fmt.Errorf("draw %s: %w", elem.key, err)
		}
	}
	return nil
}

func (s *scene) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	s.cam.SetAspect(float32(width) / float32(height))
	s.overlay.Resize(uint32(width), uint32(height))
}

func (s *scene) HandleClick(x, y float64) bool {
	switch s.overlay.HitTest(x, y) {
	case hud.ActionPrev:
		s.nav.Retreat()
		return true
	case hud.ActionNext:
		s.nav.Advance()
		return true
	default:
		return false
	}
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
	if s.driver != nil {
		s.driver.Close()
	}

	for _, node := range s.nodes {
		node.release(s.whiteTexBGP)
	}
	s.nodes = nil

	for _, elem := range s.hudGPU {
		elem.meshBGP.Release()
		elem.textureBGP.Release()
	}
	s.hudGPU = nil

	for _, provider := range []bind_group_provider.BindGroupProvider{s.whiteTexBGP, s.hudScreenBGP, s.shadowPassBGP, s.frameBGP} {
		if provider != nil {
			provider.Release()
		}
	}
	s.whiteTexBGP, s.hudScreenBGP, s.shadowPassBGP, s.frameBGP = nil, nil, nil, nil

	// frameBGP released the depth view and comparison sampler it held; the
	// texture itself is released here.
	if s.shadowDepthTexture != nil {
		s.shadowDepthTexture.Release()
		s.shadowDepthTexture = nil
		s.shadowDepthView = nil
	}
}

// mergedGroupDescriptor widens every entry of a shader's bind group layout to
// both render stages, matching the layout the backend builds when it merges
// the vertex and fragment shader declarations at pipeline registration.
func mergedGroupDescriptor(vs, fs shader.Shader, group int) wgpu.BindGroupLayoutDescriptor {
	desc := vs.BindGroupLayoutDescriptor(group)
	if len(desc.Entries) == 0 {
		desc = fs.BindGroupLayoutDescriptor(group)
	}
	entries := make([]wgpu.BindGroupLayoutEntry, len(desc.Entries))
	copy(entries, desc.Entries)
	for i := range entries {
		entries[i].Visibility |= wgpu.ShaderStageVertex | wgpu.ShaderStageFragment
	}
	return wgpu.BindGroupLayoutDescriptor{Label: desc.Label, Entries: entries}
}

// clampSampler returns the staging data for the scene's standard texture
// sampler: clamp-to-edge addressing with default linear filtering, which suits
// label and HUD textures that must not bleed at their borders.
func clampSampler() common.SamplerStagingData {
	return common.SamplerStagingData{
		AddressModeU: wgpu.AddressModeClampToEdge,
		AddressModeV: wgpu.AddressModeClampToEdge,
		AddressModeW: wgpu.AddressModeClampToEdge,
	}
}
