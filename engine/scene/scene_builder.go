package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(*scene)

// WithActive sets the initial active state of the scene. Scenes default to
// active; an inactive scene is neither updated nor rendered by the engine.
//
// Parameters:
//   - active: the initial active state
//
// Returns:
//   - SceneBuilderOption: the option
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithTransitionDuration sets how long the world-frame transition between
// stages takes, in seconds. Non-positive values are ignored and the default
// 1.5 second duration is kept.
//
// Parameters:
//   - seconds: the transition duration
//
// Returns:
//   - SceneBuilderOption: the option
func WithTransitionDuration(seconds float32) SceneBuilderOption {
	return func(s *scene) {
		s.transitionDuration = seconds
	}
}

// WithFetchWorkers sets how many worker goroutines resolve external stage
// assets concurrently. Values below 1 are clamped to 1. Defaults to 2.
//
// Parameters:
//   - workers: the worker count
//
// Returns:
//   - SceneBuilderOption: the option
func WithFetchWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers < 1 {
			workers = 1
		}
		s.fetchWorkers = workers
	}
}

// WithShadowHalfExtent sets the half-size of the shadow frustum in world units.
// Larger values cover more of the scene at lower effective shadow resolution.
// Defaults to 40.
//
// Parameters:
//   - halfExtent: the orthographic half-extent
//
// Returns:
//   - SceneBuilderOption: the option
func WithShadowHalfExtent(halfExtent float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowHalfExtent = halfExtent
	}
}

// WithShadowNearFar sets the near and far plane distances of the shadow
// frustum. Defaults to 0.1 and 200.
//
// Parameters:
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - SceneBuilderOption: the option
func WithShadowNearFar(near, far float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowNear = near
		s.shadowFar = far
	}
}

// WithShadowBias sets the depth comparison bias used to suppress shadow acne.
// Defaults to 0.001.
//
// Parameters:
//   - bias: the comparison bias
//
// Returns:
//   - SceneBuilderOption: the option
func WithShadowBias(bias float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowBias = bias
	}
}

// WithShadowNormalBiasScale sets the multiplier for the world-space
// normal-offset bias derived from the shadow map texel size. Defaults to 3.
//
// Parameters:
//   - scale: the normal bias scale
//
// Returns:
//   - SceneBuilderOption: the option
func WithShadowNormalBiasScale(scale float32) SceneBuilderOption {
	return func(s *scene) {
		s.shadowNormalBiasScale = scale
	}
}

// WithShadowMapResolution sets the width and height of the square shadow depth
// texture in texels. Values below 16 are clamped to 16. Defaults to 2048.
//
// Parameters:
//   - resolution: the shadow map edge length
//
// Returns:
//   - SceneBuilderOption: the option
func WithShadowMapResolution(resolution int) SceneBuilderOption {
	return func(s *scene) {
		if resolution < 16 {
			resolution = 16
		}
		s.shadowMapResolution = resolution
	}
}
