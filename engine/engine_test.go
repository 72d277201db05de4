package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdant-labs/groveview/engine/scene"
)

// stubScene implements the registry-facing subset of scene.Scene. The embedded
// interface satisfies the methods these tests never call.
type stubScene struct {
	scene.Scene
	name   string
	active bool
}

func (s *stubScene) Name() string          { return s.name }
func (s *stubScene) Active() bool          { return s.active }
func (s *stubScene) SetActive(active bool) { s.active = active }
func (s *stubScene) Update(float32)        {}

// NewEngine without options should come up with the documented defaults.
func TestNewEngine_Defaults(t *testing.T) {
	eng := NewEngine()
	e, ok := eng.(*engine)
	require.True(t, ok)

	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.NotNil(t, e.profiler)
	assert.False(t, e.profilingEnabled)
	assert.Empty(t, e.scenes)
	assert.Zero(t, e.renderFrameLimit)
	assert.Nil(t, eng.Window())
}

// Builder options should configure tick rate, profiling, frame limit, and
// initial scenes; out-of-range rates fall back to their defaults.
func TestEngineBuilderOptions(t *testing.T) {
	s := &stubScene{name: "grove", active: true}
	eng := NewEngine(
		WithTickRate(120),
		WithProfiling(true),
		WithRenderFrameLimit(30),
		WithScene(0, s),
	)
	e := eng.(*engine)

	assert.Equal(t, time.Second/120, e.engineTickRate)
	assert.True(t, e.profilingEnabled)
	assert.Equal(t, time.Second/30, e.renderFrameLimit)
	assert.Same(t, s, eng.Scene(0))

	e = NewEngine(WithTickRate(0), WithRenderFrameLimit(-1)).(*engine)
	assert.Equal(t, time.Second/60, e.engineTickRate)
	assert.Zero(t, e.renderFrameLimit)
}

// Scenes should be retrievable and removable by their z-index key.
func TestEngine_SceneRegistry(t *testing.T) {
	eng := NewEngine()
	hud := &stubScene{name: "hud"}
	world := &stubScene{name: "world"}

	eng.AddScene(1, hud)
	eng.AddScene(0, world)

	assert.Same(t, world, eng.Scene(0))
	assert.Same(t, hud, eng.Scene(1))
	assert.Nil(t, eng.Scene(2))

	eng.RemoveScene(0)
	assert.Nil(t, eng.Scene(0))
	assert.Same(t, hud, eng.Scene(1))
}

// Scenes must return a copy so callers cannot mutate the engine's registry.
func TestEngine_ScenesReturnsCopy(t *testing.T) {
	eng := NewEngine(WithScene(0, &stubScene{name: "grove"}))

	snapshot := eng.Scenes()
	require.Len(t, snapshot, 1)

	delete(snapshot, 0)
	snapshot[7] = &stubScene{name: "intruder"}

	assert.NotNil(t, eng.Scene(0))
	assert.Nil(t, eng.Scene(7))
}

// SetTickRate before Run should update the rate directly and clamp
// non-positive values to the 60Hz default.
func TestEngine_SetTickRateBeforeRun(t *testing.T) {
	eng := NewEngine()
	e := eng.(*engine)

	eng.SetTickRate(30)
	assert.Equal(t, time.Second/30, e.engineTickRate)

	eng.SetTickRate(-5)
	assert.Equal(t, time.Second/60, e.engineTickRate)
}

// Quit must close the quit channel exactly once; repeated calls are no-ops.
func TestEngine_QuitIsIdempotent(t *testing.T) {
	eng := NewEngine()
	e := eng.(*engine)

	eng.Quit()
	eng.Quit()

	select {
	case <-e.quitChannel:
	default:
		t.Fatal("quit channel should be closed after Quit")
	}
}

// The profiler toggles should flip the profiling flag at runtime.
func TestEngine_ProfilerToggles(t *testing.T) {
	eng := NewEngine()
	e := eng.(*engine)

	eng.EnableProfiler()
	assert.True(t, e.profilingEnabled)
	eng.DisableProfiler()
	assert.False(t, e.profilingEnabled)
}
