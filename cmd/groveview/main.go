package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	"github.com/verdant-labs/groveview/assets"
	"github.com/verdant-labs/groveview/common"
	"github.com/verdant-labs/groveview/engine"
	"github.com/verdant-labs/groveview/engine/camera"
	"github.com/verdant-labs/groveview/engine/hud"
	"github.com/verdant-labs/groveview/engine/light"
	"github.com/verdant-labs/groveview/engine/loader"
	"github.com/verdant-labs/groveview/engine/renderer"
	"github.com/verdant-labs/groveview/engine/scene"
	"github.com/verdant-labs/groveview/engine/window"
	"github.com/verdant-labs/groveview/level"
)

func main() {
	configPath := flag.String("config", "", "path to a stage config YAML; empty uses the built-in progression")
	width := flag.Int("width", 1280, "initial window width in pixels")
	height := flag.Int("height", 720, "initial window height in pixels")
	uiScale := flag.Int("ui-scale", 1, "integer HUD scale factor")
	vsync := flag.Bool("vsync", true, "wait for vertical blank when presenting")
	msaa := flag.Int("msaa", 4, "MSAA sample count (1 or 4)")
	software := flag.Bool("software", false, "force the fallback software rasterizer")
	fpsCap := flag.Float64("fps-cap", 0, "render frame rate cap (0 = uncapped)")
	profile := flag.Bool("profile", false, "log frame timing once per second")
	flag.Parse()

	// ── Stage registry ──────────────────────────────────────────────────
	var reg level.Registry
	var err error
	if *configPath != "" {
		reg, err = level.LoadRegistry(*configPath)
	} else {
		reg, err = assets.DefaultRegistry()
	}
	if err != nil {
		log.Fatalf("Failed to load stage config: %v", err)
	}

	// ── Engine + Window ─────────────────────────────────────────────────
	eng := engine.NewEngine(
		engine.WithProfiling(*profile),
		engine.WithTickRate(60),
		engine.WithRenderFrameLimit(*fpsCap),
		engine.WithWindow(window.NewWindow(
			window.WithTitle("GroveView - Restoration Progression"),
			window.WithWidth(*width),
			window.WithHeight(*height),
		)),
	)

	// ── Renderer ────────────────────────────────────────────────────────
	presentMode := renderer.PresentModeUncapped
	if *vsync {
		presentMode = renderer.PresentModeVSync
	}
	samples := renderer.MSAA4x
	if *msaa == 1 {
		samples = renderer.MSAAOff
	}
	r := renderer.NewRenderer(
		renderer.BackendTypeWGPU,
		eng.Window(),
		renderer.WithPresentMode(presentMode),
		renderer.WithMSAA(samples),
		renderer.WithForceSoftwareRenderer(*software),
	)

	// ── Camera ──────────────────────────────────────────────────────────
	cam := camera.NewCamera(
		camera.WithFov(float32(45.0*math.Pi/180.0)),
		camera.WithAspect(float32(eng.Window().Width())/float32(eng.Window().Height())),
		camera.WithNear(0.1),
		camera.WithFar(500),
		camera.WithController(camera.NewCameraController(
			camera.WithRadius(12),
			camera.WithTarget(0, 1.5, 0),
			camera.WithElevation(0.35),
			camera.WithAzimuth(0.6),
			camera.WithRadiusBounds(2, 80),
			camera.WithElevationBounds(-0.2, 1.45),
			camera.WithZoomSpeed(1.2),
			camera.WithPanSpeed(0.02),
			camera.WithMouseSensitivity(0.005),
		)),
	)

	// ── Scene ───────────────────────────────────────────────────────────
	nav := level.NewNavigator(reg)
	ldr := loader.NewLoader(loader.BackendTypeGLTF)
	overlay := hud.NewHud(uint32(eng.Window().Width()), uint32(eng.Window().Height()),
		hud.WithScale(*uiScale),
	)

	sc := scene.NewScene("grove", cam, r, nav, ldr, overlay,
		scene.WithTransitionDuration(1.5),
	)

	// ── Lights ──────────────────────────────────────────────────────────
	sun := light.NewLight(light.LightTypeDirectional,
		light.WithDirection(-0.45, -1.0, -0.3),
		light.WithColor(1.0, 0.96, 0.88),
		light.WithIntensity(1.6),
		light.WithCastsShadows(true),
		light.WithEnabled(true),
	)
	sc.AddLight(sun)

	fill := light.NewLight(light.LightTypeAmbient,
		light.WithColor(0.45, 0.5, 0.55),
		light.WithIntensity(0.35),
		light.WithEnabled(true),
	)
	sc.AddLight(fill)

	eng.AddScene(0, sc)

	// ── Input ───────────────────────────────────────────────────────────
	setupInput(eng, cam, sc, nav)

	fmt.Println("╔══════════════════════════════════════════════════════╗")
	fmt.Println("║  GroveView - Restoration Progression                 ║")
	fmt.Println("╠══════════════════════════════════════════════════════╣")
	fmt.Println("║  Stages:  Left/Right arrows or PREV/NEXT buttons     ║")
	fmt.Println("║  Camera:  WASD=Pan  Scroll=Zoom                      ║")
	fmt.Println("║           Middle-mouse drag=Orbit                    ║")
	fmt.Println("║  Esc:     Quit                                       ║")
	fmt.Println("╚══════════════════════════════════════════════════════╝")

	log.Printf("Starting GroveView with %d stages", reg.Len())
	eng.Run()
	eng.Quit()
}

// setupInput wires the navigation triggers (arrow keys, HUD button clicks) and
// the camera controls (WASD pan, middle-mouse orbit, scroll zoom).
func setupInput(eng engine.Engine, cam camera.Camera, sc scene.Scene, nav level.Navigator) {
	keyState := make(map[uint32]bool)

	eng.Window().SetKeyDownCallback(func(keyCode uint32) {
		keyState[keyCode] = true

		switch keyCode {
		case common.KeyLeft, common.KeyP:
			nav.Retreat()
		case common.KeyRight, common.KeyN, common.KeySpace:
			nav.Advance()
		case common.KeyEsc:
			if err := eng.Window().Close(); err != nil {
				log.Printf("window close: %v", err)
			}
		}
	})

	eng.Window().SetKeyUpCallback(func(keyCode uint32) {
		keyState[keyCode] = false
	})

	eng.Window().SetLeftMouseDownCallback(func(x, y int32) {
		sc.HandleClick(float64(x), float64(y))
	})

	var dragging bool
	var lastX, lastY int32

	eng.Window().SetMiddleMouseDownCallback(func(x, y int32) {
		dragging = true
		lastX, lastY = x, y
	})

	eng.Window().SetMiddleMouseUpCallback(func(_, _ int32) {
		dragging = false
	})

	eng.Window().SetMouseMoveCallback(func(x, y int32) {
		if !dragging {
			return
		}
		dx := float32(x - lastX)
		dy := float32(y - lastY)
		ctrl := cam.Controller()
		ctrl.SetAzimuth(ctrl.Azimuth() + dx*ctrl.MouseSensitivity())
		ctrl.SetElevation(ctrl.Elevation() - dy*ctrl.MouseSensitivity())
		lastX, lastY = x, y
	})

	eng.Window().SetScrollCallback(func(delta float32) {
		cam.Controller().Zoom(delta)
	})

	eng.SetTickCallback(func(dt float32) {
		ctrl := cam.Controller()
		if keyState[common.KeyW] {
			ctrl.PanUp(1)
		}
		if keyState[common.KeyS] {
			ctrl.PanUp(-1)
		}
		if keyState[common.KeyA] {
			ctrl.PanRight(-1)
		}
		if keyState[common.KeyD] {
			ctrl.PanRight(1)
		}
	})
}
