package light

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. Affects all fragments
	// uniformly with no distance attenuation, and is the only type eligible
	// for shadow map generation.
	LightTypeDirectional LightType = iota

	// LightTypeAmbient represents a non-directional fill term applied equally
	// to every fragment. Ambient lights have no direction and never cast
	// shadows; their color and intensity accumulate into the scene ambient.
	LightTypeAmbient
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	lightType    LightType
	direction    [3]float32
	color        [3]float32
	intensity    float32
	enabled      bool
	castsShadows bool
}

// Light defines the interface for a light source in the scene.
//
// Lights are scene-level entities that contribute to the final pixel color
// during the lit forward rendering pass. The directional key light also drives
// the shadow depth pass. Type-specific properties (direction for directional
// lights) return zero values when not applicable.
//
// Lights are registered with the scene, which folds them into the per-frame
// lighting uniform each frame.
type Light interface {
	// Type returns the kind of light source.
	//
	// Returns:
	//   - LightType: the light type (directional or ambient)
	Type() LightType

	// Direction returns the normalized direction of the light.
	// Meaningless for ambient lights.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	//
	// Returns:
	//   - float32: the intensity value
	Intensity() float32

	// Enabled returns whether this light is active for rendering.
	// Disabled lights are skipped when building the frame lighting uniform.
	//
	// Returns:
	//   - bool: true if the light is enabled
	Enabled() bool

	// CastsShadows returns whether this light is eligible for shadow map
	// generation. Only directional lights can cast shadows; the flag is
	// ignored on ambient lights.
	//
	// Returns:
	//   - bool: true if the light casts shadows
	CastsShadows() bool

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light for rendering.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// SetCastsShadows sets whether the light is eligible for shadow mapping.
	//
	// Parameters:
	//   - castsShadows: true to enable shadow casting
	SetCastsShadows(castsShadows bool)
}

var _ Light = &lightImpl{}

// NewLight creates a new Light of the specified type with sensible defaults and
// any provided options applied.
//
// Parameters:
//   - lightType: the kind of light to create (directional or ambient)
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(lightType LightType, opts ...LightBuilderOption) Light {
	l := &lightImpl{
		lightType:    lightType,
		direction:    [3]float32{0, -1, 0},
		color:        [3]float32{1, 1, 1},
		intensity:    1.0,
		enabled:      true,
		castsShadows: false,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// SelectKeyLight picks the light that drives the lit pass and the shadow pass:
// the first enabled, shadow-casting directional light, or failing that the
// first enabled directional light of any kind.
//
// Parameters:
//   - lights: the scene's registered lights
//
// Returns:
//   - Light: the key light, or nil when no enabled directional light exists
func SelectKeyLight(lights []Light) Light {
	var fallback Light
	for _, l := range lights {
		if !l.Enabled() || l.Type() != LightTypeDirectional {
			continue
		}
		if l.CastsShadows() {
			return l
		}
		if fallback == nil {
			fallback = l
		}
	}
	return fallback
}

// AccumulateAmbient sums the color × intensity contribution of every enabled
// ambient light.
//
// Parameters:
//   - lights: the scene's registered lights
//
// Returns:
//   - [3]float32: the combined ambient RGB term
func AccumulateAmbient(lights []Light) [3]float32 {
	var ambient [3]float32
	for _, l := range lights {
		if !l.Enabled() || l.Type() != LightTypeAmbient {
			continue
		}
		c := l.Color()
		i := l.Intensity()
		ambient[0] += c[0] * i
		ambient[1] += c[1] * i
		ambient[2] += c[2] * i
	}
	return ambient
}

func (l *lightImpl) Type() LightType {
	return l.lightType
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) CastsShadows() bool {
	return l.castsShadows
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = normalize3(x, y, z)
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) SetCastsShadows(castsShadows bool) {
	l.castsShadows = castsShadows
}
