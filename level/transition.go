package level

import "sync"

// DefaultTransitionDuration is the time a stage transition takes from trigger
// to rest, in seconds.
const DefaultTransitionDuration float32 = 1.5

// TransitionDriver owns the world-frame position. It subscribes to a
// Navigator and, on every index change, animates the position from its live
// current value toward the negated (x, y) position of the new stage over a
// fixed duration with an ease-in-ease-out curve. Sliding the whole world by
// the negated stage position centers that stage under the fixed camera.
//
// Retriggering mid-flight supersedes the running transition and starts the
// new one from the live interpolated position, never from the stale prior
// target, so the position is continuous across retargets. Transitions are
// never queued.
//
// No other component may write the world-frame position. Completion is
// implicit: callers read Position every frame and may consult Settled.
type TransitionDriver interface {
	// Update advances the active interpolation. Call once per engine tick.
	// A settled driver ignores updates.
	//
	// Parameters:
	//   - dt: elapsed time since the previous update, in seconds
	Update(dt float32)

	// Position returns the live world-frame position.
	//
	// Returns:
	//   - float32: the x component
	//   - float32: the y component
	Position() (float32, float32)

	// Target returns the position the driver is moving toward, or resting at
	// when settled.
	//
	// Returns:
	//   - float32: the target x component
	//   - float32: the target y component
	Target() (float32, float32)

	// Settled reports whether the driver is at rest. At rest the position
	// equals the negated (x, y) position of the navigator's current stage.
	//
	// Returns:
	//   - bool: true when no transition is in flight
	Settled() bool

	// Close unsubscribes the driver from its navigator. Position, Target and
	// Settled remain readable after closing, but index changes no longer
	// retarget the driver. Closing more than once is safe.
	Close()
}

type transitionDriverImpl struct {
	mu          sync.Mutex
	duration    float32
	ease        func(t float32) float32
	start       [2]float32
	target      [2]float32
	position    [2]float32
	elapsed     float32
	settled     bool
	unsubscribe func()
}

var _ TransitionDriver = &transitionDriverImpl{}

// NewTransitionDriver creates a TransitionDriver subscribed to the given
// navigator. The initial position is the negated (x, y) position of the
// navigator's current stage, at rest.
//
// Parameters:
//   - nav: the navigator whose index changes drive transitions, must not be nil
//   - opts: variadic list of TransitionDriverBuilderOption functions
//
// Returns:
//   - TransitionDriver: a new TransitionDriver instance
func NewTransitionDriver(nav Navigator, opts ...TransitionDriverBuilderOption) TransitionDriver {
	if nav == nil {
		panic("level: transition driver requires a navigator")
	}

	d := &transitionDriverImpl{
		duration: DefaultTransitionDuration,
		ease:     EaseInOutQuad,
		settled:  true,
	}
	for _, opt := range opts {
		opt(d)
	}

	current := nav.Current()
	d.position = [2]float32{-current.Position[0], -current.Position[1]}
	d.start = d.position
	d.target = d.position

	d.unsubscribe = nav.Subscribe(func(_ int, stage StageDescriptor) {
		d.retarget(-stage.Position[0], -stage.Position[1])
	})
	return d
}

// retarget begins a new interpolation from the live position toward (x, y),
// superseding any transition still in flight.
func (d *transitionDriverImpl) retarget(x, y float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.start = d.position
	d.target = [2]float32{x, y}
	d.elapsed = 0
	d.settled = d.start == d.target
}

func (d *transitionDriverImpl) Update(dt float32) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.settled || dt <= 0 {
		return
	}

	d.elapsed += dt
	if d.elapsed >= d.duration {
		d.position = d.target
		d.settled = true
		return
	}

	t := d.ease(d.elapsed / d.duration)
	d.position = [2]float32{
		d.start[0] + (d.target[0]-d.start[0])*t,
		d.start[1] + (d.target[1]-d.start[1])*t,
	}
}

func (d *transitionDriverImpl) Position() (float32, float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.position[0], d.position[1]
}

func (d *transitionDriverImpl) Target() (float32, float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.target[0], d.target[1]
}

func (d *transitionDriverImpl) Settled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settled
}

func (d *transitionDriverImpl) Close() {
	d.mu.Lock()
	unsubscribe := d.unsubscribe
	d.unsubscribe = nil
	d.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// EaseInOutQuad is a symmetric quadratic ease-in-ease-out curve: quadratic
// acceleration over the first half of the transition, mirrored deceleration
// over the second. Maps [0, 1] to [0, 1] with f(0)=0, f(0.5)=0.5, f(1)=1.
func EaseInOutQuad(t float32) float32 {
	if t < 0.5 {
		return 2 * t * t
	}
	inv := 1 - t
	return 1 - 2*inv*inv
}
