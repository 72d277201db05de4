package level

// TransitionDriverBuilderOption is a function that configures a
// TransitionDriver instance during construction.
type TransitionDriverBuilderOption func(*transitionDriverImpl)

// WithDuration is an option builder that sets the transition duration.
// Non-positive values are ignored and the default duration is kept.
//
// Parameters:
//   - seconds: the duration of a full transition in seconds
//
// Returns:
//   - TransitionDriverBuilderOption: a function that applies the duration option to a transitionDriverImpl
func WithDuration(seconds float32) TransitionDriverBuilderOption {
	return func(d *transitionDriverImpl) {
		if seconds > 0 {
			d.duration = seconds
		}
	}
}

// WithEasing is an option builder that sets the easing curve applied to the
// normalized transition progress. The curve must map [0, 1] to [0, 1] with
// f(0)=0 and f(1)=1. A nil curve is ignored and the default quadratic
// ease-in-ease-out is kept.
//
// Parameters:
//   - ease: the easing function
//
// Returns:
//   - TransitionDriverBuilderOption: a function that applies the easing option to a transitionDriverImpl
func WithEasing(ease func(t float32) float32) TransitionDriverBuilderOption {
	return func(d *transitionDriverImpl) {
		if ease != nil {
			d.ease = ease
		}
	}
}
