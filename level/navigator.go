package level

import "sync"

// Navigator tracks the current stage index and walks the registry cyclically.
// Advance and Retreat wrap modulo the stage count, so the index invariant
// 0 <= CurrentIndex() < Len() holds under any call sequence, including the
// single-stage registry where both operations are index no-ops.
//
// Index changes are published to subscribed observers. Observers fire only
// when the index actually changes; a no-op advance on a one-stage registry
// publishes nothing.
type Navigator interface {
	// Advance moves the current index forward by one, wrapping from the last
	// stage back to the first. Observers are notified if the index changed.
	Advance()

	// Retreat moves the current index backward by one, wrapping from the
	// first stage to the last. Observers are notified if the index changed.
	Retreat()

	// Current returns the descriptor of the current stage.
	//
	// Returns:
	//   - StageDescriptor: the descriptor at the current index
	Current() StageDescriptor

	// CurrentIndex returns the current stage index.
	//
	// Returns:
	//   - int: the index, always in [0, Len())
	CurrentIndex() int

	// Registry returns the registry this navigator walks.
	//
	// Returns:
	//   - Registry: the backing registry
	Registry() Registry

	// Subscribe registers an observer called whenever the current index
	// changes. The callback receives the new index and its descriptor, and
	// runs synchronously on the goroutine that triggered the change.
	//
	// Parameters:
	//   - fn: the observer callback, must not be nil
	//
	// Returns:
	//   - func(): an unsubscribe function; calling it more than once is safe
	Subscribe(fn func(index int, stage StageDescriptor)) func()
}

// navObserver pairs a subscription id with its callback so unsubscribing
// removes exactly the right entry.
type navObserver struct {
	id int
	fn func(index int, stage StageDescriptor)
}

type navigatorImpl struct {
	mu        sync.Mutex
	registry  Registry
	index     int
	observers []navObserver
	nextID    int
}

var _ Navigator = &navigatorImpl{}

// NewNavigator creates a Navigator over the given registry, starting at
// stage 0. Progression state is never persisted, so every navigator starts
// at the first stage.
//
// Parameters:
//   - registry: the stage registry to walk, must not be nil
//
// Returns:
//   - Navigator: a new Navigator instance
func NewNavigator(registry Registry) Navigator {
	if registry == nil {
		panic("level: navigator requires a registry")
	}
	return &navigatorImpl{registry: registry}
}

func (n *navigatorImpl) Advance() {
	n.step(1)
}

func (n *navigatorImpl) Retreat() {
	n.step(-1)
}

func (n *navigatorImpl) Current() StageDescriptor {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.registry.Stage(n.index)
}

func (n *navigatorImpl) CurrentIndex() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.index
}

func (n *navigatorImpl) Registry() Registry {
	return n.registry
}

func (n *navigatorImpl) Subscribe(fn func(index int, stage StageDescriptor)) func() {
	if fn == nil {
		panic("level: subscribe requires a callback")
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.observers = append(n.observers, navObserver{id: id, fn: fn})

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		for i, obs := range n.observers {
			if obs.id == id {
				n.observers = append(n.observers[:i], n.observers[i+1:]...)
				return
			}
		}
	}
}

// step moves the index by delta with modulo wrap and publishes the change.
// Observers run outside the lock so they may call back into the navigator.
func (n *navigatorImpl) step(delta int) {
	n.mu.Lock()
	count := n.registry.Len()
	next := (n.index + delta + count) % count
	if next == n.index {
		n.mu.Unlock()
		return
	}
	n.index = next
	stage := n.registry.Stage(next)
	observers := make([]navObserver, len(n.observers))
	copy(observers, n.observers)
	n.mu.Unlock()

	for _, obs := range observers {
		obs.fn(next, stage)
	}
}
