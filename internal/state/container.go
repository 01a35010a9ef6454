package state

import "sync"

// subscriberBuffer is the channel capacity given to each subscriber.
const subscriberBuffer = 64

// Container owns the current State of a running program. Transitions are
// applied one at a time, in the order Emit is called.
type Container struct {
	mu      sync.RWMutex
	cur     State
	subs    map[chan State]struct{}
	changed chan struct{} // closed and replaced on every Emit
}

// NewContainer creates a Container holding the initial state.
func NewContainer() *Container {
	return &Container{
		cur:     Initial(),
		subs:    make(map[chan State]struct{}),
		changed: make(chan struct{}),
	}
}

// Snapshot returns the current state.
func (c *Container) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur
}

// Emit applies t to the current state, notifies subscribers, and returns the
// new state.
func (c *Container) Emit(t Transition) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cur = Apply(c.cur, t)
	close(c.changed)
	c.changed = make(chan struct{})
	for ch := range c.subs {
		select {
		case ch <- c.cur:
		default:
			// subscriber is behind; drop to avoid blocking Emit
		}
	}
	return c.cur
}

// Watch returns the current state and a channel that is closed by the next
// Emit. Unlike Subscribe it never misses an update.
func (c *Container) Watch() (State, <-chan struct{}) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cur, c.changed
}

// Subscribe returns a buffered channel that receives every new state.
func (c *Container) Subscribe() chan State {
	ch := make(chan State, subscriberBuffer)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (c *Container) Unsubscribe(ch chan State) {
	c.mu.Lock()
	delete(c.subs, ch)
	c.mu.Unlock()
	close(ch)
}
