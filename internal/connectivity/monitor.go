package connectivity

import "sync"

// Monitor tracks the binary online/offline state reported by the host
// environment. It is reactive only: it never probes the network itself,
// it just fans out transitions. A reading of "online" means a sync
// attempt is worth trying, not that the remote endpoint is reachable.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(bool)
	nextID int
}

// NewMonitor creates a monitor with the host's state at startup.
func NewMonitor(initial bool) *Monitor {
	return &Monitor{
		online: initial,
		subs:   make(map[int]func(bool)),
	}
}

// Online returns the current reading.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a host-reported state change. Subscribers are only
// notified on an actual transition.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Subscribe registers a transition listener and returns its unsubscribe
// function.
func (m *Monitor) Subscribe(fn func(bool)) (cancel func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
