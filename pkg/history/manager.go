package history

import (
	"context"
	"sync"
	"time"

	"github.com/tabflow/tabflow/pkg/eventbus"
)

// Manager owns one tracker+debouncer pair per flow tab, created lazily. It
// consumes graph events from the bus: mutation notifications feed the tab's
// debouncer, tab closures drop the tab's history.
type Manager struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	tabs   map[string]*Debouncer
}

// NewManager creates a manager with the given per-tab snapshot limit and
// debounce window. Zero values fall back to the defaults.
func NewManager(limit int, window time.Duration) *Manager {
	if limit <= 0 {
		limit = DefaultLimit
	}

	if window <= 0 {
		window = DefaultQuiescence
	}

	return &Manager{
		limit:  limit,
		window: window,
		tabs:   make(map[string]*Debouncer),
	}
}

// ForTab returns the tab's debouncer, creating it on first use.
func (m *Manager) ForTab(tabID string) *Debouncer {
	m.mu.Lock()
	defer m.mu.Unlock()

	debouncer, ok := m.tabs[tabID]
	if !ok {
		debouncer = NewDebouncer(NewTracker(m.limit), m.window)
		m.tabs[tabID] = debouncer
	}

	return debouncer
}

// Remove stops and drops the tab's history.
func (m *Manager) Remove(tabID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if debouncer, ok := m.tabs[tabID]; ok {
		debouncer.Stop()
		delete(m.tabs, tabID)
	}
}

// Bind registers the manager's handlers on the bus. Call before the bus
// starts subscribing.
func (m *Manager) Bind(bus eventbus.EventBus) {
	bus.Handle(eventbus.GraphChangedEvent, func(_ context.Context, event any) error {
		changed, ok := event.(*eventbus.GraphChanged)
		if !ok {
			return nil
		}

		m.ForTab(changed.TabID).Notify(changed.Nodes, changed.Edges)

		return nil
	})

	bus.Handle(eventbus.TabClosedEvent, func(_ context.Context, event any) error {
		closed, ok := event.(*eventbus.TabClosed)
		if !ok {
			return nil
		}

		m.Remove(closed.TabID)

		return nil
	})
}

// Undo settles any pending snapshot for the tab, then steps its history back.
func (m *Manager) Undo(tabID string, apply func(Entry)) bool {
	debouncer := m.ForTab(tabID)
	debouncer.Flush()

	return debouncer.Tracker().Undo(apply)
}

// Redo steps the tab's history forward.
func (m *Manager) Redo(tabID string, apply func(Entry)) bool {
	debouncer := m.ForTab(tabID)
	debouncer.Flush()

	return debouncer.Tracker().Redo(apply)
}
