package history

import (
	"sync"
	"time"

	"github.com/tabflow/tabflow/pkg/models"
)

// DefaultQuiescence is the settle window before a burst of mutation
// notifications collapses into one history entry. A drag produces many
// intermediate position updates; snapshotting each one would make undo
// granularity unusably fine.
const DefaultQuiescence = 300 * time.Millisecond

// Debouncer coalesces rapid-fire graph mutation notifications into a single
// tracker snapshot once the interaction settles. Flush commits the pending
// snapshot immediately and is the explicit end-of-interaction boundary.
type Debouncer struct {
	mu      sync.Mutex
	tracker *Tracker
	window  time.Duration
	timer   *time.Timer
	pending *Entry
}

// NewDebouncer wraps a tracker with a quiescence window. A window of zero or
// less falls back to DefaultQuiescence.
func NewDebouncer(tracker *Tracker, window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultQuiescence
	}

	return &Debouncer{tracker: tracker, window: window}
}

// Tracker returns the wrapped tracker.
func (d *Debouncer) Tracker() *Tracker {
	return d.tracker
}

// Notify records the latest graph state and restarts the quiescence timer.
// Only the state observed when the timer fires becomes a snapshot.
func (d *Debouncer) Notify(nodes []*models.FlowNode, edges []*models.FlowEdge) {
	d.mu.Lock()
	defer d.mu.Unlock()

	entry := cloneEntry(nodes, edges)
	d.pending = &entry

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.window, d.Flush)
}

// Flush commits the pending snapshot, if any, to the tracker.
func (d *Debouncer) Flush() {
	d.mu.Lock()

	entry := d.pending
	d.pending = nil

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.mu.Unlock()

	if entry != nil {
		d.tracker.SaveState(entry.Nodes, entry.Edges)
	}
}

// Stop cancels the timer and discards any pending snapshot.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.pending = nil
}
