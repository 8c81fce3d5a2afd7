package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tabflow/tabflow/pkg/models"
)

func TestWatermillEventBus_PublishAndDispatch(t *testing.T) {
	bus := NewGoChannelEventBus(slog.Default())
	defer bus.Close()

	var (
		mu       sync.Mutex
		received []*GraphChanged
	)

	bus.Handle(GraphChangedEvent, func(_ context.Context, event any) error {
		changed, ok := event.(*GraphChanged)
		require.True(t, ok)

		mu.Lock()
		received = append(received, changed)
		mu.Unlock()

		return nil
	})

	require.NoError(t, bus.Subscribe(t.Context()))

	err := bus.Publish(t.Context(), "tab-1", GraphChanged{
		TabID: "tab-1",
		Nodes: []*models.FlowNode{{ID: "n1", Type: "data"}},
	})
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "tab-1", received[0].TabID)
	require.Len(t, received[0].Nodes, 1)
	assert.Equal(t, "n1", received[0].Nodes[0].ID)
}

func TestWatermillEventBus_PreservesOrderPerKey(t *testing.T) {
	bus := NewGoChannelEventBus(slog.Default())
	defer bus.Close()

	var (
		mu    sync.Mutex
		order []string
	)

	bus.Handle(TabClosedEvent, func(_ context.Context, event any) error {
		closed := event.(*TabClosed)

		mu.Lock()
		order = append(order, closed.TabID)
		mu.Unlock()

		return nil
	})

	require.NoError(t, bus.Subscribe(t.Context()))

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, bus.Publish(t.Context(), id, TabClosed{TabID: id}))
	}

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(order) == 3
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestWatermillEventBus_UnhandledEventIsDropped(t *testing.T) {
	bus := NewGoChannelEventBus(slog.Default())
	defer bus.Close()

	require.NoError(t, bus.Subscribe(t.Context()))

	// No handler registered; publish must still succeed.
	assert.NoError(t, bus.Publish(t.Context(), "tab-1", TabClosed{TabID: "tab-1"}))
}
