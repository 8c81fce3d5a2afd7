// Package eventbus provides the in-process event channel between graph
// mutations and their observers (history tracking, persistence hooks).
package eventbus

import (
	"context"

	"github.com/tabflow/tabflow/pkg/models"
)

// Topic is the single topic graph events travel on.
const Topic = "tabflow.graph"

// Metadata keys set on published messages.
const (
	EventMetadataKey     = "event_key"
	EventTypeMetadataKey = "event_type"
)

// EventType identifies the kind of graph event.
type EventType string

const (
	// GraphChangedEvent fires after any successful node/edge mutation on a tab.
	GraphChangedEvent EventType = "graph.changed"
	// TabClosedEvent fires when a tab is deleted and its history should go away.
	TabClosedEvent EventType = "tab.closed"
)

// GraphChanged carries the full node/edge collections of one tab after a
// mutation. Events for one tab are delivered in the order they were issued.
type GraphChanged struct {
	TabID string             `json:"tab_id"`
	Nodes []*models.FlowNode `json:"nodes"`
	Edges []*models.FlowEdge `json:"edges"`
}

func (e GraphChanged) GetType() EventType { return GraphChangedEvent }

// TabClosed signals that a tab no longer exists.
type TabClosed struct {
	TabID string `json:"tab_id"`
}

func (e TabClosed) GetType() EventType { return TabClosedEvent }

// Event is anything publishable on the bus.
type Event interface {
	GetType() EventType
}

// EventHandler consumes a decoded event.
type EventHandler func(ctx context.Context, event any) error

// EventBus publishes and dispatches graph events.
type EventBus interface {
	Publish(ctx context.Context, key string, event Event) error
	Handle(eventType EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	Close() error
}
