// Package pubsub fans build progress out to server-sent event subscribers.
package pubsub

import (
	"context"
	"encoding/json"
)

// Topics published during watch mode
const (
	TopicBuildStatus = "build_status"
	TopicPlan        = "plan"
	TopicGraph       = "graph"
)

// Event represents a pub/sub event
type Event struct {
	Topic string `json:"topic"`
	// Type is e.g. "planning", "compiling" or "succeeded"
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
	// Version increases by one per publish on a topic
	Version int `json:"version"`
}

// Subscription represents a client subscription to a topic
type Subscription interface {
	Topic() string

	// Events is closed when the subscription or the publisher is closed
	Events() <-chan Event

	Close() error
}

// Publisher manages pub/sub subscriptions and event publishing
type Publisher interface {
	// Subscribe creates a new subscription to a topic.
	// Context cancellation closes the subscription.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish sends an event to all subscribers of a topic
	Publish(topic string, eventType string, data interface{}) error

	Close() error
}

// BuildState is the Type of a build_status event
type BuildState string

const (
	StatePlanning  BuildState = "planning"
	StateCompiling BuildState = "compiling"
	StateUpToDate  BuildState = "up_to_date"
	StateSucceeded BuildState = "succeeded"
	StateFailed    BuildState = "failed"
)

// BuildStatus is the payload of a build_status event
type BuildStatus struct {
	State   BuildState `json:"state"`
	RunID   string     `json:"runId,omitempty"`
	Message string     `json:"message,omitempty"`
}

// PlanSummary is the payload of a plan event
type PlanSummary struct {
	RunID       string `json:"runId"`
	Mode        string `json:"mode"`
	Stale       int    `json:"stale"`
	Expanded    int    `json:"expanded"`
	Cycles      int    `json:"cycles"`
	NothingToDo bool   `json:"nothingToDo"`
	Command     string `json:"command,omitempty"`
}
