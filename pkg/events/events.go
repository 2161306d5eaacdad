// Package events defines the lifecycle notifications emitted while a graph
// runs, consumed by the editor to update per-node status badges.
package events

import (
	"time"

	"github.com/flowfn/flowfn/pkg/models"
)

type EventType string

// Topic carries every run/node lifecycle event.
const Topic = "flowfn.events"

const EventTypeMetadataKey = "event_type"

const (
	RunStartedEvent  EventType = "run.started"
	RunFinishedEvent EventType = "run.finished"

	NodeStartedEvent  EventType = "node.started"
	NodeFinishedEvent EventType = "node.finished"
	NodeFailedEvent   EventType = "node.failed"
)

type BaseEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
}

type RunStarted struct {
	BaseEvent

	FlowID    string `json:"flow_id,omitempty"`
	NodeCount int    `json:"node_count"`
}

func (e RunStarted) GetType() EventType { return RunStartedEvent }

type RunFinished struct {
	BaseEvent

	Duration  time.Duration `json:"duration"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
}

func (e RunFinished) GetType() EventType { return RunFinishedEvent }

type NodeStarted struct {
	BaseEvent

	NodeID   string `json:"node_id"`
	NodeType string `json:"node_type"`
}

func (e NodeStarted) GetType() EventType { return NodeStartedEvent }

type NodeFinished struct {
	BaseEvent

	NodeID   string        `json:"node_id"`
	NodeType string        `json:"node_type"`
	Duration time.Duration `json:"duration"`
}

func (e NodeFinished) GetType() EventType { return NodeFinishedEvent }

type NodeFailed struct {
	BaseEvent

	NodeID   string           `json:"node_id"`
	NodeType string           `json:"node_type"`
	Kind     models.ErrorKind `json:"kind"`
	Message  string           `json:"message"`
}

func (e NodeFailed) GetType() EventType { return NodeFailedEvent }
