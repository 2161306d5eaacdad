// Package web provides the HTTP surface the graph editor talks to:
// catalog discovery, graph execution and flow storage.
package web

import "github.com/flowfn/flowfn/pkg/models"

// SaveFlowRequest is the body for creating or updating a flow.
type SaveFlowRequest struct {
	Name        string       `json:"name"        validate:"required,min=3"`
	Description string       `json:"description"`
	Graph       models.Graph `json:"graph"       validate:"required"`
}

// FlowSummary is the listing shape, without the graph body.
type FlowSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	NodeCount   int    `json:"node_count"`
}

// SummarizeFlow reduces a flow to its listing shape.
func SummarizeFlow(flow *models.Flow) FlowSummary {
	return FlowSummary{
		ID:          flow.ID,
		Name:        flow.Name,
		Description: flow.Description,
		NodeCount:   len(flow.Graph),
	}
}
