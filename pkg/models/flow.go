package models

import "time"

// Flow is the persisted envelope around a graph: what the editor saves,
// restores, downloads and lists as a sample flow.
type Flow struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	Graph       Graph     `json:"graph"       validate:"required"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
