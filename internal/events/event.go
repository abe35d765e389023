package events

import (
	"context"
	"time"

	"reviewhub/internal/microservices/http-api/models"
)

type Type string

const (
	ReviewCreated   Type = "review.created"
	ReviewUpdated   Type = "review.updated"
	ReviewDeleted   Type = "review.deleted"
	ReviewModerated Type = "review.moderated"
	ReviewPurged    Type = "review.purged"
	VoteChanged     Type = "vote.changed"
	ResponseCreated Type = "response.created"
)

// AllTypes lists every event the services publish
var AllTypes = []Type{
	ReviewCreated,
	ReviewUpdated,
	ReviewDeleted,
	ReviewModerated,
	ReviewPurged,
	VoteChanged,
	ResponseCreated,
}

// Event describes a committed change. It is published only after the
// transaction that produced it has committed.
type Event struct {
	Type       Type                    `json:"type"`
	ReviewID   string                  `json:"review_id"`
	ResponseID string                  `json:"response_id,omitempty"`
	ActorID    string                  `json:"actor_id,omitempty"`
	Target     models.TargetRef        `json:"target"`
	Status     models.ModerationStatus `json:"status,omitempty"`
	OccurredAt time.Time               `json:"occurred_at"`
}

// Publisher is what the services depend on
type Publisher interface {
	Publish(e Event)
}

// Handler consumes events off the worker pool. It runs outside any
// transaction and may do slow I/O.
type Handler func(ctx context.Context, e Event) error

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
