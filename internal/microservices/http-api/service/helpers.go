package service

import (
	"log/slog"
	"time"

	"reviewhub/internal/cache"
	"reviewhub/internal/events"
	"reviewhub/internal/microservices/http-api/models"
)

// Options carries the collaborators every service shares. Nil fields fall
// back to no-op implementations.
type Options struct {
	StatsCache cache.StatsCache
	Publisher  events.Publisher
	Logger     *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.StatsCache == nil {
		o.StatsCache = cache.NopStatsCache{}
	}
	if o.Publisher == nil {
		o.Publisher = events.NopPublisher{}
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

func reviewEvent(t events.Type, r *models.Review, actorID string) events.Event {
	return events.Event{
		Type:       t,
		ReviewID:   r.ID,
		ActorID:    actorID,
		Target:     r.Target,
		Status:     r.Status,
		OccurredAt: time.Now().UTC(),
	}
}
