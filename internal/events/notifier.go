package events

import (
	"context"
	"log/slog"
)

// LogNotifier stands in for the delivery collaborator (email/push). It
// records who would be told about what.
func LogNotifier(logger *slog.Logger) Handler {
	return func(ctx context.Context, e Event) error {
		switch e.Type {
		case ResponseCreated:
			logger.Info("notify_reviewer_of_response",
				"review_id", e.ReviewID,
				"response_id", e.ResponseID,
				"responder_id", e.ActorID,
			)
		case ReviewModerated:
			logger.Info("notify_reviewer_of_moderation",
				"review_id", e.ReviewID,
				"status", e.Status,
			)
		default:
			logger.Debug("review_event", "type", e.Type, "review_id", e.ReviewID, "target", e.Target.String())
		}
		return nil
	}
}
