package events

import (
	"context"

	"github.com/duynhne/inventory-service/internal/core/domain"
	"github.com/duynhne/inventory-service/internal/logger"
)

// LogPublisher writes audit events to the request logger. It is used when no
// broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event domain.AuthEvent) error {
	logger.FromContext(ctx).Info().
		Str("event", string(event.Type)).
		Int64("user_id", event.UserID).
		Str("username", event.Username).
		Time("occurred_at", event.OccurredAt).
		Msg("Audit event")
	return nil
}
