package interfaces

import (
	"context"

	"daggergm/internal/models"
)

// EventPublisher pushes adventure updates to the notification queue after a
// successful mutation. Publishing is best effort: the lifecycle logs and
// continues on failure, it never rolls back persisted state.
type EventPublisher interface {
	PublishAdventureUpdate(ctx context.Context, update models.AdventureUpdate) error
}
