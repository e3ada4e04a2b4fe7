package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
)

// EventRepository defines the interface for event operations
type EventRepository interface {
	FindByID(ctx context.Context, propertyID, eventID string) (*entity.Event, error)
	Create(ctx context.Context, event *entity.Event) error
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, propertyID, eventID string) error
}
