package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
)

// UnitRepository defines the interface for unit writes. Update refreshes
// the unit it is given from the stored document.
type UnitRepository interface {
	Create(ctx context.Context, unit *entity.Unit) error
	Update(ctx context.Context, unit *entity.Unit) error
	ToggleActive(ctx context.Context, propertyID, unitID string) (bool, error)
}
