package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
)

// AdminRepository defines the interface for console user profiles
type AdminRepository interface {
	GetByUID(ctx context.Context, uid string) (*entity.AdminProfile, error)
	Upsert(ctx context.Context, profile *entity.AdminProfile) error
}
