package repository

import (
	"context"

	"propdesk-service/internal/domain/entity"
)

// ReasonSeed is the kiosk reason taxonomy written by cmd/seed.
type ReasonSeed struct {
	Maps             map[string]entity.ReasonMap
	StaffDepartments []string
	// PruneLegacy removes the singular legacy field names.
	PruneLegacy bool
}

// PropertyRepository defines the interface for property document operations
type PropertyRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Property, error)
	FindSummaries(ctx context.Context, ids []string) ([]entity.PropertySummary, error)
	SlideURLs(ctx context.Context, id string) ([]string, error)
	// AddSlideURLs fails with ErrSlideLimit unless the list has room for urls under limit.
	AddSlideURLs(ctx context.Context, id string, urls []string, limit int) error
	RemoveSlideURL(ctx context.Context, id string, url string) error
	SeedReasons(ctx context.Context, id string, seed ReasonSeed) error
}
