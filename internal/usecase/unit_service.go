package usecase

import (
	"context"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"
)

// UnitService handles unit and resident record writes
type UnitService struct {
	units   repository.UnitRepository
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewUnitService creates a new unit service
func NewUnitService(units repository.UnitRepository, metrics *metrics.Metrics, logger logger.Logger) *UnitService {
	return &UnitService{
		units:   units,
		metrics: metrics,
		logger:  logger,
	}
}

func trimUnitInput(in entity.UnitInput) entity.UnitInput {
	in.UnitLabel = strings.TrimSpace(in.UnitLabel)
	in.ResidentNames = strings.TrimSpace(in.ResidentNames)
	in.Notes = strings.TrimSpace(in.Notes)
	return in
}

// Create adds a unit
func (s *UnitService) Create(ctx context.Context, propertyID string, in entity.UnitInput) (u *entity.Unit, err error) {
	defer track(s.metrics, OpCreateUnit, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	in = trimUnitInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	u = &entity.Unit{
		PropertyID:    propertyID,
		UnitLabel:     in.UnitLabel,
		ResidentNames: in.ResidentNames,
		Notes:         in.Notes,
		Active:        active,
	}
	if err := s.units.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("Unit created", "propertyID", propertyID, "unitID", u.ID)
	return u, nil
}

// Update edits the label, residents and notes of a unit
func (s *UnitService) Update(ctx context.Context, propertyID, unitID string, in entity.UnitInput) (u *entity.Unit, err error) {
	defer track(s.metrics, OpUpdateUnit, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	in = trimUnitInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	u = &entity.Unit{
		ID:            unitID,
		PropertyID:    propertyID,
		UnitLabel:     in.UnitLabel,
		ResidentNames: in.ResidentNames,
		Notes:         in.Notes,
	}
	if err := s.units.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("Unit updated", "propertyID", propertyID, "unitID", unitID)
	return u, nil
}

// Toggle flips a unit between active and inactive and returns the new state
func (s *UnitService) Toggle(ctx context.Context, propertyID, unitID string) (active bool, err error) {
	defer track(s.metrics, OpToggleUnit, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return false, err
	}
	active, err = s.units.ToggleActive(ctx, propertyID, unitID)
	if err != nil {
		return false, err
	}
	s.logger.Info("Unit toggled", "propertyID", propertyID, "unitID", unitID, "active", active)
	return active, nil
}
