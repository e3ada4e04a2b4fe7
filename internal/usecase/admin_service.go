package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/pkg/logger"
)

// Cache is the byte cache behind property listings.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// AdminService resolves who is signed in and which properties they manage
type AdminService struct {
	admins     repository.AdminRepository
	properties repository.PropertyRepository
	cache      Cache
	ttl        time.Duration
	logger     logger.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	admins repository.AdminRepository,
	properties repository.PropertyRepository,
	cache Cache,
	ttl time.Duration,
	logger logger.Logger,
) *AdminService {
	return &AdminService{
		admins:     admins,
		properties: properties,
		cache:      cache,
		ttl:        ttl,
		logger:     logger,
	}
}

// Profile loads the admin profile for a verified uid. A signed-in user with
// no stored profile gets a concierge profile with no properties.
func (s *AdminService) Profile(ctx context.Context, uid, email string) (*entity.AdminProfile, error) {
	p, err := s.admins.GetByUID(ctx, uid)
	if err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		s.logger.Debug("No admin profile, using defaults", "uid", uid)
		p = &entity.AdminProfile{UID: uid}
	}
	if p.Email == "" {
		p.Email = email
	}
	p.Role = p.EffectiveRole()
	if p.AdminOf == nil {
		p.AdminOf = []string{}
	}
	return p, nil
}

func propertiesCacheKey(p *entity.AdminProfile) string {
	return "admin-properties:" + p.UID + ":" + strings.Join(p.AdminOf, ",")
}

// Properties lists the properties an admin manages, sorted by display name.
// Names fall back to the property id.
func (s *AdminService) Properties(ctx context.Context, p *entity.AdminProfile) ([]entity.PropertySummary, error) {
	if len(p.AdminOf) == 0 {
		return []entity.PropertySummary{}, nil
	}

	key := propertiesCacheKey(p)
	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		var cached []entity.PropertySummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	summaries, err := s.properties.FindSummaries(ctx, p.AdminOf)
	if err != nil {
		return nil, err
	}
	for i := range summaries {
		if summaries[i].Name == "" {
			summaries[i].Name = summaries[i].ID
		}
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		a, b := strings.ToLower(summaries[i].Name), strings.ToLower(summaries[j].Name)
		if a != b {
			return a < b
		}
		return summaries[i].ID < summaries[j].ID
	})

	if data, err := json.Marshal(summaries); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("Failed to cache property list", "uid", p.UID, "error", err)
		}
	}
	return summaries, nil
}
