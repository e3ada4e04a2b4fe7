package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"
	"propdesk-service/pkg/utils"
)

// EventService manages property events and their images
type EventService struct {
	events  repository.EventRepository
	blobs   repository.BlobStore
	metrics *metrics.Metrics
	logger  logger.Logger
	now     func() time.Time
}

// NewEventService creates a new event service
func NewEventService(events repository.EventRepository, blobs repository.BlobStore, metrics *metrics.Metrics, logger logger.Logger) *EventService {
	return &EventService{
		events:  events,
		blobs:   blobs,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}
}

func normalizeEventInput(in entity.EventInput) entity.EventInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.SignUpLink = strings.TrimSpace(in.SignUpLink)
	in.Location = strings.TrimSpace(in.Location)
	if in.Status == "" {
		in.Status = entity.EventUpcoming
	}
	return in
}

func (s *EventService) uploadImage(ctx context.Context, propertyID string, img *Upload) (string, error) {
	rc, err := img.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", img.Filename, err)
	}
	defer rc.Close()
	return s.blobs.Upload(ctx, utils.EventImagePath(propertyID, img.Filename, s.now()), img.ContentType, rc)
}

// deleteImage is best effort: the event write already happened.
func (s *EventService) deleteImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.blobs.DeleteByURL(ctx, url); err != nil && !errors.Is(err, entity.ErrNotFound) {
		s.logger.Warn("Failed to delete event image", "url", url, "error", err)
	}
}

// Create adds an event. img may be nil.
func (s *EventService) Create(ctx context.Context, propertyID, staffID string, in entity.EventInput, img *Upload) (e *entity.Event, err error) {
	defer track(s.metrics, OpCreateEvent, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	in = normalizeEventInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	start := in.StartAt.UTC()
	e = &entity.Event{
		PropertyID:       propertyID,
		Title:            in.Title,
		Description:      in.Description,
		Status:           in.Status,
		StartAt:          &start,
		SignUpLink:       in.SignUpLink,
		Location:         in.Location,
		CreatedByStaffID: staffID,
	}
	if img != nil {
		if e.ImageURL, err = s.uploadImage(ctx, propertyID, img); err != nil {
			return nil, err
		}
	}

	if err := s.events.Create(ctx, e); err != nil {
		s.deleteImage(ctx, e.ImageURL)
		return nil, err
	}
	s.logger.Info("Event created", "propertyID", propertyID, "eventID", e.ID)
	return e, nil
}

// Update edits an event. A new image replaces the stored one.
func (s *EventService) Update(ctx context.Context, propertyID, eventID string, in entity.EventInput, img *Upload) (e *entity.Event, err error) {
	defer track(s.metrics, OpUpdateEvent, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	in = normalizeEventInput(in)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	e, err = s.events.FindByID(ctx, propertyID, eventID)
	if err != nil {
		return nil, err
	}
	oldImage := e.ImageURL

	start := in.StartAt.UTC()
	e.Title = in.Title
	e.Description = in.Description
	e.Status = in.Status
	e.StartAt = &start
	e.SignUpLink = in.SignUpLink
	e.Location = in.Location
	if img != nil {
		if e.ImageURL, err = s.uploadImage(ctx, propertyID, img); err != nil {
			return nil, err
		}
	}

	if err := s.events.Update(ctx, e); err != nil {
		if img != nil {
			s.deleteImage(ctx, e.ImageURL)
		}
		return nil, err
	}
	if img != nil && oldImage != e.ImageURL {
		s.deleteImage(ctx, oldImage)
	}
	s.logger.Info("Event updated", "propertyID", propertyID, "eventID", eventID)
	return e, nil
}

// Delete removes an event and its image
func (s *EventService) Delete(ctx context.Context, propertyID, eventID string) (err error) {
	defer track(s.metrics, OpDeleteEvent, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return err
	}
	e, err := s.events.FindByID(ctx, propertyID, eventID)
	if err != nil {
		return err
	}
	if err := s.events.Delete(ctx, propertyID, eventID); err != nil {
		return err
	}
	s.deleteImage(ctx, e.ImageURL)
	s.logger.Info("Event deleted", "propertyID", propertyID, "eventID", eventID)
	return nil
}
