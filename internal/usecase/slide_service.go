package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"propdesk-service/internal/domain/entity"
	"propdesk-service/internal/domain/repository"
	"propdesk-service/pkg/logger"
	"propdesk-service/pkg/metrics"
	"propdesk-service/pkg/utils"

	"golang.org/x/sync/errgroup"
)

// DefaultMaxSlides caps the slideshow of one property.
const DefaultMaxSlides = 15

// Upload is one file of a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// SlideUploadResult reports what an upload stored and how many files were
// dropped because the slideshow was full.
type SlideUploadResult struct {
	Added   []string `json:"added"`
	Skipped int      `json:"skipped"`
}

// SlideService manages slideshow images
type SlideService struct {
	properties repository.PropertyRepository
	blobs      repository.BlobStore
	maxSlides  int
	metrics    *metrics.Metrics
	logger     logger.Logger
	now        func() time.Time
}

// NewSlideService creates a new slide service. maxSlides <= 0 means
// DefaultMaxSlides.
func NewSlideService(
	properties repository.PropertyRepository,
	blobs repository.BlobStore,
	maxSlides int,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *SlideService {
	if maxSlides <= 0 {
		maxSlides = DefaultMaxSlides
	}
	return &SlideService{
		properties: properties,
		blobs:      blobs,
		maxSlides:  maxSlides,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Upload stores as many files as still fit and appends their URLs to the
// property. Files beyond the cap are skipped, not rejected; a full slideshow
// is an error. Uploads run concurrently and URLs keep the input order.
func (s *SlideService) Upload(ctx context.Context, propertyID string, files []Upload) (res *SlideUploadResult, err error) {
	defer track(s.metrics, OpUploadSlides, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no files", entity.ErrValidation)
	}

	current, err := s.properties.SlideURLs(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	room := s.maxSlides - len(current)
	if room <= 0 {
		return nil, fmt.Errorf("%d of %d slides used: %w", len(current), s.maxSlides, entity.ErrSlideLimit)
	}

	accepted := files
	if len(accepted) > room {
		accepted = accepted[:room]
	}

	urls := make([]string, len(accepted))
	now := s.now()
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range accepted {
		i, f := i, f
		g.Go(func() error {
			rc, err := f.Open()
			if err != nil {
				return fmt.Errorf("open %s: %w", f.Filename, err)
			}
			defer rc.Close()

			url, err := s.blobs.Upload(gctx, utils.SlideshowPath(propertyID, f.Filename, now), f.ContentType, rc)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Slide upload failed", "propertyID", propertyID, "error", err)
		s.discard(ctx, propertyID, urls)
		return nil, err
	}

	// Another upload may have filled the slideshow since the count above.
	if err := s.properties.AddSlideURLs(ctx, propertyID, urls, s.maxSlides); err != nil {
		s.logger.Warn("Slide URLs not stored", "propertyID", propertyID, "error", err)
		s.discard(ctx, propertyID, urls)
		return nil, err
	}

	res = &SlideUploadResult{Added: urls, Skipped: len(files) - len(accepted)}
	s.logger.Info("Slides uploaded", "propertyID", propertyID, "added", len(res.Added), "skipped", res.Skipped)
	return res, nil
}

// discard deletes images whose URLs never reached the property. Failures are
// logged and leave the image behind.
func (s *SlideService) discard(ctx context.Context, propertyID string, urls []string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		if err := s.blobs.DeleteByURL(context.WithoutCancel(ctx), url); err != nil {
			s.logger.Warn("Orphaned slide image", "propertyID", propertyID, "url", url, "error", err)
		}
	}
}

// Delete removes the stored image, then the URL from the property. A missing
// image still removes the URL.
func (s *SlideService) Delete(ctx context.Context, propertyID, url string) (err error) {
	defer track(s.metrics, OpDeleteSlide, time.Now(), &err)

	if err := requireProperty(propertyID); err != nil {
		return err
	}
	if url == "" {
		return fmt.Errorf("%w: url is required", entity.ErrValidation)
	}

	if err := s.blobs.DeleteByURL(ctx, url); err != nil {
		if !errors.Is(err, entity.ErrNotFound) {
			return err
		}
		s.logger.Warn("Slide image already gone", "propertyID", propertyID, "url", url)
	}

	if err := s.properties.RemoveSlideURL(ctx, propertyID, url); err != nil {
		return err
	}
	s.logger.Info("Slide deleted", "propertyID", propertyID, "url", url)
	return nil
}
