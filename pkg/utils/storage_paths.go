package utils

import (
	"fmt"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SlideshowPath builds a unique object path for a slideshow upload, keeping
// the original extension ("bin" when there is none).
func SlideshowPath(propertyID, filename string, now time.Time) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("properties/%s/slideshows/%d_%s.%s", propertyID, now.UnixMilli(), uuid.NewString(), strings.ToLower(ext))
}

// EventImagePath builds the object path for an event image.
func EventImagePath(propertyID, filename string, now time.Time) string {
	safe := unsafeName.ReplaceAllString(strings.TrimSpace(filename), "_")
	if safe == "" {
		safe = "image"
	}
	return fmt.Sprintf("properties/%s/events/%d_%s", propertyID, now.UnixMilli(), safe)
}
