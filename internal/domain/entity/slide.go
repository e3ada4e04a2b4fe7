package entity

import "time"

// Slide is a slideshow image. The URL doubles as its identity.
type Slide struct {
	ID         string     `json:"id"`
	URL        string     `json:"url"`
	UploadedAt *time.Time `json:"uploadedAt,omitempty"`
}

// SlideFromURL builds the slide for a stored URL.
func SlideFromURL(url string) Slide {
	return Slide{ID: url, URL: url}
}
