package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatRole(t *testing.T) {
	assert.Equal(t, "—", FormatRole(""))
	assert.Equal(t, "Resident", FormatRole("resident"))
	assert.Equal(t, "Future resident", FormatRole("futureResident"))
	assert.Equal(t, "contractor", FormatRole("contractor"))
}

func TestFormatTimeLabel(t *testing.T) {
	cases := map[string]string{
		"":      "",
		"00:00": "12:00 AM",
		"06:30": "6:30 AM",
		"12:00": "12:00 PM",
		"13:15": "1:15 PM",
		"20":    "8:00 PM",
		"noon":  "noon",
		"25:00": "25:00",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatTimeLabel(in), in)
	}
}

func TestComputeEndTime(t *testing.T) {
	assert.Equal(t, "10:30", ComputeEndTime("09:00", 90))
	assert.Equal(t, "09:00", ComputeEndTime("09:00", 0))
	assert.Equal(t, "01:00", ComputeEndTime("23:00", 120))
	assert.Equal(t, "", ComputeEndTime("", 60))
	assert.Equal(t, "", ComputeEndTime("09:00", -5))
}

func TestStoragePaths(t *testing.T) {
	now := time.UnixMilli(1718000000000)

	p := SlideshowPath("p1", "Lobby.JPG", now)
	assert.Regexp(t, regexp.MustCompile(`^properties/p1/slideshows/1718000000000_[0-9a-f-]{36}\.jpg$`), p)
	assert.NotEqual(t, p, SlideshowPath("p1", "Lobby.JPG", now))
	assert.Regexp(t, `\.bin$`, SlideshowPath("p1", "noext", now))

	assert.Equal(t, "properties/p1/events/1718000000000_pool_party_.png", EventImagePath("p1", "pool party!.png", now))
	assert.Equal(t, "properties/p1/events/1718000000000_image", EventImagePath("p1", "  ", now))
}
