package utils

import (
	"fmt"
	"image"
	"io"
	"log"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// CaptureMetadata holds what artwork entry can be prefilled from an
// uploaded image file: its pixel dimensions and, when EXIF carries it, the
// capture time.
type CaptureMetadata struct {
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
	TakenAt *int64 `json:"taken_at,omitempty"` // Unix timestamp
}

// CaptureYear returns the year of the capture time, or nil when unknown.
// Used to prefill an artwork's creation year when the admin left it unset.
func (m *CaptureMetadata) CaptureYear() *int {
	if m == nil || m.TakenAt == nil {
		return nil
	}
	year := unixYear(*m.TakenAt)
	return &year
}

// GetCaptureMetadata extracts dimensions and capture time from an image
// stream. Missing EXIF data is not an error; the file may simply lack it.
func GetCaptureMetadata(file io.ReadSeeker) (*CaptureMetadata, error) {
	config, format, err := image.DecodeConfig(file)
	var width, height *int
	if err == nil {
		w, h := config.Width, config.Height
		width = &w
		height = &h
		log.Printf("metadata: Decoded dimensions (format: %s): %dx%d", format, *width, *height)
	} else {
		log.Printf("metadata: Warning - Could not decode config for dimensions: %v", err)
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("metadata: failed to seek image stream: %w", err)
	}

	meta := &CaptureMetadata{Width: width, Height: height}

	exifData, err := exif.Decode(file)
	if err != nil {
		// not necessarily a fatal error, file might just lack EXIF data
		log.Printf("metadata: No EXIF data found or error decoding EXIF: %v", err)
		return meta, nil
	}

	dt, err := exifData.DateTime()
	if err == nil {
		ts := dt.Unix()
		meta.TakenAt = &ts
	} else {
		log.Printf("metadata: Could not read DateTimeOriginal: %v", err)
	}

	return meta, nil
}

func unixYear(ts int64) int {
	return time.Unix(ts, 0).UTC().Year()
}
