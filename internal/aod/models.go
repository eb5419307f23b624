package aod

import (
	"fmt"
	"time"
)

// Location is a geocoded place. It is produced once per request and never
// mutated afterwards.
type Location struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// TimeWindow is a half-open interval [Start, End), always exactly one UTC
// calendar day.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// DayWindow returns the UTC calendar day containing t. A zero t means "now".
func DayWindow(t time.Time) TimeWindow {
	if t.IsZero() {
		t = time.Now().UTC()
	}
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// String formats the window the way the CMR temporal parameter expects it.
func (w TimeWindow) String() string {
	return w.Start.Format(time.RFC3339) + "," + w.End.Format(time.RFC3339)
}

// BoundingBox is a rectangular spatial filter in degrees.
type BoundingBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// BoxAround returns a 1x1 degree box centered on the coordinates. The small
// radius is what makes planar distance an acceptable approximation downstream.
func BoxAround(lat, lon float64) BoundingBox {
	return BoundingBox{
		MinLon: lon - 0.5,
		MinLat: lat - 0.5,
		MaxLon: lon + 0.5,
		MaxLat: lat + 0.5,
	}
}

// String formats the box the way the CMR bounding_box parameter expects it.
func (b BoundingBox) String() string {
	return fmt.Sprintf("%g,%g,%g,%g", b.MinLon, b.MinLat, b.MaxLon, b.MaxLat)
}

// Granule is one discrete satellite data product instance selected from a
// catalog search result.
type Granule struct {
	ID          string `json:"granuleId"`
	TimeStart   string `json:"timeStart"`
	DownloadURL string `json:"downloadUrl"`
}

// Reading is the final result of one live fetch.
type Reading struct {
	City      string  `json:"city"`
	Date      string  `json:"date"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	AOD       float64 `json:"modisAod"`
	GranuleID string  `json:"granuleId"`
	SourceURL string  `json:"sourceUrl"`
}
