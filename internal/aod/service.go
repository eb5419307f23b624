package aod

import (
	"context"
	"log"
	"time"
)

// Geocoder resolves a free-text place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (Location, error)
}

// GranuleLocator finds the best granule covering a point on a given day.
type GranuleLocator interface {
	Search(ctx context.Context, lat, lon float64, date time.Time) (Granule, error)
}

// Downloader fetches a granule payload and returns the local file path.
// Already-cached payloads must be returned without network I/O.
type Downloader interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Extractor reads the AOD value nearest to the target coordinates out of a
// downloaded raster file.
type Extractor interface {
	Extract(path string, lat, lon float64) (float64, error)
}

// Store keeps a per-city history of readings.
type Store interface {
	Save(r Reading)
	Latest(city string) (Reading, error)
	Range(city string, from, to time.Time) ([]Reading, error)
}

// Sink optionally persists a single reading as one tabular row.
type Sink interface {
	Write(r Reading) error
}

// Credentials are the Earthdata basic-auth credentials required for granule
// downloads.
type Credentials struct {
	Username string
	Password string
}

// Service sequences geocoding, granule search, download and extraction into
// one live fetch. It performs no retries and no recovery; the first stage
// failure aborts the pipeline.
type Service struct {
	geocoder   Geocoder
	locator    GranuleLocator
	downloader Downloader
	extractor  Extractor
	creds      Credentials

	store Store // optional
	sink  Sink  // optional
}

// NewService creates a new Service. store and sink may be nil.
func NewService(g Geocoder, l GranuleLocator, d Downloader, e Extractor, creds Credentials, store Store, sink Sink) *Service {
	return &Service{
		geocoder:   g,
		locator:    l,
		downloader: d,
		extractor:  e,
		creds:      creds,
		store:      store,
		sink:       sink,
	}
}

// FetchLive runs the full pipeline for one city. A zero date means the
// current UTC day.
func (s *Service) FetchLive(ctx context.Context, city string, date time.Time) (Reading, error) {
	// Credentials are checked before any network call so a misconfigured
	// deployment fails in a distinguishable way.
	if s.creds.Username == "" || s.creds.Password == "" {
		return Reading{}, Errorf(KindConfiguration, "aod.FetchLive",
			"EARTHDATA_USERNAME and EARTHDATA_PASSWORD are required for live fetches")
	}

	loc, err := s.geocoder.Geocode(ctx, city)
	if err != nil {
		return Reading{}, err
	}

	granule, err := s.locator.Search(ctx, loc.Latitude, loc.Longitude, date)
	if err != nil {
		return Reading{}, err
	}

	path, err := s.downloader.Fetch(ctx, granule.DownloadURL)
	if err != nil {
		return Reading{}, err
	}

	value, err := s.extractor.Extract(path, loc.Latitude, loc.Longitude)
	if err != nil {
		return Reading{}, err
	}

	reading := Reading{
		City:      city,
		Date:      isoDate(granule.TimeStart),
		Latitude:  loc.Latitude,
		Longitude: loc.Longitude,
		AOD:       value,
		GranuleID: granule.ID,
		SourceURL: granule.DownloadURL,
	}

	if s.store != nil {
		s.store.Save(reading)
	}
	if s.sink != nil {
		if err := s.sink.Write(reading); err != nil {
			// The reading itself is good; losing the export row is not fatal.
			log.Printf("aod: failed to write reading for %s to sink: %v", city, err)
		}
	}

	return reading, nil
}

// Latest delegates to the underlying store.
func (s *Service) Latest(city string) (Reading, error) {
	return s.store.Latest(city)
}

// Range delegates to the underlying store.
func (s *Service) Range(city string, from, to time.Time) ([]Reading, error) {
	return s.store.Range(city, from, to)
}

// isoDate takes the leading YYYY-MM-DD out of a granule time_start string.
func isoDate(timeStart string) string {
	if len(timeStart) >= 10 {
		return timeStart[:10]
	}
	return timeStart
}
