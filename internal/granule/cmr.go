// Package granule locates MODIS granules via the NASA CMR catalog.
package granule

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

const (
	defaultCMRURL    = "https://cmr.earthdata.nasa.gov/search/granules.json"
	defaultShortName = "MOD04_L2"
	searchTimeout    = 30 * time.Second
)

// CMRLocator implements aod.GranuleLocator against the CMR granule search
// endpoint. Requests go through a circuit breaker but are never retried; the
// pipeline policy is one attempt per stage.
type CMRLocator struct {
	shortName string
	baseURL   string
	client    *http.Client
	circuit   *gobreaker.CircuitBreaker
}

// NewCMRLocator creates a locator for the given product short name. An empty
// shortName selects the MODIS Terra aerosol product.
func NewCMRLocator(client *http.Client, shortName string) *CMRLocator {
	if shortName == "" {
		shortName = defaultShortName
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "cmr",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &CMRLocator{
		shortName: shortName,
		baseURL:   defaultCMRURL,
		client:    client,
		circuit:   cb,
	}
}

// cmrFeed mirrors the subset of the CMR granules.json response we consume.
type cmrFeed struct {
	Feed struct {
		Entry []cmrEntry `json:"entry"`
	} `json:"feed"`
}

type cmrEntry struct {
	Title     string `json:"title"`
	TimeStart string `json:"time_start"`
	Links     []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// Search returns the most recent granule covering the point on the calendar
// day of date. A zero date means the current UTC day.
func (l *CMRLocator) Search(ctx context.Context, lat, lon float64, date time.Time) (aod.Granule, error) {
	window := aod.DayWindow(date)
	box := aod.BoxAround(lat, lon)

	values := url.Values{}
	values.Set("short_name", l.shortName)
	values.Set("temporal", window.String())
	values.Set("bounding_box", box.String())
	values.Set("page_size", "1")
	values.Set("sort_key", "-start_date")

	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return aod.Granule{}, aod.WrapErr(aod.KindTransport, "granule.Search", err)
	}

	result, err := l.circuit.Execute(func() (interface{}, error) {
		resp, execErr := l.client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, aod.Errorf(aod.KindTransport, "granule.Search",
				"unexpected status code %d", resp.StatusCode)
		}

		var feed cmrFeed
		if decErr := json.NewDecoder(resp.Body).Decode(&feed); decErr != nil {
			return nil, decErr
		}
		return &feed, nil
	})
	if err != nil {
		if aod.KindOf(err) != aod.KindUnknown {
			return aod.Granule{}, err
		}
		return aod.Granule{}, aod.WrapErr(aod.KindTransport, "granule.Search", err)
	}

	feed := result.(*cmrFeed)
	entries := feed.Feed.Entry
	if len(entries) == 0 {
		return aod.Granule{}, aod.Errorf(aod.KindLookup, "granule.Search",
			"no %s granules found for (%g, %g) on %s", l.shortName,
			lat, lon, window.Start.Format("2006-01-02"))
	}

	entry := entries[0]
	downloadURL, err := pickDownloadLink(entry)
	if err != nil {
		return aod.Granule{}, err
	}

	return aod.Granule{
		ID:          entry.Title,
		TimeStart:   entry.TimeStart,
		DownloadURL: downloadURL,
	}, nil
}

// pickDownloadLink prefers a direct .hdf link; otherwise it falls back to the
// first link whose relation tag denotes a data resource.
func pickDownloadLink(entry cmrEntry) (string, error) {
	for _, link := range entry.Links {
		if strings.HasSuffix(stripQuery(link.Href), ".hdf") {
			return link.Href, nil
		}
	}
	for _, link := range entry.Links {
		if strings.HasSuffix(link.Rel, "/data#") && link.Href != "" {
			return link.Href, nil
		}
	}
	return "", aod.Errorf(aod.KindLookup, "granule.Search",
		"no downloadable HDF link found for granule %s", entry.Title)
}

func stripQuery(href string) string {
	if i := strings.IndexByte(href, '?'); i >= 0 {
		return href[:i]
	}
	return href
}
