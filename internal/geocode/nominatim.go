package geocode

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// Nominatim implements aod.Geocoder against the OpenStreetMap Nominatim
// service. Nominatim's usage policy caps clients at one request per second,
// so every call waits on the shared rate limiter. Results are not cached;
// each call re-queries.
type Nominatim struct {
	userAgent string
	baseURL   string
	client    *http.Client
	limiter   *RateLimiter
}

// NewNominatim creates a rate-limited Nominatim geocoder.
func NewNominatim(client *http.Client) *Nominatim {
	return &Nominatim{
		userAgent: "ai-air-quality-modis",
		baseURL:   defaultNominatimURL,
		client:    client,
		limiter:   NewRateLimiter(1 * time.Second),
	}
}

func (n *Nominatim) Geocode(ctx context.Context, name string) (aod.Location, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return aod.Location{}, aod.WrapErr(aod.KindTransport, "geocode.Nominatim", err)
	}

	values := url.Values{}
	values.Set("q", name)
	values.Set("format", "json")
	values.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return aod.Location{}, aod.WrapErr(aod.KindTransport, "geocode.Nominatim", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.client.Do(req)
	if err != nil {
		return aod.Location{}, aod.WrapErr(aod.KindTransport, "geocode.Nominatim", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return aod.Location{}, aod.Errorf(aod.KindTransport, "geocode.Nominatim",
			"unexpected status code %d", resp.StatusCode)
	}

	// Nominatim encodes coordinates as strings.
	var payload []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return aod.Location{}, aod.WrapErr(aod.KindTransport, "geocode.Nominatim", err)
	}

	if len(payload) == 0 {
		return aod.Location{}, aod.Errorf(aod.KindLookup, "geocode.Nominatim",
			"unable to geocode city: %s", name)
	}

	lat, err := strconv.ParseFloat(payload[0].Lat, 64)
	if err != nil {
		return aod.Location{}, aod.Errorf(aod.KindLookup, "geocode.Nominatim",
			"invalid latitude %q for %s", payload[0].Lat, name)
	}
	lon, err := strconv.ParseFloat(payload[0].Lon, 64)
	if err != nil {
		return aod.Location{}, aod.Errorf(aod.KindLookup, "geocode.Nominatim",
			"invalid longitude %q for %s", payload[0].Lon, name)
	}

	return aod.Location{Name: name, Latitude: lat, Longitude: lon}, nil
}
