package geocode

import (
	"context"

	"github.com/kelvins/geocoder"

	"github.com/Fareedh-7/Ai-Air-Quality/internal/aod"
)

// Google implements aod.Geocoder against the Google Geocoding API via the
// kelvins/geocoder client. Selected with GEOCODER=google; requires an API key.
type Google struct {
	limiter *RateLimiter
}

// NewGoogle configures the Google geocoding backend. The kelvins client keys
// itself off a package-level API key.
func NewGoogle(apiKey string, limiter *RateLimiter) *Google {
	geocoder.ApiKey = apiKey
	return &Google{limiter: limiter}
}

func (g *Google) Geocode(ctx context.Context, name string) (aod.Location, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return aod.Location{}, aod.WrapErr(aod.KindTransport, "geocode.Google", err)
		}
	}

	loc, err := geocoder.Geocoding(geocoder.Address{City: name})
	if err != nil {
		return aod.Location{}, aod.Errorf(aod.KindLookup, "geocode.Google",
			"unable to geocode city %s: %v", name, err)
	}

	return aod.Location{Name: name, Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}
