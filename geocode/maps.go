package geocode

import (
	"context"
	"fmt"
	"os"
	"sync"

	"go-sitrep/types"

	"googlemaps.github.io/maps"
)

// mapsClient is a singleton maps client instance.
var (
	mapsClient *maps.Client
	clientOnce sync.Once
	clientErr  error
)

// InitMapsClient initializes and returns a singleton Google Maps client.
func InitMapsClient() (*maps.Client, error) {
	clientOnce.Do(func() {
		apiKey := os.Getenv("MAPS_CREDENTIALS")
		if apiKey == "" {
			clientErr = fmt.Errorf("MAPS_CREDENTIALS environment variable not set")
			return
		}
		mapsClient, clientErr = maps.NewClient(maps.WithAPIKey(apiKey))
	})
	return mapsClient, clientErr
}

// resolveWithMaps forward-geocodes through the Google Maps API. The API does
// not expose a match quality score, so the first result carries a fixed
// confidence.
func (s *Service) resolveWithMaps(ctx context.Context, query string) (types.Geotag, bool) {
	req := &maps.GeocodingRequest{
		Address: query + ", India",
		Region:  "in",
	}

	results, err := s.mapsClient.Geocode(ctx, req)
	if err != nil || len(results) == 0 {
		return types.Geotag{}, false
	}

	loc := results[0].Geometry.Location
	lat, lng := loc.Lat, loc.Lng
	return types.Geotag{
		Lat:         &lat,
		Lng:         &lng,
		Confidence:  0.85,
		Source:      "google_maps",
		Query:       query,
		DisplayName: results[0].FormattedAddress,
	}, true
}
