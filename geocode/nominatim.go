package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-sitrep/types"
)

// ErrNotFound is returned when Nominatim has no result for a query.
var ErrNotFound = errors.New("geocode not found")

// NominatimClient queries the OpenStreetMap Nominatim API. Results are
// cached and requests are rate-limited to one per second per their usage
// policy.
type NominatimClient struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]types.Geotag
}

func NewNominatimClient() *NominatimClient {
	return &NominatimClient{
		BaseURL:     "https://nominatim.openstreetmap.org",
		UserAgent:   "go-sitrep/1.0 (emergency-response)",
		MinInterval: time.Second,
		Client:      &http.Client{Timeout: 10 * time.Second},
		cache:       map[string]types.Geotag{},
	}
}

type nominatimItem struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

func (c *NominatimClient) Resolve(ctx context.Context, query string) (types.Geotag, error) {
	c.mu.Lock()
	if c.cache == nil {
		c.cache = map[string]types.Geotag{}
	}
	if cached, ok := c.cache[query]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	sleepFor := time.Until(c.lastReqAt.Add(c.MinInterval))
	if sleepFor > 0 {
		c.mu.Unlock()
		time.Sleep(sleepFor)
		c.mu.Lock()
	}
	c.lastReqAt = time.Now()
	c.mu.Unlock()

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1&countrycodes=in",
		c.BaseURL, url.QueryEscape(query+", India"))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return types.Geotag{}, err
	}
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.Client.Do(req)
	if err != nil {
		return types.Geotag{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return types.Geotag{}, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return types.Geotag{}, err
	}
	if len(items) == 0 {
		return types.Geotag{}, ErrNotFound
	}

	tag, err := itemGeotag(items[0], query)
	if err != nil {
		return types.Geotag{}, err
	}

	c.mu.Lock()
	c.cache[query] = tag
	c.mu.Unlock()

	return tag, nil
}

func itemGeotag(item nominatimItem, query string) (types.Geotag, error) {
	lat, err := strconv.ParseFloat(item.Lat, 64)
	if err != nil {
		return types.Geotag{}, err
	}
	lng, err := strconv.ParseFloat(item.Lon, 64)
	if err != nil {
		return types.Geotag{}, err
	}

	return types.Geotag{
		Lat:         &lat,
		Lng:         &lng,
		Confidence:  nominatimConfidence(item, query),
		Source:      "nominatim_osm",
		Query:       query,
		DisplayName: item.DisplayName,
	}, nil
}

// nominatimConfidence scales OSM importance into [0, 0.9] with a bonus for
// an exact name match in the display name.
func nominatimConfidence(item nominatimItem, query string) float64 {
	importance := item.Importance
	if importance == 0 {
		importance = 0.5
	}

	confidence := importance * 2
	if confidence > 0.9 {
		confidence = 0.9
	}
	if strings.Contains(strings.ToLower(item.DisplayName), strings.ToLower(query)) {
		confidence += 0.1
	}
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}
