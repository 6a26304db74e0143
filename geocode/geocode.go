package geocode

import (
	"context"
	"log"
	"regexp"
	"strings"

	"go-sitrep/types"

	"googlemaps.github.io/maps"
)

// Resolver is the geocoding collaborator consumed by the pipeline. It always
// returns a usable geotag; failures surface as low confidence, not errors.
type Resolver interface {
	Resolve(ctx context.Context, location string) types.Geotag
}

type gazetteerEntry struct {
	name       string
	lat        float64
	lng        float64
	confidence float64
}

// Known locations checked before any network call. Ordered so partial-match
// scanning is deterministic.
var gazetteer = []gazetteerEntry{
	{"karol bagh", 28.6531, 77.1900, 0.95},
	{"delhi", 28.6139, 77.2090, 0.90},
	{"new delhi", 28.6139, 77.2090, 0.90},
	{"connaught place", 28.6315, 77.2167, 0.85},
	{"india gate", 28.6129, 77.2295, 0.85},
	{"mumbai", 19.0760, 72.8777, 0.90},
	{"kolkata", 22.5726, 88.3639, 0.90},
	{"bengaluru", 12.9716, 77.5946, 0.90},
	{"bangalore", 12.9716, 77.5946, 0.90},
	{"chennai", 13.0827, 80.2707, 0.90},
}

var queryAliases = map[string]string{
	"new delhi": "delhi",
	"bengaluru": "bangalore",
	"kolkatta":  "kolkata",
	"bombay":    "mumbai",
	"madras":    "chennai",
}

var (
	queryPrefixRe = regexp.MustCompile(`^(near|in|at|around)\s+`)
	querySuffixRe = regexp.MustCompile(`\s+(area|region|district|zone)$`)
)

// Service resolves location strings through tiers: gazetteer exact/partial,
// Google Maps (when configured), Nominatim, then fuzzy gazetteer matching,
// with a Delhi-centre low-confidence fallback.
type Service struct {
	mapsClient *maps.Client
	nominatim  *NominatimClient
}

// NewService wires the available backends. A missing Maps key just disables
// that tier.
func NewService() *Service {
	s := &Service{nominatim: NewNominatimClient()}

	client, err := InitMapsClient()
	if err != nil {
		log.Printf("Google Maps geocoding disabled: %v", err)
	} else {
		s.mapsClient = client
	}
	return s
}

func (s *Service) Resolve(ctx context.Context, location string) types.Geotag {
	query := NormalizeQuery(location)

	if tag, ok := searchGazetteer(query); ok && tag.Confidence >= 0.7 {
		return tag
	}

	if s.mapsClient != nil {
		if tag, ok := s.resolveWithMaps(ctx, query); ok && tag.Confidence >= 0.5 {
			return tag
		}
	}

	if s.nominatim != nil {
		tag, err := s.nominatim.Resolve(ctx, query)
		if err != nil {
			log.Printf("External geocoding failed for %q: %v", query, err)
		} else if tag.Confidence >= 0.5 {
			return tag
		}
	}

	if tag, ok := fuzzyGazetteer(query); ok && tag.Confidence >= 0.3 {
		return tag
	}

	// Last resort: city centre with just enough confidence to plot.
	lat, lng := 28.6139, 77.2090
	return types.Geotag{
		Lat:        &lat,
		Lng:        &lng,
		Confidence: 0.1,
		Source:     "fallback_delhi_center",
		Query:      location,
	}
}

// NormalizeQuery lowercases, strips locational prefixes/suffixes, and folds
// common city-name variants.
func NormalizeQuery(location string) string {
	q := strings.ToLower(strings.TrimSpace(location))
	q = queryPrefixRe.ReplaceAllString(q, "")
	q = querySuffixRe.ReplaceAllString(q, "")
	if alias, ok := queryAliases[q]; ok {
		return alias
	}
	return q
}

func searchGazetteer(query string) (types.Geotag, bool) {
	for _, entry := range gazetteer {
		if entry.name == query {
			return entryGeotag(entry, entry.confidence, "local_database_exact", query), true
		}
	}

	for _, entry := range gazetteer {
		if strings.Contains(entry.name, query) || strings.Contains(query, entry.name) {
			// Reduced confidence for a partial match.
			return entryGeotag(entry, entry.confidence*0.8, "local_database_partial", query), true
		}
	}

	return types.Geotag{}, false
}

func fuzzyGazetteer(query string) (types.Geotag, bool) {
	var best *gazetteerEntry
	lowest := 4

	for i := range gazetteer {
		d := levenshtein(query, gazetteer[i].name)
		if d < lowest && d <= 3 {
			lowest = d
			best = &gazetteer[i]
		}
	}
	if best == nil {
		return types.Geotag{}, false
	}

	maxLen := len(query)
	if len(best.name) > maxLen {
		maxLen = len(best.name)
	}
	similarity := 1 - float64(lowest)/float64(maxLen)
	confidence := similarity * best.confidence * 0.6

	tag := entryGeotag(*best, confidence, "local_database_fuzzy", query)
	tag.DisplayName = best.name
	return tag, true
}

func entryGeotag(entry gazetteerEntry, confidence float64, source, query string) types.Geotag {
	lat, lng := entry.lat, entry.lng
	return types.Geotag{
		Lat:        &lat,
		Lng:        &lng,
		Confidence: confidence,
		Source:     source,
		Query:      query,
	}
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
