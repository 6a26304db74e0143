package detection

import (
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go-sitrep/types"
)

const (
	dedupeSimilarityThreshold    = 0.82
	clusterDistanceMeters        = 2000.0
	earthRadiusMeters            = 6371000.0
	temporalWindow               = time.Hour
	defaultMinReportsForIncident = 1
)

// Clusterer groups reports that plausibly describe the same incident.
// Assignment is single-pass and greedy: each report is compared against the
// seed of every existing cluster in creation order and joins the first that
// accepts it. For a fixed input order the result is fully deterministic;
// reordering the batch can change membership.
type Clusterer struct {
	SimilarityThreshold float64
	DistanceMeters      float64
	TemporalWindow      time.Duration
	MinReports          int
}

func NewClusterer() *Clusterer {
	return &Clusterer{
		SimilarityThreshold: dedupeSimilarityThreshold,
		DistanceMeters:      clusterDistanceMeters,
		TemporalWindow:      temporalWindow,
		MinReports:          defaultMinReportsForIncident,
	}
}

func (c *Clusterer) Cluster(reports []types.Report) []types.Cluster {
	var clusters []types.Cluster

	for _, report := range reports {
		assigned := false
		for i := range clusters {
			if c.shouldAssign(&report, clusters[i].Seed()) {
				clusters[i].Reports = append(clusters[i].Reports, report)
				assigned = true
				break
			}
		}

		if !assigned {
			clusters = append(clusters, types.Cluster{
				ID:      uuid.NewString(),
				Label:   fmt.Sprintf("cluster_%d", len(clusters)+1),
				Seq:     len(clusters),
				Reports: []types.Report{report},
			})
		}
	}

	kept := make([]types.Cluster, 0, len(clusters))
	for _, cluster := range clusters {
		if len(cluster.Reports) >= c.MinReports {
			kept = append(kept, cluster)
		} else {
			log.Printf("Dropping cluster %s with %d report(s), below minimum %d",
				cluster.Label, len(cluster.Reports), c.MinReports)
		}
	}

	log.Printf("Clustering complete: %d report(s) into %d cluster(s)", len(reports), len(kept))
	return kept
}

// shouldAssign applies the three grouping criteria against the cluster seed.
// The spatial check is skipped when either side lacks coordinates; it never
// blocks assignment on missing geodata.
func (c *Clusterer) shouldAssign(report, seed *types.Report) bool {
	if report.Geotag.HasCoords() && seed.Geotag.HasCoords() {
		distance := haversineMeters(
			*report.Geotag.Lat, *report.Geotag.Lng,
			*seed.Geotag.Lat, *seed.Geotag.Lng,
		)
		if distance > c.DistanceMeters {
			return false
		}
	}

	delta := report.Timestamp.Sub(seed.Timestamp)
	if delta < 0 {
		delta = -delta
	}
	if delta > c.TemporalWindow {
		return false
	}

	return JaccardSimilarity(report.CanonicalText, seed.CanonicalText) >= c.SimilarityThreshold
}

// JaccardSimilarity compares the unique lower-cased whitespace-tokenized
// word sets of two texts.
func JaccardSimilarity(a, b string) float64 {
	setA := wordSet(a)
	setB := wordSet(b)

	intersection := 0
	for word := range setA {
		if setB[word] {
			intersection++
		}
	}

	union := len(setB)
	for word := range setA {
		if !setB[word] {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(text string) map[string]bool {
	set := map[string]bool{}
	for _, word := range strings.Fields(strings.ToLower(text)) {
		set[word] = true
	}
	return set
}

// haversineMeters calculates the great-circle distance between two points
// on the earth (specified in decimal degrees).
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	radLat1 := lat1 * math.Pi / 180
	radLat2 := lat2 * math.Pi / 180

	deltaLat := (lat2 - lat1) * math.Pi / 180
	deltaLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(radLat1)*math.Cos(radLat2)*
			math.Sin(deltaLng/2)*math.Sin(deltaLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}
