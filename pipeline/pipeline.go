package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go-sitrep/detection"
	"go-sitrep/extract"
	"go-sitrep/geocode"
	"go-sitrep/normalize"
	"go-sitrep/translate"
	"go-sitrep/types"
)

// ErrNoIncidents distinguishes "nothing could be formed from this batch"
// from a processing failure.
var ErrNoIncidents = errors.New("no valid incidents could be formed from the provided reports")

// CanonicalLanguage is the working language facts are extracted from.
const CanonicalLanguage = "en"

// Pipeline runs a batch of raw reports through normalization, translation,
// fact extraction, geotagging, clustering, and verification.
type Pipeline struct {
	Translator translate.Gateway
	Geocoder   geocode.Resolver
	Clusterer  *detection.Clusterer
}

func New(translator translate.Gateway, geocoder geocode.Resolver) *Pipeline {
	return &Pipeline{
		Translator: translator,
		Geocoder:   geocoder,
		Clusterer:  detection.NewClusterer(),
	}
}

// Process returns the scored clusters for one batch. Per-report enrichment
// fans out concurrently (each goroutine touches only its own report);
// clustering and verification run sequentially after the barrier because
// assignment is order-sensitive.
func (p *Pipeline) Process(ctx context.Context, reports []types.Report) ([]types.Cluster, error) {
	valid := p.ingest(reports)
	if len(valid) == 0 {
		return nil, ErrNoIncidents
	}

	var wg sync.WaitGroup
	for i := range valid {
		wg.Add(1)
		go func(r *types.Report) {
			defer wg.Done()
			p.enrich(ctx, r)
		}(&valid[i])
	}
	wg.Wait()

	clusters := p.Clusterer.Cluster(valid)
	if len(clusters) == 0 {
		return nil, ErrNoIncidents
	}
	detection.Verify(clusters)

	return clusters, nil
}

// ingest validates required fields and fills defaults. A malformed report is
// dropped with a warning; it never fails the batch.
func (p *Pipeline) ingest(reports []types.Report) []types.Report {
	valid := make([]types.Report, 0, len(reports))
	for _, r := range reports {
		if r.ID == "" || r.RawText == "" {
			log.Printf("Report missing required fields, dropping (id=%q)", r.ID)
			continue
		}

		if r.OriginalLanguage == "" {
			r.OriginalLanguage = "auto"
		}
		if r.SourceType == "" {
			r.SourceType = "text"
		}
		if r.Timestamp.IsZero() {
			r.Timestamp = time.Now().UTC()
		}
		if r.ReporterMeta.Source == "" {
			r.ReporterMeta.Source = "unknown"
		}
		if r.ReporterMeta.Credibility == "" {
			r.ReporterMeta.Credibility = types.CredibilityUnknown
		}

		valid = append(valid, r)
	}
	return valid
}

// enrich runs every per-report stage in order. Each stage only adds derived
// fields; nothing set earlier is cleared.
func (p *Pipeline) enrich(ctx context.Context, r *types.Report) {
	r.NormalizedText = normalize.Text(r.RawText)

	lang := r.OriginalLanguage
	if lang == "auto" {
		lang = p.Translator.Detect(ctx, r.NormalizedText)
		r.DetectedLanguage = lang
	}
	r.CanonicalText = p.Translator.Translate(ctx, r.NormalizedText, lang, CanonicalLanguage)

	extract.Apply(r)

	r.Geotag = p.geotag(ctx, r.LocationNames)
}

// geotag resolves each candidate location in extraction order and keeps the
// single highest-confidence result.
func (p *Pipeline) geotag(ctx context.Context, names []string) types.Geotag {
	best := types.Geotag{Confidence: 0.0, Source: "no_location_found"}
	for _, name := range names {
		tag := p.Geocoder.Resolve(ctx, name)
		if tag.Confidence > best.Confidence {
			best = tag
		}
	}
	return best
}
