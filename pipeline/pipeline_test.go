package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"go-sitrep/translate"
	"go-sitrep/types"
)

var testTime = time.Date(2025, 11, 15, 7, 11, 50, 0, time.UTC)

// stubGateway maps known source texts to a shared canonical English text,
// standing in for the translation backend.
type stubGateway struct {
	canonical map[string]string
}

func (s stubGateway) Detect(_ context.Context, text string) string {
	return translate.DetectByScript(text)
}

func (s stubGateway) Translate(_ context.Context, text, _, target string) string {
	if target == "en" {
		if english, ok := s.canonical[text]; ok {
			return english
		}
	}
	return text
}

func (s stubGateway) FanOut(_ context.Context, text string, targets []string) map[string]string {
	out := make(map[string]string, len(targets))
	for _, locale := range targets {
		out[locale] = text
	}
	return out
}

// stubResolver resolves any Karol Bagh query to fixed coordinates.
type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, location string) types.Geotag {
	if location == "Karol Bagh" || location == "Karol Bagh, Delhi" {
		lat, lng := 28.6531, 77.1900
		return types.Geotag{Lat: &lat, Lng: &lng, Confidence: 0.95, Source: "local_database_exact", Query: location}
	}
	return types.Geotag{Confidence: 0, Query: location}
}

const canonicalExplosion = "Loud explosion reported near Karol Bagh in Delhi. Many people heard the blast. No confirmed casualties yet."

func trilingualBatch() []types.Report {
	hindi := "दिल्ली के करोल बाग में एक जोरदार धमाका हुआ, कई लोगों ने सुना"
	bengali := "করোল বাগ এলাকায় বিস্ফোরণ শোনা গেছে, লোকেরা বাইরে হয়েছে"

	return []types.Report{
		{ID: "r1", RawText: hindi, OriginalLanguage: "hi", SourceType: "voice-transcript", Timestamp: testTime.Add(10 * time.Second)},
		{ID: "r2", RawText: bengali, OriginalLanguage: "bn", SourceType: "voice-transcript", Timestamp: testTime.Add(97 * time.Second)},
		{ID: "r3", RawText: canonicalExplosion, OriginalLanguage: "en", SourceType: "text", Timestamp: testTime},
	}
}

func testPipeline() *Pipeline {
	return New(stubGateway{canonical: map[string]string{
		"दिल्ली के करोल बाग में एक जोरदार धमाका हुआ, कई लोगों ने सुना": canonicalExplosion,
		"করোল বাগ এলাকায় বিস্ফোরণ শোনা গেছে, লোকেরা বাইরে হয়েছে":     canonicalExplosion,
	}}, stubResolver{})
}

func TestProcessTrilingualBatchFormsOneIncident(t *testing.T) {
	clusters, err := testPipeline().Process(context.Background(), trilingualBatch())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clusters) != 1 {
		t.Fatalf("expected 1 cluster, got %d", len(clusters))
	}

	cluster := clusters[0]
	if len(cluster.Reports) != 3 {
		t.Fatalf("expected 3 reports in cluster, got %d", len(cluster.Reports))
	}
	if cluster.VerificationStatus != types.StatusVerified {
		t.Fatalf("expected verified status, got %s (score %f)", cluster.VerificationStatus, cluster.VerificationScore)
	}

	for _, r := range cluster.Reports {
		if r.EventType != "explosion" {
			t.Fatalf("report %s: expected explosion, got %s", r.ID, r.EventType)
		}
		if r.CanonicalText != canonicalExplosion {
			t.Fatalf("report %s: unexpected canonical text %q", r.ID, r.CanonicalText)
		}
		if !r.Geotag.HasCoords() || r.Geotag.Confidence < 0.9 {
			t.Fatalf("report %s: expected high-confidence geotag, got %+v", r.ID, r.Geotag)
		}
	}
}

func TestProcessDropsMalformedReports(t *testing.T) {
	batch := trilingualBatch()
	batch = append(batch,
		types.Report{ID: "", RawText: "missing id"},
		types.Report{ID: "r4", RawText: ""},
	)

	clusters, err := testPipeline().Process(context.Background(), batch)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	total := 0
	for _, c := range clusters {
		total += len(c.Reports)
	}
	if total != 3 {
		t.Fatalf("expected malformed reports dropped, got %d processed", total)
	}
}

func TestProcessAllInvalidReturnsErrNoIncidents(t *testing.T) {
	_, err := testPipeline().Process(context.Background(), []types.Report{
		{ID: "", RawText: "no id"},
		{RawText: ""},
	})
	if !errors.Is(err, ErrNoIncidents) {
		t.Fatalf("expected ErrNoIncidents, got %v", err)
	}
}

func TestProcessFillsDefaults(t *testing.T) {
	clusters, err := testPipeline().Process(context.Background(), []types.Report{
		{ID: "r1", RawText: canonicalExplosion},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := clusters[0].Reports[0]
	if r.OriginalLanguage != "auto" {
		t.Fatalf("expected original_language auto, got %s", r.OriginalLanguage)
	}
	if r.SourceType != "text" {
		t.Fatalf("expected source_type text, got %s", r.SourceType)
	}
	if r.Timestamp.IsZero() {
		t.Fatalf("expected timestamp default")
	}
	if r.ReporterMeta.Source != "unknown" || r.ReporterMeta.Credibility != types.CredibilityUnknown {
		t.Fatalf("expected unknown reporter meta, got %+v", r.ReporterMeta)
	}
	if r.DetectedLanguage != "en" {
		t.Fatalf("expected detected language en, got %s", r.DetectedLanguage)
	}
}

func TestProcessNoLocationFound(t *testing.T) {
	clusters, err := testPipeline().Process(context.Background(), []types.Report{
		{ID: "r1", RawText: "a loud bang was heard in the area", Timestamp: testTime},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	geo := clusters[0].Reports[0].Geotag
	if geo.HasCoords() || geo.Source != "no_location_found" || geo.Confidence != 0 {
		t.Fatalf("expected no_location_found geotag, got %+v", geo)
	}
}
