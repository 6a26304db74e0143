package cronjobs

import (
	"testing"

	"go-sitrep/types"
)

func TestFeedToReports(t *testing.T) {
	out := types.FeedResponse{Feed: []types.FeedEntry{
		{Post: types.Post{
			CID: "cid1",
			Record: types.Record{
				Text:      "Huge fire visible near the market",
				CreatedAt: "2025-11-15T07:12:00Z",
				Langs:     []string{"en"},
			},
		}},
		{Post: types.Post{
			CID:    "cid2",
			Record: types.Record{Text: ""},
		}},
		{Post: types.Post{
			CID:    "cid3",
			Record: types.Record{Text: "smoke everywhere", CreatedAt: "not-a-time"},
		}},
	}}

	reports := feedToReports(out, "fire")
	if len(reports) != 2 {
		t.Fatalf("expected empty posts dropped, got %d reports", len(reports))
	}

	first := reports[0]
	if first.ID != "cid1" || first.OriginalLanguage != "en" {
		t.Fatalf("unexpected report %+v", first)
	}
	if first.SourceType != "social_media_scrape" {
		t.Fatalf("unexpected source type %s", first.SourceType)
	}
	if first.ReporterMeta.Source != "bluesky_fire" || first.ReporterMeta.Credibility != types.CredibilityLow {
		t.Fatalf("unexpected reporter meta %+v", first.ReporterMeta)
	}
	if first.Timestamp.Year() != 2025 {
		t.Fatalf("expected post timestamp parsed, got %v", first.Timestamp)
	}

	// Unparseable timestamp falls back to now; language defaults to auto.
	second := reports[1]
	if second.Timestamp.IsZero() {
		t.Fatal("expected fallback timestamp")
	}
	if second.OriginalLanguage != "auto" {
		t.Fatalf("expected auto language, got %s", second.OriginalLanguage)
	}
}
