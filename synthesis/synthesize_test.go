package synthesis

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-sitrep/translate"
	"go-sitrep/types"
)

var testTime = time.Date(2025, 11, 15, 7, 11, 50, 0, time.UTC)

func intp(n int) *int { return &n }

func testGeotag(lat, lng, confidence float64) types.Geotag {
	return types.Geotag{Lat: &lat, Lng: &lng, Confidence: confidence, Source: "local_database_exact"}
}

func explosionReport(id string, ts time.Time) types.Report {
	return types.Report{
		ID:            id,
		Location:      "Karol Bagh, Delhi",
		SourceType:    "text",
		Timestamp:     ts,
		CanonicalText: "Loud explosion reported near Karol Bagh, Delhi. Many people heard the blast.",
		EventType:     "explosion",
		LocationNames: []string{"Karol Bagh", "Delhi"},
		Geotag:        testGeotag(28.6531, 77.1900, 0.95),
		ReporterMeta:  types.ReporterMeta{Source: "field_call", Credibility: types.CredibilityUnknown},
	}
}

func newTestSynthesizer() *Synthesizer {
	return New(translate.Echo{})
}

func TestSynthesizeVerifiedClusterPublishes(t *testing.T) {
	cluster := types.Cluster{
		ID:                 "c1",
		Label:              "cluster_1",
		Reports:            []types.Report{explosionReport("r1", testTime), explosionReport("r2", testTime.Add(90 * time.Second))},
		VerificationStatus: types.StatusVerified,
		VerificationScore:  0.9,
	}

	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)

	require.Equal(t, types.StatusVerified, sitrep.Status)
	require.Equal(t, types.ActionPublish, sitrep.RecommendedAction)
	require.Equal(t, "Explosion reported in Karol Bagh, Delhi at 07:11", sitrep.CanonicalTitle)
	require.Regexp(t, regexp.MustCompile(`^\d{8}_karol_bagh_delhi_explosion_[0-9a-f]{6}$`), sitrep.IncidentID)
	require.Equal(t, 2, sitrep.Sources.ReportCount)
	require.Equal(t, []string{"r1", "r2"}, sitrep.Sources.ReportIDs)
}

func TestIncidentIDStableAcrossResubmission(t *testing.T) {
	// Cluster and report ids are regenerated on every submission; the same
	// report content must still hash to the same incident id.
	first := types.Cluster{
		ID:      "3f1a7c02-8a4e-4a1c-9f6d-111111111111",
		Label:   "cluster_1",
		Reports: []types.Report{explosionReport("r1a2b3c4d5e6f_0", testTime)},
	}
	second := types.Cluster{
		ID:      "b90d4e77-2c15-4f8b-a3e2-222222222222",
		Label:   "cluster_1",
		Reports: []types.Report{explosionReport("rf6e5d4c3b2a1_0", testTime)},
	}

	synth := newTestSynthesizer()
	ctx := context.Background()
	require.Equal(t,
		synth.Synthesize(ctx, first).IncidentID,
		synth.Synthesize(ctx, second).IncidentID)
}

func TestIncidentIDChangesWithContent(t *testing.T) {
	base := types.Cluster{
		Label:   "cluster_1",
		Reports: []types.Report{explosionReport("r1", testTime)},
	}
	changed := types.Cluster{
		Label:   "cluster_1",
		Reports: []types.Report{explosionReport("r1", testTime.Add(time.Minute))},
	}

	synth := newTestSynthesizer()
	ctx := context.Background()
	require.NotEqual(t,
		synth.Synthesize(ctx, base).IncidentID,
		synth.Synthesize(ctx, changed).IncidentID)
}

func TestSynthesizeLocationBlock(t *testing.T) {
	cluster := types.Cluster{Reports: []types.Report{explosionReport("r1", testTime)}}

	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)

	require.Equal(t, "Karol Bagh, Delhi", sitrep.Location.Name)
	require.NotNil(t, sitrep.Location.Lat)
	require.InDelta(t, 28.6531, *sitrep.Location.Lat, 1e-9)
	require.InDelta(t, 0.95, sitrep.Location.Confidence, 1e-9)
}

func TestSynthesizeFallbackGeotagExcluded(t *testing.T) {
	r := explosionReport("r1", testTime)
	r.Location = ""
	r.LocationNames = nil
	r.Geotag = testGeotag(28.6139, 77.2090, 0.1) // city-centre fallback
	cluster := types.Cluster{Reports: []types.Report{r}}

	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)

	require.Equal(t, "Unknown location", sitrep.Location.Name)
	require.Nil(t, sitrep.Location.Lat)
	require.Nil(t, sitrep.Location.Lng)
	require.Equal(t, 0.0, sitrep.Location.Confidence)
}

func TestSynthesizeTimeWindow(t *testing.T) {
	cluster := types.Cluster{Reports: []types.Report{
		explosionReport("r1", testTime),
		explosionReport("r2", testTime.Add(2*time.Minute)),
	}}

	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)

	require.Equal(t, testTime, sitrep.TimeWindow.FirstReport)
	require.Equal(t, testTime.Add(2*time.Minute), sitrep.TimeWindow.LastReport)
	require.Equal(t, testTime.Add(time.Minute), sitrep.TimeWindow.ApproxEventTime)
	require.Equal(t, 0.7, sitrep.TimeWindow.TimeConfidence)
}

func TestSynthesizeSingleReportTimeConfidence(t *testing.T) {
	cluster := types.Cluster{Reports: []types.Report{explosionReport("r1", testTime)}}
	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)
	require.Equal(t, 0.5, sitrep.TimeWindow.TimeConfidence)
}

func TestSynthesizeLocalesCarrySummary(t *testing.T) {
	cluster := types.Cluster{Reports: []types.Report{explosionReport("r1", testTime)}}
	sitrep := newTestSynthesizer().Synthesize(context.Background(), cluster)

	require.NotEmpty(t, sitrep.Summary["en"])
	// Echo gateway carries the English text into every locale.
	require.Equal(t, sitrep.Summary["en"], sitrep.Summary["hi"])
	require.Equal(t, sitrep.Summary["en"], sitrep.Summary["bn"])
	require.Equal(t, len(sitrep.Details["en"]), len(sitrep.Details["hi"]))
	require.Equal(t, len(sitrep.Details["en"]), len(sitrep.Details["bn"]))
}

func TestCasualtyEstimateAveragesNumericMentions(t *testing.T) {
	r1 := explosionReport("r1", testTime)
	r1.CasualtyMentions = intp(10)
	r1.CasualtyConfidence = 0.9
	r2 := explosionReport("r2", testTime)
	r2.CasualtyMentions = intp(20)
	r2.CasualtyConfidence = 0.9

	estimate := synthesizeCasualties([]types.Report{r1, r2})
	require.NotNil(t, estimate.Count)
	require.Equal(t, 15, *estimate.Count)
	require.Equal(t, 0.7, estimate.Confidence)
}

func TestCasualtyEstimateExplicitZeroDominates(t *testing.T) {
	r1 := explosionReport("r1", testTime)
	r1.CasualtyMentions = intp(0)
	r1.CasualtyConfidence = 0.8
	r2 := explosionReport("r2", testTime)
	r2.CasualtyMentions = intp(12)
	r2.CasualtyConfidence = 0.9

	estimate := synthesizeCasualties([]types.Report{r1, r2})
	require.NotNil(t, estimate.Count)
	require.Equal(t, 0, *estimate.Count)
	require.Equal(t, 0.8, estimate.Confidence)
}

func TestCasualtyEstimateVagueMentionsExcluded(t *testing.T) {
	r := explosionReport("r1", testTime)
	r.CasualtyMentions = nil
	r.CasualtyConfidence = 0.4

	estimate := synthesizeCasualties([]types.Report{r})
	require.Nil(t, estimate.Count)
	require.Equal(t, 0.1, estimate.Confidence)
}

func TestCasualtyEstimateConfidentButNonNumeric(t *testing.T) {
	r := explosionReport("r1", testTime)
	r.CasualtyMentions = nil
	r.CasualtyConfidence = 0.6

	estimate := synthesizeCasualties([]types.Report{r})
	require.Nil(t, estimate.Count)
	require.Equal(t, 0.3, estimate.Confidence)
}

func TestRecommendedActionBands(t *testing.T) {
	base := []types.Report{explosionReport("r1", testTime)}

	require.Equal(t, types.ActionPublish, recommendedAction(types.Cluster{
		Reports: base, VerificationStatus: types.StatusUnverified, VerificationScore: 0.85,
	}))
	require.Equal(t, types.ActionAlertAuthorities, recommendedAction(types.Cluster{
		Reports: base, VerificationStatus: types.StatusProbable, VerificationScore: 0.6,
	}))
	require.Equal(t, types.ActionRequestVerification, recommendedAction(types.Cluster{
		Reports:            []types.Report{explosionReport("r1", testTime), explosionReport("r2", testTime), explosionReport("r3", testTime)},
		VerificationStatus: types.StatusUnverified, VerificationScore: 0.4,
	}))
	require.Equal(t, types.ActionMonitor, recommendedAction(types.Cluster{
		Reports: base, VerificationStatus: types.StatusUnverified, VerificationScore: 0.3,
	}))
}

func TestMainEventTypeFrequencyAndTies(t *testing.T) {
	r1 := explosionReport("r1", testTime)
	r2 := explosionReport("r2", testTime)
	fire := explosionReport("r3", testTime)
	fire.EventType = "fire"

	require.Equal(t, "explosion", mainEventType([]types.Report{r1, fire, r2}))

	// Equal counts: first seen wins.
	require.Equal(t, "explosion", mainEventType([]types.Report{r1, fire}))

	unknown := explosionReport("r4", testTime)
	unknown.EventType = "unknown"
	require.Equal(t, "incident", mainEventType([]types.Report{unknown}))
}

func TestMainLocationPrefersUserField(t *testing.T) {
	r1 := explosionReport("r1", testTime)
	r2 := explosionReport("r2", testTime)
	r2.Location = "Connaught Place"

	require.Equal(t, "Karol Bagh, Delhi", mainLocation([]types.Report{r1, r2, explosionReport("r3", testTime)}))

	r1.Location = ""
	r1.LocationNames = []string{"Karol Bagh"}
	require.Equal(t, "Karol Bagh", mainLocation([]types.Report{r1}))

	r1.LocationNames = nil
	require.Equal(t, "Unknown location", mainLocation([]types.Report{r1}))
}

func TestSynthesizeDetailsBullets(t *testing.T) {
	r1 := explosionReport("r1", testTime)
	r1.WitnessCount = intp(3)
	r1.CasualtyMentions = intp(0)
	r1.CasualtyConfidence = 0.8
	r1.CertaintyLevel = types.CertaintyReported
	r2 := explosionReport("r2", testTime)
	r2.WitnessCount = intp(5)
	r2.SourceType = "voice-transcript"

	bullets := synthesizeBullets([]types.Report{r1, r2})

	require.Contains(t, bullets, "Witnessed by approximately 8 people")
	require.Contains(t, bullets, "No injuries reported")
	require.Contains(t, bullets, "Reported via: text, voice-transcript")
	require.Contains(t, bullets, "Status: Unconfirmed reports")
}

func TestSynthesizeBulletsNoCasualtyInfo(t *testing.T) {
	r := explosionReport("r1", testTime)
	r.CasualtyConfidence = 0.1

	bullets := synthesizeBullets([]types.Report{r})
	require.Contains(t, bullets, "No casualty information confirmed")
}

func TestSourcesTopThreeRanking(t *testing.T) {
	mk := func(id, source string, cred types.Credibility) types.Report {
		r := explosionReport(id, testTime)
		r.ReporterMeta = types.ReporterMeta{Source: source, Credibility: cred}
		return r
	}

	reports := []types.Report{
		mk("r1", "citizen_sms", types.CredibilityLow),
		mk("r2", "citizen_sms", types.CredibilityLow),
		mk("r3", "police_feed", types.CredibilityHigh),
		mk("r4", "field_call", types.CredibilityUnknown),
		mk("r5", "news_desk", types.CredibilityMedium),
	}

	sources := synthesizeSources(reports)
	require.Equal(t, 5, sources.ReportCount)
	require.Len(t, sources.TopSources, 3)
	// police_feed: 1+3=4, citizen_sms: 2+1=3, news_desk: 1+2=3, field_call: 1.
	require.Equal(t, "police_feed", sources.TopSources[0])
	require.ElementsMatch(t, []string{"citizen_sms", "news_desk"}, sources.TopSources[1:])
	require.NotContains(t, sources.TopSources, "field_call")
}

func TestSlug(t *testing.T) {
	require.Equal(t, "karol_bagh_delhi", slug("Karol Bagh, Delhi"))
	require.Equal(t, "unknown_location", slug("Unknown location"))
	require.Equal(t, "cp", slug("  CP  "))
}

func TestAuditTrail(t *testing.T) {
	r := explosionReport("r1", testTime)
	pre := testGeotag(28.65, 77.19, 0.9)
	r.PreGeotag = &pre

	sitrep := newTestSynthesizer().Synthesize(context.Background(), types.Cluster{Reports: []types.Report{r}})

	require.Len(t, sitrep.Audit.Translations, 1)
	require.Equal(t, "r1", sitrep.Audit.Translations[0].ReportID)
	require.Equal(t, r.CanonicalText, sitrep.Audit.Translations[0].Localized["hi"])
	// Two extracted names plus the pre-geocoded user location.
	require.Len(t, sitrep.Audit.GeocodeAttempts, 3)
	require.False(t, sitrep.Audit.CreatedAt.IsZero())
}
