package detection

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-sitrep/types"
)

func scoredCluster(reports ...types.Report) types.Cluster {
	return types.Cluster{ID: "c", Label: "cluster_1", Reports: reports}
}

func TestVerifyScoreComponents(t *testing.T) {
	r := report("r1", "blast", time.Now(), geotag(28.6531, 77.1900, 0.95))
	r.EventType = "explosion"
	r.ReporterMeta = types.ReporterMeta{Source: "police_feed", Credibility: types.CredibilityHigh}

	clusters := []types.Cluster{scoredCluster(r)}
	Verify(clusters)

	// 0.3*1 + 0.4*0.95 + 0.2 + 0.1
	require.InDelta(t, 0.98, clusters[0].VerificationScore, 1e-9)
	require.Equal(t, types.StatusVerified, clusters[0].VerificationStatus)
}

func TestVerifyScoreClampedAtOne(t *testing.T) {
	text := "blast"
	reports := []types.Report{}
	for i := 0; i < 4; i++ {
		r := report("r", text, time.Now(), geotag(28.6531, 77.1900, 0.95))
		r.EventType = "explosion"
		reports = append(reports, r)
	}

	clusters := []types.Cluster{scoredCluster(reports...)}
	Verify(clusters)

	require.Equal(t, 1.0, clusters[0].VerificationScore)
	require.Equal(t, types.StatusVerified, clusters[0].VerificationStatus)
}

func TestVerifyProbableBand(t *testing.T) {
	r := report("r1", "blast", time.Now(), geotag(28.6531, 77.1900, 0.5))
	r.EventType = "explosion"

	clusters := []types.Cluster{scoredCluster(r)}
	Verify(clusters)

	// 0.3*1 + 0.4*0.5 + 0 + 0.1 = 0.6
	require.InDelta(t, 0.6, clusters[0].VerificationScore, 1e-9)
	require.Equal(t, types.StatusProbable, clusters[0].VerificationStatus)
}

func TestVerifyUnverifiedBand(t *testing.T) {
	r := report("r1", "blast", time.Now(), types.Geotag{Confidence: 0, Source: "no_location_found"})

	clusters := []types.Cluster{scoredCluster(r)}
	Verify(clusters)

	require.InDelta(t, 0.3, clusters[0].VerificationScore, 1e-9)
	require.Equal(t, types.StatusUnverified, clusters[0].VerificationStatus)
}

func TestVerifyMixedEventTypesLoseConsistencyBonus(t *testing.T) {
	r1 := report("r1", "blast", time.Now(), types.Geotag{})
	r1.EventType = "explosion"
	r2 := report("r2", "blast", time.Now(), types.Geotag{})
	r2.EventType = "fire"

	withBonus := report("r3", "blast", time.Now(), types.Geotag{})
	withBonus.EventType = "explosion"
	withBonus2 := report("r4", "blast", time.Now(), types.Geotag{})
	withBonus2.EventType = "explosion"

	clusters := []types.Cluster{
		scoredCluster(r1, r2),
		scoredCluster(withBonus, withBonus2),
	}
	Verify(clusters)

	diff := clusters[1].VerificationScore - clusters[0].VerificationScore
	require.InDelta(t, 0.1, diff, 1e-9)
}

func TestVerifyUnknownEventTypeNoBonus(t *testing.T) {
	r := report("r1", "blast", time.Now(), types.Geotag{})
	r.EventType = "unknown"

	clusters := []types.Cluster{scoredCluster(r)}
	Verify(clusters)

	require.True(t, math.Abs(clusters[0].VerificationScore-0.3) < 1e-9)
}

func TestSelectPrimaryHighestScore(t *testing.T) {
	clusters := []types.Cluster{
		{Label: "cluster_1", VerificationScore: 0.4},
		{Label: "cluster_2", VerificationScore: 0.9},
		{Label: "cluster_3", VerificationScore: 0.7},
	}

	primary, ok := SelectPrimary(clusters)
	require.True(t, ok)
	require.Equal(t, "cluster_2", primary.Label)
}

func TestSelectPrimaryTieGoesToEarliest(t *testing.T) {
	clusters := []types.Cluster{
		{Label: "cluster_1", Seq: 0, VerificationScore: 0.9},
		{Label: "cluster_2", Seq: 1, VerificationScore: 0.9},
	}

	primary, ok := SelectPrimary(clusters)
	require.True(t, ok)
	require.Equal(t, "cluster_1", primary.Label)
}

func TestSelectPrimaryTieUsesSeqNotSliceOrder(t *testing.T) {
	// A caller may hand over clusters sorted or filtered; creation order is
	// carried by Seq, not by position.
	clusters := []types.Cluster{
		{Label: "cluster_2", Seq: 1, VerificationScore: 0.9},
		{Label: "cluster_1", Seq: 0, VerificationScore: 0.9},
	}

	primary, ok := SelectPrimary(clusters)
	require.True(t, ok)
	require.Equal(t, "cluster_1", primary.Label)
}

func TestSelectPrimaryEmpty(t *testing.T) {
	_, ok := SelectPrimary(nil)
	require.False(t, ok)
}
