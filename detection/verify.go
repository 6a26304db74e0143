package detection

import (
	"go-sitrep/types"
)

const (
	verifiedThreshold = 0.75
	probableThreshold = 0.5
)

// Verify computes the composite confidence score and status for each
// cluster in place. Status is a pure function of the score; nothing is
// carried between runs.
func Verify(clusters []types.Cluster) {
	for i := range clusters {
		cluster := &clusters[i]

		score := 0.3*float64(len(cluster.Reports)) +
			0.4*avgGeotagConfidence(cluster.Reports) +
			credibleSourceBonus(cluster.Reports) +
			consistentEventTypeBonus(cluster.Reports)
		if score > 1.0 {
			score = 1.0
		}

		cluster.VerificationScore = score
		switch {
		case score >= verifiedThreshold:
			cluster.VerificationStatus = types.StatusVerified
		case score >= probableThreshold:
			cluster.VerificationStatus = types.StatusProbable
		default:
			cluster.VerificationStatus = types.StatusUnverified
		}
	}
}

// SelectPrimary returns the cluster with the highest verification score.
// Ties go to the earliest-created cluster by Seq, regardless of slice order.
func SelectPrimary(clusters []types.Cluster) (types.Cluster, bool) {
	if len(clusters) == 0 {
		return types.Cluster{}, false
	}

	best := 0
	for i := 1; i < len(clusters); i++ {
		if clusters[i].VerificationScore > clusters[best].VerificationScore {
			best = i
			continue
		}
		if clusters[i].VerificationScore == clusters[best].VerificationScore &&
			clusters[i].Seq < clusters[best].Seq {
			best = i
		}
	}
	return clusters[best], true
}

func avgGeotagConfidence(reports []types.Report) float64 {
	if len(reports) == 0 {
		return 0
	}
	total := 0.0
	for _, r := range reports {
		total += r.Geotag.Confidence
	}
	return total / float64(len(reports))
}

func credibleSourceBonus(reports []types.Report) float64 {
	for _, r := range reports {
		if r.ReporterMeta.Credibility.IsCredible() {
			return 0.2
		}
	}
	return 0
}

func consistentEventTypeBonus(reports []types.Report) float64 {
	if len(reports) == 0 {
		return 0
	}
	first := reports[0].EventType
	if first == "unknown" || first == "" {
		return 0
	}
	for _, r := range reports[1:] {
		if r.EventType != first {
			return 0
		}
	}
	return 0.1
}
