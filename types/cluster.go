package types

type VerificationStatus string

const (
	StatusVerified   VerificationStatus = "verified"
	StatusProbable   VerificationStatus = "probable"
	StatusUnverified VerificationStatus = "unverified"
)

// Cluster groups reports judged to describe one real-world incident. The
// first report is the seed every later report was compared against; Seq is
// the creation order, which doubles as the tie-break for primary selection.
type Cluster struct {
	ID                 string             `json:"id"`
	Label              string             `json:"label"`
	Seq                int                `json:"seq"`
	Reports            []Report           `json:"reports"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
	VerificationScore  float64            `json:"verification_score"`
}

// Seed returns the cluster's first report.
func (c *Cluster) Seed() *Report {
	return &c.Reports[0]
}
