package types

import "time"

type SitrepLocation struct {
	Name       string   `json:"name"`
	Lat        *float64 `json:"lat"`
	Lng        *float64 `json:"lng"`
	Confidence float64  `json:"confidence"`
}

type TimeWindow struct {
	FirstReport     time.Time `json:"first_report"`
	LastReport      time.Time `json:"last_report"`
	ApproxEventTime time.Time `json:"approx_event_time"`
	TimeConfidence  float64   `json:"time_confidence"`
}

type CasualtyEstimate struct {
	Count      *int    `json:"count"`
	Confidence float64 `json:"confidence"`
}

type SourcesBlock struct {
	ReportCount int      `json:"report_count"`
	ReportIDs   []string `json:"report_ids"`
	TopSources  []string `json:"top_3_sources_summary"`
	Credibility string   `json:"credibility,omitempty"`
}

type TranslationAudit struct {
	ReportID  string            `json:"report_id"`
	Canonical string            `json:"canonical_text"`
	Localized map[string]string `json:"localized"`
}

type GeocodeAttempt struct {
	ReportID string `json:"report_id"`
	Query    string `json:"query"`
	Result   Geotag `json:"result"`
}

type Audit struct {
	Translations       []TranslationAudit `json:"translations,omitempty"`
	GeocodeAttempts    []GeocodeAttempt   `json:"geocode_attempts,omitempty"`
	EvidenceIsFallback bool               `json:"is_fallback,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
}

// Sitrep is the single artifact this system produces per incident.
type Sitrep struct {
	IncidentID        string              `json:"incident_id"`
	CanonicalTitle    string              `json:"canonical_title"`
	Location          SitrepLocation      `json:"location"`
	TimeWindow        TimeWindow          `json:"time_window"`
	Status            VerificationStatus  `json:"status"`
	Summary           map[string]string   `json:"summary"`
	Details           map[string][]string `json:"details"`
	CasualtyEstimate  CasualtyEstimate    `json:"casualty_estimate"`
	Sources           SourcesBlock        `json:"sources"`
	RecommendedAction string              `json:"recommended_action"`
	Audit             Audit               `json:"audit"`

	// Only populated on the evidence-analysis path.
	Description    map[string]string              `json:"description,omitempty"`
	PeopleInvolved map[string][]map[string]string `json:"people_involved,omitempty"`
	ActionsTaken   map[string][]map[string]string `json:"actions_taken,omitempty"`
}

// SitrepSummary is the listing projection served by the sitreps index.
type SitrepSummary struct {
	IncidentID string             `json:"incident_id"`
	Title      string             `json:"title"`
	Status     VerificationStatus `json:"status"`
	Location   string             `json:"location"`
	CreatedAt  time.Time          `json:"timestamp"`
}

const (
	ActionPublish             = "publish"
	ActionAlertAuthorities    = "alert_authorities"
	ActionRequestVerification = "request_verification"
	ActionMonitor             = "monitor"
)
