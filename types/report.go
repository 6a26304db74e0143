package types

import "time"

type Credibility string

const (
	CredibilityUnknown  Credibility = "unknown"
	CredibilityLow      Credibility = "low"
	CredibilityMedium   Credibility = "medium"
	CredibilityHigh     Credibility = "high"
	CredibilityVerified Credibility = "verified"
	CredibilityOfficial Credibility = "official"
)

// IsCredible reports whether the credibility counts toward verification.
func (c Credibility) IsCredible() bool {
	return c == CredibilityHigh || c == CredibilityVerified || c == CredibilityOfficial
}

type CertaintyLevel string

const (
	CertaintyConfirmed   CertaintyLevel = "confirmed"
	CertaintyReported    CertaintyLevel = "reported"
	CertaintyUnconfirmed CertaintyLevel = "unconfirmed"
)

type ReporterMeta struct {
	Source      string      `json:"source"`
	Credibility Credibility `json:"credibility"`
}

// Geotag is a resolved coordinate with its confidence and provenance.
type Geotag struct {
	Lat         *float64 `json:"lat"`
	Lng         *float64 `json:"lng"`
	Confidence  float64  `json:"confidence"`
	Source      string   `json:"source"`
	Query       string   `json:"query,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
}

// HasCoords reports whether both coordinates were resolved.
func (g Geotag) HasCoords() bool {
	return g.Lat != nil && g.Lng != nil
}

// Report is a single eyewitness report. The pipeline stages only add derived
// fields; nothing set by an earlier stage is cleared later.
type Report struct {
	ID               string       `json:"id"`
	RawText          string       `json:"raw_text"`
	Location         string       `json:"location,omitempty"`
	OriginalLanguage string       `json:"original_language"`
	SourceType       string       `json:"source_type"`
	Timestamp        time.Time    `json:"timestamp"`
	ReporterMeta     ReporterMeta `json:"reporter_meta"`

	// Set by the normalizer.
	NormalizedText     string   `json:"normalized_text,omitempty"`
	ExtractedLocations []string `json:"extracted_locations,omitempty"`

	// Set by the translation stage.
	DetectedLanguage string `json:"detected_language,omitempty"`
	CanonicalText    string `json:"canonical_text,omitempty"`

	// Set by the fact extractor.
	EventType          string         `json:"event_type,omitempty"`
	EventConfidence    float64        `json:"event_confidence,omitempty"`
	LocationNames      []string       `json:"location_names,omitempty"`
	BestGuessDatetime  time.Time      `json:"best_guess_datetime,omitempty"`
	DatetimeConfidence float64        `json:"datetime_confidence,omitempty"`
	CasualtyMentions   *int           `json:"casualty_mentions"`
	CasualtyConfidence float64        `json:"casualty_confidence,omitempty"`
	WitnessCount       *int           `json:"witness_count,omitempty"`
	CertaintyLevel     CertaintyLevel `json:"certainty_level,omitempty"`

	// Set by the geotagger. PreGeotag is the caller-side resolution of the
	// user-supplied location string, kept for the audit trail only.
	Geotag    Geotag  `json:"geotag,omitempty"`
	PreGeotag *Geotag `json:"geocoded_location,omitempty"`
}
