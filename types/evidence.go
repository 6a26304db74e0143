package types

// Evidence is the input to the multimodal analysis path. Images and videos
// are transcribed/described upstream; only their text reaches this core.
type Evidence struct {
	IncidentTitle    string   `json:"incident_title"`
	IncidentDatetime string   `json:"incident_datetime"`
	IncidentLocation string   `json:"incident_location"`
	TextEvidence     []string `json:"text_evidence"`
	ImageNotes       []string `json:"image_notes,omitempty"`
	VideoNotes       []string `json:"video_notes,omitempty"`
}

// EvidenceReport is the canonical-English structured report produced by the
// evidence analyzer. It feeds the single-report synthesis path directly,
// bypassing extraction and clustering.
type EvidenceReport struct {
	IncidentTitle     string              `json:"incident_title"`
	Summary           string              `json:"summary"`
	Description       string              `json:"description"`
	PeopleInvolved    map[string][]string `json:"people_involved"`
	ActionsTaken      map[string][]string `json:"actions_taken"`
	Severity          string              `json:"severity"`
	SourceCredibility Credibility         `json:"source_credibility"`
	OriginalLanguage  string              `json:"original_language"`
	DateTime          string              `json:"date_time"`
	Location          string              `json:"location"`
	GeocodedLocation  *Geotag             `json:"geocoded_location,omitempty"`
	IsFallback        bool                `json:"is_fallback"`
	RawResponse       string              `json:"raw_response,omitempty"`
}
