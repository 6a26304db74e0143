package synthesis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go-sitrep/types"
)

var peopleCategories = []string{"victims", "suspects", "witnesses"}
var actionCategories = []string{"emergency_response", "police_actions", "medical_interventions"}

var severeEventWords = []string{"explosion", "fire", "collapse", "shooting"}

// FromEvidence builds a SITREP from a single analyzed-evidence report. There
// is no cluster to score, so status comes from the declared source
// credibility, and the casualty/witness machinery is bypassed.
func (s *Synthesizer) FromEvidence(ctx context.Context, report types.EvidenceReport) types.Sitrep {
	status := evidenceStatus(report)

	summaryEN := cleanForTranslation(report.Summary)
	if summaryEN == "" {
		summaryEN = "No summary available"
	}
	descriptionEN := cleanForTranslation(report.Description)
	if descriptionEN == "" {
		descriptionEN = "No detailed description available"
	}

	title := report.IncidentTitle
	if title == "" {
		title = "Incident Report"
	}

	return types.Sitrep{
		IncidentID:     s.evidenceIncidentID(report),
		CanonicalTitle: title,
		Location:       evidenceLocation(report),
		TimeWindow:     evidenceTimeWindow(report),
		Status:         status,
		Summary:        s.localize(ctx, summaryEN),
		Description:    s.localize(ctx, descriptionEN),
		Details:        map[string][]string{"en": descriptionBullets(descriptionEN)},
		PeopleInvolved: s.localizeCategories(ctx, report.PeopleInvolved, peopleCategories),
		ActionsTaken:   s.localizeCategories(ctx, report.ActionsTaken, actionCategories),
		Sources: types.SourcesBlock{
			ReportCount: 1,
			ReportIDs:   []string{title},
			TopSources:  []string{"text_report"},
			Credibility: string(report.SourceCredibility),
		},
		RecommendedAction: evidenceAction(report, status),
		Audit: types.Audit{
			EvidenceIsFallback: report.IsFallback,
			CreatedAt:          time.Now().UTC(),
		},
	}
}

func (s *Synthesizer) evidenceIncidentID(report types.EvidenceReport) string {
	title := report.IncidentTitle
	if title == "" {
		title = "incident"
	}
	if len(title) > 30 {
		title = title[:30]
	}
	return fmt.Sprintf("%s_%s_%s",
		time.Now().UTC().Format("20060102_150405"),
		slug(title),
		contentHash(report))
}

func evidenceLocation(report types.EvidenceReport) types.SitrepLocation {
	geo := report.GeocodedLocation
	if geo != nil && geo.HasCoords() {
		name := report.Location
		if name == "" {
			name = geo.DisplayName
		}
		if name == "" {
			name = "Unknown"
		}
		return types.SitrepLocation{
			Name:       name,
			Lat:        geo.Lat,
			Lng:        geo.Lng,
			Confidence: geo.Confidence,
		}
	}

	name := report.Location
	if name == "" {
		name = "Location not specified"
	}
	return types.SitrepLocation{Name: name}
}

func evidenceTimeWindow(report types.EvidenceReport) types.TimeWindow {
	now := time.Now().UTC()
	eventTime := now
	confidence := 0.3

	declared := report.DateTime
	if declared != "" && !strings.Contains(declared, "Not specified") {
		confidence = 0.8
		if parsed, err := parseEvidenceTime(declared); err == nil {
			eventTime = parsed
		} else {
			eventTime = now
		}
	}

	return types.TimeWindow{
		FirstReport:     eventTime,
		LastReport:      eventTime,
		ApproxEventTime: eventTime,
		TimeConfidence:  confidence,
	}
}

var evidenceTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

func parseEvidenceTime(value string) (time.Time, error) {
	for _, layout := range evidenceTimeLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized datetime %q", value)
}

// evidenceStatus maps declared credibility to a verification status. A
// fallback analysis is never trusted beyond unverified.
func evidenceStatus(report types.EvidenceReport) types.VerificationStatus {
	if report.IsFallback {
		return types.StatusUnverified
	}
	if report.SourceCredibility.IsCredible() {
		return types.StatusVerified
	}
	if report.SourceCredibility == types.CredibilityMedium {
		return types.StatusProbable
	}
	return types.StatusUnverified
}

func evidenceAction(report types.EvidenceReport, status types.VerificationStatus) string {
	switch status {
	case types.StatusVerified:
		summary := strings.ToLower(report.Summary)
		for _, word := range severeEventWords {
			if strings.Contains(summary, word) {
				return types.ActionAlertAuthorities
			}
		}
		return types.ActionPublish
	case types.StatusProbable:
		return types.ActionRequestVerification
	default:
		return types.ActionMonitor
	}
}

// localize returns the canonical English text plus its per-locale fan-out.
func (s *Synthesizer) localize(ctx context.Context, text string) map[string]string {
	out := map[string]string{"en": text}
	for locale, translated := range s.Translator.FanOut(ctx, text, s.Locales) {
		if translated == "" {
			translated = text
		}
		out[locale] = translated
	}
	return out
}

// localizeCategories localizes every item of every category; an empty
// category still gets a "Not specified" entry so the rendered SITREP never
// shows a blank section.
func (s *Synthesizer) localizeCategories(ctx context.Context, data map[string][]string, categories []string) map[string][]map[string]string {
	out := map[string][]map[string]string{}
	for _, category := range categories {
		items := data[category]
		for _, item := range items {
			cleaned := cleanForTranslation(item)
			if cleaned == "" {
				continue
			}
			out[category] = append(out[category], s.localize(ctx, cleaned))
		}
		if len(out[category]) == 0 {
			out[category] = append(out[category], s.localize(ctx, "Not specified"))
		}
	}
	return out
}

// descriptionBullets splits a description into at most five sentence bullets.
func descriptionBullets(description string) []string {
	parts := regexp.MustCompile(`[.!?]+`).Split(description, -1)
	bullets := []string{}
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		bullets = append(bullets, trimmed)
		if len(bullets) == 5 {
			break
		}
	}
	return bullets
}

var (
	dataURIRe    = regexp.MustCompile(`data:(image|video)/[^;]+;base64,[A-Za-z0-9+/=]+`)
	base64RunRe  = regexp.MustCompile(`[A-Za-z0-9+/=]{100,}`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// cleanForTranslation strips embedded media payloads and caps the length so
// the translation backend only ever sees plain prose.
func cleanForTranslation(text string) string {
	text = dataURIRe.ReplaceAllString(text, "[MEDIA]")
	text = base64RunRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > 5000 {
		text = text[:5000] + "..."
	}
	return text
}
