package synthesis

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go-sitrep/translate"
	"go-sitrep/types"
)

// DefaultLocales are the fan-out targets beyond canonical English.
var DefaultLocales = []string{"hi", "bn"}

// Synthesizer builds one SITREP per incident cluster. The canonical artifact
// is composed in English first; every localized field falls back to the
// English text when translation degrades.
type Synthesizer struct {
	Translator translate.Gateway
	Locales    []string
}

func New(translator translate.Gateway) *Synthesizer {
	return &Synthesizer{
		Translator: translator,
		Locales:    DefaultLocales,
	}
}

// Synthesize composes the full SITREP for a scored cluster.
func (s *Synthesizer) Synthesize(ctx context.Context, cluster types.Cluster) types.Sitrep {
	reports := cluster.Reports

	casualties := synthesizeCasualties(reports)
	summaryEN := fmt.Sprintf("A %s incident was reported in %s. %s",
		mainEventType(reports), mainLocation(reports), casualtySummaryClause(casualties))
	bulletsEN := synthesizeBullets(reports)

	summary := map[string]string{"en": summaryEN}
	for locale, text := range s.Translator.FanOut(ctx, summaryEN, s.Locales) {
		summary[locale] = text
	}

	details := map[string][]string{"en": bulletsEN}
	for _, locale := range s.Locales {
		details[locale] = make([]string, 0, len(bulletsEN))
	}
	for _, bullet := range bulletsEN {
		localized := s.Translator.FanOut(ctx, bullet, s.Locales)
		for _, locale := range s.Locales {
			text, ok := localized[locale]
			if !ok || text == "" {
				text = bullet
			}
			details[locale] = append(details[locale], text)
		}
	}

	return types.Sitrep{
		IncidentID:        s.incidentID(cluster),
		CanonicalTitle:    synthesizeTitle(reports),
		Location:          synthesizeLocation(reports),
		TimeWindow:        synthesizeTimeWindow(reports),
		Status:            cluster.VerificationStatus,
		Summary:           summary,
		Details:           details,
		CasualtyEstimate:  casualties,
		Sources:           synthesizeSources(reports),
		RecommendedAction: recommendedAction(cluster),
		Audit:             s.audit(ctx, reports),
	}
}

func (s *Synthesizer) incidentID(cluster types.Cluster) string {
	return fmt.Sprintf("%s_%s_%s_%s",
		time.Now().UTC().Format("20060102"),
		slug(mainLocation(cluster.Reports)),
		mainEventType(cluster.Reports),
		contentHash(clusterDigest(cluster)))
}

// clusterDigest projects the cluster down to the report content that drives
// the incident id. Cluster and report ids are assigned fresh per submission
// and must not perturb the hash: re-submitting the same batch on the same
// day has to yield the same incident id.
func clusterDigest(cluster types.Cluster) any {
	type reportContent struct {
		Text      string `json:"text"`
		Location  string `json:"location"`
		Timestamp string `json:"timestamp"`
		EventType string `json:"event_type"`
	}
	reports := make([]reportContent, 0, len(cluster.Reports))
	for _, r := range cluster.Reports {
		reports = append(reports, reportContent{
			Text:      r.CanonicalText,
			Location:  r.Location,
			Timestamp: r.Timestamp.UTC().Format(time.RFC3339),
			EventType: r.EventType,
		})
	}
	return struct {
		Label   string          `json:"label"`
		Reports []reportContent `json:"reports"`
	}{Label: cluster.Label, Reports: reports}
}

// contentHash fingerprints synthesized content with a short stable digest.
func contentHash(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		raw = []byte(fmt.Sprint(v))
	}
	return fmt.Sprintf("%x", md5.Sum(raw))[:6]
}

func synthesizeTitle(reports []types.Report) string {
	event := mainEventType(reports)
	return fmt.Sprintf("%s reported in %s at %s",
		strings.ToUpper(event[:1])+event[1:],
		mainLocation(reports),
		earliestTimestamp(reports).Format("15:04"))
}

// synthesizeLocation picks the highest-confidence usable geotag. A geotag is
// usable when it has both coordinates and confidence above the Delhi-centre
// fallback level.
func synthesizeLocation(reports []types.Report) types.SitrepLocation {
	var best *types.Geotag
	for i := range reports {
		tag := &reports[i].Geotag
		if tag.Confidence > 0.1 && tag.HasCoords() {
			if best == nil || tag.Confidence > best.Confidence {
				best = tag
			}
		}
	}

	if best == nil {
		return types.SitrepLocation{Name: "Unknown location"}
	}

	name := mainLocation(reports)
	if name == "Unknown location" && best.DisplayName != "" {
		name = best.DisplayName
	}
	return types.SitrepLocation{
		Name:       name,
		Lat:        best.Lat,
		Lng:        best.Lng,
		Confidence: best.Confidence,
	}
}

func synthesizeTimeWindow(reports []types.Report) types.TimeWindow {
	first := reports[0].Timestamp
	last := reports[0].Timestamp
	for _, r := range reports[1:] {
		if r.Timestamp.Before(first) {
			first = r.Timestamp
		}
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}

	confidence := 0.5
	if len(reports) > 1 {
		confidence = 0.7
	}
	return types.TimeWindow{
		FirstReport:     first,
		LastReport:      last,
		ApproxEventTime: first.Add(last.Sub(first) / 2),
		TimeConfidence:  confidence,
	}
}

func synthesizeBullets(reports []types.Report) []string {
	var bullets []string

	totalWitnesses := 0
	for _, r := range reports {
		if r.WitnessCount != nil && *r.WitnessCount > 0 {
			totalWitnesses += *r.WitnessCount
		}
	}
	if totalWitnesses > 0 {
		bullets = append(bullets, fmt.Sprintf("Witnessed by approximately %d people", totalWitnesses))
	}

	seen := map[string]bool{}
	casualtyBullets := []string{}
	for _, r := range reports {
		if r.CasualtyConfidence > 0.5 {
			phrase := formatCasualtyMention(r.CasualtyMentions)
			if !seen[phrase] {
				seen[phrase] = true
				casualtyBullets = append(casualtyBullets, phrase)
			}
		}
	}
	if len(casualtyBullets) > 0 {
		bullets = append(bullets, casualtyBullets...)
	} else {
		bullets = append(bullets, "No casualty information confirmed")
	}

	bullets = append(bullets, "Reported via: "+strings.Join(distinctSourceTypes(reports), ", "))

	switch {
	case anyCertainty(reports, types.CertaintyConfirmed):
		bullets = append(bullets, "Status: Confirmed reports present")
	case anyCertainty(reports, types.CertaintyReported):
		bullets = append(bullets, "Status: Unconfirmed reports")
	}

	return bullets
}

// synthesizeCasualties aggregates per-report casualty facts. Only mentions
// above the vague-phrasing confidence level count; an explicit "no
// casualties" report dominates numeric mentions, which are averaged.
func synthesizeCasualties(reports []types.Report) types.CasualtyEstimate {
	confident := []types.Report{}
	for _, r := range reports {
		if r.CasualtyConfidence > 0.5 {
			confident = append(confident, r)
		}
	}
	if len(confident) == 0 {
		return types.CasualtyEstimate{Count: nil, Confidence: 0.1}
	}

	for _, r := range confident {
		if r.CasualtyMentions != nil && *r.CasualtyMentions == 0 {
			zero := 0
			return types.CasualtyEstimate{Count: &zero, Confidence: 0.8}
		}
	}

	sum, n := 0, 0
	for _, r := range confident {
		if r.CasualtyMentions != nil {
			sum += *r.CasualtyMentions
			n++
		}
	}
	if n > 0 {
		avg := int(float64(sum)/float64(n) + 0.5)
		return types.CasualtyEstimate{Count: &avg, Confidence: 0.7}
	}

	return types.CasualtyEstimate{Count: nil, Confidence: 0.3}
}

func synthesizeSources(reports []types.Report) types.SourcesBlock {
	ids := make([]string, 0, len(reports))
	for _, r := range reports {
		ids = append(ids, r.ID)
	}

	stats := map[string]*sourceStat{}
	order := []string{}
	for _, r := range reports {
		name := r.ReporterMeta.Source
		if name == "" {
			name = "unknown"
		}
		if _, ok := stats[name]; !ok {
			stats[name] = &sourceStat{name: name, credibility: r.ReporterMeta.Credibility}
			order = append(order, name)
		}
		stats[name].count++
	}

	ranked := make([]*sourceStat, 0, len(order))
	for _, name := range order {
		ranked = append(ranked, stats[name])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return sourceScore(ranked[i]) > sourceScore(ranked[j])
	})

	top := make([]string, 0, 3)
	for _, stat := range ranked {
		if len(top) == 3 {
			break
		}
		top = append(top, stat.name)
	}

	return types.SourcesBlock{
		ReportCount: len(reports),
		ReportIDs:   ids,
		TopSources:  top,
	}
}

type sourceStat struct {
	name        string
	count       int
	credibility types.Credibility
}

// sourceScore ranks a source by report volume plus its credibility weight.
func sourceScore(s *sourceStat) int {
	weight := 0
	switch s.credibility {
	case types.CredibilityHigh:
		weight = 3
	case types.CredibilityMedium:
		weight = 2
	case types.CredibilityLow:
		weight = 1
	}
	return s.count + weight
}

func recommendedAction(cluster types.Cluster) string {
	status := cluster.VerificationStatus
	score := cluster.VerificationScore
	count := len(cluster.Reports)

	if status == types.StatusVerified || score >= 0.8 {
		return types.ActionPublish
	}
	if status == types.StatusProbable || (score >= 0.5 && count >= 2) {
		return types.ActionAlertAuthorities
	}
	if count >= 3 {
		return types.ActionRequestVerification
	}
	return types.ActionMonitor
}

// audit records what translation and geocoding actually produced for each
// report, so a reviewer can trace every SITREP field back to its inputs.
func (s *Synthesizer) audit(ctx context.Context, reports []types.Report) types.Audit {
	audit := types.Audit{CreatedAt: time.Now().UTC()}

	for _, r := range reports {
		entry := types.TranslationAudit{
			ReportID:  r.ID,
			Canonical: r.CanonicalText,
			Localized: map[string]string{},
		}
		for _, locale := range s.Locales {
			entry.Localized[locale] = s.Translator.Translate(ctx, r.CanonicalText, "en", locale)
		}
		audit.Translations = append(audit.Translations, entry)

		for _, name := range r.LocationNames {
			audit.GeocodeAttempts = append(audit.GeocodeAttempts, types.GeocodeAttempt{
				ReportID: r.ID,
				Query:    name,
				Result:   r.Geotag,
			})
		}
		if r.PreGeotag != nil {
			audit.GeocodeAttempts = append(audit.GeocodeAttempts, types.GeocodeAttempt{
				ReportID: r.ID,
				Query:    r.Location,
				Result:   *r.PreGeotag,
			})
		}
	}

	return audit
}

// Helpers.

// mainEventType returns the most frequent non-unknown event type, breaking
// ties by first appearance. All-unknown clusters read as a generic incident.
func mainEventType(reports []types.Report) string {
	counts := map[string]int{}
	order := []string{}
	for _, r := range reports {
		if r.EventType == "" || r.EventType == "unknown" {
			continue
		}
		if _, ok := counts[r.EventType]; !ok {
			order = append(order, r.EventType)
		}
		counts[r.EventType]++
	}
	if len(order) == 0 {
		return "incident"
	}

	best := order[0]
	for _, event := range order[1:] {
		if counts[event] > counts[best] {
			best = event
		}
	}
	return best
}

// mainLocation prefers the caller-supplied location field over names pulled
// out of the text; either way the most frequent value wins, first seen on
// ties.
func mainLocation(reports []types.Report) string {
	user := []string{}
	for _, r := range reports {
		if r.Location != "" {
			user = append(user, r.Location)
		}
	}
	if len(user) > 0 {
		return mostFrequent(user)
	}

	extracted := []string{}
	for _, r := range reports {
		extracted = append(extracted, r.LocationNames...)
	}
	if len(extracted) == 0 {
		return "Unknown location"
	}
	return mostFrequent(extracted)
}

func mostFrequent(values []string) string {
	counts := map[string]int{}
	order := []string{}
	for _, v := range values {
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}

	best := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[best] {
			best = v
		}
	}
	return best
}

func earliestTimestamp(reports []types.Report) time.Time {
	earliest := reports[0].Timestamp
	for _, r := range reports[1:] {
		if r.Timestamp.Before(earliest) {
			earliest = r.Timestamp
		}
	}
	return earliest
}

func distinctSourceTypes(reports []types.Report) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, r := range reports {
		if !seen[r.SourceType] {
			seen[r.SourceType] = true
			out = append(out, r.SourceType)
		}
	}
	return out
}

func anyCertainty(reports []types.Report, level types.CertaintyLevel) bool {
	for _, r := range reports {
		if r.CertaintyLevel == level {
			return true
		}
	}
	return false
}

func casualtySummaryClause(estimate types.CasualtyEstimate) string {
	if estimate.Count == nil {
		return "Casualty information unclear."
	}
	if *estimate.Count == 0 {
		return "No casualties reported."
	}
	return fmt.Sprintf("%d casualties mentioned.", *estimate.Count)
}

func formatCasualtyMention(mention *int) string {
	if mention == nil {
		return "Casualties reported (number unclear)"
	}
	if *mention == 0 {
		return "No injuries reported"
	}
	return fmt.Sprintf("%d casualties mentioned", *mention)
}

var slugReplacer = strings.NewReplacer(" ", "_", "-", "_")

// slug lowercases and strips a name down to [a-z0-9_].
func slug(name string) string {
	lowered := strings.ToLower(slugReplacer.Replace(strings.TrimSpace(name)))
	var b strings.Builder
	lastUnderscore := false
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_':
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
