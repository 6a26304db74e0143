package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"go-sitrep/types"
)

// The taxonomy is an ordered tagged-pattern table: new event types and new
// language keywords are data changes, not code changes. Declaration order is
// the tie-break when two types match the same number of keywords.
type eventPattern struct {
	eventType string
	keywords  []string
}

var eventTaxonomy = []eventPattern{
	{"explosion", []string{"explosion", "blast", "bomb", "exploded", "blow up", "धमाका", "বিস্ফোরণ"}},
	{"fire", []string{"fire", "burning", "flames", "smoke", "आग", "অগ্নি"}},
	{"collapse", []string{"collapse", "building fell", "structure down", "गिरना", "ধসে পড়া"}},
	{"protest", []string{"protest", "demonstration", "rally", "crowd", "प्रदर्शन", "বিক্ষোভ"}},
	{"shooting", []string{"shooting", "gunfire", "shots", "गोली", "গুলি"}},
	{"accident", []string{"accident", "crash", "collision", "दुर्घटना", "দুর্ঘটনা"}},
}

// EventTypeUnknown is returned when no taxonomy keyword matches.
const EventTypeUnknown = "unknown"

var (
	locationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b([A-Z][a-z]+\s+[Bb]agh)\b`),
		regexp.MustCompile(`\b([A-Z][a-z]+\s+[Nn]agar)\b`),
		regexp.MustCompile(`\b([A-Z][a-z]+\s+[Pp]lace)\b`),
		regexp.MustCompile(`(?i)\b(Delhi|Mumbai|Kolkata|Chennai|Bangalore|Hyderabad)\b`),
	}

	timeCuePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)`),
		regexp.MustCompile(`(\d{1,2})\s*बजे`),
		regexp.MustCompile(`সকাল|দুপুর|বিকাল|রাত`),
	}

	noCasualtyRe      = regexp.MustCompile(`(?i)no\s+(casualt|injur|hurt)`)
	noCasualtyIndicRe = regexp.MustCompile(`कोई\s+चोट\s+नहीं|আঘাত\s+নেই`)
	numCasualtyRe     = regexp.MustCompile(`(?i)(\d+)\s+(injured|hurt|casualt|dead|killed)`)
	vagueCasualtyRe   = regexp.MustCompile(`(?i)(several|many|few|some).*(injured|hurt|casualt)`)

	numWitnessRe   = regexp.MustCompile(`(?i)(\d+)\s+(people|witnesses|persons).*(saw|heard|reported)`)
	vagueWitnessRe = regexp.MustCompile(`(?i)(many|several)\s+(people|witnesses)`)

	confirmedRe = regexp.MustCompile(`(?i)confirmed|verified|official`)
	reportedRe  = regexp.MustCompile(`(?i)reported|alleged|suspected`)
)

// Apply runs every extractor over the report's canonical text and fills the
// derived fields. No extractor fails; missing patterns yield the
// low-confidence defaults.
func Apply(r *types.Report) {
	text := r.CanonicalText

	r.EventType, r.EventConfidence = EventType(text)
	r.LocationNames = LocationNames(text, r.ExtractedLocations)
	r.BestGuessDatetime, r.DatetimeConfidence = Datetime(text, r.Timestamp)
	r.CasualtyMentions, r.CasualtyConfidence = Casualties(text)
	r.WitnessCount = WitnessCount(text)
	r.CertaintyLevel = Certainty(text)
}

// EventType scores each taxonomy entry by the number of distinct keywords
// present (case-insensitive substring match) and returns the winner with
// confidence min(score*0.3, 1.0). No match yields ("unknown", 0).
func EventType(text string) (string, float64) {
	lower := strings.ToLower(text)

	highestScore := 0
	detected := EventTypeUnknown
	for _, entry := range eventTaxonomy {
		score := 0
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, strings.ToLower(keyword)) {
				score++
			}
		}
		if score > highestScore {
			highestScore = score
			detected = entry.eventType
		}
	}

	confidence := float64(highestScore) * 0.3
	if confidence > 1.0 {
		confidence = 1.0
	}
	return detected, confidence
}

// LocationNames extracts candidate place names. Inline locations passed by
// the caller come first; regex hits are appended; duplicates are dropped
// keeping the first occurrence.
func LocationNames(text string, inline []string) []string {
	var candidates []string
	candidates = append(candidates, inline...)

	for _, re := range locationPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			candidates = append(candidates, match[1])
		}
	}

	seen := make(map[string]bool, len(candidates))
	locations := make([]string, 0, len(candidates))
	for _, loc := range candidates {
		if !seen[loc] {
			seen[loc] = true
			locations = append(locations, loc)
		}
	}
	return locations
}

// Datetime confirms the presence of a time cue in the text. The value is
// always the report's submission timestamp; only the confidence changes
// (0.7 with a cue, 0.3 without).
func Datetime(text string, reportTime time.Time) (time.Time, float64) {
	for _, re := range timeCuePatterns {
		if re.MatchString(text) {
			return reportTime, 0.7
		}
	}
	return reportTime, 0.3
}

// Casualties resolves the casualty mention in priority order: explicit
// denial, explicit count, vague quantifier, nothing.
func Casualties(text string) (*int, float64) {
	if noCasualtyRe.MatchString(text) || noCasualtyIndicRe.MatchString(text) {
		zero := 0
		return &zero, 0.8
	}

	if m := numCasualtyRe.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return &n, 0.9
		}
	}

	if vagueCasualtyRe.MatchString(text) {
		return nil, 0.4
	}

	return nil, 0.1
}

// WitnessCount returns the witness count, the fixed estimate of 5 for vague
// "many/several" phrasing, or nil.
func WitnessCount(text string) *int {
	if m := numWitnessRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	if vagueWitnessRe.MatchString(text) {
		estimate := 5
		return &estimate
	}
	return nil
}

// Certainty maps modal indicators to a certainty level.
func Certainty(text string) types.CertaintyLevel {
	if confirmedRe.MatchString(text) {
		return types.CertaintyConfirmed
	}
	if reportedRe.MatchString(text) {
		return types.CertaintyReported
	}
	return types.CertaintyUnconfirmed
}
