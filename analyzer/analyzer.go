package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go-sitrep/types"
)

const maxEvidenceChars = 15000

const systemPrompt = `You are an incident analysis assistant for an emergency response team.

Analyze ALL submitted evidence (text statements, image descriptions, video notes) and produce a structured incident report.

OUTPUT FORMAT (strict JSON):
{
    "incident_title": "Concise title (3-8 words) based on incident type and location",
    "summary": "2-3 sentences summarizing the incident (max 200 words)",
    "description": "Detailed chronological narrative synthesizing all evidence (max 500 words)",
    "people_involved": {
        "victims": ["description"],
        "suspects": ["description"],
        "witnesses": ["description"]
    },
    "actions_taken": {
        "emergency_response": ["action"],
        "police_actions": ["action"],
        "medical_interventions": ["action"]
    },
    "severity": "low/medium/high/critical",
    "source_credibility": "low/medium/high"
}

RULES:
1. Use every evidence source; note where sources agree or conflict.
2. Use "Not specified" only when no information is available.
3. Be factual and specific. Include names, times, and locations from the evidence.
4. Return ONLY valid JSON, no markdown formatting.`

// Service analyzes submitted evidence into a canonical English structured
// report. Analysis failures never propagate: the caller always gets a usable
// report, flagged is_fallback when it was built without the model.
type Service struct {
	client *openai.Client
	model  string
}

func NewService() *Service {
	var client *openai.Client
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	} else {
		log.Println("OPENAI_API_KEY not set, evidence analysis will use fallback reports")
	}

	return &Service{
		client: client,
		model:  openai.GPT4oMini,
	}
}

func (s *Service) Analyze(ctx context.Context, evidence types.Evidence) types.EvidenceReport {
	if s.client == nil {
		return s.fallbackReport(evidence)
	}

	log.Printf("Analyzing evidence: %d text, %d image, %d video item(s)",
		len(evidence.TextEvidence), len(evidence.ImageNotes), len(evidence.VideoNotes))

	report, err := s.structuredReport(ctx, evidence)
	if err != nil {
		log.Printf("Evidence analysis failed: %v. Using fallback report.", err)
		return s.fallbackReport(evidence)
	}
	return report
}

// modelReport mirrors the JSON shape the model is instructed to return.
type modelReport struct {
	IncidentTitle     string              `json:"incident_title"`
	Summary           string              `json:"summary"`
	Description       string              `json:"description"`
	PeopleInvolved    map[string][]string `json:"people_involved"`
	ActionsTaken      map[string][]string `json:"actions_taken"`
	Severity          string              `json:"severity"`
	SourceCredibility string              `json:"source_credibility"`
}

func (s *Service) structuredReport(ctx context.Context, evidence types.Evidence) (types.EvidenceReport, error) {
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt(evidence),
				},
			},
			MaxTokens:   2000,
			Temperature: 0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		},
	)
	if err != nil {
		return types.EvidenceReport{}, fmt.Errorf("openai chat completion error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return types.EvidenceReport{}, fmt.Errorf("openai returned empty response or choices")
	}

	raw := resp.Choices[0].Message.Content
	var parsed modelReport
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return types.EvidenceReport{}, fmt.Errorf("invalid JSON in model response: %w", err)
	}

	title := parsed.IncidentTitle
	if title == "" {
		title = defaultTitle(evidence)
	}

	return types.EvidenceReport{
		IncidentTitle:     title,
		Summary:           parsed.Summary,
		Description:       parsed.Description,
		PeopleInvolved:    parsed.PeopleInvolved,
		ActionsTaken:      parsed.ActionsTaken,
		Severity:          parsed.Severity,
		SourceCredibility: parseCredibility(parsed.SourceCredibility),
		OriginalLanguage:  "en",
		DateTime:          evidence.IncidentDatetime,
		Location:          evidence.IncidentLocation,
		RawResponse:       raw,
	}, nil
}

func userPrompt(evidence types.Evidence) string {
	var b strings.Builder

	fmt.Fprintf(&b, "INCIDENT METADATA:\n- Title: %s\n- Date/Time: %s\n- Location: %s\n\n",
		orNotProvided(evidence.IncidentTitle),
		orNotProvided(evidence.IncidentDatetime),
		orNotProvided(evidence.IncidentLocation))

	b.WriteString("=== TEXT EVIDENCE ===\n")
	b.WriteString(strings.Join(evidence.TextEvidence, "\n\n"))
	b.WriteString("\n\n")

	if len(evidence.ImageNotes) > 0 {
		b.WriteString("=== IMAGE ANALYSIS ===\n")
		for i, note := range evidence.ImageNotes {
			fmt.Fprintf(&b, "Image %d: %s\n", i+1, note)
		}
		b.WriteString("\n")
	}
	if len(evidence.VideoNotes) > 0 {
		b.WriteString("=== VIDEO ANALYSIS ===\n")
		for i, note := range evidence.VideoNotes {
			fmt.Fprintf(&b, "Video %d: %s\n", i+1, note)
		}
		b.WriteString("\n")
	}

	b.WriteString("Generate the structured incident report in JSON format.")

	prompt := b.String()
	if len(prompt) > maxEvidenceChars {
		log.Printf("Warning: evidence prompt exceeds max length (%d), truncating.", maxEvidenceChars)
		prompt = prompt[:maxEvidenceChars]
	}
	return prompt
}

var sentenceSplitRe = regexp.MustCompile(`(?:[.!?])\s+`)

// fallbackReport is deterministic: the summary is the first few sentences of
// the text evidence and every structured section reads "Not specified".
func (s *Service) fallbackReport(evidence types.Evidence) types.EvidenceReport {
	text := strings.Join(evidence.TextEvidence, "\n\n")

	summary := ""
	for _, sentence := range sentenceSplitRe.Split(text, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		if len(summary)+len(sentence) > 300 || strings.Count(summary, ". ") >= 2 {
			break
		}
		summary += sentence + ". "
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		if len(text) > 300 {
			summary = text[:300] + "..."
		} else {
			summary = text
		}
	}

	return types.EvidenceReport{
		IncidentTitle: defaultTitle(evidence),
		Summary:       summary,
		Description:   text,
		PeopleInvolved: map[string][]string{
			"victims":   {"Information not available, analysis failed. See description for details."},
			"suspects":  {"Not specified"},
			"witnesses": {"Not specified"},
		},
		ActionsTaken: map[string][]string{
			"emergency_response":    {"Not specified"},
			"police_actions":        {"Not specified"},
			"medical_interventions": {"Not specified"},
		},
		Severity:          "medium",
		SourceCredibility: types.CredibilityUnknown,
		OriginalLanguage:  "en",
		DateTime:          evidence.IncidentDatetime,
		Location:          evidence.IncidentLocation,
		IsFallback:        true,
	}
}

func defaultTitle(evidence types.Evidence) string {
	if evidence.IncidentTitle != "" {
		return evidence.IncidentTitle
	}
	return "Incident Report " + time.Now().UTC().Format("2006-01-02")
}

func parseCredibility(value string) types.Credibility {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "low":
		return types.CredibilityLow
	case "medium":
		return types.CredibilityMedium
	case "high":
		return types.CredibilityHigh
	case "verified":
		return types.CredibilityVerified
	case "official":
		return types.CredibilityOfficial
	default:
		return types.CredibilityUnknown
	}
}

func orNotProvided(value string) string {
	if value == "" {
		return "Not provided"
	}
	return value
}
