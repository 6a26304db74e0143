package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"
)

const defaultTimeout = 30 * time.Second

// Client talks to the Lingo translation service over its JSON API.
type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewClient builds a client from LINGO_API_URL / LINGO_API_KEY.
func NewClient() *Client {
	return &Client{
		BaseURL:    os.Getenv("LINGO_API_URL"),
		APIKey:     os.Getenv("LINGO_API_KEY"),
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	Locale string `json:"locale"`
}

type translateRequest struct {
	Text         string `json:"text"`
	SourceLocale string `json:"sourceLocale"`
	TargetLocale string `json:"targetLocale"`
}

type translateResponse struct {
	Text string `json:"text"`
}

type batchRequest struct {
	Text          string   `json:"text"`
	SourceLocale  string   `json:"sourceLocale"`
	TargetLocales []string `json:"targetLocales"`
}

type batchResponse struct {
	Translations []string `json:"translations"`
}

func (c *Client) Detect(ctx context.Context, text string) string {
	var resp detectResponse
	if err := c.post(ctx, "/recognize", detectRequest{Text: text}, &resp); err != nil {
		log.Printf("Lingo language detection failed: %v", err)
		return DetectByScript(text)
	}
	if resp.Locale == "" {
		return DetectByScript(text)
	}
	return resp.Locale
}

func (c *Client) Translate(ctx context.Context, text, source, target string) string {
	if source == "auto" {
		source = c.Detect(ctx, text)
	}
	if source == target || text == "" {
		return text
	}

	var resp translateResponse
	err := c.post(ctx, "/localize", translateRequest{
		Text:         text,
		SourceLocale: source,
		TargetLocale: target,
	}, &resp)
	if err != nil {
		log.Printf("Lingo translation failed (%s -> %s): %v", source, target, err)
		return text
	}
	if resp.Text == "" {
		return text
	}
	return resp.Text
}

func (c *Client) FanOut(ctx context.Context, text string, targets []string) map[string]string {
	var resp batchResponse
	err := c.post(ctx, "/localize/batch", batchRequest{
		Text:          text,
		SourceLocale:  "en",
		TargetLocales: targets,
	}, &resp)
	if err == nil && len(resp.Translations) == len(targets) {
		out := make(map[string]string, len(targets))
		for i, locale := range targets {
			if resp.Translations[i] != "" {
				out[locale] = resp.Translations[i]
			} else {
				out[locale] = text
			}
		}
		return out
	}

	if err != nil {
		log.Printf("Lingo batch translation failed, falling back to individual translations: %v", err)
	}

	// Per-locale fallback; Translate itself degrades to echoing the source.
	out := make(map[string]string, len(targets))
	for _, locale := range targets {
		out[locale] = c.Translate(ctx, text, "en", locale)
	}
	return out
}

func (c *Client) post(ctx context.Context, path string, payload, out interface{}) error {
	if c.BaseURL == "" {
		return errors.New("LINGO_API_URL not set")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.New("lingo service returned status: " + resp.Status)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
