package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/omerdahan/whatsapp-rsvp/internal/entity"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-2.5-flash"
)

// Client is the AI-assisted reply interpreter: it asks a language
// model to classify a free-text reply into an RSVP outcome with a
// schema-constrained response.
type Client struct {
	HTTPClient *http.Client
	APIKey     string
	Model      string
	BaseURL    string
}

func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Model:      model,
		BaseURL:    defaultBaseURL,
	}
}

// Interpret classifies a reply. It never returns an error: whatever
// goes wrong upstream (network, quota, malformed output) degrades to
// NEEDS_ATTENTION with a zero count so a person reviews the reply.
func (c *Client) Interpret(ctx context.Context, message string) entity.ProcessedReply {
	reply, err := c.classify(ctx, message)
	if err != nil {
		log.Warn().Err(err).Msg("gemini classification failed, falling back to manual review")
		zero := 0
		return entity.ProcessedReply{Status: entity.StatusNeedsAttention, AttendeesCount: &zero}
	}
	return reply
}

func (c *Client) classify(ctx context.Context, message string) (entity.ProcessedReply, error) {
	prompt := fmt.Sprintf(`Analyze the following RSVP message and extract the status and number of attendees. The user is replying to an event invitation.
- If they confirm, status is CONFIRMED.
- If they decline, status is DECLINED.
- If they are unsure or the intent is unclear, status is NEEDS_ATTENTION.
- Attendee count must be 0 for any status other than CONFIRMED.
- If they say just "yes" or "confirmed", assume 1 attendee.
- If they say they are coming and mention a number, use that number.
- The user is replying in Hebrew.
Message: "%s"`, message)

	reqBody := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema(),
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return entity.ProcessedReply{}, err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return entity.ProcessedReply{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return entity.ProcessedReply{}, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return entity.ProcessedReply{}, fmt.Errorf("gemini api: status %d", resp.StatusCode)
	}

	var result generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return entity.ProcessedReply{}, fmt.Errorf("gemini response: %w", err)
	}
	if result.Error != nil {
		return entity.ProcessedReply{}, fmt.Errorf("gemini api: %s", result.Error.Message)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return entity.ProcessedReply{}, fmt.Errorf("gemini api: empty response")
	}

	return parseClassification(result.Candidates[0].Content.Parts[0].Text)
}

func responseSchema() *schema {
	return &schema{
		Type: "OBJECT",
		Properties: map[string]*schema{
			"status": {
				Type: "STRING",
				Enum: []string{
					string(entity.StatusConfirmed),
					string(entity.StatusDeclined),
					string(entity.StatusNeedsAttention),
				},
				Description: "The determined RSVP status.",
			},
			"attendeesCount": {
				Type:        "INTEGER",
				Description: "The number of people attending. Should be 0 if the status is DECLINED or NEEDS_ATTENTION. Should be at least 1 if CONFIRMED.",
			},
		},
		Required: []string{"status", "attendeesCount"},
	}
}

// parseClassification digs the JSON object out of the model text
// (which may be wrapped in markdown or prose) and normalizes it so the
// output contract holds no matter what the model said.
func parseClassification(text string) (entity.ProcessedReply, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return entity.ProcessedReply{}, fmt.Errorf("no JSON object in model output")
	}

	var parsed classification
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return entity.ProcessedReply{}, fmt.Errorf("decode model output: %w", err)
	}

	status := entity.RsvpStatus(parsed.Status)
	if !status.IsValid() {
		return entity.ProcessedReply{}, fmt.Errorf("model returned unknown status %q", parsed.Status)
	}

	count := parsed.AttendeesCount
	if status != entity.StatusConfirmed {
		count = 0
	}
	if status == entity.StatusConfirmed && count < 1 {
		count = 1
	}

	return entity.ProcessedReply{Status: status, AttendeesCount: &count}, nil
}
