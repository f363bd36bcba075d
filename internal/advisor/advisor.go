// Package advisor asks the text-generation collaborator for pricing guidance.
// Discount suggestions go through a schema-constrained JSON request and a
// strict parser; the best-effort prose extraction survives only for the
// free-form advice path.
package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/shelfaware/shelfaware/internal/metrics"
	"github.com/shelfaware/shelfaware/internal/models"
	"github.com/shelfaware/shelfaware/internal/patterns"
)

// ErrGenerationFailed is returned when the collaborator call failed or
// returned a non-OK status
var ErrGenerationFailed = errors.New("text generation failed")

// ErrUnparseableSuggestion is returned when the collaborator's reply does not
// match the requested suggestion schema. There is no silent fallback.
var ErrUnparseableSuggestion = errors.New("suggestion response did not match schema")

// FallbackAdvice is shown when the collaborator is unreachable
const FallbackAdvice = "Sorry, I encountered an error. Please try again."

const systemPrompt = `You are a retail inventory copilot focused on waste reduction and smart pricing.
You analyze stock levels and expiry risk, recommend discounts, transfers and donations for at-risk items,
and answer inventory questions with concise, actionable, retail-specific guidance.`

// Suggestion is the structured pricing recommendation for one product
type Suggestion struct {
	DiscountPercent    int `json:"discountPercent"`
	SellThroughPercent int `json:"sellThroughPercent"`
}

// Client calls a Gemini-style generateContent endpoint
type Client struct {
	http     *resty.Client
	baseURL  string
	apiKey   string
	model    string
	circuit  *patterns.CircuitBreakerWrapper
	bulkhead *patterns.Bulkhead
}

// NewClient creates an advisor client. Generation can be slow, so it gets the
// long timeout; each call is still attempted exactly once.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(patterns.SlowServiceTimeout).
			SetRetryCount(0),
		baseURL:  baseURL,
		apiKey:   apiKey,
		model:    model,
		circuit:  patterns.NewCircuitBreaker("Generation", "shelfaware"),
		bulkhead: patterns.NewBulkhead(5, "generation", "shelfaware"),
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Role  string         `json:"role"`
	Parts []generatePart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
}

type generateRequest struct {
	Contents         []generateContent `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

var suggestionSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"discountPercent": {"type": "integer", "minimum": 0, "maximum": 100},
		"sellThroughPercent": {"type": "integer", "minimum": 0, "maximum": 100}
	},
	"required": ["discountPercent", "sellThroughPercent"]
}`)

// generate performs one call and returns the concatenated reply text
func (c *Client) generate(req generateRequest) (string, error) {
	var text string

	err := c.bulkhead.Execute(func() error {
		_, cbErr := c.circuit.Execute(func() (interface{}, error) {
			resp, httpErr := c.http.R().
				SetHeader("Content-Type", "application/json").
				SetQueryParam("key", c.apiKey).
				SetBody(req).
				Post(c.baseURL + "/v1beta/models/" + c.model + ":generateContent")
			if httpErr != nil {
				return nil, fmt.Errorf("HTTP error: %w", httpErr)
			}
			if resp.StatusCode() != http.StatusOK {
				return nil, fmt.Errorf("generation service returned status %d: %s", resp.StatusCode(), resp.String())
			}

			var body generateResponse
			if err := json.Unmarshal(resp.Body(), &body); err != nil {
				return nil, fmt.Errorf("failed to parse response: %w", err)
			}
			if len(body.Candidates) == 0 {
				return nil, fmt.Errorf("generation returned no candidates")
			}

			var sb strings.Builder
			for _, part := range body.Candidates[0].Content.Parts {
				sb.WriteString(part.Text)
			}
			text = sb.String()
			return nil, nil
		})
		return patterns.FormatError("Generation", cbErr)
	})

	if err != nil {
		metrics.ExternalCallFailures.WithLabelValues("generation").Inc()
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	return text, nil
}

// SuggestDiscount asks for a structured discount and sell-through prediction
// for the product. A reply that does not match the schema is an error, never
// a silent fallback to the current values.
func (c *Client) SuggestDiscount(item models.InventoryItem) (Suggestion, error) {
	prompt := fmt.Sprintf(
		"Suggest an optimal discount percentage and predicted sell-through rate for the following product:\n"+
			"Name: %s\nCategory: %s\nQuantity: %d\nUrgency: %s\nHours Left: %d\nCurrent Price: $%s\nCurrent Discount: %d%%",
		item.Name, item.Category, item.Quantity, item.Urgency,
		item.DaysUntilExpiry*24, item.Price.StringFixed(2), item.SuggestedDiscount,
	)

	req := generateRequest{
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: systemPrompt}}},
			{Role: "model", Parts: []generatePart{{Text: "Understood. Ready to assist with inventory optimization."}}},
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   suggestionSchema,
		},
	}

	text, err := c.generate(req)
	if err != nil {
		metrics.DiscountSuggestions.WithLabelValues("call_failed").Inc()
		return Suggestion{}, err
	}

	suggestion, err := ParseSuggestion(text)
	if err != nil {
		metrics.DiscountSuggestions.WithLabelValues("parse_failed").Inc()
		log.WithFields(log.Fields{
			"item_id": item.ID,
			"reply":   text,
		}).Warn("Discount suggestion did not match schema")
		return Suggestion{}, err
	}

	metrics.DiscountSuggestions.WithLabelValues("ok").Inc()
	return suggestion, nil
}

// Advise answers a free-form prompt. Collaborator failure yields the canned
// fallback message alongside the error.
func (c *Client) Advise(prompt string) (string, error) {
	req := generateRequest{
		Contents: []generateContent{
			{Role: "user", Parts: []generatePart{{Text: systemPrompt}}},
			{Role: "model", Parts: []generatePart{{Text: "Understood. Ready to assist with inventory optimization."}}},
			{Role: "user", Parts: []generatePart{{Text: prompt}}},
		},
	}

	text, err := c.generate(req)
	if err != nil {
		return FallbackAdvice, err
	}
	return text, nil
}

// ParseSuggestion strictly parses a schema-constrained suggestion reply
func ParseSuggestion(text string) (Suggestion, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()

	var s Suggestion
	if err := dec.Decode(&s); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrUnparseableSuggestion, err)
	}
	if s.DiscountPercent < 0 || s.DiscountPercent > 100 ||
		s.SellThroughPercent < 0 || s.SellThroughPercent > 100 {
		return Suggestion{}, fmt.Errorf("%w: percentages out of range", ErrUnparseableSuggestion)
	}
	return s, nil
}
