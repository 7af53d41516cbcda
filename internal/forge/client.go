// Package forge talks to the external card-generation service. Only its
// input/output contract lives here: a structured prompt context goes out,
// a JSON document of card definitions and a reasoning string comes back.
// Anything malformed is rejected before it can reach an inventory.
package forge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"innerlevel/internal/card"
)

// ErrInvalidContent marks generated output that failed structural
// validation. Callers fall back to the local recommendation scorer.
var ErrInvalidContent = errors.New("invalid generated content")

// PromptContext is the structured situation sent to the service.
type PromptContext struct {
	Class     string  `json:"class"`
	Level     int     `json:"level"`
	Energy    float64 `json:"energy"`
	MaxEnergy float64 `json:"max_energy"`
	Goal      string  `json:"goal,omitempty"`
	Situation string  `json:"situation,omitempty"`
}

// Suggestion is a validated service response.
type Suggestion struct {
	Cards     []card.Card `json:"cards"`
	Reasoning string      `json:"reasoning,omitempty"`
}

// Client is a thin HTTP JSON client. The zero value is unusable; use New.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Suggest asks the service for card suggestions. Transport errors are
// returned as-is; a response that parses but fails validation returns
// ErrInvalidContent. Either way the caller degrades to the local scorer.
func (c *Client) Suggest(ctx context.Context, pc PromptContext) (Suggestion, error) {
	body, err := json.Marshal(pc)
	if err != nil {
		return Suggestion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/cards/suggest", bytes.NewReader(body))
	if err != nil {
		return Suggestion{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return Suggestion{}, fmt.Errorf("forge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Suggestion{}, fmt.Errorf("forge returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Suggestion{}, fmt.Errorf("forge response: %w", err)
	}
	return ParseSuggestion(raw)
}

// ParseSuggestion decodes and validates a raw service payload.
func ParseSuggestion(raw []byte) (Suggestion, error) {
	var payload struct {
		Cards     []card.Card `json:"cards"`
		Reasoning string      `json:"reasoning"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return Suggestion{}, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	if len(payload.Cards) == 0 {
		return Suggestion{}, fmt.Errorf("%w: no cards in response", ErrInvalidContent)
	}
	for i, c := range payload.Cards {
		if err := c.Validate(); err != nil {
			return Suggestion{}, fmt.Errorf("%w: card %d: %v", ErrInvalidContent, i, err)
		}
	}
	return Suggestion{Cards: payload.Cards, Reasoning: payload.Reasoning}, nil
}
