// Package collab holds the clients for external collaborators: the
// generative AI model, the speech recognizer and the spreadsheet webhook.
// Calls are synchronous with bounded timeouts and no retries; handlers
// degrade failures into user-visible text instead of hard errors.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/munmentor/munmentor/internal/observability"
)

var ErrModelUnavailable = errors.New("model unavailable")

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

type Gemini struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	obs     *observability.Prom
}

// NewGemini builds a client for the generative AI collaborator. baseURL
// is overridable for tests; empty means the real endpoint.
func NewGemini(apiKey, model, baseURL string, obs *observability.Prom) *Gemini {
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &Gemini{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
		obs:     obs,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// Reply sends a prompt to the model and returns the first candidate's
// text, trimmed.
func (g *Gemini) Reply(ctx context.Context, prompt string) (string, error) {
	var out string

	err := g.obs.ObserveCollab("gemini", func() error {
		body, err := json.Marshal(geminiRequest{
			Contents: []geminiContent{
				{Parts: []geminiPart{{Text: prompt}}},
			},
		})

		if err != nil {
			return err
		}

		endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
			g.baseURL, g.model, url.QueryEscape(g.apiKey))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))

		if err != nil {
			return err
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := g.client.Do(req)

		if err != nil {
			return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d", ErrModelUnavailable, resp.StatusCode)
		}

		var parsed geminiResponse

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrModelUnavailable, err)
		}

		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
			return fmt.Errorf("%w: empty response", ErrModelUnavailable)
		}

		out = strings.TrimSpace(parsed.Candidates[0].Content.Parts[0].Text)

		return nil
	})

	if err != nil {
		return "", err
	}

	return out, nil
}
