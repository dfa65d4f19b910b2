package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/munmentor/munmentor/internal/observability"
)

var (
	// ErrNoSpeech means the recognizer ran but found nothing intelligible.
	ErrNoSpeech = errors.New("could not understand audio")
	// ErrSpeechUnavailable means the recognizer itself could not be reached.
	ErrSpeechUnavailable = errors.New("speech service unavailable")
)

const defaultSpeechBaseURL = "https://speech.googleapis.com"

type Speech struct {
	apiKey  string
	baseURL string
	client  *http.Client
	obs     *observability.Prom
}

func NewSpeech(apiKey, baseURL string, obs *observability.Prom) *Speech {
	if baseURL == "" {
		baseURL = defaultSpeechBaseURL
	}

	return &Speech{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 20 * time.Second},
		obs:     obs,
	}
}

type speechRequest struct {
	Config speechConfig `json:"config"`
	Audio  speechAudio  `json:"audio"`
}

type speechConfig struct {
	LanguageCode string `json:"languageCode"`
}

type speechAudio struct {
	Content string `json:"content"` // base64-encoded audio bytes
}

type speechResponse struct {
	Results []struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"results"`
}

// Recognize sends base64-encoded audio to the recognizer and returns the
// best transcript.
func (s *Speech) Recognize(ctx context.Context, audioContent string) (string, error) {
	if audioContent == "" {
		return "", ErrNoSpeech
	}

	var transcript string

	err := s.obs.ObserveCollab("speech", func() error {
		body, err := json.Marshal(speechRequest{
			Config: speechConfig{LanguageCode: "en-US"},
			Audio:  speechAudio{Content: audioContent},
		})

		if err != nil {
			return err
		}

		endpoint := fmt.Sprintf("%s/v1/speech:recognize?key=%s", s.baseURL, url.QueryEscape(s.apiKey))

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))

		if err != nil {
			return err
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)

		if err != nil {
			return fmt.Errorf("%w: %v", ErrSpeechUnavailable, err)
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d", ErrSpeechUnavailable, resp.StatusCode)
		}

		var parsed speechResponse

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrSpeechUnavailable, err)
		}

		if len(parsed.Results) == 0 || len(parsed.Results[0].Alternatives) == 0 {
			return ErrNoSpeech
		}

		transcript = parsed.Results[0].Alternatives[0].Transcript

		return nil
	})

	if err != nil {
		return "", err
	}

	return transcript, nil
}
