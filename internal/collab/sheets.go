package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/munmentor/munmentor/internal/observability"
)

// ErrWebhookRejected means the webhook answered with a non-200 status.
var ErrWebhookRejected = errors.New("webhook rejected submission")

type Sheets struct {
	webhookURL string
	client     *http.Client
	obs        *observability.Prom
}

func NewSheets(webhookURL string, obs *observability.Prom) *Sheets {
	return &Sheets{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 15 * time.Second},
		obs:        obs,
	}
}

// Submit relays a registration payload to the spreadsheet webhook.
func (s *Sheets) Submit(ctx context.Context, payload map[string]any) error {
	return s.obs.ObserveCollab("sheets", func() error {
		body, err := json.Marshal(payload)

		if err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))

		if err != nil {
			return err
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)

		if err != nil {
			return err
		}

		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("%w: status %d", ErrWebhookRejected, resp.StatusCode)
		}

		return nil
	})
}
