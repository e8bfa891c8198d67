package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vietddude/upgradewatch/internal/core/domain"
)

// Webhook posts Block Kit messages to a Slack incoming webhook.
type Webhook struct {
	url        string
	httpClient *http.Client
}

// NewWebhook creates a webhook sink.
func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type message struct {
	Text   string  `json:"text"`
	Blocks []block `json:"blocks"`
}

type block struct {
	Type   string  `json:"type"`
	Text   *text   `json:"text,omitempty"`
	Fields []field `json:"fields,omitempty"`
}

type text struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji"`
}

type field struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// SendUpgradeNotice announces a newly scheduled upgrade.
func (w *Webhook) SendUpgradeNotice(
	ctx context.Context,
	chainID string,
	plan *domain.UpgradePlan,
) error {
	msg := message{
		Text: fmt.Sprintf("%s upgrade at block height %d", chainID, plan.Height),
		Blocks: []block{
			{
				Type: "header",
				Text: &text{
					Type: "plain_text",
					Text: fmt.Sprintf("New chain upgrade in %s", chainID),
				},
			},
			{
				Type: "section",
				Fields: []field{
					{Type: "mrkdwn", Text: fmt.Sprintf("Name\n`%s`", plan.Name)},
					{Type: "mrkdwn", Text: fmt.Sprintf("Height\n`%d`", plan.Height)},
				},
			},
		},
	}
	return w.post(ctx, msg)
}

// SendReminder sends the one-time pre-upgrade reminder.
func (w *Webhook) SendReminder(
	ctx context.Context,
	chainID string,
	plan *domain.UpgradePlan,
	currentHeight int64,
) error {
	msg := message{
		Text: fmt.Sprintf(
			"%s chain upgrade taking place in %d blocks! @here",
			chainID, plan.RemainingBlocks(currentHeight),
		),
		Blocks: []block{
			{
				Type: "header",
				Text: &text{
					Type: "plain_text",
					Text: fmt.Sprintf("Reminder of chain upgrade in %s", chainID),
				},
			},
			{
				Type: "section",
				Fields: []field{
					{Type: "mrkdwn", Text: fmt.Sprintf("Name\n`%s`", plan.Name)},
					{Type: "mrkdwn", Text: fmt.Sprintf("Height\n`%d`", plan.Height)},
					{Type: "mrkdwn", Text: fmt.Sprintf("Current Height\n`%d`", currentHeight)},
				},
			},
		},
	}
	return w.post(ctx, msg)
}

func (w *Webhook) post(ctx context.Context, msg message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
