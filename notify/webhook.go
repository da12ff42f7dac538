/*
Package notify provides notification sink implementations.

PURPOSE:
  The coordinator hands claimed credentials to a pool.Sink for direct
  delivery to the requesting user. This package ships:
  - Webhook: posts the rendered payload to a per-user webhook endpoint
    (the gateway adapter in front of the chat platform)
  - Log:     dev sink that only logs deliveries
  - Memory:  test sink recording payloads, with injectable failures

DELIVERY CONTRACT:
  Deliver returns an error only when the user was unreachable. The
  coordinator deliberately does NOT release claimed accounts on that
  error; see pool/coordinator.go.
*/
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/warp/account-pool/pool"
)

// ErrUnreachable is returned when the delivery endpoint rejected or
// never answered the push.
var ErrUnreachable = errors.New("recipient unreachable")

// =============================================================================
// WEBHOOK SINK
// =============================================================================

// Webhook delivers payloads by POSTing JSON to {BaseURL}/users/{id}/messages.
type Webhook struct {
	BaseURL string
	Client  *http.Client
}

// NewWebhook creates a webhook sink with a bounded delivery timeout.
func NewWebhook(baseURL string) *Webhook {
	return &Webhook{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// wire types: the payload as it crosses the webhook boundary.
type wireAccount struct {
	Category   string   `json:"category"`
	Identifier string   `json:"identifier"`
	Secret     string   `json:"secret"`
	Token      string   `json:"token,omitempty"`
	Bans       []string `json:"bans,omitempty"`
}

type wirePayload struct {
	Kind     string                 `json:"kind"`
	Account  *wireAccount           `json:"account,omitempty"`
	Pack     map[string]wireAccount `json:"pack,omitempty"`
	Stats    map[string]wireStats   `json:"stats,omitempty"`
	Actions  []string               `json:"actions,omitempty"`
	SentAt   string                 `json:"sent_at"`
}

type wireStats struct {
	Total          int            `json:"total"`
	Claimed        int            `json:"claimed"`
	Available      int            `json:"available"`
	FullyAvailable int            `json:"fully_available"`
	BannedOn       map[string]int `json:"banned_on,omitempty"`
	Utilization    string         `json:"utilization"`
}

func toWire(p pool.Payload) wirePayload {
	w := wirePayload{
		Kind:   string(p.Kind),
		SentAt: time.Now().UTC().Format(time.RFC3339),
	}
	if p.Account != nil {
		a := toWireAccount(*p.Account)
		w.Account = &a
	}
	if len(p.Pack) > 0 {
		w.Pack = make(map[string]wireAccount, len(p.Pack))
		for cat, acct := range p.Pack {
			w.Pack[string(cat)] = toWireAccount(acct)
		}
	}
	if len(p.Stats) > 0 {
		w.Stats = make(map[string]wireStats, len(p.Stats))
		for cat, cs := range p.Stats {
			w.Stats[string(cat)] = wireStats{
				Total:          cs.Total,
				Claimed:        cs.Claimed,
				Available:      cs.Available,
				FullyAvailable: cs.FullyAvailable,
				BannedOn:       cs.BannedOn,
				Utilization:    cs.Utilization.String(),
			}
		}
	}
	for _, ref := range p.Actions {
		w.Actions = append(w.Actions, string(ref))
	}
	return w
}

func toWireAccount(a pool.Account) wireAccount {
	return wireAccount{
		Category:   string(a.Category),
		Identifier: a.Identifier,
		Secret:     a.Secret,
		Token:      a.Token,
		Bans:       a.Bans,
	}
}

// Deliver posts the payload to the user's endpoint.
func (w *Webhook) Deliver(ctx context.Context, userID string, p pool.Payload) error {
	body, err := json.Marshal(toWire(p))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/messages", w.BaseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	return nil
}
