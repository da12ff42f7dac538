/*
Package otp retrieves one-time codes for delivered accounts.

PURPOSE:
  Two follow-up code paths exist:
  - 2FA: the token-bearing category stores a TOTP secret token; codes
    come from an external token API over HTTP (this file).
  - Mail OTP: the mail-backed category receives codes by email; the
    inbox transport is an external collaborator behind the
    MailCodeSource interface (mail.go).

API TOLERANCE:
  The token API has produced several response shapes over time:
    {"ok":true,"data":{"otp":"123456","timeRemaining":30}}
    {"token":"123456"}
    {"otp":"123456"}
    a bare "123456" string
  Fetch tries them in order and falls back to a 6-digit scan of the raw
  body before giving up.

TIMEOUTS:
  All calls are bounded (10s). A timeout is a distinct, reported
  failure, never a crash.
*/
package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"
)

// ErrCodeUnavailable is returned when no code could be extracted.
var ErrCodeUnavailable = errors.New("one-time code unavailable")

// DefaultBaseURL is the public token API endpoint.
const DefaultBaseURL = "https://2fa.fb.rip"

var sixDigits = regexp.MustCompile(`\b\d{6}\b`)

// Code is a retrieved one-time code.
type Code struct {
	Value       string
	SecondsLeft int // 0 when the API didn't say
}

// =============================================================================
// TOKEN API CLIENT
// =============================================================================

// Client fetches TOTP codes from the token API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a client with the default endpoint and a bounded
// timeout.
func NewClient() *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// apiResponse covers the known response shapes in one struct.
type apiResponse struct {
	OK   *bool `json:"ok"`
	Data struct {
		OTP           string `json:"otp"`
		TimeRemaining int    `json:"timeRemaining"`
	} `json:"data"`
	Token   string `json:"token"`
	OTP     string `json:"otp"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Fetch retrieves the current code for the 2FA token.
func (c *Client) Fetch(ctx context.Context, token string) (*Code, error) {
	endpoint := fmt.Sprintf("%s/api/otp/%s", c.BaseURL, url.PathEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCodeUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrCodeUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrCodeUnavailable, resp.StatusCode)
	}
	return parseResponse(body)
}

// parseResponse tries the known shapes in order, then the raw scan.
func parseResponse(body []byte) (*Code, error) {
	var r apiResponse
	if err := json.Unmarshal(body, &r); err == nil {
		switch {
		case r.OK != nil && *r.OK && r.Data.OTP != "":
			return &Code{Value: r.Data.OTP, SecondsLeft: r.Data.TimeRemaining}, nil
		case r.Token != "":
			return &Code{Value: r.Token}, nil
		case r.OTP != "":
			return &Code{Value: r.OTP}, nil
		case r.OK != nil && !*r.OK:
			msg := r.Error
			if msg == "" {
				msg = r.Message
			}
			if msg != "" {
				return nil, fmt.Errorf("%w: %s", ErrCodeUnavailable, msg)
			}
		}
	}

	// Bare string body, e.g. "123456".
	var bare string
	if err := json.Unmarshal(body, &bare); err == nil {
		if code, ok := ExtractCode(bare); ok {
			return &Code{Value: code}, nil
		}
	}

	// Last resort: any 6-digit group anywhere in the body.
	if code, ok := ExtractCode(string(body)); ok {
		return &Code{Value: code}, nil
	}
	return nil, ErrCodeUnavailable
}

// ExtractCode finds the first 6-digit group in text.
func ExtractCode(text string) (string, bool) {
	m := sixDigits.FindString(text)
	return m, m != ""
}
