// Package recaptcha verifies reCAPTCHA v3 tokens on anonymous endpoints.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const verifyURL = "https://www.google.com/recaptcha/api/siteverify"

// Result is the verification outcome for a submitted token
type Result struct {
	Success bool     `json:"success"`
	Score   float64  `json:"score"`
	Action  string   `json:"action"`
	Errors  []string `json:"error-codes"`
}

// Verifier checks a client token against the verification service
type Verifier interface {
	Verify(ctx context.Context, token string) (*Result, error)
}

// Client implements Verifier against the Google siteverify endpoint
type Client struct {
	secret string
	client *http.Client
}

// NewClient builds a verifier with the given site secret
func NewClient(secret string, timeout time.Duration) *Client {
	return &Client{secret: secret, client: &http.Client{Timeout: timeout}}
}

// Verify posts the token for verification
func (c *Client) Verify(ctx context.Context, token string) (*Result, error) {
	form := url.Values{}
	form.Set("response", token)
	form.Set("secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recaptcha verify: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode recaptcha response: %w", err)
	}
	return &result, nil
}
