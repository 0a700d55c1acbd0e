package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Message is a multicast push payload: a visible notification part and
// an opaque data part the client app routes on.
type Message struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// SendResult is the per-token delivery outcome reported by the gateway.
type SendResult struct {
	Token     string `json:"token"`
	Success   bool   `json:"success"`
	ErrorKind string `json:"error,omitempty"`
}

// ShouldPrune reports whether the failure means the token is dead and
// must be removed from the account, as opposed to a transient error.
func (r SendResult) ShouldPrune() bool {
	switch r.ErrorKind {
	case "invalid", "unregistered", "invalid-registration", "not-registered":
		return true
	}
	return false
}

// Client talks to the push delivery gateway over HTTP. It implements
// the one capability the dispatcher needs: send to many tokens, get
// per-token success back.
type Client struct {
	endpoint  string
	serverKey string
	http      *http.Client
}

func NewClient(endpoint, serverKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint:  endpoint,
		serverKey: serverKey,
		http:      &http.Client{Timeout: timeout},
	}
}

type multicastRequest struct {
	Tokens       []string          `json:"tokens"`
	Notification messageBody       `json:"notification"`
	Data         map[string]string `json:"data,omitempty"`
}

type messageBody struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type multicastResponse struct {
	Results []SendResult `json:"results"`
}

func (c *Client) SendMulticast(ctx context.Context, tokens []string, msg Message) ([]SendResult, error) {
	if c.endpoint == "" {
		return nil, fmt.Errorf("push: endpoint not configured")
	}

	payload, err := json.Marshal(multicastRequest{
		Tokens:       tokens,
		Notification: messageBody{Title: msg.Title, Body: msg.Body},
		Data:         msg.Data,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serverKey != "" {
		req.Header.Set("Authorization", "key="+c.serverKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("push: gateway returned status %d", resp.StatusCode)
	}

	var decoded multicastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("push: decoding gateway response: %w", err)
	}

	// Gateways report results positionally; fill in the token so
	// callers can prune without tracking indexes themselves.
	for i := range decoded.Results {
		if decoded.Results[i].Token == "" && i < len(tokens) {
			decoded.Results[i].Token = tokens[i]
		}
	}

	return decoded.Results, nil
}
