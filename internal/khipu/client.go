// Package khipu implements the HTTP client for the Khipu payment API (v3).
// Requests use basic auth with the receiver id and secret; non-2xx responses
// surface as errors carrying the HTTP status and body.
package khipu

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// NotifyAPIVersion is the webhook format requested from Khipu.
const NotifyAPIVersion = "3.0"

// Client calls the Khipu payment API.
type Client struct {
	receiverID string
	secret     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Khipu API client.
func NewClient(receiverID, secret, baseURL string) *Client {
	return &Client{
		receiverID: receiverID,
		secret:     secret,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) newRequest(method, path string, body any) (*http.Request, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return nil, err
	}
	auth := base64.StdEncoding.EncodeToString([]byte(c.receiverID + ":" + c.secret))
	req.Header.Set("Authorization", "Basic "+auth)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	const op = "khipu.do"

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("khipu %d: %s", resp.StatusCode, string(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	return nil
}

// CreatePayment registers a new payment with Khipu and returns the provider
// payment id plus the URL the payer must be redirected to.
func (c *Client) CreatePayment(reqParams CreatePaymentRequest) (*CreatePaymentResponse, error) {
	const op = "khipu.CreatePayment"

	req, err := c.newRequest(http.MethodPost, "/payments", reqParams)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var paymentResp CreatePaymentResponse
	if err := c.do(req, &paymentResp); err != nil {
		return nil, err
	}
	return &paymentResp, nil
}

// GetPayment fetches the authoritative state of a payment from Khipu.
// The webhook reconciler uses this instead of trusting webhook payloads.
func (c *Client) GetPayment(providerPaymentID string) (*GetPaymentResponse, error) {
	const op = "khipu.GetPayment"

	req, err := c.newRequest(http.MethodGet, "/payments/"+url.PathEscape(providerPaymentID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	var paymentResp GetPaymentResponse
	if err := c.do(req, &paymentResp); err != nil {
		return nil, err
	}
	return &paymentResp, nil
}
