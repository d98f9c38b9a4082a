package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// GatewayClient sends messages through an HTTP SMS gateway. The gateway is
// expected to answer with a JSON body carrying a numeric "code" field, zero
// meaning accepted.
type GatewayClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGatewayClient(baseURL string, apiKey string) *GatewayClient {
	return &GatewayClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type gatewayResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (c *GatewayClient) Send(ctx context.Context, phone string, text string) error {
	form := url.Values{}
	form.Set("recipient", strings.TrimPrefix(phone, "+"))
	form.Set("text", text)
	form.Set("apiKey", c.apiKey)

	endpoint := c.baseURL + "/service/message/sendsmsmessage"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("error sending sms: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	var body gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("error decoding gateway response: %w", err)
	}
	if body.Code != 0 {
		return fmt.Errorf("sms gateway rejected message: code=%d message=%s", body.Code, body.Message)
	}

	return nil
}
