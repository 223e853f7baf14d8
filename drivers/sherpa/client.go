package sherpa

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/utils/logger"
)

// Client issues authenticated calls against one shop's Sherpa service
// endpoint and owns the retry policy. Safe to reuse across streams; the tap
// runs them sequentially anyway.
type Client struct {
	endpoint     string
	securityCode string
	httpClient   *http.Client
	maxRetries   int
	backoff      Backoff
	jitter       Jitter
	sleep        func(context.Context, time.Duration) error
}

// sleepContext waits out the backoff but aborts as soon as the context is
// canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type ClientOption func(*Client)

// WithJitter pins the backoff randomness source, for tests.
func WithJitter(jitter Jitter) ClientOption {
	return func(c *Client) { c.jitter = jitter }
}

// WithSleep replaces the inter-attempt sleep, for tests.
func WithSleep(sleep func(context.Context, time.Duration) error) ClientOption {
	return func(c *Client) { c.sleep = sleep }
}

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(config *Config, opts ...ClientOption) *Client {
	client := &Client{
		endpoint:     fmt.Sprintf("%s/%s/%s", config.BaseURL, config.ShopID, constants.SherpaServicePath),
		securityCode: config.SecurityCode,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		maxRetries:   config.Retries(),
		backoff:      NewBackoff(config.RetryWaitMin, config.RetryWaitMax),
		jitter:       defaultJitter,
		sleep:        sleepContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// CallService posts one SOAP request and parses the result, retrying
// retryable failures up to max_retries additional attempts. Non-retryable
// statuses fail immediately without consuming retry budget.
func (c *Client) CallService(ctx context.Context, service string, params []Param, list *listParam) (*ServiceResponse, error) {
	envelope := buildEnvelope(service, c.securityCode, params, list)

	var lastStatus int
	var lastBody string
	var lastErr error

	attempts := c.maxRetries + 1
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			wait := c.backoff.Duration(attempt-1, c.jitter)
			logger.Infof("retry attempt[%d] for service %s, waiting %.2fs due to: %s",
				attempt, service, wait.Seconds(), lastErr)
			if err := c.sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		status, body, err := c.post(ctx, service, envelope)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			continue // connection failures and timeouts are retryable
		}
		if status == http.StatusOK {
			return parseEnvelope(service, body)
		}

		lastStatus = status
		lastBody = truncate(string(body), 512)
		lastErr = fmt.Errorf("status %d", status)
		if !retryableStatus(status) {
			return nil, &RequestError{Service: service, StatusCode: status, Body: lastBody, Attempts: attempt + 1}
		}
	}

	return nil, &RequestError{
		Service:    service,
		StatusCode: lastStatus,
		Body:       lastBody,
		Attempts:   attempts,
		Err:        lastErr,
	}
}

func (c *Client) post(ctx context.Context, service string, envelope []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(envelope))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %s", err)
	}
	req.Header.Set("Content-Type", "application/soap+xml; charset=utf-8")
	req.Header.Set("SOAPAction", fmt.Sprintf("%q", constants.SherpaNamespace+service))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response body: %s", err)
	}
	return resp.StatusCode, body, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
