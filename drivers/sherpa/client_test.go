package sherpa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func testConfig(baseURL string, maxRetries int) *Config {
	return &Config{
		BaseURL:      baseURL,
		ShopID:       "shop1",
		SecurityCode: "code1",
		ChunkSize:    2,
		MaxRetries:   intPtr(maxRetries),
		RetryWaitMin: 1,
		RetryWaitMax: 4,
	}
}

func testClient(t *testing.T, baseURL string, maxRetries int, slept *[]time.Duration) *Client {
	t.Helper()
	return NewClient(testConfig(baseURL, maxRetries),
		WithJitter(func() float64 { return 0 }),
		WithSleep(func(_ context.Context, d time.Duration) error {
			*slept = append(*slept, d)
			return nil
		}),
	)
}

func supplierTokensBody(pairs ...string) string {
	items := ""
	for i := 0; i+1 < len(pairs); i += 2 {
		items += fmt.Sprintf("<ClientCodeToken><ClientCode>%s</ClientCode><Token>%s</Token></ClientCodeToken>", pairs[i], pairs[i+1])
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <ChangedSuppliersResponse xmlns="http://sherpa.sherpaan.nl/">
      <ChangedSuppliersResult>
        <ResponseTime>42</ResponseTime>
        <ResponseValue>%s</ResponseValue>
      </ChangedSuppliersResult>
    </ChangedSuppliersResponse>
  </soap:Body>
</soap:Envelope>`, items)
}

func TestCallServiceSuccess(t *testing.T) {
	var gotPath, gotAction, gotContentType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAction = r.Header.Get("SOAPAction")
		gotContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		fmt.Fprint(w, supplierTokensBody("S1", "10", "S2", "20"))
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := testClient(t, server.URL, 3, &slept)

	response, err := client.CallService(context.Background(), "ChangedSuppliers",
		[]Param{{Name: "token", Value: "1"}, {Name: "count", Value: "2"}}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/shop1/Sherpa.asmx", gotPath)
	assert.Equal(t, `"http://sherpa.sherpaan.nl/ChangedSuppliers"`, gotAction)
	assert.Contains(t, gotContentType, "application/soap+xml")
	// securityCode precedes every other parameter on the wire
	assert.Regexp(t, `(?s)<tns:securityCode>code1</tns:securityCode>.*<tns:token>1</tns:token>.*<tns:count>2</tns:count>`, gotBody)

	assert.Equal(t, int64(42), response.ResponseTime)
	items := response.Items("ClientCodeToken")
	require.Len(t, items, 2)
	assert.Equal(t, "S1", items[0]["ClientCode"])
	assert.Equal(t, "20", items[1]["Token"])
	assert.Empty(t, slept)
}

func TestCallServiceRetriesThenSucceeds(t *testing.T) {
	failures := 2
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= failures {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, supplierTokensBody("S1", "10"))
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := NewClient(testConfig(server.URL, 3),
		WithJitter(func() float64 { return 0.5 }),
		WithSleep(func(_ context.Context, d time.Duration) error {
			slept = append(slept, d)
			return nil
		}),
	)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, requests)

	// first wait is floored at retry_wait_min, then the doubled base kicks in
	assert.Equal(t, []time.Duration{time.Second, 1500 * time.Millisecond}, slept)
}

func TestCallServiceExhaustsRetryBudget(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "upstream down")
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := testClient(t, server.URL, 2, &slept)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusServiceUnavailable, reqErr.StatusCode)
	assert.Equal(t, 3, reqErr.Attempts)
	assert.Contains(t, reqErr.Body, "upstream down")

	// one initial attempt plus exactly max_retries retries
	assert.Equal(t, 3, requests)
	assert.Len(t, slept, 2)
}

func TestCallServiceClientErrorFailsImmediately(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := testClient(t, server.URL, 3, &slept)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.ErrorIs(t, err, ErrRequestFailed)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
	assert.Equal(t, 1, reqErr.Attempts)

	assert.Equal(t, 1, requests)
	assert.Empty(t, slept)
}

func TestCallServiceTooManyRequestsIsRetryable(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, supplierTokensBody("S1", "10"))
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := testClient(t, server.URL, 3, &slept)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
}

func TestCallServiceZeroRetries(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	slept := []time.Duration{}
	client := testClient(t, server.URL, 0, &slept)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Equal(t, 1, requests)
	assert.Empty(t, slept)
}

func TestCallServiceCancelDuringBackoffAborts(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := testConfig(server.URL, 3)
	config.RetryWaitMin = 5
	config.RetryWaitMax = 10
	client := NewClient(config, WithJitter(func() float64 { return 0 }))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.CallService(ctx, "ChangedSuppliers", nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// the cancellation interrupts the 5s backoff instead of waiting it out
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, requests)
}

func TestCallServiceNetworkErrorIsRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from the first attempt

	slept := []time.Duration{}
	client := testClient(t, server.URL, 2, &slept)

	_, err := client.CallService(context.Background(), "ChangedSuppliers", nil, nil)
	require.ErrorIs(t, err, ErrRequestFailed)
	assert.Len(t, slept, 2)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Error(t, reqErr.Err)
}
