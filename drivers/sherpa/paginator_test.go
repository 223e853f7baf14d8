package sherpa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XAbade/tap-sherpaan/constants"
	"github.com/XAbade/tap-sherpaan/types"
)

var (
	actionRe = regexp.MustCompile(`http://sherpa\.sherpaan\.nl/(\w+)`)
	tokenRe  = regexp.MustCompile(`<tns:token>(\d+)</tns:token>`)
	paramRe  = regexp.MustCompile(`<tns:purchaseNumber>([^<]*)</tns:purchaseNumber>`)
)

func soapResult(service, inner string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://www.w3.org/2003/05/soap-envelope">
  <soap:Body>
    <%[1]sResponse xmlns="http://sherpa.sherpaan.nl/">
      <%[1]sResult>
        <ResponseTime>7</ResponseTime>
        <ResponseValue>%[2]s</ResponseValue>
      </%[1]sResult>
    </%[1]sResponse>
  </soap:Body>
</soap:Envelope>`, service, inner)
}

// fakeBackend answers list calls from a token table and detail calls from a
// per-key response map.
type fakeBackend struct {
	t *testing.T

	// list service: requested token -> item XML
	listService string
	listPages   map[int64]string

	// detail service: parameter value -> ResponseValue XML
	detailService   string
	detailResponses map[string]string
	detailCalls     []string
}

func (f *fakeBackend) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		match := actionRe.FindStringSubmatch(r.Header.Get("SOAPAction"))
		require.NotNil(f.t, match, "request without service action")
		service := match[1]

		switch service {
		case f.listService:
			tokenMatch := tokenRe.FindSubmatch(body)
			require.NotNil(f.t, tokenMatch, "list call without token")
			token, err := strconv.ParseInt(string(tokenMatch[1]), 10, 64)
			require.NoError(f.t, err)
			fmt.Fprint(w, soapResult(service, f.listPages[token]))
		case f.detailService:
			paramMatch := paramRe.FindSubmatch(body)
			require.NotNil(f.t, paramMatch, "detail call without parameter")
			key := string(paramMatch[1])
			f.detailCalls = append(f.detailCalls, key)
			fmt.Fprint(w, soapResult(service, f.detailResponses[key]))
		default:
			f.t.Errorf("unexpected service %s", service)
			w.WriteHeader(http.StatusBadRequest)
		}
	}
}

func paginatorClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return NewClient(testConfig(baseURL, 0),
		WithJitter(func() float64 { return 0 }),
		WithSleep(func(context.Context, time.Duration) error { return nil }),
	)
}

func clientCodeToken(code string, token int64) string {
	return fmt.Sprintf("<ClientCodeToken><ClientCode>%s</ClientCode><Token>%d</Token></ClientCodeToken>", code, token)
}

func TestPaginatorWalksTokenSequence(t *testing.T) {
	backend := &fakeBackend{
		t:           t,
		listService: "ChangedSuppliers",
		listPages: map[int64]string{
			1:  clientCodeToken("S1", 10) + clientCodeToken("S2", 20),
			20: clientCodeToken("S3", 30),
			30: "",
		},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	stream := tokenStream("changed_suppliers", "ClientCode").Wrap()
	paginator, err := newPaginator(paginatorClient(t, server.URL), stream, constants.StartingToken, 2)
	require.NoError(t, err)

	ctx := context.Background()
	tokens := []int64{}
	codes := []string{}
	for paginator.Next(ctx) {
		page := paginator.Page()
		for _, record := range page.Records {
			tokens = append(tokens, record[constants.TokenCursorField].(int64))
			codes = append(codes, record["ClientCode"].(string))
		}
	}
	require.NoError(t, paginator.Err())

	assert.Equal(t, []int64{10, 20, 30}, tokens)
	assert.Equal(t, []string{"S1", "S2", "S3"}, codes)
}

func TestPaginatorDetectsStalledPagination(t *testing.T) {
	backend := &fakeBackend{
		t:           t,
		listService: "ChangedSuppliers",
		listPages: map[int64]string{
			// non-empty page whose tokens never pass the requested one
			1: clientCodeToken("S1", 1),
		},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	stream := tokenStream("changed_suppliers", "ClientCode").Wrap()
	paginator, err := newPaginator(paginatorClient(t, server.URL), stream, constants.StartingToken, 2)
	require.NoError(t, err)

	assert.False(t, paginator.Next(context.Background()))
	require.ErrorIs(t, paginator.Err(), ErrPaginationStalled)
}

func TestPaginatorRejectsNonIntegerToken(t *testing.T) {
	backend := &fakeBackend{
		t:           t,
		listService: "ChangedSuppliers",
		listPages: map[int64]string{
			1: "<ClientCodeToken><ClientCode>S1</ClientCode><Token>abc</Token></ClientCodeToken>",
		},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	stream := tokenStream("changed_suppliers", "ClientCode").Wrap()
	paginator, err := newPaginator(paginatorClient(t, server.URL), stream, constants.StartingToken, 2)
	require.NoError(t, err)

	// a non-numeric token must fail the stream, not become the watermark
	assert.False(t, paginator.Next(context.Background()))
	require.ErrorIs(t, paginator.Err(), ErrInvalidToken)
}

func TestPaginatorResolvesPurchaseDetails(t *testing.T) {
	parent := func(code, orderNumber string, token int64) string {
		return fmt.Sprintf(
			"<PurchaseCodeToken><PurchaseCode>%s</PurchaseCode><OrderNumber>%s</OrderNumber><Token>%d</Token></PurchaseCodeToken>",
			code, orderNumber, token)
	}
	backend := &fakeBackend{
		t:           t,
		listService: "ChangedPurchases",
		listPages: map[int64]string{
			1: parent("P1", "O1", 10) +
				parent("P2", "O1", 20) + // duplicate order, one detail call only
				parent("P3", "", 30) + // no order number, dropped
				parent("P4", "O2", 40),
			40: "",
		},
		detailService: "PurchaseInfo",
		detailResponses: map[string]string{
			"O1": "<SupplierCode>SUP1</SupplierCode><PurchaseOrderNumber>O1</PurchaseOrderNumber>",
			"O2": "<SupplierCode>SUP2</SupplierCode><PurchaseOrderNumber>O2</PurchaseOrderNumber>",
		},
	}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	stream := tokenStream("purchase_info", "PurchaseOrderNumber").Wrap()
	paginator, err := newPaginator(paginatorClient(t, server.URL), stream, constants.StartingToken, 10)
	require.NoError(t, err)

	ctx := context.Background()
	records := []types.Record{}
	for paginator.Next(ctx) {
		records = append(records, paginator.Page().Records...)
	}
	require.NoError(t, paginator.Err())

	require.Len(t, records, 2)
	assert.Equal(t, []string{"O1", "O2"}, backend.detailCalls)

	assert.Equal(t, "SUP1", records[0]["SupplierCode"])
	// the parent token is stamped on so a restart resumes past it
	assert.Equal(t, int64(10), records[0][constants.TokenCursorField])
	assert.Equal(t, "O2", records[1]["PurchaseOrderNumber"])
	assert.Equal(t, int64(40), records[1][constants.TokenCursorField])
}

func TestPaginatorUnknownStream(t *testing.T) {
	stream := tokenStream("not_a_stream", "ItemCode").Wrap()
	_, err := newPaginator(paginatorClient(t, "http://localhost"), stream, constants.StartingToken, 2)
	require.ErrorContains(t, err, "no service binding")
}
