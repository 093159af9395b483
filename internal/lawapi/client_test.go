package lawapi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lawglot/lawglot-go/internal/errors"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cfg := DefaultConfig()
	cfg.OC = "testkey"
	cfg.Sleep = 0
	cfg.RetryDelay = time.Millisecond
	client, err := NewClient(cfg)
	require.NoError(t, err)

	httpmock.ActivateNonDefault(client.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return client
}

const dailySearchBody = `{
	"DlyTrmSearch": {
		"totalCnt": "2",
		"dlytrm": [
			{"일상용어id": "D001", "일상용어명": "전세금", "출처": "국민 제안"},
			{"일상용어id": "D002", "일상용어명": "보증금", "출처": "국민 제안"}
		]
	}
}`

func TestClient_Call_Success(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawSearch\.do`,
		httpmock.NewStringResponder(http.StatusOK, dailySearchBody))

	record, err := client.SearchDailyTerms(context.Background(), "전세금", 1, 20)
	require.NoError(t, err)

	assert.Equal(t, EndpointDailySearch, record.Endpoint)
	assert.Equal(t, 2, record.TotalCount)
	require.Len(t, record.Items, 2)
	assert.Equal(t, "D001", record.Items[0].Get("일상용어id", "id"))
	assert.Equal(t, "전세금", record.Items[0].Get("일상용어명"))
}

func TestClient_Call_MissingRequiredParams(t *testing.T) {
	client := newTestClient(t)

	tests := []struct {
		name     string
		endpoint Endpoint
		params   *Params
	}{
		{"daily_search_without_query", EndpointDailySearch, &Params{}},
		{"daily_to_legal_without_mst", EndpointDailyToLegal, &Params{Gana: "ga"}},
		{"article_without_id_or_mst", EndpointArticle, &Params{Query: "전세"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.Call(context.Background(), tt.endpoint, tt.params)
			require.Error(t, err)
			assert.True(t, errors.IsValidation(err))
		})
	}

	// fail-fast means nothing was ever sent upstream
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestClient_Call_UnknownEndpoint(t *testing.T) {
	client := newTestClient(t)

	_, err := client.Call(context.Background(), Endpoint(42), &Params{Query: "x"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestClient_Call_RetriesTransientThenSucceeds(t *testing.T) {
	client := newTestClient(t)

	calls := 0
	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		func(*http.Request) (*http.Response, error) {
			calls++
			if calls < 3 {
				return httpmock.NewStringResponse(http.StatusInternalServerError, "boom"), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"일상용어": {"관련법령용어": [{"법령용어ID": "L1"}]}}`), nil
		})

	record, err := client.DailyToLegal(context.Background(), "D001")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, record.Items, 1)
	assert.Equal(t, "L1", record.Items[0].Get("법령용어ID"))
}

func TestClient_Call_TransientExhaustsRetryBudget(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, "unavailable"))

	_, err := client.LegalToArticles(context.Background(), "L001")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, client.config.MaxRetries, httpmock.GetTotalCallCount())
}

func TestClient_Call_PermanentFailureNotRetried(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		httpmock.NewStringResponder(http.StatusForbidden, "denied"))

	_, err := client.LegalToArticles(context.Background(), "L001")
	require.Error(t, err)
	assert.False(t, errors.IsTransient(err))
	assert.True(t, errors.IsCategory(err, errors.CategoryHTTP))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_Call_RateLimitIsTransient(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		httpmock.NewStringResponder(http.StatusTooManyRequests, "slow down"))

	_, err := client.DailyToLegal(context.Background(), "D001")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.Equal(t, client.config.MaxRetries, httpmock.GetTotalCallCount())
}

func TestClient_Call_MalformedResponseIsPermanent(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		httpmock.NewStringResponder(http.StatusOK, "<html>not json</html>"))

	_, err := client.DailyToLegal(context.Background(), "D001")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryParsing))
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_Call_CachesServiceResponses(t *testing.T) {
	client := newTestClient(t)

	httpmock.RegisterResponder("GET", `=~lawService\.do`,
		httpmock.NewStringResponder(http.StatusOK, `{"법령용어": {"관련법령": [{"법령명": "민법"}]}}`))

	_, err := client.LegalToArticles(context.Background(), "L001")
	require.NoError(t, err)
	_, err = client.LegalToArticles(context.Background(), "L001")
	require.NoError(t, err)

	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestClient_RequiresAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewClient(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestValidateParams_Alternatives(t *testing.T) {
	// endpoint 3 accepts either query or MST
	assert.NoError(t, validateParams(EndpointDailyToLegal, &Params{Query: "전세"}))
	assert.NoError(t, validateParams(EndpointDailyToLegal, &Params{MST: "D1"}))
	// endpoint 7 accepts either ID or MST
	assert.NoError(t, validateParams(EndpointArticle, &Params{ID: "A1"}))
	assert.NoError(t, validateParams(EndpointArticle, &Params{MST: "A1"}))
}

func TestDecodeRecord_NestedPayload(t *testing.T) {
	body := []byte(`{
		"LsTrmSearch": {
			"totalCnt": 147,
			"lstrm": [
				{"법령용어ID": "L10,L11", "법령용어명": "임대차", "사전구분코드": "01,03"},
				{"법령용어ID": "L12", "법령용어명": "보증금", "비고": null}
			]
		}
	}`)

	record, err := decodeRecord(EndpointLegalList, body)
	require.NoError(t, err)
	assert.Equal(t, 147, record.TotalCount)
	require.Len(t, record.Items, 2)
	assert.Equal(t, "L10,L11", record.Items[0].Get("법령용어ID", "id"))
	assert.Equal(t, "01,03", record.Items[0].Get("사전구분코드"))
	// null field stays absent rather than crashing the batch
	assert.Empty(t, record.Items[1].Get("비고"))
}

func TestItem_Get_ToleratesSpacedKeys(t *testing.T) {
	item := Item{"법령용어 명": "전세권"}
	assert.Equal(t, "전세권", item.Get("법령용어명"))
}
