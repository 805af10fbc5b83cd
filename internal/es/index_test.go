package es

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/Skotchmaster/sweet_shop/internal/models"
)

type recorded struct {
	method string
	path   string
	body   string
}

func fakeCluster(t *testing.T, reply func(r *http.Request) (int, string)) (*Index, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		calls = append(calls, recorded{method: r.Method, path: r.URL.Path, body: string(body)})
		status, out := reply(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(out))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return &Index{Client: client, Name: "sweets"}, &calls
}

func TestParseHits(t *testing.T) {
	raw := []byte(`{"hits":{"total":{"value":7},"hits":[{"_id":"4"},{"_id":"x"},{"_id":"2"}]}}`)
	total, ids, err := parseHits(raw)
	require.NoError(t, err)
	assert.EqualValues(t, 7, total)
	assert.Equal(t, []uint{4, 2}, ids)

	_, _, err = parseHits([]byte("{"))
	require.Error(t, err)
}

func TestIndex_Search(t *testing.T) {
	idx, calls := fakeCluster(t, func(*http.Request) (int, string) {
		return http.StatusOK, `{"hits":{"total":{"value":1},"hits":[{"_id":"12"}]}}`
	})

	total, ids, err := idx.Search(context.Background(), "trufle", 20, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, []uint{12}, ids)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/sweets/_search", call.path)
	assert.Equal(t, "trufle", gjson.Get(call.body, "query.multi_match.query").String())
	assert.EqualValues(t, 20, gjson.Get(call.body, "from").Int())
	assert.EqualValues(t, 10, gjson.Get(call.body, "size").Int())
}

func TestIndex_SearchError(t *testing.T) {
	idx, _ := fakeCluster(t, func(*http.Request) (int, string) {
		return http.StatusServiceUnavailable, `{"error":"unavailable"}`
	})

	_, _, err := idx.Search(context.Background(), "x", 0, 10)
	require.Error(t, err)
}

func TestIndex_IndexAndRemove(t *testing.T) {
	idx, calls := fakeCluster(t, func(r *http.Request) (int, string) {
		if r.Method == http.MethodDelete {
			return http.StatusNotFound, `{"result":"not_found"}`
		}
		return http.StatusCreated, `{"result":"created"}`
	})
	ctx := context.Background()

	s := &models.Sweet{ID: 5, Name: "Fudge", Category: models.CategoryCandy, Price: decimal.RequireFromString("3.5"), Quantity: 9}
	require.NoError(t, idx.Index(ctx, s))
	require.NoError(t, idx.Remove(ctx, 5))

	require.Len(t, *calls, 2)
	put := (*calls)[0]
	assert.True(t, strings.HasSuffix(put.path, "/sweets/_doc/5"))
	assert.Equal(t, "Fudge", gjson.Get(put.body, "name").String())
	assert.Equal(t, "3.50", gjson.Get(put.body, "price").String())
	assert.Equal(t, http.MethodDelete, (*calls)[1].method)
}
