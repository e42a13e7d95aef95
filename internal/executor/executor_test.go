package executor

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteSendsInlineQuery(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"planet":{"id":"1"}}}`))
	}))
	defer srv.Close()

	e := New(srv.URL, nil, logr.Discard())
	resp, err := e.Execute(context.Background(), Request{
		Query:         `query GetPlanet($id: ID!) { planet(id: $id) { id } }`,
		OperationName: "GetPlanet",
		Variables:     map[string]interface{}{"id": "1"},
	})
	require.NoError(t, err)
	assert.False(t, resp.IsError())
	assert.Equal(t, "GetPlanet", gotBody["operationName"])
	ext := gotBody["extensions"].(map[string]interface{})
	assert.NotContains(t, ext, "persistedQuery")
}

func TestExecuteSendsPersistedQueryWithoutQueryField(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(`{"data":{"planet":{"id":"1"}}}`))
	}))
	defer srv.Close()

	e := New(srv.URL, nil, logr.Discard())
	_, err := e.Execute(context.Background(), Request{
		PersistedQueryID: "abc123",
		Variables:        map[string]interface{}{"id": "1"},
	})
	require.NoError(t, err)

	_, hasQuery := gotBody["query"]
	assert.False(t, hasQuery)
	ext := gotBody["extensions"].(map[string]interface{})
	pq := ext["persistedQuery"].(map[string]interface{})
	assert.Equal(t, "abc123", pq["sha256Hash"])
}

func TestIsErrorRequiresMissingData(t *testing.T) {
	withData := &Response{Data: json.RawMessage(`{"a":1}`), Errors: []GraphQLError{{Message: "partial"}}}
	assert.False(t, withData.IsError())

	withoutData := &Response{Errors: []GraphQLError{{Message: "boom"}}}
	assert.True(t, withoutData.IsError())

	nullData := &Response{Data: json.RawMessage(`null`), Errors: []GraphQLError{{Message: "boom"}}}
	assert.True(t, nullData.IsError())
}

func TestExecuteMapsNon200ToRetryableNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := New(srv.URL, nil, logr.Discard())
	_, err := e.Execute(context.Background(), Request{Query: "query{x}"})
	require.Error(t, err)
	var netErr *apperrors.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.True(t, netErr.Retryable)
}

func TestExecuteHeaderPrecedence(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	e := New(srv.URL, map[string]string{"Authorization": "default"}, logr.Discard())
	_, err := e.Execute(context.Background(), Request{Query: "query{x}", Headers: map[string]string{"Authorization": "override"}})
	require.NoError(t, err)
	assert.Equal(t, "override", gotAuth)
}
