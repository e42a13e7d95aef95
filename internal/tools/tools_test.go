package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-logr/logr"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/executor"
	"github.com/graphql-mcp/bridge/internal/serverstate"
)

const toolsTestSDL = `
type Query {
	planet(id: ID!): Planet
}

type Mutation {
	rename(id: ID!, name: String!): Planet
}

type Planet {
	id: ID!
	name: String!
}
`

func newTestMachine(t *testing.T, mode compiler.MutationMode) *serverstate.Machine {
	t.Helper()
	m := serverstate.New(mode, nil, logr.Discard())
	events := make(chan serverstate.Event, 2)
	events <- serverstate.SchemaUpdated{Schema: serverstate.SchemaState{SDL: toolsTestSDL, LaunchID: "launch-1"}}
	close(events)
	require.NoError(t, m.Run(context.Background(), events))
	require.NotNil(t, m.Load())
	return m
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	tc, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestHandleConnectorsReturnsStubMarkdown(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	result, _, err := r.handleConnectors(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Connectors")
}

func TestHandleExplorerRequiresGraphRef(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	_, _, err := r.handleExplorer(context.Background(), nil, map[string]interface{}{"document": "query Q { id }"})
	require.Error(t, err)
}

func TestHandleExplorerBuildsStudioURL(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), GraphRef: "my-graph@prod", Logger: logr.Discard()}
	result, _, err := r.handleExplorer(context.Background(), nil, map[string]interface{}{"document": "query Q { id }"})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "studio.apollographql.com/graph/my-graph@prod/explorer")
}

func TestHandleValidateAcceptsValidOperation(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	result, _, err := r.handleValidate(context.Background(), nil, map[string]interface{}{"operation": `query GetPlanet($id: ID!) { planet(id: $id) { id name } }`})
	require.NoError(t, err)
	assert.Equal(t, "Operation is valid", resultText(t, result))
}

func TestHandleValidateRejectsAdHocMutationUnderNoneMode(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	_, _, err := r.handleValidate(context.Background(), nil, map[string]interface{}{"operation": `mutation Rename($id: ID!, $name: String!) { rename(id: $id, name: $name) { id } }`})
	require.Error(t, err)
}

func TestHandleExecuteRunsAdHocQueryUnderAllMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"planet":{"id":"1","name":"Tatooine"}}}`))
	}))
	defer srv.Close()

	r := &Registry{
		Machine:  newTestMachine(t, compiler.MutationModeAll),
		Executor: executor.New(srv.URL, nil, logr.Discard()),
		Mode:     compiler.MutationModeAll,
		Logger:   logr.Discard(),
	}
	result, _, err := r.handleExecute(context.Background(), nil, map[string]interface{}{
		"query":     `query GetPlanet($id: ID!) { planet(id: $id) { id name } }`,
		"variables": map[string]interface{}{"id": "1"},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
}

func TestHandleIntrospectReturnsEmptyForUnknownType(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	result, _, err := r.handleIntrospect(context.Background(), nil, map[string]interface{}{"type_name": "NoSuchType"})
	require.NoError(t, err)
	assert.Empty(t, resultText(t, result))
}

func TestHandleIntrospectReturnsRetainedSDL(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	result, _, err := r.handleIntrospect(context.Background(), nil, map[string]interface{}{"type_name": "Planet", "depth": float64(2)})
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "Planet")
}

func TestHandleSearchFindsPlanetByName(t *testing.T) {
	r := &Registry{Machine: newTestMachine(t, compiler.MutationModeNone), Logger: logr.Discard()}
	result, _, err := r.handleSearch(context.Background(), nil, map[string]interface{}{"query": "Planet"})
	require.NoError(t, err)
	assert.NotEmpty(t, resultText(t, result))
	assert.Contains(t, resultText(t, result), `"typeName":"Planet"`)
}
