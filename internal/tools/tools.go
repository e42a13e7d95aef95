// Package tools registers the bridge's MCP tool surface: one dynamically
// compiled tool per GraphQL operation, plus the fixed bank of built-in
// introspection tools (introspect, search, validate, execute, explorer,
// connectors). Grounded on pkg/graphqlmcp/mcp.go's addGraphQLTools/
// addQueryTool/addMutationTool/executeGraphQLOperation for the
// mcp.AddTool registration idiom and the per-call request-id/duration
// logging shape, generalized from "one tool per schema field" to "one tool
// per compiled operation" per SPEC_FULL.md's C3/C5 split.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/executor"
	"github.com/graphql-mcp/bridge/internal/lzstring"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
	"github.com/graphql-mcp/bridge/internal/searchindex"
	"github.com/graphql-mcp/bridge/internal/serverstate"
	"github.com/graphql-mcp/bridge/internal/treeshake"
)

// Registry wires the built-in tools and per-operation tools against one
// running bridge: a GraphQL executor, the live tool-set machine, and the
// configuration that governs ad-hoc execute()/validate() mutation gating
// and the explorer tool's graph ref.
type Registry struct {
	Machine  *serverstate.Machine
	Executor *executor.Executor
	Mode     compiler.MutationMode
	Scalars  schemaconv.CustomScalarMap
	GraphRef string
	Logger   logr.Logger
}

const introspectDefaultDepth = 1
const searchDefaultLimit = 10

// RegisterBuiltins adds the fixed bank of introspection tools to server.
// Each handler reads r.Machine.Load() at call time rather than closing over
// a snapshot, so the built-ins "always reflect the currently active
// schema" per spec.md §4.3, independent of when per-operation tools were
// last re-registered.
func (r *Registry) RegisterBuiltins(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "introspect",
		Description: "Retrieve the SDL definitions reachable from a named type in the active GraphQL schema, up to a depth.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"type_name": map[string]interface{}{"type": "string"},
				"depth":     map[string]interface{}{"type": "integer", "minimum": 0},
			},
			"required": []string{"type_name"},
		},
	}, r.handleIntrospect)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Full-text search the active GraphQL schema's types, fields, and enum members.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
				"limit": map[string]interface{}{"type": "integer", "minimum": 1},
			},
			"required": []string{"query"},
		},
	}, r.handleSearch)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "validate",
		Description: "Parse a GraphQL operation and check it against the active schema without executing it.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"operation": map[string]interface{}{"type": "string"},
			},
			"required": []string{"operation"},
		},
	}, r.handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "execute",
		Description: "Compile and run an ad-hoc GraphQL query or mutation against the upstream endpoint.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query":     map[string]interface{}{"type": "string"},
				"variables": map[string]interface{}{"type": "object"},
			},
			"required": []string{"query"},
		},
	}, r.handleExecute)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "explorer",
		Description: "Build a Studio Explorer URL for a GraphQL operation document, its variables, and headers.",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"document":  map[string]interface{}{"type": "string"},
				"variables": map[string]interface{}{"type": "object"},
				"headers":   map[string]interface{}{"type": "object"},
			},
			"required": []string{"document"},
		},
	}, r.handleExplorer)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "connectors",
		Description: "Describe how this graph's connectors are configured.",
		InputSchema: map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
	}, r.handleConnectors)
}

// RegisterOperations adds one tool per compiled operation in ts, named
// after its GraphQL operation name, matching
// pkg/graphqlmcp/mcp.go's addQueryTool/addMutationTool naming
// ("query_"/"mutation_" + field name) generalized to "operation name" since
// operations here are pre-authored documents, not synthesized field calls.
func (r *Registry) RegisterOperations(server *mcp.Server, ts *serverstate.ToolSet) {
	for _, op := range ts.Operations {
		op := op
		mcp.AddTool(server, &mcp.Tool{
			Name:        op.Name,
			Description: op.Description,
			InputSchema: op.InputSchema,
		}, func(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
			return r.callOperation(ctx, op, input)
		})
	}
}

func (r *Registry) callOperation(ctx context.Context, op *compiler.Operation, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	requestID := uuid.NewString()
	r.Logger.Info("tool call initiated", "request_id", requestID, "tool", op.Name)

	resp, err := r.Executor.Execute(ctx, executor.Request{
		Query:            op.SourceText(),
		OperationName:    op.Name,
		PersistedQueryID: op.PersistedQueryID,
		Variables:        input,
		Headers:          op.Headers,
	})
	if err != nil {
		r.Logger.Error(err, "tool call failed", "request_id", requestID, "tool", op.Name)
		return nil, nil, &apperrors.ToolCallError{Tool: op.Name, Kind: apperrors.KindInternal, Err: err}
	}
	return responseResult(resp), nil, nil
}

func (r *Registry) handleIntrospect(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	typeName, _ := input["type_name"].(string)
	depth := treeshake.Depth(introspectDefaultDepth)
	if d, ok := input["depth"].(float64); ok {
		depth = treeshake.Depth(int(d))
	}

	ts := r.Machine.Load()
	if ts == nil || ts.Schema == nil {
		return textResult(""), nil, nil
	}
	if ts.Schema.Types[typeName] == nil {
		return textResult(""), nil, nil
	}

	shaker := treeshake.New(ts.Schema, r.mutationsAllowedForAdHoc())
	retained := shaker.RetainType(typeName, depth)

	var out string
	for _, def := range retained {
		out += schemaconv.TypeSDL(def) + "\n"
	}
	return textResult(out), nil, nil
}

func (r *Registry) handleSearch(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	query, _ := input["query"].(string)
	limit := searchDefaultLimit
	if l, ok := input["limit"].(float64); ok {
		limit = int(l)
	}

	ts := r.Machine.Load()
	if ts == nil || ts.Index == nil {
		return textResult("[]"), nil, nil
	}
	hits, err := ts.Index.Search(query, limit)
	if err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "search", Kind: apperrors.KindInternal, Err: err}
	}
	body, err := json.Marshal(hits)
	if err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "search", Kind: apperrors.KindInternal, Err: err}
	}
	return textResult(string(body)), nil, nil
}

func (r *Registry) handleValidate(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	operationText, _ := input["operation"].(string)

	ts := r.Machine.Load()
	if ts == nil || ts.Schema == nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "validate", Kind: apperrors.KindInvalidParams, Err: fmt.Errorf("no active schema"), UserFacing: "no active schema"}
	}

	comp := compiler.New(ts.Schema, r.adHocMutationMode(), r.Scalars)
	if _, err := comp.Compile(compiler.RawOperation{SourceText: operationText, SourcePath: "validate"}); err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "validate", Kind: apperrors.KindInvalidParams, Err: err}
	}
	return textResult("Operation is valid"), nil, nil
}

func (r *Registry) handleExecute(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	queryText, _ := input["query"].(string)
	variables, _ := input["variables"].(map[string]interface{})

	ts := r.Machine.Load()
	if ts == nil || ts.Schema == nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "execute", Kind: apperrors.KindInvalidParams, Err: fmt.Errorf("no active schema"), UserFacing: "no active schema"}
	}

	comp := compiler.New(ts.Schema, r.adHocMutationMode(), r.Scalars)
	op, err := comp.Compile(compiler.RawOperation{SourceText: queryText, SourcePath: "execute", Variables: variables})
	if err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "execute", Kind: apperrors.KindInvalidParams, Err: err}
	}

	resp, err := r.Executor.Execute(ctx, executor.Request{
		Query:         op.SourceText(),
		OperationName: op.Name,
		Variables:     variables,
	})
	if err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "execute", Kind: apperrors.KindInternal, Err: err}
	}
	return responseResult(resp), nil, nil
}

// adHocMutationMode is the mutation gate ad-hoc execute()/validate() calls
// are held to: explicit mode still forbids ad-hoc mutations (only
// source-declared mutations are exposed), matching spec.md §4.5's
// "execute/validate accept ad-hoc mutations only when mode = all".
func (r *Registry) adHocMutationMode() compiler.MutationMode {
	if r.Mode == compiler.MutationModeAll {
		return compiler.MutationModeAll
	}
	return compiler.MutationModeNone
}

func (r *Registry) mutationsAllowedForAdHoc() bool {
	return r.adHocMutationMode() != compiler.MutationModeNone
}

func (r *Registry) handleExplorer(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	if r.GraphRef == "" {
		return nil, nil, &apperrors.ToolCallError{Tool: "explorer", Kind: apperrors.KindInvalidParams, Err: fmt.Errorf("no graph ref configured"), UserFacing: "explorer requires a configured graph ref"}
	}

	document, _ := input["document"].(string)
	variables, _ := input["variables"].(map[string]interface{})
	headers, _ := input["headers"].(map[string]interface{})

	payload := map[string]interface{}{
		"document":  document,
		"variables": variables,
		"headers":   headers,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, &apperrors.ToolCallError{Tool: "explorer", Kind: apperrors.KindInternal, Err: err}
	}

	encoded := lzstring.CompressToEncodedURIComponent(string(body))
	url := fmt.Sprintf("https://studio.apollographql.com/graph/%s/explorer?explorerURLState=%s", r.GraphRef, encoded)
	return textResult(url), nil, nil
}

// handleConnectors is a fixed placeholder per spec.md §9's Open Question:
// original_source/.../apollo-mcp-server/src/connectors.rs returns a static
// markdown block describing connector configuration, not resolved into a
// live connectors inventory here.
func (r *Registry) handleConnectors(ctx context.Context, req *mcp.CallToolRequest, input map[string]interface{}) (*mcp.CallToolResult, any, error) {
	const placeholder = "# Connectors\n\nThis graph does not expose connector configuration through this tool yet."
	return textResult(placeholder), nil, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func responseResult(resp *executor.Response) *mcp.CallToolResult {
	body, _ := json.Marshal(resp)
	return &mcp.CallToolResult{
		IsError: resp.IsError(),
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}
