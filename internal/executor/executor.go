// Package executor sends compiled operations to the upstream GraphQL
// endpoint and parses the response. It generalizes the teacher's
// GraphQLClient (pkg/graphqlmcp/graphql.go) and its request/duration
// logging idiom from http_client.go, extended per
// original_source/.../apollo-mcp-server/src/graphql.rs to send a
// persisted-query body (no "query" field, only extensions.persistedQuery)
// when an operation carries a persisted query id.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/graphql-mcp/bridge/internal/apperrors"
)

const clientLibraryName = "graphql-mcp-bridge"
const clientLibraryVersion = "0.1.0"

// Request is everything the executor needs to run one operation call.
type Request struct {
	Query            string
	OperationName    string
	PersistedQueryID string
	Variables        map[string]interface{}
	Headers          map[string]string
}

// Response is the parsed result of a GraphQL request.
type Response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// GraphQLError is one entry of a GraphQL response's "errors" array.
type GraphQLError struct {
	Message   string                 `json:"message"`
	Path      []interface{}          `json:"path,omitempty"`
	Extensions map[string]interface{} `json:"extensions,omitempty"`
}

// IsError reports whether the response should be treated as a tool-call
// failure: errors present and data absent or null, matching the original's
// is_error computation (a response can carry partial data alongside
// errors, which is not itself a failure).
func (r *Response) IsError() bool {
	if len(r.Errors) == 0 {
		return false
	}
	return len(r.Data) == 0 || string(r.Data) == "null"
}

// Executor runs GraphQL requests against one upstream endpoint.
type Executor struct {
	endpoint      string
	client        *http.Client
	defaultHeaders map[string]string
	logger        logr.Logger
}

// New constructs an Executor. defaultHeaders are merged under any
// per-request headers the compiled operation carries (Content-Type is
// always forced to application/json, matching
// original_source/.../server.rs's header handling).
func New(endpoint string, defaultHeaders map[string]string, logger logr.Logger) *Executor {
	if defaultHeaders == nil {
		defaultHeaders = map[string]string{}
	}
	return &Executor{
		endpoint:       endpoint,
		client:         &http.Client{Timeout: 30 * time.Second},
		defaultHeaders: defaultHeaders,
		logger:         logger,
	}
}

type wireRequest struct {
	Query         string                 `json:"query,omitempty"`
	OperationName string                 `json:"operationName,omitempty"`
	Variables     map[string]interface{} `json:"variables,omitempty"`
	Extensions    map[string]interface{} `json:"extensions,omitempty"`
}

// Execute sends req to the upstream endpoint and returns the parsed
// response, or a *apperrors.NetworkError if the call failed before a
// GraphQL response could be parsed.
func (e *Executor) Execute(ctx context.Context, req Request) (*Response, error) {
	requestID := fmt.Sprintf("req_%d", time.Now().UnixNano())

	wire := wireRequest{
		Variables: req.Variables,
		Extensions: map[string]interface{}{
			"clientLibrary": map[string]string{
				"name":    clientLibraryName,
				"version": clientLibraryVersion,
			},
		},
	}
	if req.PersistedQueryID != "" {
		wire.Extensions["persistedQuery"] = map[string]interface{}{
			"version":    1,
			"sha256Hash": req.PersistedQueryID,
		}
	} else {
		wire.Query = req.Query
		wire.OperationName = req.OperationName
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal graphql request: %w", err)
	}

	e.logger.V(1).Info("executing graphql operation",
		"request_id", requestID,
		"operation_name", req.OperationName,
		"persisted_query_id", req.PersistedQueryID,
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &apperrors.NetworkError{URL: e.endpoint, Retryable: false, Err: err}
	}
	for k, v := range e.defaultHeaders {
		httpReq.Header.Set(k, v)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := e.client.Do(httpReq)
	duration := time.Since(start)
	if err != nil {
		e.logger.Error(err, "graphql request failed", "request_id", requestID, "duration_ms", duration.Milliseconds())
		return nil, &apperrors.NetworkError{URL: e.endpoint, Retryable: true, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: e.endpoint, Retryable: true, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &apperrors.NetworkError{
			URL:       e.endpoint,
			Retryable: resp.StatusCode >= 500,
			Err:       fmt.Errorf("upstream returned status %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var parsed Response
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &apperrors.NetworkError{URL: e.endpoint, Retryable: false, Err: fmt.Errorf("unmarshal graphql response: %w", err)}
	}

	e.logger.Info("graphql operation completed",
		"request_id", requestID,
		"operation_name", req.OperationName,
		"duration_ms", duration.Milliseconds(),
		"is_error", parsed.IsError(),
	)

	return &parsed, nil
}
