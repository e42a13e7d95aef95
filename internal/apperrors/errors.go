// Package apperrors defines the typed error taxonomy shared across the
// bridge's components: config loading, schema handling, operation
// compilation, search indexing, network calls, authentication and tool
// invocation each surface one of these so callers can branch on kind with
// errors.As instead of string matching.
package apperrors

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonrpc"
)

// ConfigError reports a problem loading or validating the configuration
// document (§6).
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %v", e.Err)
	}
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// SchemaError reports a problem parsing, validating, or converting a GraphQL
// schema document (C1/C2).
type SchemaError struct {
	LaunchID string
	Err      error
}

func (e *SchemaError) Error() string {
	if e.LaunchID == "" {
		return fmt.Sprintf("schema: %v", e.Err)
	}
	return fmt.Sprintf("schema: launch %s: %v", e.LaunchID, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

// OperationError reports a problem loading, naming, or compiling an
// operation document (C3), mirroring the original implementation's
// MissingName/NoOperations/TooManyOperations/GraphQLDocument cases.
type OperationError struct {
	SourcePath string
	Reason     OperationErrorReason
	Err        error
}

// OperationErrorReason enumerates the distinct ways an operation document
// can fail to become a tool.
type OperationErrorReason string

const (
	ReasonGraphQLDocument OperationErrorReason = "graphql_document"
	ReasonMissingName     OperationErrorReason = "missing_name"
	ReasonNoOperations    OperationErrorReason = "no_operations"
	ReasonTooMany         OperationErrorReason = "too_many_operations"
	ReasonInternal        OperationErrorReason = "internal"
	ReasonJSON            OperationErrorReason = "json"
	ReasonFile            OperationErrorReason = "file"
	ReasonCollection      OperationErrorReason = "collection"
)

func (e *OperationError) Error() string {
	if e.SourcePath == "" {
		return fmt.Sprintf("operation (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("operation %s (%s): %v", e.SourcePath, e.Reason, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// IndexingError reports a problem building or querying the schema search
// index (C6).
type IndexingError struct {
	Op  string
	Err error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("search index: %s: %v", e.Op, e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// NetworkError reports a failed outbound call (uplink poll, collection
// fetch, GraphQL execution, JWKS fetch). Retryable distinguishes transient
// failures (timeouts, 5xx) from permanent ones (4xx, malformed URL) so
// pollers know whether to back off and retry or surface the error upward.
type NetworkError struct {
	URL       string
	Retryable bool
	Err       error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network: %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// AuthError reports a bearer-token validation failure (C9): missing token,
// unparseable JWT, unknown key id, expired token, audience mismatch.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("auth: %s", e.Reason)
	}
	return fmt.Sprintf("auth: %s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ToolCallError reports a failure while handling an MCP tool invocation. It
// carries enough information to be translated into an MCP error content
// block via MCPCode.
type ToolCallError struct {
	Tool      string
	Kind      ToolCallErrorKind
	Err       error
	UserFacing string // if set, returned to the caller instead of Err.Error()
}

// ToolCallErrorKind distinguishes caller mistakes (bad arguments, invalid
// operation text) from server-side failures (upstream unreachable, internal
// bug), which map to different MCP error codes.
type ToolCallErrorKind int

const (
	KindInvalidParams ToolCallErrorKind = iota
	KindInternal
)

func (e *ToolCallError) Error() string {
	return fmt.Sprintf("tool %s: %v", e.Tool, e.Err)
}

func (e *ToolCallError) Unwrap() error { return e.Err }

// MCPCode maps the error kind onto the JSON-RPC error code the MCP
// transport expects in a failed tool-call response.
func (e *ToolCallError) MCPCode() int {
	switch e.Kind {
	case KindInvalidParams:
		return jsonrpc.CodeInvalidParams
	default:
		return jsonrpc.CodeInternalError
	}
}

// Message returns the text to surface to the caller: UserFacing when set,
// otherwise the wrapped error's message.
func (e *ToolCallError) Message() string {
	if e.UserFacing != "" {
		return e.UserFacing
	}
	return e.Err.Error()
}
