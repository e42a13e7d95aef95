// Package serverstate runs the bridge's live-reconfiguration state machine
// (C8): a single goroutine consumes a merged stream of poller events and
// rebuilds the active tool set whenever the schema or operations change,
// publishing the result through an atomic.Pointer so readers never block
// on (or race with) a rebuild. Grounded on
// original_source/.../server/states/{configuring,schema_configured,operations_configured}.rs
// for the exact state transitions, and pkg/graphqlmcp/mcp.go's
// RefreshSchema for the Go idiom of rebuilding a tool set from a fresh
// schema.
package serverstate

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/go-logr/logr"
	"github.com/hashicorp/go-multierror"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphql-mcp/bridge/internal/compiler"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
	"github.com/graphql-mcp/bridge/internal/searchindex"
)

// SchemaState is a schema document as delivered by a poller: the SDL text
// plus an opaque launch id used only for logging/diagnostics.
type SchemaState struct {
	SDL      string
	LaunchID string
}

// State names the machine's current position in the configuration DAG.
type State string

const (
	StateConfiguring         State = "configuring"
	StateSchemaConfigured    State = "schema_configured"
	StateOperationsConfigured State = "operations_configured"
	StateStarting            State = "starting"
	StateRunning             State = "running"
	StateShuttingDown        State = "shutting_down"
)

// Event is one item from a source poller's merged event stream, matching
// original_source/.../event.rs's Event enum.
type Event interface {
	isEvent()
}

// SchemaUpdated carries a freshly polled schema document.
type SchemaUpdated struct{ Schema SchemaState }

// OperationsUpdated carries a freshly polled operation document set.
type OperationsUpdated struct{ Operations []compiler.RawOperation }

// Shutdown requests the machine stop after finishing any in-flight
// rebuild.
type Shutdown struct{}

func (SchemaUpdated) isEvent()     {}
func (OperationsUpdated) isEvent() {}
func (Shutdown) isEvent()          {}

// ToolSet is an immutable snapshot of everything needed to serve MCP tool
// calls: the validated schema, the compiled operations, and any compile
// warnings produced while building it.
type ToolSet struct {
	Schema     *ast.Schema
	LaunchID   string
	Operations []*compiler.Operation
	Warnings   []string
	Index      *searchindex.Index
}

// Machine holds the currently published ToolSet and the raw inputs needed
// to rebuild it, swapped atomically so concurrent readers never observe a
// partially built snapshot and never block a writer.
type Machine struct {
	state   atomic.Value // State
	current atomic.Pointer[ToolSet]

	mode    compiler.MutationMode
	scalars schemaconv.CustomScalarMap
	logger  logr.Logger

	schema     SchemaState
	operations []compiler.RawOperation
	haveSchema bool

	indexMemoryBytesLimit int
	lastIndex              *searchindex.Index
	onRebuild              func(*ToolSet)
}

// SetIndexMemoryBytesLimit overrides the default in-memory search index
// size cap (overrides.index_memory_bytes in SPEC_FULL.md §6). Must be
// called before the first event is handled.
func (m *Machine) SetIndexMemoryBytesLimit(bytes int) {
	m.indexMemoryBytesLimit = bytes
}

// SetOnRebuild registers a callback invoked synchronously, from the
// machine's single writer goroutine, immediately after a new ToolSet is
// published. internal/bridge uses this to re-register MCP tools against
// the mcp.Server, mirroring pkg/graphqlmcp/mcp.go's RefreshSchema
// recreate-and-re-add-tools idiom. Must be set before Run starts.
func (m *Machine) SetOnRebuild(fn func(*ToolSet)) {
	m.onRebuild = fn
}

// New constructs a Machine in the Configuring state.
func New(mode compiler.MutationMode, scalars schemaconv.CustomScalarMap, logger logr.Logger) *Machine {
	m := &Machine{mode: mode, scalars: scalars, logger: logger}
	m.state.Store(StateConfiguring)
	return m
}

// State returns the machine's current state.
func (m *Machine) State() State {
	return m.state.Load().(State)
}

// Load returns the currently published ToolSet, or nil before the first
// successful rebuild. Safe to call from any goroutine without
// synchronization against Run.
func (m *Machine) Load() *ToolSet {
	return m.current.Load()
}

// Run consumes events until ctx is canceled or a Shutdown event arrives,
// rebuilding the tool set on every SchemaUpdated/OperationsUpdated event.
// It is the machine's single writer: only this goroutine ever calls
// m.current.Store, so reads via Load never race a partially constructed
// rebuild.
func (m *Machine) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			m.state.Store(StateShuttingDown)
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				m.state.Store(StateShuttingDown)
				return nil
			}
			if err := m.handle(ev); err != nil {
				return err
			}
			if _, done := ev.(Shutdown); done {
				m.state.Store(StateShuttingDown)
				return nil
			}
		}
	}
}

func (m *Machine) handle(ev Event) error {
	switch e := ev.(type) {
	case SchemaUpdated:
		m.schema = e.Schema
		m.haveSchema = true
		if m.state.Load().(State) == StateConfiguring {
			m.state.Store(StateSchemaConfigured)
		}
		return m.rebuild()
	case OperationsUpdated:
		m.operations = e.Operations
		if m.haveSchema {
			m.state.Store(StateOperationsConfigured)
			return m.rebuild()
		}
		return nil
	case Shutdown:
		return nil
	default:
		return fmt.Errorf("serverstate: unknown event type %T", ev)
	}
}

// rebuild validates the current schema, compiles every pending raw
// operation against it, and publishes the resulting ToolSet. Per-operation
// compile failures are collected as warnings (via go-multierror) rather
// than aborting the whole rebuild, matching the original's tolerance for
// one bad operation file among many good ones. A schema-level failure
// (invalid SDL, or a search index that fails to build) is logged and the
// rebuild is dropped entirely: the machine rolls back to the prior
// published ToolSet and state rather than tearing down Run's goroutine,
// matching original_source/.../server/states/schema_configured.rs's
// "an invalid update is dropped, the prior schema remains" behavior.
func (m *Machine) rebuild() error {
	m.state.Store(StateStarting)
	prevState := StateConfiguring
	if m.current.Load() != nil {
		prevState = StateRunning
	}

	schema, err := schemaconv.ParseAndValidateSDL(m.schema.SDL)
	if err != nil {
		m.logger.Error(err, "schema failed validation, retaining prior tool set", "launch_id", m.schema.LaunchID)
		m.state.Store(prevState)
		return nil
	}

	comp := compiler.New(schema, m.mode, m.scalars)
	var warnings *multierror.Error
	operations := make([]*compiler.Operation, 0, len(m.operations))
	for _, raw := range m.operations {
		op, err := comp.Compile(raw)
		if err != nil {
			warnings = multierror.Append(warnings, err)
			continue
		}
		operations = append(operations, op)
	}

	var warningStrings []string
	if warnings != nil {
		for _, w := range warnings.Errors {
			warningStrings = append(warningStrings, w.Error())
		}
	}

	idx, err := searchindex.Build(schema, m.indexMemoryBytesLimit)
	if err != nil {
		m.logger.Error(err, "failed to build search index, retaining prior tool set", "launch_id", m.schema.LaunchID)
		m.state.Store(prevState)
		return nil
	}

	toolSet := &ToolSet{
		Schema:     schema,
		LaunchID:   m.schema.LaunchID,
		Operations: operations,
		Warnings:   warningStrings,
		Index:      idx,
	}
	m.current.Store(toolSet)
	m.state.Store(StateRunning)

	if prev := m.lastIndex; prev != nil {
		_ = prev.Close()
	}
	m.lastIndex = idx

	m.logger.Info("tool set rebuilt",
		"launch_id", m.schema.LaunchID,
		"operation_count", len(operations),
		"warning_count", len(warningStrings),
	)

	if m.onRebuild != nil {
		m.onRebuild(toolSet)
	}
	return nil
}
