// Package compiler turns pre-authored GraphQL operation documents (from the
// C7 source pollers) into MCP tools: name, description, a JSON-Schema input
// built from the operation's variable declarations, and everything
// internal/executor needs to run it. It generalizes the teacher's
// pkg/graphqlmcp/schema/field.go (which synthesizes a query string from a
// single schema field) into compiling real operation text the way
// original_source/.../operations/raw_operation.rs does.
package compiler

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"

	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
)

// MutationMode controls whether operations containing a mutation are
// compiled into callable tools, matching
// original_source/.../operations/mutation_mode.rs exactly.
type MutationMode string

const (
	MutationModeNone     MutationMode = "none"
	MutationModeExplicit MutationMode = "explicit"
	MutationModeAll      MutationMode = "all"
)

// RawOperation is operation source text as delivered by a poller, before
// compilation: a local file, a persisted-query manifest entry, or an
// operation-collection entry. Mirrors
// original_source/.../operations/raw_operation.rs's RawOperation.
type RawOperation struct {
	SourceText       string
	PersistedQueryID string
	Headers          map[string]string
	Variables        map[string]interface{}
	SourcePath       string
}

// Operation is a compiled, ready-to-register tool: a named GraphQL
// operation plus the JSON-Schema describing its variables.
type Operation struct {
	Name             string
	Description      string
	Document         *ast.QueryDocument
	OperationDef     *ast.OperationDefinition
	InputSchema      map[string]interface{}
	PersistedQueryID string
	Headers          map[string]string
	SourcePath       string
	IsMutation       bool
	rawSourceText    string
}

// Compiler compiles RawOperations against a fixed schema + mutation mode +
// custom scalar map.
type Compiler struct {
	schema  *ast.Schema
	mode    MutationMode
	scalars schemaconv.CustomScalarMap
}

func New(schema *ast.Schema, mode MutationMode, scalars schemaconv.CustomScalarMap) *Compiler {
	return &Compiler{schema: schema, mode: mode, scalars: scalars}
}

// Compile validates raw's operation text against the schema and produces an
// Operation, or an *apperrors.OperationError describing why it could not.
// Matches the two-stage validation validate.rs performs: first a structural
// check (single named operation, mutation-mode gating), then full gqlparser
// validation against the schema.
func (c *Compiler) Compile(raw RawOperation) (*Operation, error) {
	if raw.PersistedQueryID != "" && raw.SourceText == "" {
		// A persisted-query-only operation carries no document to compile;
		// the executor sends the hash directly and the tool's input schema
		// is an empty object schema with no declared properties.
		return &Operation{
			Name:             raw.PersistedQueryID,
			Description:      fmt.Sprintf("Persisted query %s", raw.PersistedQueryID),
			PersistedQueryID: raw.PersistedQueryID,
			Headers:          raw.Headers,
			SourcePath:       raw.SourcePath,
			InputSchema:      map[string]interface{}{"type": "object", "properties": map[string]interface{}{}},
		}, nil
	}

	doc, err := parser.ParseQuery(&ast.Source{Name: raw.SourcePath, Input: raw.SourceText})
	if err != nil {
		return nil, &apperrors.OperationError{SourcePath: raw.SourcePath, Reason: apperrors.ReasonGraphQLDocument, Err: err}
	}

	opDef, err := c.selectOperation(doc, raw.SourcePath)
	if err != nil {
		return nil, err
	}

	if opDef.Operation == ast.Subscription {
		return nil, &apperrors.OperationError{
			SourcePath: raw.SourcePath,
			Reason:     apperrors.ReasonGraphQLDocument,
			Err:        fmt.Errorf("subscription %q rejected: subscriptions are never exposed", opDef.Name),
		}
	}

	if opDef.Operation == ast.Mutation && !c.mutationsAllowed() {
		return nil, &apperrors.OperationError{
			SourcePath: raw.SourcePath,
			Reason:     apperrors.ReasonGraphQLDocument,
			Err:        fmt.Errorf("mutation %q rejected: mutation_mode is %q", opDef.Name, c.mode),
		}
	}

	if errs := validator.Validate(c.schema, doc); len(errs) > 0 {
		return nil, &apperrors.OperationError{
			SourcePath: raw.SourcePath,
			Reason:     apperrors.ReasonGraphQLDocument,
			Err:        fmt.Errorf("operation failed validation: %v", schemaconv.GraphQLErrors(errs)),
		}
	}

	conv := schemaconv.NewConverter(c.schema, c.scalars)
	defs := make(map[string]interface{})
	inputSchema := c.variablesSchema(opDef, conv, defs)
	if len(defs) > 0 {
		inputSchema["$defs"] = defs
	}

	return &Operation{
		Name:             opDef.Name,
		Description:      operationDescription(opDef),
		Document:         doc,
		OperationDef:     opDef,
		InputSchema:      inputSchema,
		PersistedQueryID: raw.PersistedQueryID,
		Headers:          raw.Headers,
		SourcePath:       raw.SourcePath,
		IsMutation:       opDef.Operation == ast.Mutation,
		rawSourceText:    raw.SourceText,
	}, nil
}

func (c *Compiler) mutationsAllowed() bool {
	return c.mode == MutationModeExplicit || c.mode == MutationModeAll
}

// selectOperation enforces the same constraints as raw_operation.rs's
// operation_defs helper: exactly one operation definition, and it must be
// named (anonymous operations cannot become a named MCP tool).
func (c *Compiler) selectOperation(doc *ast.QueryDocument, sourcePath string) (*ast.OperationDefinition, error) {
	if len(doc.Operations) == 0 {
		return nil, &apperrors.OperationError{SourcePath: sourcePath, Reason: apperrors.ReasonNoOperations, Err: fmt.Errorf("document contains no operations")}
	}
	if len(doc.Operations) > 1 {
		return nil, &apperrors.OperationError{SourcePath: sourcePath, Reason: apperrors.ReasonTooMany, Err: fmt.Errorf("document contains %d operations, expected exactly one", len(doc.Operations))}
	}
	op := doc.Operations[0]
	if op.Name == "" {
		return nil, &apperrors.OperationError{SourcePath: sourcePath, Reason: apperrors.ReasonMissingName, Err: fmt.Errorf("operation must be named")}
	}
	return op, nil
}

func (c *Compiler) variablesSchema(op *ast.OperationDefinition, conv *schemaconv.Converter, defs map[string]interface{}) map[string]interface{} {
	properties := make(map[string]interface{}, len(op.VariableDefinitions))
	required := make([]string, 0)
	for _, v := range op.VariableDefinitions {
		schema := conv.TypeSchema(v.Type, defs)
		properties[v.Variable] = schema
		if v.Type.NonNull && v.DefaultValue == nil {
			required = append(required, v.Variable)
		}
	}
	out := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

func operationDescription(op *ast.OperationDefinition) string {
	kind := "query"
	if op.Operation == ast.Mutation {
		kind = "mutation"
	} else if op.Operation == ast.Subscription {
		kind = "subscription"
	}
	return fmt.Sprintf("Executes the %s %s", kind, op.Name)
}

// SourceText returns the original GraphQL document text the executor sends
// upstream, unless a persisted query id makes that unnecessary.
func (o *Operation) SourceText() string {
	return o.rawSourceText
}
