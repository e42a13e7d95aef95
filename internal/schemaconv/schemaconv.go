// Package schemaconv converts a GraphQL schema document into JSON Schema
// fragments: tool input schemas for operation arguments, and individual
// type schemas used by the introspect tool. It generalizes the teacher
// package's field/argument walker (pkg/graphqlmcp/schema) to operate
// directly on a gqlparser *ast.Schema instead of a locally mirrored type
// tree, and adds the nullable-type oneOf wrapping the original Rust
// implementation's schema_walker performs.
package schemaconv

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

var builtinScalars = map[string]bool{
	"String":  true,
	"Int":     true,
	"Float":   true,
	"Boolean": true,
	"ID":      true,
}

// IsBuiltinType reports whether name is one of the five built-in GraphQL
// scalars, or an introspection type (leading "__").
func IsBuiltinType(name string) bool {
	if builtinScalars[name] {
		return true
	}
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}

// CustomScalarMap maps a custom scalar's GraphQL name to a JSON-Schema
// fragment supplied by operator configuration (overrides.custom_scalar_config_path,
// SPEC_FULL.md §4.12). A scalar with no entry degrades to an empty schema
// ({}) and a message appended to Converter.Warnings, matching the original's
// CustomScalarMap fallback behavior.
type CustomScalarMap map[string]map[string]interface{}

// ParseAndValidateSDL parses a schema document and validates it, returning
// the resulting *ast.Schema. Validation is plain gqlparser validation:
// federation directive usages (@key, @requires, @external, @provides) are
// rejected unless the document itself declares those directives, and no
// federation composition is performed (see DESIGN.md).
func ParseAndValidateSDL(sdl string) (*ast.Schema, error) {
	doc, err := parser.ParseSchema(&ast.Source{Name: "schema.graphql", Input: sdl})
	if err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	schema, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("validate schema: %w", err)
	}
	return schema, nil
}

// Converter builds JSON-Schema fragments against a fixed schema + custom
// scalar map, memoizing named-type schemas into a shared $defs map so
// cyclic types terminate via a $ref instead of recursing forever.
type Converter struct {
	schema  *ast.Schema
	scalars CustomScalarMap
	// Warnings accumulates one message per custom scalar encountered with
	// no configured mapping. Only this package's tests read it; a schema
	// rebuild does not report these messages.
	Warnings []string
}

// NewConverter constructs a Converter for schema, with an optional custom
// scalar map (nil is fine: unmapped scalars simply degrade to {}).
func NewConverter(schema *ast.Schema, scalars CustomScalarMap) *Converter {
	return &Converter{schema: schema, scalars: scalars}
}

// TypeSchema converts a field/argument type to a JSON Schema fragment.
// defs, when non-nil, receives one entry per input object type reached,
// keyed by type name, and every input-object reference is emitted as
// {"$ref": "#/$defs/Name"}; this both memoizes work and breaks cycles.
// Enums are always inlined as a string enum, and object, interface and
// union types as a bare {"type": "object"} with their description. When
// defs is nil, input objects are inlined every time (suitable for
// single-field argument schemas, which the teacher's CreateArgumentSchema
// always inlines).
func (c *Converter) TypeSchema(t *ast.Type, defs map[string]interface{}) map[string]interface{} {
	return c.typeSchema(t, defs, make(map[string]bool))
}

func (c *Converter) typeSchema(t *ast.Type, defs map[string]interface{}, visiting map[string]bool) map[string]interface{} {
	if t == nil {
		return map[string]interface{}{"type": "string"}
	}
	if t.NamedType == "" && t.Elem != nil {
		item := c.typeSchema(t.Elem, defs, visiting)
		arr := map[string]interface{}{"type": "array", "items": item}
		if !t.NonNull {
			return nullable(arr)
		}
		return arr
	}

	inner := c.namedTypeSchema(t.NamedType, defs, visiting)
	if !t.NonNull {
		return nullable(inner)
	}
	return inner
}

// nullable wraps a non-null schema fragment per SPEC_FULL/original
// semantics: a nullable field accepts either the underlying value or JSON
// null, expressed as {"oneOf": [T, {"type": "null"}]}.
func nullable(schema map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"oneOf": []interface{}{schema, map[string]interface{}{"type": "null"}},
	}
}

func (c *Converter) namedTypeSchema(name string, defs map[string]interface{}, visiting map[string]bool) map[string]interface{} {
	switch name {
	case "String", "ID":
		return map[string]interface{}{"type": "string"}
	case "Int":
		return map[string]interface{}{"type": "integer"}
	case "Float":
		return map[string]interface{}{"type": "number"}
	case "Boolean":
		return map[string]interface{}{"type": "boolean"}
	}

	def := c.schema.Types[name]
	if def == nil {
		return map[string]interface{}{}
	}

	switch def.Kind {
	case ast.Scalar:
		if c.scalars != nil {
			if frag, ok := c.scalars[name]; ok {
				return frag
			}
		}
		c.Warnings = append(c.Warnings, fmt.Sprintf("custom scalar %q has no configured JSON Schema mapping, degrading to {}", name))
		return map[string]interface{}{}
	case ast.Enum:
		values := make([]interface{}, 0, len(def.EnumValues))
		for _, v := range def.EnumValues {
			values = append(values, v.Name)
		}
		return map[string]interface{}{"type": "string", "enum": values}
	case ast.InputObject:
		if defs != nil {
			if _, ok := defs[name]; ok {
				return map[string]interface{}{"$ref": "#/$defs/" + name}
			}
			if visiting[name] {
				return map[string]interface{}{"$ref": "#/$defs/" + name}
			}
		}
		visiting[name] = true
		schema := c.inputObjectSchema(def, defs, visiting)
		delete(visiting, name)
		if defs != nil {
			defs[name] = schema
			return map[string]interface{}{"$ref": "#/$defs/" + name}
		}
		return schema
	default:
		// Object/Interface/Union types never appear as argument or input
		// field types in a valid GraphQL schema; fall back to an opaque
		// object schema so introspect/search can still describe them.
		return map[string]interface{}{"type": "object", "description": def.Description}
	}
}

func (c *Converter) inputObjectSchema(def *ast.Definition, defs map[string]interface{}, visiting map[string]bool) map[string]interface{} {
	properties := make(map[string]interface{}, len(def.Fields))
	required := make([]string, 0)
	for _, f := range def.Fields {
		properties[f.Name] = c.fieldSchema(f, defs, visiting)
		if f.Type.NonNull && f.DefaultValue == nil {
			required = append(required, f.Name)
		}
	}
	sort.Strings(required)
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if def.Description != "" {
		schema["description"] = def.Description
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func (c *Converter) fieldSchema(f *ast.FieldDefinition, defs map[string]interface{}, visiting map[string]bool) map[string]interface{} {
	schema := c.typeSchema(f.Type, defs, visiting)
	if f.Description != "" {
		withDescription(schema, f.Description)
	}
	if f.DefaultValue != nil {
		withDefault(schema, convertDefaultValue(f.DefaultValue, f.Type))
	}
	return schema
}

// ArgumentSchema converts a field's argument list into the JSON Schema
// object used as an MCP tool's inputSchema: {type:object, properties,
// required}, matching the teacher's CreateInputSchema shape.
func (c *Converter) ArgumentSchema(args ast.ArgumentDefinitionList, defs map[string]interface{}) map[string]interface{} {
	properties := make(map[string]interface{}, len(args))
	required := make([]string, 0)
	for _, arg := range args {
		schema := c.TypeSchema(arg.Type, defs)
		if arg.Description != "" {
			withDescription(schema, arg.Description)
		}
		if arg.DefaultValue != nil {
			withDefault(schema, convertDefaultValue(arg.DefaultValue, arg.Type))
		}
		properties[arg.Name] = schema
		if arg.Type.NonNull && arg.DefaultValue == nil {
			required = append(required, arg.Name)
		}
	}
	sort.Strings(required)
	out := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		out["required"] = required
	}
	return out
}

// withDescription sets a description on a (possibly oneOf-wrapped) schema
// fragment without disturbing the oneOf branches.
func withDescription(schema map[string]interface{}, desc string) {
	if _, ok := schema["oneOf"]; ok {
		schema["description"] = desc
		return
	}
	schema["description"] = desc
}

func withDefault(schema map[string]interface{}, value interface{}) {
	if value == nil {
		return
	}
	schema["default"] = value
}

func convertDefaultValue(v *ast.Value, t *ast.Type) interface{} {
	if v == nil {
		return nil
	}
	name := baseTypeName(t)
	switch name {
	case "Boolean":
		if v.Raw == "true" {
			return true
		}
		if v.Raw == "false" {
			return false
		}
		return v.Raw
	case "Int":
		if n, err := strconv.Atoi(v.Raw); err == nil {
			return n
		}
		return v.Raw
	case "Float":
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return f
		}
		return v.Raw
	default:
		return v.Raw
	}
}

func baseTypeName(t *ast.Type) string {
	for t != nil {
		if t.NamedType != "" {
			return t.NamedType
		}
		t = t.Elem
	}
	return ""
}

// GraphQLErrors flattens a gqlerror.List into plain strings for error
// taxonomy wrapping.
func GraphQLErrors(list gqlerror.List) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, e.Message)
	}
	return out
}
