// Package treeshake retains the subset of a GraphQL schema reachable from a
// seed type, up to a depth limit, for the introspect tool (C5). It is
// grounded on
// original_source/.../introspection/tools/introspect.rs's SchemaTreeShaker
// usage: retain a type and its field/argument/interface/union closure up to
// a depth, excluding built-in scalars, introspection types, and (unless the
// seed is itself the mutation root with mutations allowed) the root
// mutation and subscription types.
package treeshake

import (
	"math"

	"github.com/vektah/gqlparser/v2/ast"
)

// Depth bounds how many field hops the shaker follows from the seed type.
// Unlimited matches the Rust Depth::Unlimited variant.
type Depth int

const Unlimited Depth = math.MaxInt32

// Shaker retains the reachable closure of one or more seed types from a
// fixed schema.
type Shaker struct {
	schema         *ast.Schema
	allowMutations bool
	retained       map[string]*ast.Definition
}

// New constructs a Shaker over schema. allowMutations controls whether the
// root mutation type may ever be retained (only when it is itself the
// seed), matching introspect.rs's allow_mutations field.
func New(schema *ast.Schema, allowMutations bool) *Shaker {
	return &Shaker{
		schema:         schema,
		allowMutations: allowMutations,
		retained:       make(map[string]*ast.Definition),
	}
}

// RetainType walks the closure of typeName up to depth hops and returns the
// set of retained type definitions, keyed by name. A second call on the
// same Shaker adds to the existing retained set, matching the original's
// ability to retain multiple seeds into one shaken document.
func (s *Shaker) RetainType(typeName string, depth Depth) map[string]*ast.Definition {
	if depth == 0 {
		depth = Unlimited
	}
	def := s.schema.Types[typeName]
	if def == nil {
		return s.retained
	}
	isMutationSeed := s.schema.Mutation != nil && typeName == s.schema.Mutation.Name
	if isMutationSeed && !s.allowMutations {
		return s.retained
	}
	s.walk(def, depth)
	return s.retained
}

// Retained returns the current retained set without starting a new walk.
func (s *Shaker) Retained() map[string]*ast.Definition {
	return s.retained
}

func (s *Shaker) walk(def *ast.Definition, depth Depth) {
	if def == nil {
		return
	}
	if isBuiltinOrIntrospection(def.Name) {
		return
	}
	if s.schema.Subscription != nil && def.Name == s.schema.Subscription.Name {
		return
	}
	if _, ok := s.retained[def.Name]; ok {
		return
	}
	s.retained[def.Name] = def
	if depth <= 0 {
		return
	}
	nextDepth := depth - 1

	for _, iface := range def.Interfaces {
		s.walk(s.schema.Types[iface], nextDepth)
	}
	for _, possible := range def.Types {
		s.walk(s.schema.Types[possible], nextDepth)
	}
	for _, field := range def.Fields {
		s.walkType(field.Type, nextDepth)
		for _, arg := range field.Arguments {
			s.walkType(arg.Type, nextDepth)
		}
	}
}

func (s *Shaker) walkType(t *ast.Type, depth Depth) {
	for t != nil {
		if t.NamedType != "" {
			s.walk(s.schema.Types[t.NamedType], depth)
			return
		}
		t = t.Elem
	}
}

func isBuiltinOrIntrospection(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	}
	return len(name) >= 2 && name[0] == '_' && name[1] == '_'
}
