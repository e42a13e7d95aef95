package schemaconv

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
)

// SDL renders schema back to GraphQL SDL text.
func SDL(schema *ast.Schema) string {
	var b strings.Builder
	formatter.NewFormatter(&b).FormatSchema(schema)
	return b.String()
}

// TypeSDL renders a single type definition to SDL, for the introspect
// tool's per-type description and the search index's stored document body.
func TypeSDL(def *ast.Definition) string {
	if def == nil {
		return ""
	}
	sub := &ast.Schema{Types: map[string]*ast.Definition{def.Name: def}}
	var b strings.Builder
	formatter.NewFormatter(&b).FormatSchema(sub)
	return b.String()
}
