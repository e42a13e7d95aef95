// Package searchindex backs the "search" tool (C6): a BM25 full-text index
// over type and field descriptions, so a caller can find the types
// relevant to a natural-language query without walking the whole schema.
// New capability (the teacher has no equivalent); built on a real
// search-engine library per SPEC_FULL.md §4.1, grounded on
// _examples/other_examples/manifests/smart-mcp-proxy-mcpproxy-go/go.mod's
// direct dependency on bleve.
package searchindex

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/graphql-mcp/bridge/internal/apperrors"
	"github.com/graphql-mcp/bridge/internal/schemaconv"
)

// Path is the chain of type names leading from a schema root to a
// retrieved type, surfaced to callers so they know how to reach a search
// hit from a query they can actually issue.
type Path []string

// Document is one indexed unit: a type, with its rendered SDL and
// description. The path used to reach it from the query root is kept
// separately in the Index and attached to each Hit.
type Document struct {
	TypeName    string `json:"typeName"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	SDL         string `json:"sdl"`
}

// Index wraps an in-memory bleve index over a schema's types, rebuilt
// whenever the schema changes (C8 triggers this on every successful
// rebuild).
type Index struct {
	bleveIndex bleve.Index
	docs       map[string]Document
	paths      map[string]Path
}

// memoryBytesLimit bounds how large the in-memory index is allowed to
// grow to (overrides.index_memory_bytes in SPEC_FULL.md §6); bleve has no
// direct memory cap knob, so this is enforced by capping the number of
// indexed documents once their serialized size estimate crosses the limit.
const defaultMemoryBytesLimit = 64 * 1024 * 1024

// Build constructs a fresh Index over every non-builtin, non-introspection
// type in schema, computing each type's root-relative path via a
// breadth-first walk from the query and mutation root types.
func Build(schema *ast.Schema, memoryBytesLimit int) (*Index, error) {
	if memoryBytesLimit <= 0 {
		memoryBytesLimit = defaultMemoryBytesLimit
	}

	mapping := bleve.NewIndexMapping()
	bi, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, &apperrors.IndexingError{Op: "new_index", Err: err}
	}

	idx := &Index{bleveIndex: bi, docs: make(map[string]Document), paths: make(map[string]Path)}
	paths := rootRelativePaths(schema)

	usedBytes := 0
	for name, def := range schema.Types {
		if schemaconv.IsBuiltinType(name) {
			continue
		}
		sdl := schemaconv.TypeSDL(def)
		usedBytes += len(sdl)
		if usedBytes > memoryBytesLimit {
			break
		}
		doc := Document{
			TypeName:    name,
			Kind:        string(def.Kind),
			Description: def.Description,
			SDL:         sdl,
		}
		if err := bi.Index(name, doc); err != nil {
			return nil, &apperrors.IndexingError{Op: "index_document", Err: err}
		}
		idx.docs[name] = doc
		if p, ok := paths[name]; ok {
			idx.paths[name] = p
		}
	}
	return idx, nil
}

// Hit is one ranked search result.
type Hit struct {
	Document
	Path  Path
	Score float64
}

// Search runs a BM25 query over the indexed type descriptions and SDL,
// returning up to limit ranked hits.
func (idx *Index) Search(query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}
	q := bleve.NewQueryStringQuery(query)
	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	result, err := idx.bleveIndex.Search(req)
	if err != nil {
		return nil, &apperrors.IndexingError{Op: "search", Err: err}
	}

	hits := make([]Hit, 0, len(result.Hits))
	for _, h := range result.Hits {
		doc, ok := idx.docs[h.ID]
		if !ok {
			continue
		}
		hits = append(hits, Hit{Document: doc, Path: idx.paths[h.ID], Score: h.Score})
	}
	return hits, nil
}

// Close releases the underlying bleve index's resources.
func (idx *Index) Close() error {
	return idx.bleveIndex.Close()
}

// rootRelativePaths computes, for every reachable type, the shortest chain
// of type names from Query or Mutation to that type, via breadth-first
// search over field return types.
func rootRelativePaths(schema *ast.Schema) map[string]Path {
	paths := make(map[string]Path)
	roots := make([]string, 0, 2)
	if schema.Query != nil {
		roots = append(roots, schema.Query.Name)
	}
	if schema.Mutation != nil {
		roots = append(roots, schema.Mutation.Name)
	}

	type frame struct {
		name string
		path Path
	}
	queue := make([]frame, 0, len(roots))
	for _, r := range roots {
		queue = append(queue, frame{name: r, path: Path{r}})
		paths[r] = Path{r}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		def := schema.Types[cur.name]
		if def == nil {
			continue
		}
		for _, f := range def.Fields {
			name := baseTypeName(f.Type)
			if name == "" || schemaconv.IsBuiltinType(name) {
				continue
			}
			if _, seen := paths[name]; seen {
				continue
			}
			next := append(append(Path{}, cur.path...), name)
			paths[name] = next
			queue = append(queue, frame{name: name, path: next})
		}
	}
	return paths
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
