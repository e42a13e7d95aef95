package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type contextKey struct{ name string }

var tokenContextKey = &contextKey{"auth.ValidatedToken"}

// ContextWithToken stores tok in ctx, following the teacher's context-key
// idiom (pkg/graphqlmcp/graphql_executor.go's passthruHeadersKey) and
// mcpany-core's pkg/auth/context_test.go pattern.
func ContextWithToken(ctx context.Context, tok *ValidatedToken) context.Context {
	return context.WithValue(ctx, tokenContextKey, tok)
}

// TokenFromContext retrieves a token stored by ContextWithToken.
func TokenFromContext(ctx context.Context) (*ValidatedToken, bool) {
	tok, ok := ctx.Value(tokenContextKey).(*ValidatedToken)
	return tok, ok
}

// Mount attaches the protected-resource metadata route and, when cfg is
// enabled, wraps the rest of r's routes with bearer-token validation.
// Matches original_source/.../auth.rs's enable_middleware: the metadata
// route itself is always CORS-open and never requires a token.
func Mount(r chi.Router, cfg Config, validator *Validator) {
	r.Group(func(meta chi.Router) {
		meta.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet},
		}))
		meta.Get("/.well-known/oauth-protected-resource", func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cfg.Metadata())
		})
	})

	if !cfg.Enabled() {
		return
	}
	r.Use(validateMiddleware(cfg, validator))
}

func validateMiddleware(cfg Config, validator *Validator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/.well-known/oauth-protected-resource" {
				next.ServeHTTP(w, r)
				return
			}

			raw, err := bearerToken(r)
			if err != nil {
				unauthorized(w, cfg, err.Error())
				return
			}

			tok, err := validator.Validate(r.Context(), raw)
			if err != nil {
				unauthorized(w, cfg, err.Error())
				return
			}

			ctx := ContextWithToken(r.Context(), tok)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("Authorization header is not a Bearer token")
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

// unauthorized writes a 401 with a WWW-Authenticate header pointing at the
// resource's protected-resource metadata document and no body, matching
// original_source/.../auth/www_authenticate.rs's
// (StatusCode::UNAUTHORIZED, TypedHeader(WwwAuthenticate)) response exactly.
// reason is neither logged nor sent to the client.
func unauthorized(w http.ResponseWriter, cfg Config, reason string) {
	metadataURL, err := MetadataURL(cfg.Resource)
	if err == nil {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(`Bearer resource_metadata="%s"`, metadataURL))
	}
	w.WriteHeader(http.StatusUnauthorized)
}
