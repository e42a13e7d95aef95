package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"

	"github.com/graphql-mcp/bridge/internal/apperrors"
)

// authorizationServerMetadata is the subset of
// /.well-known/oauth-authorization-server this module needs.
type authorizationServerMetadata struct {
	JWKSURI string `json:"jwks_uri"`
}

// Validator validates bearer tokens against a fixed set of authorization
// servers, fetching and caching each server's JWKS by key id. Grounded on
// original_source/.../auth/networked_token_validator.rs's NetworkedTokenValidator.
type Validator struct {
	cfg    Config
	client *http.Client

	mu       sync.RWMutex
	keysByKid map[string]jose.JSONWebKey
	fetched   map[string]time.Time
}

// NewValidator constructs a Validator for cfg.
func NewValidator(cfg Config) *Validator {
	return &Validator{
		cfg:       cfg,
		client:    &http.Client{Timeout: 10 * time.Second},
		keysByKid: make(map[string]jose.JSONWebKey),
		fetched:   make(map[string]time.Time),
	}
}

// Validate parses and verifies rawToken against every configured
// authorization server's JWKS, checking signature, expiry, and (if
// cfg.Audiences is non-empty) audience membership.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*ValidatedToken, error) {
	token, _, err := jwt.NewParser().ParseUnverified(rawToken, jwt.MapClaims{})
	if err != nil {
		return nil, &apperrors.AuthError{Reason: "malformed token", Err: err}
	}
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, &apperrors.AuthError{Reason: "token has no kid header"}
	}

	var lastErr error
	for _, server := range v.cfg.Servers {
		key, err := v.getKey(ctx, server, kid)
		if err != nil {
			lastErr = err
			continue
		}
		claims := jwt.MapClaims{}
		parsed, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (interface{}, error) {
			return key.Key, nil
		}, jwt.WithValidMethods(signingMethodNames()))
		if err != nil || !parsed.Valid {
			lastErr = &apperrors.AuthError{Reason: "signature or claims invalid", Err: err}
			continue
		}
		if len(v.cfg.Audiences) > 0 && !audienceMatches(claims, v.cfg.Audiences) {
			lastErr = &apperrors.AuthError{Reason: "audience mismatch"}
			continue
		}
		return &ValidatedToken{
			Raw:       rawToken,
			Subject:   stringClaim(claims, "sub"),
			Audiences: audienceList(claims),
			Claims:    claims,
		}, nil
	}
	if lastErr == nil {
		lastErr = &apperrors.AuthError{Reason: "no authorization server recognized this token's key id"}
	}
	return nil, lastErr
}

// getKey fetches (and caches) the signing key identified by kid from
// server's JWKS, rediscovering the authorization server's metadata and
// JWKS URI if the key is not already cached.
func (v *Validator) getKey(ctx context.Context, server, kid string) (jose.JSONWebKey, error) {
	v.mu.RLock()
	key, ok := v.keysByKid[server+"#"+kid]
	v.mu.RUnlock()
	if ok {
		return key, nil
	}

	jwksURI, err := v.discoverJWKSURI(ctx, server)
	if err != nil {
		return jose.JSONWebKey{}, err
	}
	set, err := v.fetchJWKS(ctx, jwksURI)
	if err != nil {
		return jose.JSONWebKey{}, err
	}

	v.mu.Lock()
	for _, k := range set.Keys {
		v.keysByKid[server+"#"+k.KeyID] = k
	}
	v.mu.Unlock()

	v.mu.RLock()
	key, ok = v.keysByKid[server+"#"+kid]
	v.mu.RUnlock()
	if !ok {
		return jose.JSONWebKey{}, &apperrors.AuthError{Reason: fmt.Sprintf("key id %q not found in %s's JWKS", kid, server)}
	}
	return key, nil
}

func (v *Validator) discoverJWKSURI(ctx context.Context, server string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+"/.well-known/oauth-authorization-server", nil)
	if err != nil {
		return "", err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return "", &apperrors.NetworkError{URL: server, Retryable: true, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var meta authorizationServerMetadata
	if err := json.Unmarshal(body, &meta); err != nil {
		return "", fmt.Errorf("parse authorization server metadata: %w", err)
	}
	if meta.JWKSURI == "" {
		return "", fmt.Errorf("authorization server %s did not advertise a jwks_uri", server)
	}
	return meta.JWKSURI, nil
}

func (v *Validator) fetchJWKS(ctx context.Context, jwksURI string) (*jose.JSONWebKeySet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, jwksURI, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, &apperrors.NetworkError{URL: jwksURI, Retryable: true, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(body, &set); err != nil {
		return nil, fmt.Errorf("parse jwks: %w", err)
	}
	return &set, nil
}

func signingMethodNames() []string {
	return []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512", "PS256", "PS384", "PS512"}
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func audienceList(claims jwt.MapClaims) []string {
	switch v := claims["aud"].(type) {
	case string:
		return []string{v}
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, a := range v {
			if s, ok := a.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func audienceMatches(claims jwt.MapClaims, want []string) bool {
	got := audienceList(claims)
	for _, g := range got {
		for _, w := range want {
			if g == w {
				return true
			}
		}
	}
	return false
}
