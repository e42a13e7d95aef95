// Package auth implements the OAuth 2.1 protected-resource pattern the
// bridge's HTTP transports enforce (C9): a CORS-open
// /.well-known/oauth-protected-resource metadata endpoint, bearer-token
// extraction, per-authorization-server JWKS fetch and validation, and
// 401 + WWW-Authenticate responses on failure. Grounded on
// original_source/.../auth.rs, auth/networked_token_validator.rs,
// auth/protected_resource.rs and auth/www_authenticate.rs.
package auth

import "net/url"

// Config mirrors original_source/.../auth.rs's Config exactly.
type Config struct {
	// Servers are the authorization servers trusted to have issued tokens
	// for this resource; each is queried for
	// /.well-known/oauth-authorization-server to discover its JWKS.
	Servers []string
	// Audiences, if non-empty, restricts accepted tokens to those whose
	// "aud" claim contains one of these values.
	Audiences []string
	// Resource is this server's own canonical resource URL, advertised in
	// the protected-resource metadata document.
	Resource string
	// ResourceDocumentation, if set, is surfaced in the metadata document.
	ResourceDocumentation string
	// Scopes advertised as supported in the metadata document.
	Scopes []string
	// DisableAuthTokenPassthrough is carried in configuration only: the
	// validated bearer token is never forwarded to the upstream GraphQL
	// endpoint, whatever this field's value.
	DisableAuthTokenPassthrough bool
}

// Enabled reports whether any authorization servers are configured; when
// false, the middleware is a no-op passthrough.
func (c Config) Enabled() bool {
	return len(c.Servers) > 0
}

// ValidatedToken is the outcome of a successful bearer-token validation,
// threaded through the request context for downstream handlers.
type ValidatedToken struct {
	Raw       string
	Subject   string
	Audiences []string
	Claims    map[string]interface{}
}

// ProtectedResourceMetadata is the document served at
// /.well-known/oauth-protected-resource, matching
// original_source/.../auth/protected_resource.rs's ProtectedResource.
type ProtectedResourceMetadata struct {
	Resource              string   `json:"resource"`
	AuthorizationServers   []string `json:"authorization_servers"`
	BearerMethodsSupported []string `json:"bearer_methods_supported"`
	ScopesSupported        []string `json:"scopes_supported,omitempty"`
	ResourceDocumentation  string   `json:"resource_documentation,omitempty"`
}

// Metadata builds the ProtectedResourceMetadata document for c.
func (c Config) Metadata() ProtectedResourceMetadata {
	return ProtectedResourceMetadata{
		Resource:               c.Resource,
		AuthorizationServers:   c.Servers,
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        c.Scopes,
		ResourceDocumentation:  c.ResourceDocumentation,
	}
}

// MetadataURL returns the well-known URL for a resource's protected
// resource metadata document, used to build the WWW-Authenticate
// resource_metadata parameter.
func MetadataURL(resource string) (string, error) {
	u, err := url.Parse(resource)
	if err != nil {
		return "", err
	}
	u.Path = "/.well-known/oauth-protected-resource"
	u.RawQuery = ""
	return u.String(), nil
}
