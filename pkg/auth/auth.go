// Package auth provides a plugin that verifies HMAC-signed bearer
// tokens on incoming requests.
//
// Routes can opt out with the "auth:public" config key. Verified claims
// are injected into the request context values under ClaimsKey so
// pipeline stages running after this plugin can read them; the
// generator runs before the pipeline and never sees them. A missing or
// invalid token replaces the result with a 401 tuple in the normal
// data-flow path.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mocklet/mocklet/pkg/mocklet"
)

// Route config keys.
const (
	// PublicKey marks a route as requiring no token.
	PublicKey = "auth:public"
)

// ClaimsKey is the context values key the verified claims are stored
// under.
const ClaimsKey = "auth:claims"

// CodeUnauthorized marks 401 bodies produced by this plugin.
const CodeUnauthorized = "UNAUTHORIZED"

// Plugin verifies bearer tokens signed with an HMAC secret.
type Plugin struct {
	secret []byte
}

// New creates the auth plugin with the given HMAC secret.
func New(secret []byte) *Plugin {
	return &Plugin{secret: secret}
}

// Name implements mocklet.Plugin.
func (p *Plugin) Name() string { return "auth" }

// Version implements mocklet.Plugin.
func (p *Plugin) Version() string { return "1.0.0" }

// Process implements mocklet.Plugin.
func (p *Plugin) Process(_ context.Context, rc *mocklet.RequestContext, result any) (any, error) {
	if public, _ := rc.Config[PublicKey].(bool); public {
		return result, nil
	}

	token := bearerToken(rc.Headers["authorization"])
	if token == "" {
		return unauthorized("missing bearer token"), nil
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return p.secret, nil
	}, jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))
	if err != nil {
		return unauthorized(fmt.Sprintf("invalid token: %v", err)), nil
	}

	rc.Values[ClaimsKey] = map[string]any(claims)
	return result, nil
}

// Token creates a signed token for the claims, for tests and seeding.
func (p *Plugin) Token(claims map[string]any) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims(claims))
	return token.SignedString(p.secret)
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(message string) []any {
	return []any{401, map[string]any{"error": message, "code": CodeUnauthorized}}
}
