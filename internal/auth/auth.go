// Package auth implements the credential gates guarding both access
// surfaces: basic auth on the REST API and bearer tokens on the MCP
// endpoint. The bearer token is the base64 encoding of user:pass, so one
// configured credential pair covers both surfaces.
package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
)

// Gate validates inbound credentials against the configured pair.
type Gate struct {
	username string
	password string
	token    string
}

// NewGate creates a gate for the given credential pair.
func NewGate(username, password string) *Gate {
	return &Gate{
		username: username,
		password: password,
		token:    base64.StdEncoding.EncodeToString([]byte(username + ":" + password)),
	}
}

// CheckBasic reports whether the basic-auth credentials match. Both fields
// are compared in constant time.
func (g *Gate) CheckBasic(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(g.password)) == 1
	return userOK && passOK
}

// CheckBearer reports whether the presented bearer token matches.
func (g *Gate) CheckBearer(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(g.token)) == 1
}

// CheckAuthorizationHeader validates a raw "Authorization: Bearer <token>"
// header value.
func (g *Gate) CheckAuthorizationHeader(header string) bool {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	return g.CheckBearer(header[len(prefix):])
}

// Username returns the configured username.
func (g *Gate) Username() string {
	return g.username
}

// Token returns the bearer token clients must present on the MCP endpoint.
func (g *Gate) Token() string {
	return g.token
}

// AuthorizationHeader returns the full header value for the demo client
// and the /auth-info endpoint.
func (g *Gate) AuthorizationHeader() string {
	return fmt.Sprintf("Bearer %s", g.token)
}
