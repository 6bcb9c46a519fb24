// Package tenant resolves the userId a request or tool call is scoped to,
// checked in a fixed priority order so every caller path (an HTTP request,
// an agent-framework tool invocation, a before-model hook) ends up scoping
// stores by the same identity.
package tenant

import (
	"net/http"

	"github.com/jamaly87/codebase-semantic-search/internal/xerrors"
)

// SessionHeader is the header an authenticated HTTP caller carries its
// resolved user identity in.
const SessionHeader = "X-User-Id"

// Resolver resolves a userId against a fixed-priority chain, with the
// agent-framework config bag supplied once at construction since it comes
// from process configuration rather than from any individual call.
type Resolver struct {
	frameworkConfig map[string]string
}

// New builds a Resolver over the agent-framework config bag. frameworkConfig
// may be nil.
func New(frameworkConfig map[string]string) *Resolver {
	return &Resolver{frameworkConfig: frameworkConfig}
}

// Resolve returns the userId for an HTTP request: the session header if
// present, otherwise the single entry of toolArgs["user_id"] if the caller
// supplied one directly, otherwise the agent-framework config bag value.
// Returns xerrors.ErrTenantMissing if none resolve.
func (r *Resolver) Resolve(req *http.Request, toolArgs map[string]any) (string, error) {
	if id := req.Header.Get(SessionHeader); id != "" {
		return id, nil
	}
	return r.ResolveFromToolArgs(toolArgs)
}

// CurrentUserID adapts Resolve to httpapi.AuthSession, for wiring a
// Resolver directly into the HTTP handlers without an HTTP session store
// of its own.
func (r *Resolver) CurrentUserID(req *http.Request) (string, bool) {
	id, err := r.Resolve(req, nil)
	if err != nil {
		return "", false
	}
	return id, true
}

// ResolveFromToolArgs is the narrower resolver the tool server uses, where
// there is no HTTP request in scope.
func (r *Resolver) ResolveFromToolArgs(toolArgs map[string]any) (string, error) {
	if toolArgs != nil {
		if v, ok := toolArgs["user_id"].(string); ok && v != "" {
			return v, nil
		}
	}
	if r.frameworkConfig != nil {
		if id := r.frameworkConfig["user_id"]; id != "" {
			return id, nil
		}
	}
	return "", xerrors.ErrTenantMissing
}
