package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jamaly87/codebase-semantic-search/internal/xerrors"
)

func TestResolve_PrefersSessionHeader(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set(SessionHeader, "alice")

	resolver := New(map[string]string{"user_id": "carol"})
	id, err := resolver.Resolve(r, map[string]any{"user_id": "bob"})
	require.NoError(t, err)
	require.Equal(t, "alice", id)
}

func TestResolve_FallsBackToToolArgs(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resolver := New(map[string]string{"user_id": "carol"})
	id, err := resolver.Resolve(r, map[string]any{"user_id": "bob"})
	require.NoError(t, err)
	require.Equal(t, "bob", id)
}

func TestResolve_FallsBackToFrameworkConfig(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resolver := New(map[string]string{"user_id": "carol"})
	id, err := resolver.Resolve(r, nil)
	require.NoError(t, err)
	require.Equal(t, "carol", id)
}

func TestResolve_ReturnsErrTenantMissingWhenNoneResolve(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	resolver := New(nil)
	_, err := resolver.Resolve(r, nil)
	require.ErrorIs(t, err, xerrors.ErrTenantMissing)
}

func TestResolveFromToolArgs_ReturnsErrTenantMissingWhenNoneResolve(t *testing.T) {
	resolver := New(nil)
	_, err := resolver.ResolveFromToolArgs(nil)
	require.ErrorIs(t, err, xerrors.ErrTenantMissing)
}
