package httpapi

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	userID string
	ok     bool
}

func (f *fakeAuth) CurrentUserID(r *http.Request) (string, bool) { return f.userID, f.ok }

type fakeRefresher struct {
	err        error
	calledWith string
}

func (f *fakeRefresher) Refresh(userID, workspacePath string) error {
	f.calledWith = workspacePath
	return f.err
}

func TestHandleIndex_RequiresAuthentication(t *testing.T) {
	h := New(&fakeAuth{ok: false}, &fakeRefresher{}, "")
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/index", strings.NewReader(`{"workspacePath":"/tmp/x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleIndex_TriggersRefreshAndReturns200(t *testing.T) {
	refresher := &fakeRefresher{}
	h := New(&fakeAuth{userID: "alice", ok: true}, refresher, "")
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/index", strings.NewReader(`{"workspacePath":"/tmp/x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "/tmp/x", refresher.calledWith)
}

func TestHandleIndex_ReturnsFailureStatus(t *testing.T) {
	refresher := &fakeRefresher{err: errors.New("disk unreadable")}
	h := New(&fakeAuth{userID: "alice", ok: true}, refresher, "")
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodPost, "/api/knowledge/index", strings.NewReader(`{"workspacePath":"/tmp/x"}`))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleWorkspacePath_ReturnsJoinedPath(t *testing.T) {
	h := New(&fakeAuth{}, &fakeRefresher{}, "/srv/app")
	mux := http.NewServeMux()
	h.Register(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/knowledge/workspace-path", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/srv/app/workspace")
}
