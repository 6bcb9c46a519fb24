// Package httpapi exposes two HTTP controllers as external collaborators:
// triggering a refresh and reporting the default workspace path for the
// UI. Authentication is consumed through a narrow AuthSession interface so
// this package carries no concrete auth dependency.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
)

// AuthSession resolves the authenticated caller's userId from a request.
// ok is false when the request is unauthenticated.
type AuthSession interface {
	CurrentUserID(r *http.Request) (userID string, ok bool)
}

// Refresher runs an incremental reindex of one tenant's workspace.
type Refresher interface {
	Refresh(userID, workspacePath string) error
}

// Handler bundles the collaborators the two routes depend on.
type Handler struct {
	auth     AuthSession
	refresh  Refresher
	workRoot string
}

// New builds a Handler. workRoot is the server's working directory base
// that "workspace" is joined onto for the default workspace-path response.
func New(auth AuthSession, refresh Refresher, workRoot string) *Handler {
	return &Handler{auth: auth, refresh: refresh, workRoot: workRoot}
}

// Register mounts both routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/knowledge/index", h.handleIndex)
	mux.HandleFunc("GET /api/knowledge/workspace-path", h.handleWorkspacePath)
}

type indexRequest struct {
	WorkspacePath string `json:"workspacePath"`
}

// handleIndex triggers refresh(currentUserId, workspacePath) synchronously;
// the handler blocks until the run completes, per spec.
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.auth.CurrentUserID(r)
	if !ok {
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	if req.WorkspacePath == "" {
		http.Error(w, "workspacePath is required", http.StatusBadRequest)
		return
	}

	if err := h.refresh.Refresh(userID, req.WorkspacePath); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprintf(w, "refresh failed: %v", err)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "indexed %s", req.WorkspacePath)
}

type workspacePathResponse struct {
	WorkspacePath string `json:"workspacePath"`
	WorkingDir    string `json:"workingDir"`
}

// handleWorkspacePath reports the default workspace location for the UI:
// the server's working directory joined with "workspace". It is purely
// informational and does not require authentication.
func (h *Handler) handleWorkspacePath(w http.ResponseWriter, r *http.Request) {
	workingDir := h.workRoot
	if workingDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			http.Error(w, fmt.Sprintf("failed to resolve working directory: %v", err), http.StatusInternalServerError)
			return
		}
		workingDir = wd
	}

	resp := workspacePathResponse{
		WorkspacePath: filepath.Join(workingDir, "workspace"),
		WorkingDir:    workingDir,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}
