// Package server exposes the opened folder to the UI over HTTP and pushes
// changes over a websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/ahriknow/ahridocs/internal/watcher"
	"github.com/ahriknow/ahridocs/internal/workspace"
)

// ErrOutsideRoot is returned for paths that are not below the opened folder.
var ErrOutsideRoot = errors.New("path is outside the opened folder")

// Controller retargets the folder watch.
type Controller interface {
	Status() watcher.Status
	SetWatchRoot(ctx context.Context, root string) (watcher.Status, error)
}

// Server routes API requests to the workspace and controller.
type Server struct {
	workspace *workspace.Workspace
	ctrl      Controller
	hub       *Hub
	router    *mux.Router
}

// New creates a Server.
func New(ws *workspace.Workspace, ctrl Controller, hub *Hub) *Server {
	s := &Server{
		workspace: ws,
		ctrl:      ctrl,
		hub:       hub,
		router:    mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(localOnly)

	api.HandleFunc("/status", s.getStatus).Methods("GET")
	api.HandleFunc("/watch-root", s.setWatchRoot).Methods("PUT")

	api.HandleFunc("/tree", s.getTree).Methods("GET")
	api.HandleFunc("/file", s.readFile).Methods("GET")
	api.HandleFunc("/file", s.writeFile).Methods("PUT")
	api.HandleFunc("/files", s.readFiles).Methods("POST")

	api.HandleFunc("/entries", s.createEntry).Methods("POST")
	api.HandleFunc("/entries", s.deleteEntry).Methods("DELETE")
	api.HandleFunc("/entries/rename", s.renameEntry).Methods("POST")

	api.HandleFunc("/settings", s.getSettings).Methods("GET")
	api.HandleFunc("/settings", s.putSettings).Methods("PUT")

	s.router.Handle("/ws", s.hub).Methods("GET")
	s.router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
}

// localOnly rejects browser requests whose Origin is not the app or a
// loopback page.
func localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !checkLocalOrigin(r) {
			slog.Warn("rejected request from foreign origin", "origin", r.Header.Get("Origin"), "path", r.URL.Path)
			writeErrorMessage(w, http.StatusForbidden, "origin not allowed")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled. ready, if non-nil,
// receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	if ready != nil {
		ready(ln.Addr())
	}

	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("ui server listening", "addr", ln.Addr().String())
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StatusResponse is returned by the status endpoints.
type StatusResponse struct {
	State      watcher.State `json:"state"`
	Root       string        `json:"root,omitempty"`
	Error      string        `json:"error,omitempty"`
	Generation uint64        `json:"generation"`
}

func statusResponse(st watcher.Status) StatusResponse {
	resp := StatusResponse{State: st.State, Root: st.Root, Generation: st.Generation}
	if st.Err != nil {
		resp.Error = st.Err.Error()
	}
	return resp
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse(s.ctrl.Status()))
}

// setWatchRoot retargets the watch. A failed install is reported through
// the degraded status, not as a request error.
func (s *Server) setWatchRoot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Root string `json:"root"`
	}
	if !decode(w, r, &req) {
		return
	}

	st, err := s.ctrl.SetWatchRoot(r.Context(), req.Root)
	if err != nil && !watcher.IsInstallError(err) {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(st))
}

func (s *Server) getTree(w http.ResponseWriter, r *http.Request) {
	root, ok := s.rootParam(w, r)
	if !ok {
		return
	}

	nodes, err := s.workspace.List(root)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"root": root, "children": nodes})
}

func (s *Server) readFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeErrorMessage(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.inside(path, false); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.workspace.Read(path)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) writeFile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path    string `json:"path"`
		Content string `json:"content"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := s.inside(req.Path, false); err != nil {
		writeError(w, err)
		return
	}

	f, err := s.workspace.Write(req.Path, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) readFiles(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Paths []string `json:"paths"`
	}
	if !decode(w, r, &req) {
		return
	}
	for _, p := range req.Paths {
		if err := s.inside(p, false); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, s.workspace.ReadMany(req.Paths))
}

func (s *Server) createEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dir    string `json:"dir"`
		Name   string `json:"name"`
		IsDir  bool   `json:"is_dir"`
		Unique bool   `json:"unique"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := s.inside(req.Dir, true); err != nil {
		writeError(w, err)
		return
	}

	create := s.workspace.Create
	if req.Unique {
		create = s.workspace.CreateUnique
	}
	f, err := create(req.Dir, req.Name, req.IsDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeErrorMessage(w, http.StatusBadRequest, "path is required")
		return
	}
	isDir, err := strconv.ParseBool(q.Get("is_dir"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "is_dir must be true or false")
		return
	}

	if err := s.inside(path, false); err != nil {
		writeError(w, err)
		return
	}
	if err := s.workspace.Delete(path, isDir); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) renameEntry(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Name string `json:"name"`
	}
	if !decode(w, r, &req) {
		return
	}

	if err := s.inside(req.Path, false); err != nil {
		writeError(w, err)
		return
	}

	newPath, err := s.workspace.Rename(req.Path, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"path": newPath})
}

// inside checks that path lies below the opened folder. The folder itself
// passes only when allowRoot is set.
func (s *Server) inside(path string, allowRoot bool) error {
	root := s.ctrl.Status().Root
	if root == "" || !filepath.IsAbs(path) {
		return fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	if rel == "." && !allowRoot {
		return fmt.Errorf("%s: %w", path, ErrOutsideRoot)
	}
	return nil
}

// rootParam returns the root query parameter, defaulting to the watched folder.
func (s *Server) rootParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	root := r.URL.Query().Get("root")
	if root == "" {
		root = s.ctrl.Status().Root
	}
	if root == "" {
		writeErrorMessage(w, http.StatusBadRequest, "root is required")
		return "", false
	}
	if err := s.inside(root, true); err != nil {
		writeError(w, err)
		return "", false
	}
	return root, true
}

func (s *Server) getSettings(w http.ResponseWriter, r *http.Request) {
	root, ok := s.rootParam(w, r)
	if !ok {
		return
	}

	settings, err := workspace.LoadSettings(s.workspace.Fs(), root)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) putSettings(w http.ResponseWriter, r *http.Request) {
	root, ok := s.rootParam(w, r)
	if !ok {
		return
	}
	var settings workspace.Settings
	if !decode(w, r, &settings) {
		return
	}

	if err := workspace.SaveSettings(s.workspace.Fs(), root, settings); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// decode reads a JSON body. Other content types are refused so that plain
// form posts from other pages cannot reach the handlers.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeErrorMessage(w, http.StatusUnsupportedMediaType, "content type must be application/json")
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, workspace.ErrExists):
		status = http.StatusConflict
	case errors.Is(err, workspace.ErrNotText):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, workspace.ErrNotFile),
		errors.Is(err, workspace.ErrNotDir),
		errors.Is(err, workspace.ErrInvalidName),
		errors.Is(err, watcher.ErrNotDirectory),
		errors.Is(err, watcher.ErrRelativeRoot):
		status = http.StatusBadRequest
	case errors.Is(err, ErrOutsideRoot):
		status = http.StatusForbidden
	case errors.Is(err, watcher.ErrStopped):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	writeErrorMessage(w, status, err.Error())
}
