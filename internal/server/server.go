// Package server is a reference implementation of the xmlparser backend: the
// rendered main page, the two ajax endpoints and the workbook export.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const appTitle = "XML Parser"

// Config holds the server settings.
type Config struct {
	Addr       string
	Catalog    *Catalog
	ResultsDir string
	Logger     *slog.Logger
	// Now is the clock used for workbook names.
	Now func() time.Time
}

// Server serves the xmlparser endpoints.
type Server struct {
	cfg     Config
	log     *slog.Logger
	tmpl    *template.Template
	flashes *flashStore
	mux     *http.ServeMux
}

// New creates a server. A nil catalog uses DefaultCatalog.
func New(cfg Config) (*Server, error) {
	if cfg.Catalog == nil {
		cfg.Catalog = DefaultCatalog()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.ResultsDir == "" {
		cfg.ResultsDir = filepath.Join(os.TempDir(), "xmlsel-results")
	}
	if err := os.MkdirAll(cfg.ResultsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		log:     cfg.Logger.With("component", "server"),
		tmpl:    tmpl,
		flashes: newFlashStore(),
		mux:     http.NewServeMux(),
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleHome)
	s.mux.HandleFunc("GET /home", s.handleHome)
	s.mux.HandleFunc("GET /ajaxapi", s.handleAjaxGet)
	s.mux.HandleFunc("POST /ajaxapi", s.handleAjaxPost)
	s.mux.HandleFunc("POST /ajaxapi2", s.handleAjax2)
	s.mux.HandleFunc("GET /xmlparser/main", s.handleMain)
	s.mux.HandleFunc("POST /xmlparser/main", s.handleProcess)
	s.mux.HandleFunc("POST /xmlparser/createexcel", s.handleCreateExcel)
	s.mux.HandleFunc("GET /xmlparser/download/{name}", s.handleDownload)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.Debug("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration", time.Since(start).String())
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.log.Info("listening", "addr", ln.Addr().String())
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type pageData struct {
	AppTitle string
	Title    string
	Flashes  []Flash
	Source   string
	Types    []DocType
}

func (s *Server) render(w http.ResponseWriter, session, name string, data pageData) {
	data.AppTitle = appTitle
	data.Flashes = s.flashes.take(session)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render failed", "template", name, "error", err)
	}
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.render(w, s.flashes.session(w, r), "home.html", pageData{Title: "Home Page"})
}

func (s *Server) handleMain(w http.ResponseWriter, r *http.Request) {
	session := s.flashes.session(w, r)
	s.render(w, session, "main.html", pageData{
		Title:  appTitle,
		Source: s.flashes.root(session, ""),
		Types:  s.cfg.Catalog.Types,
	})
}

// handleProcess accepts the main form. The source file name becomes the
// root of later workbook names.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	session := s.flashes.session(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	source := strings.TrimSpace(r.PostForm.Get("sourcefile"))
	if source == "" {
		s.flashes.add(session, "danger", "Please select a file to be uploaded!")
		http.Redirect(w, r, "/xmlparser/main", http.StatusSeeOther)
		return
	}

	root := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	s.flashes.setRoot(session, root)
	s.flashes.add(session, "success", "File processed successfully!")
	s.log.Info("file processed", "source", source, "types", len(s.cfg.Catalog.Types))

	s.render(w, session, "main.html", pageData{
		Title:  appTitle,
		Source: root,
		Types:  s.cfg.Catalog.Types,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v interface{}) error {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		return fmt.Errorf("expected application/json, got %q", ct)
	}
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *Server) handleAjaxGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"greeting": "Hello from the server!"})
}

func (s *Server) handleAjaxPost(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Greeting string `json:"greeting"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("greeting received", "greeting", body.Greeting)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleAjax2(w http.ResponseWriter, r *http.Request) {
	var body struct {
		MessageClient string `json:"messageClient"`
	}
	if err := decodeJSON(r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, "Yes I did receive: "+body.MessageClient)
}

// exportReply is the JSON body of a createexcel response. The page ignores
// it; the flash on the next render is what the user sees.
type exportReply struct {
	ReturnMsg string `json:"returnMsg"`
	File      string `json:"file,omitempty"`
	Sheets    int    `json:"sheets,omitempty"`
}

func (s *Server) handleCreateExcel(w http.ResponseWriter, r *http.Request) {
	session := s.flashes.session(w, r)

	var req map[string][]string
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	root := s.flashes.root(session, s.cfg.Catalog.Root)
	name := workbookName(root, s.cfg.Now())
	sheets, err := writeWorkbook(filepath.Join(s.cfg.ResultsDir, name), s.cfg.Catalog, req)
	if err != nil {
		s.log.Error("workbook failed", "error", err)
		s.flashes.add(session, "danger", err.Error())
		writeJSON(w, http.StatusInternalServerError, exportReply{ReturnMsg: err.Error()})
		return
	}
	if sheets == 0 {
		s.flashes.add(session, "danger", NoOutputMessage)
		writeJSON(w, http.StatusOK, exportReply{ReturnMsg: NoOutputMessage})
		return
	}

	s.log.Info("workbook created", "file", name, "sheets", sheets)
	s.flashes.add(session, "success", name)
	writeJSON(w, http.StatusOK, exportReply{ReturnMsg: "OK", File: name, Sheets: sheets})
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".xlsx") {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(s.cfg.ResultsDir, name)
	if _, err := os.Stat(path); err != nil {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	http.ServeFile(w, r, path)
}
