// Package debugserver exposes a running billboard session over HTTP: the
// telemetry snapshot, screenshots and the control panel's editing commands.
// Commands are posted to the session's mailbox and applied on its goroutine
// at the start of the next frame.
package debugserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phanxgames/billboard"
	"github.com/sirupsen/logrus"
)

// Session is the part of *billboard.Session the server uses.
type Session interface {
	Telemetry() billboard.Telemetry
	Post(fn func(*billboard.Session)) bool
}

// Server serves debug endpoints for one session.
type Server struct {
	session Session
	log     *logrus.Entry
	// CaptureTimeout bounds how long a screenshot request waits for the
	// session goroutine.
	CaptureTimeout time.Duration
	// DetectContext is the parent context of detections started over HTTP.
	DetectContext context.Context

	http *http.Server
}

// New creates a server for s.
func New(s Session, log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Server{
		session:        s,
		log:            log.WithField("component", "debugserver"),
		CaptureTimeout: 2 * time.Second,
		DetectContext:  context.Background(),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))

	r.Get("/healthz", s.healthz)
	r.Get("/telemetry", s.telemetryJSON)
	r.Get("/telemetry.txt", s.telemetryText)
	r.Get("/screenshot.png", s.screenshot)

	r.Route("/quads", func(r chi.Router) {
		r.Post("/undo", s.command(func(ss *billboard.Session) { ss.UndoQuad() }))
		r.Post("/clear", s.command(func(ss *billboard.Session) { ss.ClearAll() }))
		r.Post("/detect", s.detect)
	})
	r.Post("/points/clear", s.command(func(ss *billboard.Session) { ss.ClearCurrent() }))
	r.Post("/edit", s.command(func(ss *billboard.Session) { ss.ToggleEdit() }))
	r.Post("/ads/{index}", s.forceAd)
	r.Post("/rotation/{mode}", s.rotation)
	return r
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.WithFields(logrus.Fields{
			"function": "ListenAndServe",
			"addr":     addr,
		}).Info("telemetry server listening")
		errc <- s.http.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	}
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) telemetryJSON(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Telemetry())
}

func (s *Server) telemetryText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(s.session.Telemetry().String()))
}

func (s *Server) screenshot(w http.ResponseWriter, r *http.Request) {
	type result struct {
		data []byte
		ok   bool
	}
	done := make(chan result, 1)
	posted := s.session.Post(func(ss *billboard.Session) {
		img, ok := ss.Capture()
		if !ok {
			done <- result{}
			return
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			done <- result{}
			return
		}
		done <- result{data: buf.Bytes(), ok: true}
	})
	if !posted {
		http.Error(w, "session busy", http.StatusServiceUnavailable)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), s.CaptureTimeout)
	defer cancel()
	select {
	case res := <-done:
		if !res.ok {
			http.Error(w, "surface cannot be read back", http.StatusNotImplemented)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(res.data)
	case <-ctx.Done():
		http.Error(w, "timed out waiting for frame", http.StatusGatewayTimeout)
	}
}

// command returns a handler that posts fn and answers 202.
func (s *Server) command(fn func(*billboard.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.session.Post(fn) {
			http.Error(w, "session busy", http.StatusServiceUnavailable)
			return
		}
		s.log.WithFields(logrus.Fields{
			"function":   "command",
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("command queued")
		w.WriteHeader(http.StatusAccepted)
	}
}

func (s *Server) detect(w http.ResponseWriter, r *http.Request) {
	ctx := s.DetectContext
	s.command(func(ss *billboard.Session) {
		ss.StartAutoDetect(ctx, nil)
	})(w, r)
}

func (s *Server) forceAd(w http.ResponseWriter, r *http.Request) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		http.Error(w, "bad ad index", http.StatusBadRequest)
		return
	}
	s.command(func(ss *billboard.Session) { ss.ForceAd(i) })(w, r)
}

func (s *Server) rotation(w http.ResponseWriter, r *http.Request) {
	m, ok := billboard.ParseRotationMode(chi.URLParam(r, "mode"))
	if !ok {
		http.Error(w, "bad rotation mode", http.StatusBadRequest)
		return
	}
	s.command(func(ss *billboard.Session) { ss.SetRotationMode(m) })(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
