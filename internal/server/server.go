// Package server exposes the card store over HTTP: the JSON export consumed
// by renderers and deck builders, version histories, and a rendered preview
// of each project's review request body.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/h0rv/cardsync/internal/artifact"
	"github.com/h0rv/cardsync/internal/domain"
	"github.com/h0rv/cardsync/internal/export"
	"github.com/h0rv/cardsync/internal/reconcile"
	"github.com/h0rv/cardsync/internal/report"
	"github.com/h0rv/cardsync/internal/store"
)

// Server serves the loaded projects of a store.
type Server struct {
	router    chi.Router
	store     *store.Store
	projects  map[int]domain.Project
	artifacts artifact.Provider
	markdown  goldmark.Markdown
	log       *zap.Logger
}

// New creates a Server with all routes configured.
func New(st *store.Store, projects []domain.Project, artifacts artifact.Provider, log *zap.Logger) *Server {
	s := &Server{
		store:     st,
		projects:  make(map[int]domain.Project, len(projects)),
		artifacts: artifacts,
		markdown:  goldmark.New(),
		log:       log,
	}
	for _, p := range projects {
		s.projects[p.ID] = p
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("serving", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/projects/{project}", func(r chi.Router) {
		r.Get("/cards", s.handleCards)
		r.Get("/cards/{number}", s.handleHistory)
		r.Get("/review", s.handleReview)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCards exports the latest version of every card. With
// ?releasable=true only cards ready for release are listed.
func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	project, ok := s.project(w, r)
	if !ok {
		return
	}
	groups, err := s.groups(r.Context(), project.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	releasable := r.URL.Query().Get("releasable") == "true"
	cards := make([]export.Card, 0, len(groups))
	for _, card := range store.Latest(groups) {
		if releasable && !card.IsReleasable() {
			continue
		}
		out, err := s.export(r.Context(), card)
		if err != nil {
			s.fail(w, err)
			return
		}
		cards = append(cards, out)
	}
	writeJSON(w, http.StatusOK, cards)
}

// History is the JSON shape of one card's versions.
type History struct {
	Number   int           `json:"number"`
	Latest   export.Card   `json:"latest"`
	Previous []export.Card `json:"previous"`
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	project, ok := s.project(w, r)
	if !ok {
		return
	}
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid card number")
		return
	}
	if _, err := s.groups(r.Context(), project.ID); err != nil {
		s.fail(w, err)
		return
	}
	group, err := s.store.Group(project.ID, number)
	if err != nil {
		s.fail(w, err)
		return
	}

	history := History{Number: group.Number, Previous: make([]export.Card, 0, len(group.Previous))}
	if history.Latest, err = s.export(r.Context(), group.Latest); err != nil {
		s.fail(w, err)
		return
	}
	for _, card := range group.Previous {
		out, err := s.export(r.Context(), card)
		if err != nil {
			s.fail(w, err)
			return
		}
		history.Previous = append(history.Previous, out)
	}
	writeJSON(w, http.StatusOK, history)
}

// handleReview renders the body the next review request of the project
// would carry.
func (s *Server) handleReview(w http.ResponseWriter, r *http.Request) {
	project, ok := s.project(w, r)
	if !ok {
		return
	}
	groups, err := s.groups(r.Context(), project.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	var selected []*domain.Card
	for _, c := range store.Latest(groups) {
		if reconcile.InReview(c) {
			selected = append(selected, c)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("<!doctype html>\n<title>" + html.EscapeString(reconcile.ReviewTitle(project)) + "</title>\n")
	if err := s.markdown.Convert([]byte(report.ReviewBody(project, selected)), &buf); err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) project(w http.ResponseWriter, r *http.Request) (domain.Project, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "project"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return domain.Project{}, false
	}
	p, ok := s.projects[id]
	if !ok {
		writeError(w, http.StatusNotFound, "unknown project")
		return domain.Project{}, false
	}
	return p, true
}

// groups returns the version histories of a project, loading it on first use.
func (s *Server) groups(ctx context.Context, projectID int) ([]store.Group, error) {
	groups, err := s.store.Groups(projectID)
	if !errors.Is(err, store.ErrProjectNotLoaded) {
		return groups, err
	}
	if _, err := s.store.Load(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.Groups(projectID)
}

func (s *Server) export(ctx context.Context, card *domain.Card) (export.Card, error) {
	ref, err := s.artifacts.Ensure(ctx, card)
	if err != nil {
		return export.Card{}, err
	}
	return export.FromCard(card, ref.URL), nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrCardNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.log.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
