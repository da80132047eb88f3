package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"video-rag/internal/chromemdb"
	"video-rag/internal/config"
	"video-rag/internal/infographic"
	"video-rag/internal/mindmap"
	"video-rag/internal/rag"
	"video-rag/internal/session"
	"video-rag/internal/transcript"
)

const sessionCookie = "session_id"

// Server wires the request-scoped operations to the stateless service
// objects constructed once at process start.
type Server struct {
	cfg         *config.Config
	sessions    *session.Manager
	store       *chromemdb.Manager
	engine      *rag.Engine
	transcripts *transcript.Client
	mindmaps    *mindmap.Generator
}

func NewServer(cfg *config.Config, sessions *session.Manager, store *chromemdb.Manager, engine *rag.Engine, transcripts *transcript.Client, mindmaps *mindmap.Generator) *Server {
	return &Server{
		cfg:         cfg,
		sessions:    sessions,
		store:       store,
		engine:      engine,
		transcripts: transcripts,
		mindmaps:    mindmaps,
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/process-video", s.handleProcessVideo)
	mux.HandleFunc("/api/ask-question", s.handleAskQuestion)
	mux.HandleFunc("/api/generate-infographic", s.handleGenerateInfographic)
	mux.HandleFunc("/api/generate-mindmap", s.handleGenerateMindmap)
	mux.HandleFunc("/api/video-metadata", s.handleVideoMetadata)
	mux.HandleFunc("/api/clear-session", s.handleClearSession)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.cfg.Server.StaticDir))))
	return withCORS(mux)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("url is required"))
		return
	}
	videoID, ok := transcript.ExtractVideoID(req.URL)
	if !ok {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid YouTube URL"))
		return
	}

	meta := s.transcripts.Metadata(r.Context(), videoID)
	text, err := s.transcripts.Transcript(r.Context(), videoID)
	if err != nil {
		if errors.Is(err, transcript.ErrTranscriptsDisabled) {
			writeErr(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeErr(w, http.StatusInternalServerError, err)
		return
	}

	sess, ok := s.currentSession(r)
	if !ok {
		sess, err = s.sessions.Create()
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
		})
	}

	if _, err := s.store.Create(r.Context(), text, sess.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	s.sessions.SetVideo(sess.ID, videoID, meta, text)

	log.Info().Str("video_id", videoID).Str("session_id", sess.ID).Msg("Video processed")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"video_id": videoID,
		"metadata": meta,
	})
}

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	sess, ok := s.currentSession(r)
	if !ok {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("session expired or no video processed"))
		return
	}
	store, err := s.store.Load(r.Context(), sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if store == nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("vector store not found, please re-process the video"))
		return
	}

	answer, err := s.engine.Answer(r.Context(), store, req.Question)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func (s *Server) handleGenerateInfographic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Style       string `json:"style"`
		UseFallback string `json:"use_fallback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}

	sess, ok := s.currentSession(r)
	if !ok || sess.VideoID == "" {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("session expired or no video processed"))
		return
	}
	store, err := s.store.Load(r.Context(), sess.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if store == nil {
		writeErr(w, http.StatusNotFound, fmt.Errorf("vector store not found, please re-process the video"))
		return
	}

	summary, err := s.engine.Summary(r.Context(), store)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	details := s.engine.ExtractInfographicDetails(r.Context(), store)

	orch := infographic.NewOrchestrator(
		s.cfg.Infographic.OutputDir,
		infographic.ProviderChain(&s.cfg.Infographic, req.UseFallback)...,
	)
	_, generator, err := orch.GenerateAndSave(r.Context(), infographic.Request{
		VideoID: sess.VideoID,
		Summary: summary,
		Details: details,
		Style:   req.Style,
	})
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "success",
		"infographic_url": "/static/infographics/" + sess.VideoID + "_infographic.png",
		"summary":         summary,
		"generator":       generator,
		"details":         details,
	})
}

func (s *Server) handleGenerateMindmap(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess, ok := s.currentSession(r)
	if !ok || sess.Transcript == "" {
		writeErr(w, http.StatusUnauthorized, fmt.Errorf("session expired or no video processed"))
		return
	}
	code, err := s.mindmaps.Generate(r.Context(), sess.Transcript)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "mindmap": code})
}

func (s *Server) handleVideoMetadata(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	sess, ok := s.currentSession(r)
	if !ok || sess.VideoID == "" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("no video metadata found"))
		return
	}
	writeJSON(w, http.StatusOK, sess.Metadata)
}

func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		s.sessions.Delete(c.Value)
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]any{"status": "session cleared"})
}

// currentSession resolves the request's cookie to a session snapshot.
func (s *Server) currentSession(r *http.Request) (session.Data, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return session.Data{}, false
	}
	return s.sessions.Get(c.Value)
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
