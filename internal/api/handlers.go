package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/p-n-ai/pai-quest/internal/curriculum"
	"github.com/p-n-ai/pai-quest/internal/notify"
	"github.com/p-n-ai/pai-quest/internal/progression"
	"github.com/p-n-ai/pai-quest/internal/report"
	"github.com/p-n-ai/pai-quest/internal/xp"
)

const readyTimeout = 2 * time.Second

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			slog.Warn("readiness check failed", "check", name, "error", err)
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failed": failed})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleListModules(w http.ResponseWriter, r *http.Request) {
	modules, err := s.catalog.ListModules(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]moduleSummary, len(modules))
	for i, m := range modules {
		out[i] = toSummary(m)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetModule(w http.ResponseWriter, r *http.Request) {
	m, err := s.catalog.GetModule(r.Context(), chi.URLParam(r, "moduleID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag := `"` + m.Fingerprint() + `"`
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, toDetail(m))
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	learnerID := r.URL.Query().Get("learner_id")
	ach := s.sessions.Achievements()
	completed := func(moduleID string) bool {
		return learnerID != "" && ach.Completed(learnerID, moduleID)
	}

	out := make([]skillDTO, 0, len(s.skills))
	for _, sk := range s.skills {
		dto := skillDTO{
			ID:          sk.ID,
			Title:       sk.Title,
			Description: sk.Description,
			Difficulty:  sk.Difficulty,
			Paths:       make([]pathDTO, len(sk.Paths)),
		}
		for i, p := range sk.Paths {
			pd := pathDTO{ID: p.ID, Title: p.Title, Modules: make([]pathModuleDTO, len(p.ModuleIDs))}
			for j, id := range p.ModuleIDs {
				md := pathModuleDTO{
					ID:        id,
					Unlocked:  p.IsUnlocked(j, completed),
					Completed: completed(id),
				}
				m, err := s.catalog.GetModule(r.Context(), id)
				switch {
				case err == nil:
					md.Title = m.Title
					md.Available = true
				case !errors.Is(err, curriculum.ErrModuleNotFound):
					writeError(w, r, err)
					return
				}
				pd.Modules[j] = md
			}
			dto.Paths[i] = pd
		}
		out = append(out, dto)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	learnerID := chi.URLParam(r, "learnerID")
	ach := s.sessions.Achievements()
	points := ach.XP(learnerID)
	writeJSON(w, http.StatusOK, achievementsDTO{
		LearnerID: learnerID,
		XP:        points,
		XPLabel:   xp.Format(points),
		XPBadge:   xp.Compact(points),
		Completed: ach.List(learnerID),
	})
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LearnerID string `json:"learner_id"`
		ModuleID  string `json:"module_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.ModuleID == "" {
		writeBadRequest(w, "module_id is required")
		return
	}

	v, err := s.sessions.Start(r.Context(), req.LearnerID, req.ModuleID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+v.ID)
	writeJSON(w, http.StatusCreated, toSession(v))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(v))
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.End(chi.URLParam(r, "sessionID")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	v, ev, err := s.sessions.Advance(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	resp := advanceResponse{Session: toSession(v)}
	if ev != (progression.Event{}) {
		resp.Event = &ev
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	v, moved, err := s.sessions.Retreat(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, retreatResponse{Session: toSession(v), Moved: moved})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.Reset(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(v))
}

func (s *Server) handleSelectAnswer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		QuestionID string `json:"question_id"`
		Option     *int   `json:"option"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.QuestionID == "" || req.Option == nil {
		writeBadRequest(w, "question_id and option are required")
		return
	}

	v, err := s.sessions.SelectAnswer(chi.URLParam(r, "sessionID"), req.QuestionID, *req.Option)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(v))
}

func (s *Server) handleSubmitQuiz(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.SubmitQuiz(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(v))
}

func (s *Server) handleRevealAnswers(w http.ResponseWriter, r *http.Request) {
	v, err := s.sessions.RevealAnswers(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSession(v))
}

func (s *Server) handleQuizReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	review, err := s.sessions.QuizReview(id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := report.WriteQuizReview(&buf, review); err != nil {
		writeError(w, r, fmt.Errorf("building quiz report: %w", err))
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="quiz-review-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	notes, cancel := s.hub.Subscribe(id)
	defer cancel()

	// Subscribed first: an End after this check closes notes.
	if _, err := s.sessions.Get(id); err != nil {
		writeError(w, r, err)
		return
	}
	if err := notify.Stream(r.Context(), w, r, notes, s.stream); err != nil {
		slog.Warn("notification stream closed", "session_id", id, "error", err)
	}
}
