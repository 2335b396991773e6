package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flightprep/quizbank/internal/session"
)

func sessionErr(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusBadRequest)
}

// StartSessionHandler opens a practice run.
// POST /sessions {"mode": "study|practice|starred|exam", "topic": "..."}
func StartSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode  string `json:"mode"`
			Topic string `json:"topic"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		v, err := mgr.Start(r.Context(), session.Mode(req.Mode), req.Topic)
		if err != nil {
			sessionErr(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, v)
	}
}

func GetSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := mgr.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

// AnswerHandler records the current question's selection by display
// label. POST /sessions/{sessionID}/answers {"question_id": "...", "selected": "B"}
// question_id is optional; when present it must name the current question.
func AnswerHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuestionID string `json:"question_id"`
			Selected   string `json:"selected"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		v, err := mgr.Answer(r.Context(), chi.URLParam(r, "sessionID"), req.QuestionID, req.Selected)
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func NextHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := mgr.Next(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func PreviousHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := mgr.Previous(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func SubmitHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := mgr.Submit(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func RetryHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := mgr.Retry(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			sessionErr(w, err)
			return
		}
		writeJSON(w, v)
	}
}

func EndSessionHandler(mgr *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mgr.End(chi.URLParam(r, "sessionID"))
		w.WriteHeader(http.StatusNoContent)
	}
}
