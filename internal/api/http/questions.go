package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/flightprep/quizbank/internal/eventlog"
	"github.com/flightprep/quizbank/internal/question"
)

var validate = validator.New()

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func storeErr(w http.ResponseWriter, err error) {
	if errors.Is(err, question.ErrNotFound) {
		http.Error(w, "question not found", http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func ListQuestionsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		if qs == nil {
			qs = []question.Question{}
		}
		writeJSON(w, qs)
	}
}

func TopicsHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, question.Topics(qs))
	}
}

func GetQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, q)
	}
}

func CreateQuestionHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q question.Question
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q.ID = ""
		if err := validate.Struct(q); err != nil {
			http.Error(w, "invalid question: "+err.Error(), http.StatusBadRequest)
			return
		}
		created, err := store.Create(r.Context(), q)
		if err != nil {
			storeErr(w, err)
			return
		}
		events.Record(r.Context(), eventlog.TypeQuestionCreated, created.ID,
			map[string]string{"topic": created.Topic})
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, created)
	}
}

// UpdateQuestionHandler applies a partial edit. The body is a flat object
// of updatable fields; the store rejects anything else.
func UpdateQuestionHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var fields question.Fields
		if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if v, ok := fields["correct_answer"]; ok {
			if s, _ := v.(string); s != "A" && s != "B" && s != "C" && s != "D" {
				http.Error(w, "correct_answer must be A, B, C or D", http.StatusBadRequest)
				return
			}
		}
		q, err := store.Update(r.Context(), chi.URLParam(r, "questionID"), fields)
		if err != nil {
			if errors.Is(err, question.ErrNotFound) {
				storeErr(w, err)
			} else {
				http.Error(w, err.Error(), http.StatusBadRequest)
			}
			return
		}
		writeJSON(w, q)
	}
}

func DeleteQuestionHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "questionID")
		if err := store.Delete(r.Context(), id); err != nil {
			storeErr(w, err)
			return
		}
		events.Record(r.Context(), eventlog.TypeQuestionDeleted, id, nil)
		w.WriteHeader(http.StatusNoContent)
	}
}

func ToggleStarHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.ToggleStar(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			storeErr(w, err)
			return
		}
		writeJSON(w, q)
	}
}

// ReorderHandler moves one question between list positions; the affected
// range is rewritten update-by-update in ascending order.
func ReorderHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			From int `json:"from"`
			To   int `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := question.Move(r.Context(), store, req.From, req.To); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		events.Record(r.Context(), eventlog.TypeQuestionsReorder, "",
			map[string]int{"from": req.From, "to": req.To})
		w.WriteHeader(http.StatusNoContent)
	}
}
