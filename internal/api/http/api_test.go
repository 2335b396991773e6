package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/flightprep/quizbank/internal/auth"
	"github.com/flightprep/quizbank/internal/question"
	"github.com/flightprep/quizbank/internal/session"
	"github.com/flightprep/quizbank/internal/storage"
)

// testRouter mirrors the server's protected routes without the access
// gate. The nil event repo is a no-op.
func testRouter(store question.Store) chi.Router {
	sessions := session.NewManager(store, session.Options{})
	r := chi.NewRouter()
	r.Route("/questions", func(qr chi.Router) {
		qr.Get("/", ListQuestionsHandler(store))
		qr.Post("/", CreateQuestionHandler(store, nil))
		qr.Post("/reorder", ReorderHandler(store, nil))
		qr.Get("/{questionID}", GetQuestionHandler(store))
		qr.Put("/{questionID}", UpdateQuestionHandler(store))
		qr.Delete("/{questionID}", DeleteQuestionHandler(store, nil))
		qr.Post("/{questionID}/star", ToggleStarHandler(store))
	})
	r.Get("/topics", TopicsHandler(store))
	r.Post("/import/paste", ImportPasteHandler(store, nil))
	r.Post("/import/backup", ImportBackupHandler(store, nil))
	r.Get("/export", ExportHandler(store))
	r.Route("/sessions", func(sr chi.Router) {
		sr.Post("/", StartSessionHandler(sessions))
		sr.Get("/{sessionID}", GetSessionHandler(sessions))
		sr.Delete("/{sessionID}", EndSessionHandler(sessions))
		sr.Post("/{sessionID}/answers", AnswerHandler(sessions))
		sr.Post("/{sessionID}/next", NextHandler(sessions))
		sr.Post("/{sessionID}/previous", PreviousHandler(sessions))
		sr.Post("/{sessionID}/submit", SubmitHandler(sessions))
		sr.Post("/{sessionID}/retry", RetryHandler(sessions))
	})
	return r
}

func do(t *testing.T, r chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestImportPasteEndpoint(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)

	data := "Question,Answer,Option1,Option2,Option3,Option4\n" +
		"What is 2+2?,B,3,4,5,6\n" +
		"What powers the standby instruments?,A,Battery,APU,Ram air,Nothing\n"
	rec := do(t, r, http.MethodPost, "/import/paste", map[string]string{
		"topic": "Electrical", "data": data,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp importResponse
	decode(t, rec, &resp)
	if resp.Imported != 2 || len(resp.Skipped) != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Message != "Successfully imported 2 questions." {
		t.Fatalf("message = %q", resp.Message)
	}

	qs, _ := store.List(context.Background())
	if len(qs) != 2 || qs[0].Topic != "Electrical" || qs[0].CorrectAnswer != "B" {
		t.Fatalf("stored = %+v", qs)
	}
}

func TestImportPasteRejectsEmptyAndAllInvalid(t *testing.T) {
	r := testRouter(question.NewMemStore())

	rec := do(t, r, http.MethodPost, "/import/paste", map[string]string{"topic": "T", "data": "  "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank data status = %d", rec.Code)
	}

	data := "Question,Answer,Option1,Option2\nWhat color is the sky at noon?,E,blue,green\n"
	rec = do(t, r, http.MethodPost, "/import/paste", map[string]string{"topic": "T", "data": data})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("all-invalid status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Error   string                   `json:"error"`
		Skipped []map[string]interface{} `json:"skipped"`
	}
	decode(t, rec, &resp)
	if resp.Error == "" || len(resp.Skipped) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestQuestionCRUD(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)

	rec := do(t, r, http.MethodPost, "/questions/", question.Question{
		Topic:         "Hydraulics",
		QuestionText:  "Which pump pressurizes the green system?",
		OptionA:       "Engine-driven",
		OptionB:       "Electric",
		CorrectAnswer: "A",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created question.Question
	decode(t, rec, &created)
	if created.ID == "" {
		t.Fatal("create must assign an id")
	}

	rec = do(t, r, http.MethodPost, "/questions/", question.Question{QuestionText: "no topic"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d", rec.Code)
	}

	rec = do(t, r, http.MethodPut, "/questions/"+created.ID, map[string]interface{}{
		"explanation": "The engine pump is primary.",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated question.Question
	decode(t, rec, &updated)
	if updated.Explanation != "The engine pump is primary." {
		t.Fatalf("explanation = %q", updated.Explanation)
	}

	rec = do(t, r, http.MethodPut, "/questions/"+created.ID, map[string]interface{}{
		"correct_answer": "E",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad answer update status = %d", rec.Code)
	}

	rec = do(t, r, http.MethodPost, "/questions/"+created.ID+"/star", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("star status = %d", rec.Code)
	}
	var starred question.Question
	decode(t, rec, &starred)
	if !starred.IsStarred {
		t.Fatal("toggle must star")
	}

	rec = do(t, r, http.MethodDelete, "/questions/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/questions/"+created.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", rec.Code)
	}
}

func TestReorderEndpoint(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)
	ids := make([]string, 3)
	for i := range ids {
		q, _ := store.Create(context.Background(), question.Question{
			Topic: "T", QuestionText: fmt.Sprintf("question %d", i),
			OptionA: "a", CorrectAnswer: "A",
		})
		ids[i] = q.ID
	}

	rec := do(t, r, http.MethodPost, "/questions/reorder", map[string]int{"from": 0, "to": 2})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("reorder status = %d, body %s", rec.Code, rec.Body.String())
	}
	qs, _ := store.List(context.Background())
	want := []string{ids[1], ids[2], ids[0]}
	for i := range want {
		if qs[i].ID != want[i] {
			t.Fatalf("order = %v", qs)
		}
	}

	rec = do(t, r, http.MethodPost, "/questions/reorder", map[string]int{"from": 0, "to": 9})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out-of-range status = %d", rec.Code)
	}
}

func TestTopicsEndpoint(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)
	for _, topic := range []string{"A", "A", "B"} {
		_, _ = store.Create(context.Background(), question.Question{
			Topic: topic, QuestionText: "question for " + topic,
			OptionA: "a", CorrectAnswer: "A",
		})
	}
	rec := do(t, r, http.MethodGet, "/topics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var topics []question.TopicSummary
	decode(t, rec, &topics)
	if len(topics) != 2 || topics[0].Count != 2 {
		t.Fatalf("topics = %+v", topics)
	}
}

func TestExportBackupRoundTripOverHTTP(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)
	_, _ = store.Create(context.Background(), question.Question{
		Topic: "T", QuestionText: "What heats the pitot probe?",
		OptionA: "Electricity", OptionB: "Bleed air", CorrectAnswer: "A",
	})

	rec := do(t, r, http.MethodGet, "/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "quizbank-questions-") {
		t.Fatalf("content-disposition = %q", cd)
	}

	// Restoring the same export into a fresh bank imports everything.
	fresh := question.NewMemStore()
	r2 := testRouter(fresh)
	req := httptest.NewRequest(http.MethodPost, "/import/backup", bytes.NewReader(rec.Body.Bytes()))
	rec2 := httptest.NewRecorder()
	r2.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body %s", rec2.Code, rec2.Body.String())
	}
	var resp importResponse
	decode(t, rec2, &resp)
	if resp.Imported != 1 {
		t.Fatalf("resp = %+v", resp)
	}

	// Restoring again into the same bank is all duplicates.
	req = httptest.NewRequest(http.MethodPost, "/import/backup", bytes.NewReader(rec.Body.Bytes()))
	rec2 = httptest.NewRecorder()
	r2.ServeHTTP(rec2, req)
	if rec2.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate restore status = %d, body %s", rec2.Code, rec2.Body.String())
	}
}

func TestAssetsServedWithoutBearerToken(t *testing.T) {
	blobs, err := storage.NewFSStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("fs store: %v", err)
	}
	if _, err := blobs.Put("images/probe.png", strings.NewReader("not-a-real-png"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("787"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	gate := auth.NewGate("test-secret", string(hash))

	store := question.NewMemStore()
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(gate.Middleware())
		pr.Get("/questions", ListQuestionsHandler(store))
		pr.Post("/assets", UploadAssetHandler(blobs))
	})
	r.Get("/assets/*", ServeAssetHandler(blobs))

	// An <img> fetch carries no Authorization header.
	rec := do(t, r, http.MethodGet, "/assets/images/probe.png", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("image status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type = %q", ct)
	}
	if rec.Body.String() != "not-a-real-png" {
		t.Fatalf("body = %q", rec.Body.String())
	}

	// The gate still covers everything else.
	if rec := do(t, r, http.MethodGet, "/questions", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("questions without token status = %d", rec.Code)
	}
	if rec := do(t, r, http.MethodPost, "/assets", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("upload without token status = %d", rec.Code)
	}
}

func TestSessionFlowOverHTTP(t *testing.T) {
	store := question.NewMemStore()
	r := testRouter(store)
	for i := 0; i < 3; i++ {
		_, _ = store.Create(context.Background(), question.Question{
			Topic: "T", QuestionText: fmt.Sprintf("practice question %d", i),
			OptionA: "a", OptionB: "b", OptionC: "c", OptionD: "d",
			CorrectAnswer: "B",
		})
	}

	rec := do(t, r, http.MethodPost, "/sessions/", map[string]string{"mode": "practice", "topic": "T"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}
	var v session.View
	decode(t, rec, &v)
	if v.Total != 3 || v.Question == nil {
		t.Fatalf("view = %+v", v)
	}

	rec = do(t, r, http.MethodPost, "/sessions/"+v.ID+"/answers", map[string]string{"selected": "A"})
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d, body %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &v)
	if v.Question.Selected != "A" || !v.Question.Revealed {
		t.Fatalf("answered view = %+v", v.Question)
	}

	rec = do(t, r, http.MethodPost, "/sessions/"+v.ID+"/answers",
		map[string]string{"question_id": "stale-id", "selected": "B"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("stale question_id status = %d", rec.Code)
	}

	rec = do(t, r, http.MethodPost, "/sessions/"+v.ID+"/next", nil)
	decode(t, rec, &v)
	if v.Index != 1 {
		t.Fatalf("index = %d", v.Index)
	}

	rec = do(t, r, http.MethodDelete, "/sessions/"+v.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("end status = %d", rec.Code)
	}
	rec = do(t, r, http.MethodGet, "/sessions/"+v.ID, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after end status = %d", rec.Code)
	}

	rec = do(t, r, http.MethodPost, "/sessions/", map[string]string{"mode": "cram"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad mode status = %d", rec.Code)
	}
}
