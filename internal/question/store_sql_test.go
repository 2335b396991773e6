package question

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/flightprep/quizbank/internal/db"
)

// sqlTestStore opens a named in-memory sqlite database through the real
// driver and schema bootstrap. Shared cache keeps the database alive
// across pooled connections for the life of the test.
func sqlTestStore(t *testing.T) *SQLStore {
	t.Helper()
	dbh, err := db.Open(context.Background(), db.DriverSQLite,
		fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return NewSQLStore(dbh, "sqlite")
}

func TestSQLStoreCreateAssignsIDAndNextOrder(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, Question{
		Topic: "T", QuestionText: "first question", OptionA: "a", CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	second, err := s.Create(ctx, Question{
		Topic: "T", QuestionText: "second question", OptionA: "a", CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Fatalf("ids = %q, %q", first.ID, second.ID)
	}
	if first.DisplayOrder != 1 || second.DisplayOrder != 2 {
		t.Fatalf("orders = %d, %d", first.DisplayOrder, second.DisplayOrder)
	}
}

func TestSQLStoreBulkCreateAllOrNothing(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	// A duplicated primary key inside the batch must roll the whole
	// transaction back, not leave the rows before the failure behind.
	batch := []Question{
		{ID: "q-1", Topic: "T", QuestionText: "survives alone never", OptionA: "a", CorrectAnswer: "A"},
		{ID: "q-1", Topic: "T", QuestionText: "collides on id", OptionA: "a", CorrectAnswer: "B"},
	}
	if _, err := s.BulkCreate(ctx, batch); err == nil {
		t.Fatal("duplicate id in batch must fail")
	}
	qs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(qs) != 0 {
		t.Fatalf("rolled-back batch left %d rows", len(qs))
	}
}

func TestSQLStoreBulkCreateFailureKeepsExistingRows(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	if _, err := s.Create(ctx, Question{
		ID: "q-1", Topic: "T", QuestionText: "already here", OptionA: "a", CorrectAnswer: "A",
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	batch := []Question{
		{Topic: "T", QuestionText: "fresh and valid", OptionA: "a", CorrectAnswer: "A"},
		{ID: "q-1", Topic: "T", QuestionText: "collides with the bank", OptionA: "a", CorrectAnswer: "B"},
	}
	if _, err := s.BulkCreate(ctx, batch); err == nil {
		t.Fatal("colliding batch must fail")
	}
	qs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(qs) != 1 || qs[0].QuestionText != "already here" {
		t.Fatalf("bank after failed batch = %+v", qs)
	}
}

func TestSQLStoreListOrdersByDisplayOrder(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	for _, q := range []Question{
		{Topic: "T", QuestionText: "third", OptionA: "a", CorrectAnswer: "A", DisplayOrder: 3},
		{Topic: "T", QuestionText: "first", OptionA: "a", CorrectAnswer: "A", DisplayOrder: 1},
		{Topic: "T", QuestionText: "second", OptionA: "a", CorrectAnswer: "A", DisplayOrder: 2},
	} {
		if _, err := s.Create(ctx, q); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	qs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if qs[i].QuestionText != want[i] {
			t.Fatalf("order = %v", qs)
		}
	}
}

func TestSQLStoreUpdate(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, Question{
		Topic: "T", QuestionText: "editable", OptionA: "a", CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	updated, err := s.Update(ctx, created.ID, Fields{
		"explanation": "because",
		"is_starred":  true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Explanation != "because" || !updated.IsStarred {
		t.Fatalf("updated = %+v", updated)
	}
	got, err := s.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Explanation != "because" || !got.IsStarred {
		t.Fatalf("persisted = %+v", got)
	}

	if _, err := s.Update(ctx, created.ID, Fields{"id": "hacked"}); err == nil {
		t.Fatal("audit columns must not be updatable")
	}
	if _, err := s.Update(ctx, "missing", Fields{"topic": "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLStoreToggleStarAndDelete(t *testing.T) {
	s := sqlTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, Question{
		Topic: "T", QuestionText: "starrable", OptionA: "a", CorrectAnswer: "A",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	q, err := s.ToggleStar(ctx, created.ID)
	if err != nil || !q.IsStarred {
		t.Fatalf("first toggle = %+v, %v", q, err)
	}
	q, err = s.ToggleStar(ctx, created.ID)
	if err != nil || q.IsStarred {
		t.Fatalf("second toggle = %+v, %v", q, err)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}
