package question

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a question id does not exist (edited or
// deleted elsewhere). Handlers map it to a 404 empty state.
var ErrNotFound = errors.New("question not found")

// Fields is a partial update: column name -> new value. Unknown keys are
// rejected by the store.
type Fields map[string]interface{}

type Store interface {
	// List returns the whole bank ordered by display_order, then created_at.
	List(ctx context.Context) ([]Question, error)
	Get(ctx context.Context, id string) (Question, error)
	// Create assigns the id and, when unset, a display_order at the end.
	Create(ctx context.Context, q Question) (Question, error)
	// BulkCreate commits the whole batch or nothing.
	BulkCreate(ctx context.Context, qs []Question) (int, error)
	Update(ctx context.Context, id string, fields Fields) (Question, error)
	Delete(ctx context.Context, id string) error
	ToggleStar(ctx context.Context, id string) (Question, error)
}

// updatable lists the columns a partial update may touch. id and audit
// stamps stay server-owned.
var updatable = map[string]bool{
	"topic":             true,
	"question_text":     true,
	"option_a":          true,
	"option_b":          true,
	"option_c":          true,
	"option_d":          true,
	"correct_answer":    true,
	"explanation":       true,
	"question_image":    true,
	"option_a_image":    true,
	"option_b_image":    true,
	"option_c_image":    true,
	"option_d_image":    true,
	"explanation_image": true,
	"is_starred":        true,
	"display_order":     true,
}
