package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

const questionCols = `id,topic,question_text,option_a,option_b,option_c,option_d,correct_answer,explanation,
	question_image,option_a_image,option_b_image,option_c_image,option_d_image,explanation_image,
	is_starred,display_order,created_at,updated_at`

func scanQuestion(row interface{ Scan(...interface{}) error }) (Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.Topic, &q.QuestionText, &q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
		&q.CorrectAnswer, &q.Explanation,
		&q.QuestionImage, &q.OptionAImage, &q.OptionBImage, &q.OptionCImage, &q.OptionDImage, &q.ExplanationImage,
		&q.IsStarred, &q.DisplayOrder, &q.CreatedAt, &q.UpdatedAt)
	return q, err
}

func (s *SQLStore) List(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+questionCols+` FROM questions ORDER BY display_order, created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) Get(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+questionCols+` FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Question{}, ErrNotFound
	}
	return q, err
}

func (s *SQLStore) Create(ctx context.Context, q Question) (Question, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Question{}, err
	}
	defer tx.Rollback()
	q, err = insertQuestion(ctx, tx, q, nextOrder(ctx, tx))
	if err != nil {
		return Question{}, err
	}
	if err := tx.Commit(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// BulkCreate inserts the whole batch in one transaction; a failure on any
// row rolls everything back.
func (s *SQLStore) BulkCreate(ctx context.Context, qs []Question) (int, error) {
	if len(qs) == 0 {
		return 0, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	order := nextOrder(ctx, tx)
	for i := range qs {
		if _, err := insertQuestion(ctx, tx, qs[i], order); err != nil {
			return 0, err
		}
		order++
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(qs), nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, q Question, defaultOrder int) (Question, error) {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.DisplayOrder == 0 {
		q.DisplayOrder = defaultOrder
	}
	now := time.Now().Unix()
	q.CreatedAt, q.UpdatedAt = now, now
	_, err := tx.ExecContext(ctx, `INSERT INTO questions (`+questionCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		q.ID, q.Topic, q.QuestionText, q.OptionA, q.OptionB, q.OptionC, q.OptionD,
		q.CorrectAnswer, q.Explanation,
		q.QuestionImage, q.OptionAImage, q.OptionBImage, q.OptionCImage, q.OptionDImage, q.ExplanationImage,
		q.IsStarred, q.DisplayOrder, q.CreatedAt, q.UpdatedAt)
	return q, err
}

func nextOrder(ctx context.Context, tx *sql.Tx) int {
	var max sql.NullInt64
	_ = tx.QueryRowContext(ctx, `SELECT MAX(display_order) FROM questions`).Scan(&max)
	return int(max.Int64) + 1
}

func (s *SQLStore) Update(ctx context.Context, id string, fields Fields) (Question, error) {
	if len(fields) == 0 {
		return s.Get(ctx, id)
	}
	// Deterministic column order keeps the statement stable.
	keys := make([]string, 0, len(fields))
	for k := range fields {
		if !updatable[k] {
			return Question{}, fmt.Errorf("field not updatable: %s", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	set := ""
	args := make([]interface{}, 0, len(keys)+2)
	for i, k := range keys {
		if i > 0 {
			set += ", "
		}
		set += fmt.Sprintf("%s=$%d", k, i+1)
		args = append(args, fields[k])
	}
	set += fmt.Sprintf(", updated_at=$%d", len(keys)+1)
	args = append(args, time.Now().Unix())
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE questions SET %s WHERE id=$%d`, set, len(keys)+2), args...)
	if err != nil {
		return Question{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Question{}, ErrNotFound
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) ToggleStar(ctx context.Context, id string) (Question, error) {
	q, err := s.Get(ctx, id)
	if err != nil {
		return Question{}, err
	}
	return s.Update(ctx, id, Fields{"is_starred": !q.IsStarred})
}
