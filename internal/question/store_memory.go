package question

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemStore keeps the bank in process memory. It backs tests and small
// single-user deployments that don't want a database file.
type MemStore struct {
	mu        sync.RWMutex
	questions map[string]Question
}

func NewMemStore() *MemStore {
	return &MemStore{questions: map[string]Question{}}
}

func (m *MemStore) List(ctx context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, q := range m.questions {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) Get(ctx context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *MemStore) Create(ctx context.Context, q Question) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertLocked(q), nil
}

func (m *MemStore) BulkCreate(ctx context.Context, qs []Question) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range qs {
		m.insertLocked(qs[i])
	}
	return len(qs), nil
}

func (m *MemStore) insertLocked(q Question) Question {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if q.DisplayOrder == 0 {
		max := 0
		for _, e := range m.questions {
			if e.DisplayOrder > max {
				max = e.DisplayOrder
			}
		}
		q.DisplayOrder = max + 1
	}
	now := time.Now().Unix()
	q.CreatedAt, q.UpdatedAt = now, now
	m.questions[q.ID] = q
	return q
}

func (m *MemStore) Update(ctx context.Context, id string, fields Fields) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	for k, v := range fields {
		if !updatable[k] {
			return Question{}, fmt.Errorf("field not updatable: %s", k)
		}
		switch k {
		case "topic":
			q.Topic, _ = v.(string)
		case "question_text":
			q.QuestionText, _ = v.(string)
		case "option_a":
			q.OptionA, _ = v.(string)
		case "option_b":
			q.OptionB, _ = v.(string)
		case "option_c":
			q.OptionC, _ = v.(string)
		case "option_d":
			q.OptionD, _ = v.(string)
		case "correct_answer":
			q.CorrectAnswer, _ = v.(string)
		case "explanation":
			q.Explanation, _ = v.(string)
		case "question_image":
			q.QuestionImage, _ = v.(string)
		case "option_a_image":
			q.OptionAImage, _ = v.(string)
		case "option_b_image":
			q.OptionBImage, _ = v.(string)
		case "option_c_image":
			q.OptionCImage, _ = v.(string)
		case "option_d_image":
			q.OptionDImage, _ = v.(string)
		case "explanation_image":
			q.ExplanationImage, _ = v.(string)
		case "is_starred":
			q.IsStarred, _ = v.(bool)
		case "display_order":
			switch n := v.(type) {
			case int:
				q.DisplayOrder = n
			case int64:
				q.DisplayOrder = int(n)
			case float64:
				q.DisplayOrder = int(n)
			}
		}
	}
	q.UpdatedAt = time.Now().Unix()
	m.questions[id] = q
	return q, nil
}

func (m *MemStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[id]; !ok {
		return ErrNotFound
	}
	delete(m.questions, id)
	return nil
}

func (m *MemStore) ToggleStar(ctx context.Context, id string) (Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	q.IsStarred = !q.IsStarred
	q.UpdatedAt = time.Now().Unix()
	m.questions[id] = q
	return q, nil
}
