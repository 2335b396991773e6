package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/flightprep/quizbank/internal/question"
)

var ErrNotFound = errors.New("session not found")

// Manager owns all live sessions. Star state is never copied into a
// session: views join against the record store so a toggle made while
// practicing shows up immediately.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	store    question.Store

	examSize  int
	passScore int
	rng       *rand.Rand
}

type Options struct {
	ExamSize  int
	PassScore int
	Rand      *rand.Rand // tests inject a seeded source
}

func NewManager(store question.Store, opts Options) *Manager {
	if opts.ExamSize <= 0 {
		opts.ExamSize = 25
	}
	if opts.PassScore <= 0 {
		opts.PassScore = 70
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		sessions:  map[string]*Session{},
		store:     store,
		examSize:  opts.ExamSize,
		passScore: opts.PassScore,
		rng:       opts.Rand,
	}
}

// Start creates a fresh session for the mode. Exam draws a random
// examSize subset of the whole bank (fewer when the bank is smaller),
// starred shuffles the starred subset (an empty pool is a valid state),
// study keeps the stored topic order and practice shuffles it.
func (m *Manager) Start(ctx context.Context, mode Mode, topic string) (*View, error) {
	if !mode.valid() {
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
	if mode.needsTopic() && topic == "" {
		return nil, fmt.Errorf("mode %q requires a topic", mode)
	}
	all, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		ID:      uuid.NewString(),
		Mode:    mode,
		Topic:   topic,
		Answers: map[string]Answer{},
		perms:   map[string][]slot{},
		rng:     m.rng,
	}
	s.Pool = m.drawPool(s, all)
	m.sessions[s.ID] = s
	return m.viewLocked(ctx, s), nil
}

func (m *Manager) drawPool(s *Session, all []question.Question) []question.Question {
	switch s.Mode {
	case ModeExam:
		pool := shuffleQuestions(s.rng, all)
		if len(pool) > m.examSize {
			pool = pool[:m.examSize]
		}
		return pool
	case ModeStarred:
		var starred []question.Question
		for _, q := range all {
			if q.IsStarred {
				starred = append(starred, q)
			}
		}
		return shuffleQuestions(s.rng, starred)
	default:
		var topical []question.Question
		for _, q := range all {
			if q.Topic == s.Topic {
				topical = append(topical, q)
			}
		}
		if s.Mode == ModeStudy {
			return topical // stored, author-defined order
		}
		return shuffleQuestions(s.rng, topical)
	}
}

func (m *Manager) get(id string) (*Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	return m.viewLocked(ctx, s), nil
}

// Answer records the selection for the current question by display
// label. A non-empty questionID must match the current question: it
// guards against a stale client answering after the cursor moved. After
// an exam is submitted the pool is frozen.
func (m *Manager) Answer(ctx context.Context, id, questionID, displayLabel string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if s.Submitted {
		return nil, errors.New("exam already submitted")
	}
	if s.Mode == ModeStudy {
		return nil, errors.New("study mode takes no answers")
	}
	if s.Current >= len(s.Pool) {
		return nil, errors.New("no current question")
	}
	q := s.Pool[s.Current]
	if questionID != "" && questionID != q.ID {
		return nil, fmt.Errorf("question %s is not the current question", questionID)
	}
	original := s.resolve(q, displayLabel)
	if original == "" {
		return nil, fmt.Errorf("unknown option %q", displayLabel)
	}
	s.Answers[q.ID] = Answer{Selected: displayLabel, Original: original}
	return m.viewLocked(ctx, s), nil
}

// Next and Previous move the cursor within pool bounds, no wraparound.
func (m *Manager) Next(ctx context.Context, id string) (*View, error) {
	return m.move(ctx, id, +1)
}

func (m *Manager) Previous(ctx context.Context, id string) (*View, error) {
	return m.move(ctx, id, -1)
}

func (m *Manager) move(ctx context.Context, id string, delta int) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	next := s.Current + delta
	if next >= 0 && next < len(s.Pool) {
		s.Current = next
	}
	return m.viewLocked(ctx, s), nil
}

// Submit freezes an exam at its last question and computes the score.
func (m *Manager) Submit(ctx context.Context, id string) (*View, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.get(id)
	if err != nil {
		return nil, err
	}
	if s.Mode != ModeExam {
		return nil, errors.New("only exams are submitted")
	}
	if len(s.Pool) == 0 {
		return nil, errors.New("empty exam")
	}
	if s.Current != len(s.Pool)-1 {
		return nil, errors.New("submit is only valid on the last question")
	}
	s.Submitted = true
	return m.viewLocked(ctx, s), nil
}

// Retry re-draws a fresh random pool for exams; every other mode keeps
// the pool it already has and only resets progress.
func (m *Manager) Retry(ctx context.Context, id string) (*View, error) {
	m.mu.Lock()
	s, err := m.get(id)
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}

	var all []question.Question
	if s.Mode == ModeExam {
		if all, err = m.store.List(ctx); err != nil {
			return nil, err
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Mode == ModeExam {
		s.Pool = m.drawPool(s, all)
		s.perms = map[string][]slot{}
	}
	s.Answers = map[string]Answer{}
	s.Current = 0
	s.Submitted = false
	return m.viewLocked(ctx, s), nil
}

// End discards a session (return to home).
func (m *Manager) End(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
