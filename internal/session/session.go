// Package session holds the ephemeral practice-session state machine:
// pool selection per mode, answer capture against shuffled display
// labels, navigation and exam scoring. Sessions live in memory only;
// the question bank itself stays in the record store.
package session

import (
	"math/rand"

	"github.com/flightprep/quizbank/internal/question"
)

type Mode string

const (
	ModeStudy    Mode = "study"
	ModePractice Mode = "practice"
	ModeStarred  Mode = "starred"
	ModeExam     Mode = "exam"
)

func (m Mode) valid() bool {
	switch m {
	case ModeStudy, ModePractice, ModeStarred, ModeExam:
		return true
	}
	return false
}

// needsTopic reports whether the mode draws its pool from one topic.
func (m Mode) needsTopic() bool { return m == ModeStudy || m == ModePractice }

// Answer records one answered question: the on-screen label the user
// picked and the original option letter it mapped to. Scoring only ever
// compares the original letter.
type Answer struct {
	Selected string `json:"selected"`
	Original string `json:"original"`
}

// slot is one display position of a question's option permutation.
type slot struct {
	Original string // A-D in the stored record
	Text     string
	Image    string
}

// Session is the in-memory state for one practice run.
type Session struct {
	ID        string
	Mode      Mode
	Topic     string
	Pool      []question.Question
	Current   int
	Answers   map[string]Answer
	Submitted bool

	// Option permutations keyed by question id, computed once per
	// session. Recomputing per render would detach previously recorded
	// display labels from their options.
	perms map[string][]slot
	rng   *rand.Rand
}

// shuffle is an in-place Fisher-Yates over a copy.
func shuffleQuestions(rng *rand.Rand, qs []question.Question) []question.Question {
	out := append([]question.Question{}, qs...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// options returns the cached display permutation for q, building it on
// first use from the non-empty options.
func (s *Session) options(q question.Question) []slot {
	if p, ok := s.perms[q.ID]; ok {
		return p
	}
	var p []slot
	for _, letter := range []string{"A", "B", "C", "D"} {
		if text := q.Option(letter); text != "" {
			p = append(p, slot{Original: letter, Text: text, Image: optionImage(q, letter)})
		}
	}
	for i := len(p) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		p[i], p[j] = p[j], p[i]
	}
	s.perms[q.ID] = p
	return p
}

func optionImage(q question.Question, letter string) string {
	switch letter {
	case "A":
		return q.OptionAImage
	case "B":
		return q.OptionBImage
	case "C":
		return q.OptionCImage
	case "D":
		return q.OptionDImage
	}
	return ""
}

// displayLabels are the on-screen letters, assigned over the permuted
// options in order.
var displayLabels = []string{"A", "B", "C", "D"}

// resolve maps a display label back to the original option letter for
// the question's cached permutation. Empty when the label is out of
// range.
func (s *Session) resolve(q question.Question, displayLabel string) string {
	p := s.options(q)
	for i, l := range displayLabels[:len(p)] {
		if l == displayLabel {
			return p[i].Original
		}
	}
	return ""
}

// revealed reports whether feedback shows for the question at index i:
// study mode always, exam mode never before submit, otherwise once the
// question has been answered.
func (s *Session) revealed(i int) bool {
	if s.Mode == ModeStudy {
		return true
	}
	if s.Mode == ModeExam {
		return s.Submitted
	}
	if i < 0 || i >= len(s.Pool) {
		return false
	}
	_, answered := s.Answers[s.Pool[i].ID]
	return answered
}

// Score is the exam result. One question is worth pointsPerQuestion.
type Score struct {
	Correct int  `json:"correct"`
	Total   int  `json:"total"`
	Score   int  `json:"score"`
	Pass    bool `json:"pass"`
}

const pointsPerQuestion = 4

func (s *Session) score(passScore int) Score {
	correct := 0
	for _, q := range s.Pool {
		if a, ok := s.Answers[q.ID]; ok && a.Original == q.CorrectAnswer {
			correct++
		}
	}
	sc := correct * pointsPerQuestion
	return Score{Correct: correct, Total: len(s.Pool), Score: sc, Pass: sc >= passScore}
}
