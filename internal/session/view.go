package session

import (
	"context"

	"github.com/flightprep/quizbank/internal/question"
)

type OptionView struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
	// Correct is only set when feedback is revealed.
	Correct bool `json:"correct,omitempty"`
}

type QuestionView struct {
	ID            string       `json:"id"`
	Topic         string       `json:"topic"`
	Text          string       `json:"text"`
	QuestionImage string       `json:"question_image,omitempty"`
	Options       []OptionView `json:"options"`
	Starred       bool         `json:"starred"`
	Selected      string       `json:"selected,omitempty"` // display label
	Revealed      bool         `json:"revealed"`
	// Populated only when revealed; exam answers stay hidden until submit.
	CorrectLabel     string `json:"correct_label,omitempty"`
	Explanation      string `json:"explanation,omitempty"`
	ExplanationImage string `json:"explanation_image,omitempty"`
}

type View struct {
	ID        string         `json:"id"`
	Mode      Mode           `json:"mode"`
	Topic     string         `json:"topic,omitempty"`
	Index     int            `json:"index"`
	Total     int            `json:"total"`
	Answered  []bool         `json:"answered"`
	Submitted bool           `json:"submitted"`
	Question  *QuestionView  `json:"question,omitempty"`
	Questions []QuestionView `json:"questions,omitempty"` // study mode: the whole pool
	Score     *Score         `json:"score,omitempty"`
}

// viewLocked renders the session joined with live star state. Caller
// holds m.mu.
func (m *Manager) viewLocked(ctx context.Context, s *Session) *View {
	starred := map[string]bool{}
	if live, err := m.store.List(ctx); err == nil {
		for _, q := range live {
			starred[q.ID] = q.IsStarred
		}
	}

	v := &View{
		ID:        s.ID,
		Mode:      s.Mode,
		Topic:     s.Topic,
		Index:     s.Current,
		Total:     len(s.Pool),
		Submitted: s.Submitted,
	}
	v.Answered = make([]bool, len(s.Pool))
	for i, q := range s.Pool {
		_, v.Answered[i] = s.Answers[q.ID]
	}

	if s.Mode == ModeStudy {
		v.Questions = make([]QuestionView, len(s.Pool))
		for i, q := range s.Pool {
			v.Questions[i] = m.questionView(s, i, q, starred[q.ID])
		}
		return v
	}

	if s.Submitted {
		v.Score = new(Score)
		*v.Score = s.score(m.passScore)
		// Results view reviews every question with feedback.
		v.Questions = make([]QuestionView, len(s.Pool))
		for i, q := range s.Pool {
			v.Questions[i] = m.questionView(s, i, q, starred[q.ID])
		}
		return v
	}

	if s.Current < len(s.Pool) {
		qv := m.questionView(s, s.Current, s.Pool[s.Current], starred[s.Pool[s.Current].ID])
		v.Question = &qv
	}
	return v
}

func (m *Manager) questionView(s *Session, idx int, q question.Question, isStarred bool) QuestionView {
	opts := s.options(q)
	revealed := s.revealed(idx)
	qv := QuestionView{
		ID:            q.ID,
		Topic:         q.Topic,
		Text:          q.QuestionText,
		QuestionImage: q.QuestionImage,
		Starred:       isStarred,
		Revealed:      revealed,
	}
	if a, ok := s.Answers[q.ID]; ok {
		qv.Selected = a.Selected
	}
	qv.Options = make([]OptionView, len(opts))
	for i, o := range opts {
		ov := OptionView{Label: displayLabels[i], Text: o.Text, Image: o.Image}
		if revealed && o.Original == q.CorrectAnswer {
			ov.Correct = true
			qv.CorrectLabel = displayLabels[i]
		}
		qv.Options[i] = ov
	}
	if revealed {
		qv.Explanation = q.Explanation
		qv.ExplanationImage = q.ExplanationImage
	}
	return qv
}
