package question

import (
	"sort"
	"strings"
)

// Question is the central record of the bank. JSON names follow the
// export/backup wire format, so a backup taken from one deployment
// restores on another.
type Question struct {
	ID           string `json:"id"`
	Topic        string `json:"topic" validate:"required"`
	QuestionText string `json:"question_text" validate:"required"`
	OptionA      string `json:"option_a"`
	OptionB      string `json:"option_b"`
	OptionC      string `json:"option_c"`
	OptionD      string `json:"option_d"`
	// One of A|B|C|D, referring to the option letters above (not any
	// shuffled on-screen order).
	CorrectAnswer string `json:"correct_answer" validate:"required,oneof=A B C D"`
	Explanation   string `json:"explanation"`

	QuestionImage    string `json:"question_image,omitempty"`
	OptionAImage     string `json:"option_a_image,omitempty"`
	OptionBImage     string `json:"option_b_image,omitempty"`
	OptionCImage     string `json:"option_c_image,omitempty"`
	OptionDImage     string `json:"option_d_image,omitempty"`
	ExplanationImage string `json:"explanation_image,omitempty"`

	IsStarred    bool  `json:"is_starred"`
	DisplayOrder int   `json:"display_order"`
	CreatedAt    int64 `json:"created_at,omitempty"`
	UpdatedAt    int64 `json:"updated_at,omitempty"`
}

// Option returns the option text for an original letter A-D.
func (q Question) Option(letter string) string {
	switch letter {
	case "A":
		return q.OptionA
	case "B":
		return q.OptionB
	case "C":
		return q.OptionC
	case "D":
		return q.OptionD
	}
	return ""
}

// NormalizeText is the dedup key for question text: lower-cased and
// whitespace-trimmed.
func NormalizeText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type TopicSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Topics aggregates unique topics with question counts, sorted by name.
func Topics(questions []Question) []TopicSummary {
	counts := map[string]int{}
	for _, q := range questions {
		counts[q.Topic]++
	}
	out := make([]TopicSummary, 0, len(counts))
	for name, n := range counts {
		out = append(out, TopicSummary{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
