// Package importer turns loosely structured tabular input (text pasted
// from a spreadsheet, Excel workbooks, JSON backups) into validated
// question records. Paste and Excel share one row-oriented core; the two
// fronts differ only in header detection rules and validation strictness.
package importer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flightprep/quizbank/internal/question"
)

// ErrNoHeader is returned when no row within the search window carries
// recognizable question/answer column tokens.
var ErrNoHeader = errors.New("header row not found")

// RowRejection reports why one candidate row was not imported.
type RowRejection struct {
	Row      int    `json:"row"`
	Question string `json:"question"` // preview, capped at 60 chars
	Reason   string `json:"reason"`
}

type Result struct {
	Accepted []question.Question `json:"accepted"`
	Skipped  []RowRejection      `json:"skipped"`
}

// BatchError signals a batch where at least one candidate row existed but
// nothing was accepted. It carries the rejection list for display.
type BatchError struct {
	Msg     string
	Skipped []RowRejection
}

func (e *BatchError) Error() string { return e.Msg }

// Rules captures the paste/file asymmetries observed in the original
// import flows. They are preserved, not normalized away.
type Rules struct {
	HeaderWindow      int  // rows scanned for the header
	MinQuestionLen    int  // 0 = non-empty suffices
	RequireOptions    bool // reject rows where all four options are empty
	RequireOptionCol  bool // header must also carry an "option" token
	LooseOptionLabels bool // match "option a".."option d" as option1..4
}

var (
	PasteRules = Rules{HeaderWindow: 10, MinQuestionLen: 5, RequireOptions: true, RequireOptionCol: true}
	FileRules  = Rules{HeaderWindow: 20, LooseOptionLabels: true}
)

func isQuestionCell(c string) bool { return strings.Contains(c, "question") || c == "q" }
func isAnswerCell(c string) bool {
	return strings.Contains(c, "answer") || c == "ans" || c == "a"
}
func isOptionCell(c string) bool { return strings.Contains(c, "option") }

// locateHeaderRow scans at most rules.HeaderWindow rows for one whose
// cells contain both a question token and an answer token (plus an option
// token for pasted input). First qualifying row wins; -1 when absent.
func locateHeaderRow(rows [][]string, rules Rules) int {
	window := len(rows)
	if rules.HeaderWindow < window {
		window = rules.HeaderWindow
	}
	for i := 0; i < window; i++ {
		if isHeaderRow(rows[i], rules) {
			return i
		}
	}
	return -1
}

func isHeaderRow(cells []string, rules Rules) bool {
	var hasQ, hasA, hasOpt bool
	for _, cell := range cells {
		c := strings.ToLower(strings.TrimSpace(cell))
		if isQuestionCell(c) {
			hasQ = true
		}
		if isAnswerCell(c) {
			hasA = true
		}
		if isOptionCell(c) {
			hasOpt = true
		}
	}
	return hasQ && hasA && (hasOpt || !rules.RequireOptionCol)
}

// columnMap holds column positions for the logical fields; -1 = absent.
type columnMap struct {
	question    int
	answer      int
	options     [4]int
	explanation int
}

func buildColumnMap(header []string, rules Rules) columnMap {
	cm := columnMap{question: -1, answer: -1, explanation: -1}
	cm.options = [4]int{-1, -1, -1, -1}
	for i, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		// First question column wins: it carries the actual question
		// text, later matches tend to be restated labels.
		if isQuestionCell(c) && cm.question == -1 {
			cm.question = i
		}
		if isAnswerCell(c) && cm.answer == -1 {
			cm.answer = i
		}
		for n := 0; n < 4; n++ {
			if cm.options[n] != -1 {
				continue
			}
			digit := string(rune('1' + n))
			letter := string(rune('a' + n))
			switch {
			case strings.Contains(c, "option"+digit) || c == "option "+digit:
				cm.options[n] = i
			case rules.LooseOptionLabels && strings.Contains(c, "option") &&
				(strings.Contains(c, digit) || strings.Contains(c, letter)):
				cm.options[n] = i
			}
		}
		if (strings.Contains(c, "explanation") || strings.Contains(c, "explain")) && cm.explanation == -1 {
			cm.explanation = i
		}
	}
	return cm
}

type parsedRow struct {
	question    string
	answerRaw   string
	options     [4]string
	explanation string
}

func parseRow(row []string, cm columnMap) parsedRow {
	cell := func(i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	pr := parsedRow{
		question:    cell(cm.question),
		answerRaw:   cell(cm.answer),
		explanation: cell(cm.explanation),
	}
	for n := 0; n < 4; n++ {
		pr.options[n] = cell(cm.options[n])
	}
	return pr
}

func preview(s string) string {
	r := []rune(s)
	if len(r) > 60 {
		return string(r[:60]) + "..."
	}
	return s
}

// stripNonABCD normalizes a raw answer cell: upper-case, then drop every
// character outside {A,B,C,D}. "b)" -> "B". Anything that doesn't reduce
// to exactly one letter is rejected by the caller.
func stripNonABCD(raw string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r >= 'A' && r <= 'D' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseRows walks the rows below the header, validating each candidate in
// order: length gate, duplicate, answer, options. Accepted texts join the
// existing set immediately so later rows in the same batch dedupe too.
func parseRows(rows [][]string, headerIdx int, cm columnMap, topic string, existing TextSet, rules Rules) Result {
	var res Result
	for i := headerIdx + 1; i < len(rows); i++ {
		rowNum := i + 1 // 1-based, as a spreadsheet user counts
		pr := parseRow(rows[i], cm)

		if pr.question == "" {
			continue // padding, not a candidate row
		}
		if rules.MinQuestionLen > 0 && len([]rune(pr.question)) < rules.MinQuestionLen {
			res.Skipped = append(res.Skipped, RowRejection{rowNum, preview(pr.question), "Question too short"})
			continue
		}
		norm := question.NormalizeText(pr.question)
		if existing.Has(norm) {
			res.Skipped = append(res.Skipped, RowRejection{rowNum, preview(pr.question), "Duplicate question"})
			continue
		}
		answer := stripNonABCD(pr.answerRaw)
		if len(answer) != 1 {
			raw := pr.answerRaw
			if raw == "" {
				raw = "empty"
			}
			res.Skipped = append(res.Skipped, RowRejection{rowNum, preview(pr.question),
				fmt.Sprintf("Invalid answer: %q (must be A, B, C, or D)", raw)})
			continue
		}
		if rules.RequireOptions &&
			pr.options[0] == "" && pr.options[1] == "" && pr.options[2] == "" && pr.options[3] == "" {
			res.Skipped = append(res.Skipped, RowRejection{rowNum, preview(pr.question), "No options provided"})
			continue
		}

		res.Accepted = append(res.Accepted, question.Question{
			Topic:         topic,
			QuestionText:  pr.question,
			OptionA:       pr.options[0],
			OptionB:       pr.options[1],
			OptionC:       pr.options[2],
			OptionD:       pr.options[3],
			CorrectAnswer: answer,
			Explanation:   pr.explanation,
			IsStarred:     false,
		})
		existing.Add(norm)
	}
	return res
}

// TextSet tracks normalized question texts for dedup.
type TextSet map[string]struct{}

func (s TextSet) Has(norm string) bool { _, ok := s[norm]; return ok }
func (s TextSet) Add(norm string)      { s[norm] = struct{}{} }

// ExistingTexts builds the dedup set from the live record set.
func ExistingTexts(qs []question.Question) TextSet {
	s := make(TextSet, len(qs))
	for _, q := range qs {
		s.Add(question.NormalizeText(q.QuestionText))
	}
	return s
}
