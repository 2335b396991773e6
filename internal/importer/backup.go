package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/flightprep/quizbank/internal/question"
)

const backupVersion = "1.0"

// Backup is the JSON export format. Field names are part of the contract:
// a backup taken before a reinstall must restore afterwards.
type Backup struct {
	Version    string              `json:"version"`
	ExportedAt time.Time           `json:"exported_at"`
	Questions  []question.Question `json:"questions"`
}

func Export(qs []question.Question) Backup {
	return Backup{Version: backupVersion, ExportedAt: time.Now().UTC(), Questions: qs}
}

// ParseBackup reads a backup file, strips ids and audit stamps (the store
// reassigns them on insert) and dedupes against the live set by
// normalized question text. Returns the new records and how many
// duplicates were dropped.
func ParseBackup(r io.Reader, existing TextSet) ([]question.Question, int, error) {
	var b Backup
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, 0, fmt.Errorf("invalid backup file: %w", err)
	}
	if b.Questions == nil {
		return nil, 0, errors.New("invalid file format, expected a questions array")
	}

	var fresh []question.Question
	dupes := 0
	for _, q := range b.Questions {
		norm := question.NormalizeText(q.QuestionText)
		if norm == "" || existing.Has(norm) {
			dupes++
			continue
		}
		q.ID = ""
		q.CreatedAt = 0
		q.UpdatedAt = 0
		fresh = append(fresh, q)
		existing.Add(norm)
	}
	if len(fresh) == 0 {
		return nil, dupes, errors.New("all questions already exist in the database")
	}
	return fresh, dupes, nil
}
