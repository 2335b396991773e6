// Package eventlog keeps an append-only audit trail of bank mutations:
// imports, deletions, reorders. Reads happen out of band (sqlite shell,
// psql); nothing in the service consumes it on the hot path.
package eventlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

const (
	TypeQuestionsImported = "QuestionsImported"
	TypeQuestionCreated   = "QuestionCreated"
	TypeQuestionDeleted   = "QuestionDeleted"
	TypeQuestionsReorder  = "QuestionsReordered"
)

type Repo struct{ db *sql.DB }

func NewRepo(db *sql.DB) *Repo { return &Repo{db: db} }

// Record appends one event. An audit failure is logged and swallowed:
// it must never fail the user action it describes. Safe on a nil repo
// (deployments without a database).
func (r *Repo) Record(ctx context.Context, typ, key string, payload interface{}) {
	if r == nil || r.db == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("eventlog: marshal %s: %v", typ, err)
		return
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at) VALUES ($1,$2,$3,$4)`,
		typ, key, string(data), time.Now().Unix())
	if err != nil {
		log.Printf("eventlog: append %s: %v", typ, err)
	}
}
