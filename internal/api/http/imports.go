package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/flightprep/quizbank/internal/eventlog"
	"github.com/flightprep/quizbank/internal/importer"
	"github.com/flightprep/quizbank/internal/question"
)

type importResponse struct {
	Imported int                     `json:"imported"`
	Skipped  []importer.RowRejection `json:"skipped,omitempty"`
	Message  string                  `json:"message"`
}

// importErr maps parser failures to 422 with the rejection detail the
// client renders per row.
func importErr(w http.ResponseWriter, err error) {
	var be *importer.BatchError
	if errors.As(err, &be) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error":   be.Msg,
			"skipped": be.Skipped,
		})
		return
	}
	http.Error(w, err.Error(), http.StatusUnprocessableEntity)
}

func commitImport(w http.ResponseWriter, r *http.Request, store question.Store, events *eventlog.Repo, res importer.Result, what string) {
	n, err := store.BulkCreate(r.Context(), res.Accepted)
	if err != nil {
		http.Error(w, "saving questions failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	events.Record(r.Context(), eventlog.TypeQuestionsImported, what,
		map[string]int{"imported": n, "skipped": len(res.Skipped)})
	writeJSON(w, importResponse{
		Imported: n,
		Skipped:  res.Skipped,
		Message:  fmt.Sprintf("Successfully imported %d questions.", n),
	})
}

// ImportPasteHandler ingests rows pasted straight out of a spreadsheet.
// POST /import/paste {"topic": "...", "data": "..."}
func ImportPasteHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Topic string `json:"topic"`
			Data  string `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Topic) == "" {
			http.Error(w, "topic required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Data) == "" {
			http.Error(w, "no data to import", http.StatusBadRequest)
			return
		}

		existingQs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		res, err := importer.ParsePaste(req.Data, strings.TrimSpace(req.Topic), importer.ExistingTexts(existingQs))
		if err != nil {
			importErr(w, err)
			return
		}
		commitImport(w, r, store, events, res, "paste:"+req.Topic)
	}
}

// ImportFilesHandler ingests one or more Excel workbooks from a
// multipart form; each file name minus extension becomes its topic.
func ImportFilesHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, "multipart form required", http.StatusBadRequest)
			return
		}
		var files []importer.NamedReader
		var closers []interface{ Close() error }
		defer func() {
			for _, c := range closers {
				_ = c.Close()
			}
		}()
		for _, fh := range r.MultipartForm.File["files"] {
			name := strings.ToLower(fh.Filename)
			if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				http.Error(w, "read upload: "+err.Error(), http.StatusBadRequest)
				return
			}
			closers = append(closers, f)
			files = append(files, importer.NamedReader{Name: fh.Filename, R: f})
		}

		existingQs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		res, err := importer.ParseWorkbooks(files, importer.ExistingTexts(existingQs))
		if err != nil {
			importErr(w, err)
			return
		}
		commitImport(w, r, store, events, res, "files")
	}
}

// ImportBackupHandler restores a JSON backup, skipping questions that
// already exist.
func ImportBackupHandler(store question.Store, events *eventlog.Repo) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		existingQs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		fresh, dupes, err := importer.ParseBackup(r.Body, importer.ExistingTexts(existingQs))
		if err != nil {
			importErr(w, err)
			return
		}
		n, err := store.BulkCreate(r.Context(), fresh)
		if err != nil {
			http.Error(w, "saving questions failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), eventlog.TypeQuestionsImported, "backup",
			map[string]int{"imported": n, "duplicates": dupes})
		msg := fmt.Sprintf("Successfully imported %d questions!", n)
		if dupes > 0 {
			msg += fmt.Sprintf(" (%d duplicates skipped)", dupes)
		}
		writeJSON(w, importResponse{Imported: n, Message: msg})
	}
}

// ExportHandler streams the whole bank as a dated backup file.
func ExportHandler(store question.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qs, err := store.List(r.Context())
		if err != nil {
			storeErr(w, err)
			return
		}
		b := importer.Export(qs)
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="quizbank-questions-%s.json"`, time.Now().Format("2006-01-02")))
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		_ = enc.Encode(b)
	}
}
