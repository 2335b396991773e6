package importer

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ParseWorkbook imports the first sheet of an Excel workbook. The file
// name minus extension becomes the topic for every accepted record.
func ParseWorkbook(r io.Reader, filename string, existing TextSet) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{}, fmt.Errorf("%s has no sheets", filename)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filename, err)
	}

	headerIdx := locateHeaderRow(rows, FileRules)
	if headerIdx == -1 {
		return Result{}, fmt.Errorf("%w in %s", ErrNoHeader, filename)
	}

	topic := strings.TrimSuffix(filename, filepath.Ext(filename))
	cm := buildColumnMap(rows[headerIdx], FileRules)
	return parseRows(rows, headerIdx, cm, topic, existing, FileRules), nil
}

// NamedReader pairs an upload with its file name.
type NamedReader struct {
	Name string
	R    io.Reader
}

// ParseWorkbooks processes files sequentially into one result set; every
// file dedupes against the live set plus everything accepted so far.
func ParseWorkbooks(files []NamedReader, existing TextSet) (Result, error) {
	if len(files) == 0 {
		return Result{}, errors.New("no Excel files found, upload .xlsx files")
	}
	var all Result
	for _, f := range files {
		res, err := ParseWorkbook(f.R, f.Name, existing)
		if err != nil {
			return all, err
		}
		all.Accepted = append(all.Accepted, res.Accepted...)
		all.Skipped = append(all.Skipped, res.Skipped...)
	}
	if len(all.Accepted) == 0 {
		if len(all.Skipped) > 0 {
			return all, &BatchError{Msg: "all rows were skipped", Skipped: all.Skipped}
		}
		return all, errors.New("no valid questions found in the uploaded files")
	}
	return all, nil
}
