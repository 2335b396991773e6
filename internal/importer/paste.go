package importer

import (
	"errors"
	"fmt"
	"strings"
)

// ParsePaste imports delimited text copied out of a spreadsheet. The
// delimiter is tab when the header line carries one (a direct Excel
// copy), comma otherwise.
func ParsePaste(data, topic string, existing TextSet) (Result, error) {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(data), "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return Result{}, errors.New("no data found, paste rows copied from a spreadsheet")
	}

	// The delimiter is decided per line: a line holding a tab came out of
	// Excel, otherwise we assume CSV.
	headerIdx, delim := -1, ","
	window := PasteRules.HeaderWindow
	if window > len(lines) {
		window = len(lines)
	}
	for i := 0; i < window; i++ {
		d := ","
		if strings.Contains(lines[i], "\t") {
			d = "\t"
		}
		if isHeaderRow(strings.Split(lines[i], d), PasteRules) {
			headerIdx, delim = i, d
			break
		}
	}
	if headerIdx == -1 {
		return Result{}, fmt.Errorf("%w: need Question, Answer and Option columns", ErrNoHeader)
	}

	rows := splitLines(lines, delim, len(lines))
	cm := buildColumnMap(rows[headerIdx], PasteRules)
	res := parseRows(rows, headerIdx, cm, topic, existing, PasteRules)

	if len(res.Accepted) == 0 {
		if len(res.Skipped) > 0 {
			return res, &BatchError{Msg: "all rows were skipped", Skipped: res.Skipped}
		}
		return res, errors.New("no valid questions found: need question text, options 1-4 and an A-D answer")
	}
	return res, nil
}

func splitLines(lines []string, delim string, n int) [][]string {
	if n > len(lines) {
		n = len(lines)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		rows[i] = strings.Split(lines[i], delim)
	}
	return rows
}
