package export

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/sadopc/timetracker/internal/store"
)

const csvHeader = "date,minutes,note"

var csvRow = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}),(\d+(?:\.\d+)?),(.*)$`)

// WriteCSV writes the header and one row per entry. The note column is
// always quoted, with inner quotes doubled.
func WriteCSV(w io.Writer, entries []store.Entry) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(csvHeader + "\n")
	for _, e := range entries {
		bw.WriteString(FormatCSVRow(e))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// FormatCSVRow renders one entry without the line terminator.
func FormatCSVRow(e store.Entry) string {
	return e.Date + "," + formatValue(e.Value) + "," + quote(e.Note)
}

// ReadCSV parses rows after the header. Rows that do not match
// date,minutes,note or carry zero minutes are skipped and counted.
func ReadCSV(r io.Reader) (entries []store.Entry, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if first {
			first = false
			line = strings.TrimPrefix(line, "\ufeff")
			if strings.HasPrefix(strings.ToLower(line), "date,") {
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, ok := parseRow(line)
		if !ok {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read csv: %w", err)
	}
	return entries, skipped, nil
}

func parseRow(line string) (store.Entry, bool) {
	m := csvRow.FindStringSubmatch(line)
	if m == nil {
		return store.Entry{}, false
	}
	v, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return store.Entry{}, false
	}
	e := store.Entry{Date: m[1], Value: v, Note: unquote(m[3])}
	if e.Validate() != nil {
		return store.Entry{}, false
	}
	return e, true
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.ReplaceAll(s, `""`, `"`)
}
