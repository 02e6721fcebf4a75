// Package export encodes the entry collection as JSON or CSV and decodes
// either format back for import.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/sadopc/timetracker/internal/store"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// File names used for exports.
const (
	JSONFile = "timetracker.json"
	CSVFile  = "timetracker.csv"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format, want .json or .csv")
	ErrNotArray          = errors.New("JSON import must be an array of entries")
)

// ParseFormat accepts "json" or "csv" in any case.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}

// ToFile writes entries into dir as timetracker.json or timetracker.csv and
// returns the written path.
func ToFile(entries []store.Entry, dir string, format Format) (string, error) {
	var name string
	switch format {
	case FormatJSON:
		name = JSONFile
	case FormatCSV:
		name = CSVFile
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s file: %w", format, err)
	}
	defer f.Close()

	if format == FormatJSON {
		err = WriteJSON(f, entries)
	} else {
		err = WriteCSV(f, entries)
	}
	if err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	log.Infof("exported %d entries to %s", len(entries), path)
	return path, nil
}

// Result is a decoded import, not yet applied to any store.
type Result struct {
	Format  Format
	Entries []store.Entry
	Skipped int // malformed CSV rows
}

// ImportFile reads and decodes path, dispatching on its extension.
func ImportFile(path string) (Result, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Result{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	res := Result{Format: format}
	if format == FormatJSON {
		res.Entries, err = ReadJSON(f)
	} else {
		res.Entries, res.Skipped, err = ReadCSV(f)
	}
	if err != nil {
		return Result{}, err
	}
	if res.Skipped > 0 {
		log.Warnf("import %s: skipped %d malformed rows", filepath.Base(path), res.Skipped)
	}
	log.Infof("decoded %d entries from %s", len(res.Entries), path)
	return res, nil
}
