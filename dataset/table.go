package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// LoadStats counts what happened to each data row during a load.
type LoadStats struct {
	Rows         int `json:"rows"`
	Kept         int `json:"kept"`
	BadTimestamp int `json:"bad_timestamp"`
	Incomplete   int `json:"incomplete"`
}

func (s LoadStats) Dropped() int {
	return s.BadTimestamp + s.Incomplete
}

var errIncomplete = errors.New("incomplete row")

// row gives by-name access to one CSV record.
type row struct {
	index  map[string]int
	fields []string
}

func (r row) str(column string) string {
	i := r.index[column]
	if i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// label returns a non-empty categorical value or errIncomplete.
func (r row) label(column string) (string, error) {
	v := r.str(column)
	if v == "" || strings.EqualFold(v, "nan") {
		return "", errIncomplete
	}
	return v, nil
}

func (r row) number(column string) (float64, error) {
	v := r.str(column)
	if v == "" {
		return 0, errIncomplete
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || !finite(f) {
		return 0, errIncomplete
	}
	return f, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// readTable streams rows of a header-led CSV, checking that every required
// column is present before the first data row is handed to fn.
func readTable(r io.Reader, path string, required []string, fn func(row) error) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return &LoadError{Path: path, Err: errors.New("empty file")}
	}
	if err != nil {
		return &LoadError{Path: path, Err: err}
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}
	for _, column := range required {
		if _, ok := index[column]; !ok {
			return &SchemaError{Path: path, Column: column}
		}
	}

	for {
		fields, err := reader.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return &LoadError{Path: path, Err: fmt.Errorf("parse csv: %w", err)}
		}
		if err := fn(row{index: index, fields: fields}); err != nil {
			return err
		}
	}
}
