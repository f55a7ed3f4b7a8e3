// Package encoder maps categorical column values to dense integer codes.
//
// Codes are assigned in lexicographic (byte) order of the distinct values, so
// the same vocabulary always yields the same codes regardless of row order.
package encoder

import (
	"fmt"
	"slices"
)

// UnknownCategoryError is returned when a value was not part of the fitted
// vocabulary. It is distinct from a known value that matches no rows.
type UnknownCategoryError struct {
	Column string
	Value  string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Column, e.Value)
}

type InvalidCodeError struct {
	Column string
	Code   int
}

func (e *InvalidCodeError) Error() string {
	return fmt.Sprintf("invalid %s code %d", e.Column, e.Code)
}

type Encoder struct {
	column  string
	classes []string
	codes   map[string]int
}

// Fit builds an encoder over the distinct values of one column.
func Fit(column string, values []string) *Encoder {
	seen := make(map[string]struct{}, len(values))
	classes := make([]string, 0)
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		classes = append(classes, v)
	}
	slices.Sort(classes)

	codes := make(map[string]int, len(classes))
	for i, c := range classes {
		codes[c] = i
	}
	return &Encoder{column: column, classes: classes, codes: codes}
}

func (e *Encoder) Column() string { return e.column }

func (e *Encoder) Len() int { return len(e.classes) }

// Classes returns a copy of the vocabulary in code order.
func (e *Encoder) Classes() []string {
	return slices.Clone(e.classes)
}

func (e *Encoder) Encode(value string) (int, error) {
	code, ok := e.codes[value]
	if !ok {
		return 0, &UnknownCategoryError{Column: e.column, Value: value}
	}
	return code, nil
}

func (e *Encoder) Decode(code int) (string, error) {
	if code < 0 || code >= len(e.classes) {
		return "", &InvalidCodeError{Column: e.column, Code: code}
	}
	return e.classes[code], nil
}
