package dataset

import "fmt"

// LoadError reports a dataset that could not be read at all: the file is
// missing, is not valid CSV, or holds no usable rows.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load dataset %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// SchemaError reports an expected column missing from the header row.
type SchemaError struct {
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("dataset %s: missing column %q", e.Path, e.Column)
}
