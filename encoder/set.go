package encoder

import "fmt"

// Set holds one independent encoder per categorical column.
type Set struct {
	encoders map[string]*Encoder
}

// FitColumns fits every column in values. Each column gets its own
// vocabulary; nothing is shared between columns.
func FitColumns(values map[string][]string) *Set {
	s := &Set{encoders: make(map[string]*Encoder, len(values))}
	for column, v := range values {
		s.encoders[column] = Fit(column, v)
	}
	return s
}

// Encoder returns the encoder for column. Asking for a column that was never
// fitted is a programming error.
func (s *Set) Encoder(column string) *Encoder {
	e, ok := s.encoders[column]
	if !ok {
		panic(fmt.Sprintf("encoder: column %q was not fitted", column))
	}
	return e
}

func (s *Set) Encode(column, value string) (int, error) {
	return s.Encoder(column).Encode(value)
}

func (s *Set) Decode(column string, code int) (string, error) {
	return s.Encoder(column).Decode(code)
}
