package dataset

import "errors"

var (
	// ErrNotFound indicates the input file does not exist.
	ErrNotFound = errors.New("dataset not found")
	// ErrParse indicates the input is not a validly delimited table.
	ErrParse = errors.New("malformed dataset")
	// ErrMissingColumn indicates an expected column is absent from the header.
	ErrMissingColumn = errors.New("missing column")
)
