package types

import (
	"fmt"
	"os"
)

// MalformedFileNameError reports a source file whose name does not carry a
// numeric branch token in its second underscore-delimited segment.
type MalformedFileNameError struct {
	Path    string
	Segment string
}

func (e *MalformedFileNameError) Error() string {
	if e.Segment == "" {
		return fmt.Sprintf("malformed source file name %q: missing branch segment", e.Path)
	}
	return fmt.Sprintf("malformed source file name %q: branch segment %q is not numeric", e.Path, e.Segment)
}

// ExtractionError reports a source file that could not be opened or parsed.
// The processor absorbs it unless strict extraction is enabled.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("failed to extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// TemplateMissingError reports that no master template exists at run start.
type TemplateMissingError struct {
	Path string
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("master template not found at %s", e.Path)
}

func (e *TemplateMissingError) Unwrap() error { return os.ErrNotExist }

// PersistenceError reports that the merged workbook could not be written.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to save workbook to %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
