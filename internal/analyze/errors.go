package analyze

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyFileSet is returned when a file set has no files.
	ErrEmptyFileSet = errors.New("file set is empty")
	// ErrDuplicatePath is returned when two files share a path.
	ErrDuplicatePath = errors.New("duplicate file path")
	// ErrNoReadableFiles is returned when every file was skipped.
	ErrNoReadableFiles = errors.New("no readable files in file set")
)

// AnalysisError reports that a whole analysis run failed.
type AnalysisError struct {
	Project string
	Err     error
}

func (e *AnalysisError) Error() string {
	if e.Project == "" {
		return fmt.Sprintf("analysis failed: %v", e.Err)
	}

	return fmt.Sprintf("analysis of %s failed: %v", e.Project, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
