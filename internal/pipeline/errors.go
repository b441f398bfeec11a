package pipeline

import "errors"

// ErrDuplicateProject is returned when a batch names the same project twice.
var ErrDuplicateProject = errors.New("duplicate project identity")
