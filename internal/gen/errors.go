package gen

import (
	"errors"
	"fmt"
)

var (
	// ErrAllArtifactsFailed is returned when no artifact could be rendered.
	ErrAllArtifactsFailed = errors.New("every artifact failed to render")
	// ErrUnknownTemplate is returned when a template set lacks a template.
	ErrUnknownTemplate = errors.New("unknown template")
)

// TemplateRenderError reports one artifact that could not be rendered. It
// is fatal for that artifact only.
type TemplateRenderError struct {
	Path     string
	Template string
	Err      error
}

func (e *TemplateRenderError) Error() string {
	return fmt.Sprintf("render %s with %s: %v", e.Path, e.Template, e.Err)
}

func (e *TemplateRenderError) Unwrap() error {
	return e.Err
}
