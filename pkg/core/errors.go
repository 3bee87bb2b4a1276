package core

import (
	"errors"
	"fmt"
)

// Stage identifies the step of the report pipeline that produced an error
type Stage int

const (
	StageNone     Stage = iota // No stage
	StageConfig                // Configuration could not be resolved
	StageMerge                 // Fragments could not be read or merged
	StageSnapshot              // Diagnostic JSON snapshot could not be written
	StageRender                // HTML report could not be rendered or written
	StageCopy                  // Media directory could not be copied
	StageCleanup               // JSON fragment directory could not be removed
)

// String returns the string representation of Stage
func (s Stage) String() string {
	switch s {
	case StageNone:
		return "none"
	case StageConfig:
		return "config"
	case StageMerge:
		return "merge"
	case StageSnapshot:
		return "snapshot"
	case StageRender:
		return "render"
	case StageCopy:
		return "copy"
	case StageCleanup:
		return "cleanup"
	default:
		return "unknown"
	}
}

// ReportError is a pipeline failure tagged with the stage and path it happened on
type ReportError struct {
	Stage Stage
	Path  string // File or directory involved, if any
	Cause error
}

// Error implements the error interface
func (e *ReportError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %q: %v", e.Stage, e.Path, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *ReportError) Unwrap() error {
	return e.Cause
}

// NewReportError wraps cause with the given stage and path.
// A nil cause yields a nil error.
func NewReportError(stage Stage, path string, cause error) error {
	if cause == nil {
		return nil
	}
	return &ReportError{Stage: stage, Path: path, Cause: cause}
}

// StageOf returns the stage recorded in err's chain, or StageNone.
func StageOf(err error) Stage {
	var re *ReportError
	if errors.As(err, &re) {
		return re.Stage
	}
	return StageNone
}
