package engine

import (
	"errors"
	"fmt"
)

// RuntimeError represents a problem detected while playing a script.
//
// Most runtime errors are recovered where they happen and only logged:
//   - Unknown command: the instruction is skipped
//   - Missing target: the command fails without mutating state
//   - Broken reference: an interrupted animation degrades to a no-op
//   - Unresolved jump id: playback falls back to line 0
//   - Jump limit: a jump cascade is cut short
//
// Script unavailable is returned to the caller: the requested load does
// not start, and the engine keeps whatever script it had.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Line is the index of the affected line, or -1.
	Line int

	// LineID is the affected line's ID, when it has one.
	LineID string

	// Command is the instruction involved, if any.
	Command string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeParse indicates a malformed script row.
	ErrCodeParse RuntimeErrorCode = "PARSE_ERROR"

	// ErrCodeUnknownCommand indicates a dispatch miss.
	ErrCodeUnknownCommand RuntimeErrorCode = "UNKNOWN_COMMAND"

	// ErrCodeMissingTarget indicates a command aimed at an empty slot.
	ErrCodeMissingTarget RuntimeErrorCode = "MISSING_TARGET"

	// ErrCodeBrokenReference indicates an animation target vanished mid-flight.
	ErrCodeBrokenReference RuntimeErrorCode = "BROKEN_REFERENCE"

	// ErrCodeUnresolvedJumpID indicates a jump or start id not in the script.
	ErrCodeUnresolvedJumpID RuntimeErrorCode = "UNRESOLVED_JUMP_ID"

	// ErrCodeJumpLimit indicates too many consecutive jumps without input.
	ErrCodeJumpLimit RuntimeErrorCode = "JUMP_LIMIT"

	// ErrCodeScriptUnavailable indicates a missing or unreadable script source.
	ErrCodeScriptUnavailable RuntimeErrorCode = "SCRIPT_UNAVAILABLE"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.LineID != "" {
		msg += fmt.Sprintf(" (line=%d, id=%s)", e.Line, e.LineID)
	} else if e.Line >= 0 {
		msg += fmt.Sprintf(" (line=%d)", e.Line)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RuntimeError) Unwrap() error { return e.Err }

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsJumpLimitError reports whether err is a jump-limit error.
// Uses errors.As to handle wrapped errors.
func IsJumpLimitError(err error) bool {
	if hasCode(err, ErrCodeJumpLimit) {
		return true
	}
	var je *JumpLimitError
	return errors.As(err, &je)
}

// IsScriptUnavailable reports whether err means a script could not be loaded.
func IsScriptUnavailable(err error) bool {
	return hasCode(err, ErrCodeScriptUnavailable)
}

// IsUnresolvedJump reports whether err is an unresolved-jump warning.
func IsUnresolvedJump(err error) bool {
	return hasCode(err, ErrCodeUnresolvedJumpID)
}

// NewScriptUnavailableError wraps a load failure for name.
func NewScriptUnavailableError(name string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeScriptUnavailable,
		Message: fmt.Sprintf("script %q could not be loaded", name),
		Line:    -1,
		Details: map[string]string{"script": name},
		Err:     err,
	}
}

// NewUnresolvedJumpError reports an id that is not in the script.
func NewUnresolvedJumpError(id string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnresolvedJumpID,
		Message: fmt.Sprintf("line id %q not found, falling back to line 0", id),
		Line:    -1,
		Details: map[string]string{"target": id},
	}
}

// NewJumpLimitError wraps the guard's error with the line that jumped.
func NewJumpLimitError(line int, id string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeJumpLimit,
		Message: "jump cascade stopped",
		Line:    line,
		LineID:  id,
		Err:     err,
	}
}

// NewJumpCycleError reports a cascade that jumped back to a line it had
// already played.
func NewJumpCycleError(line int, id, path string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeJumpLimit,
		Message: "jump cycle detected",
		Line:    line,
		LineID:  id,
		Details: map[string]string{"path": path},
	}
}
