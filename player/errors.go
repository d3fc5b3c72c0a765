package player

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure the player can report. Operations
// return these as structured *Error values so callers can decide the
// user-facing messaging without string matching.
type ErrorCode string

const (
	// Validation
	CodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"

	// Not found
	CodeQueueNotFound    ErrorCode = "QUEUE_NOT_FOUND"
	CodeFilterNotFound   ErrorCode = "FILTER_NOT_FOUND"
	CodePlaylistNotFound ErrorCode = "PLAYLIST_NOT_FOUND"
	CodeTrackNotFound    ErrorCode = "TRACK_INDEX_OUT_OF_RANGE"
	CodeLyricsNotFound   ErrorCode = "LYRICS_NOT_FOUND"

	// Policy
	CodeAlreadyConnected ErrorCode = "ALREADY_CONNECTED"
	CodeNotConnected     ErrorCode = "NOT_CONNECTED"
	CodeShuffleTooFew    ErrorCode = "SHUFFLE_TOO_FEW_TRACKS"
	CodeStateUnchanged   ErrorCode = "STATE_UNCHANGED"
	CodeFilterExists     ErrorCode = "FILTER_EXISTS"

	// Resource / transport
	CodeConnectionTimeout ErrorCode = "CONNECTION_TIMEOUT"
	CodeStreamFailed      ErrorCode = "STREAM_FAILED"
	CodeSearchFailed      ErrorCode = "SEARCH_FAILED"
)

// Error is the structured error returned by all player operations. Method
// names the operation that failed so event consumers can render a message
// without inspecting internals.
type Error struct {
	Code    ErrorCode
	Method  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s [%s]: %v", e.Method, e.Message, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s [%s]", e.Method, e.Message, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code ErrorCode, method, format string, v ...interface{}) *Error {
	return &Error{Code: code, Method: method, Message: fmt.Sprintf(format, v...)}
}

func wrapError(code ErrorCode, method string, cause error, format string, v ...interface{}) *Error {
	return &Error{Code: code, Method: method, Message: fmt.Sprintf(format, v...), Err: cause}
}

// Code extracts the ErrorCode from err, or "" if err is not a player error.
func Code(err error) ErrorCode {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return Code(err) == code
}
