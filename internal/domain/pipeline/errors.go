package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrorCode classifies terminal failures of a pipeline request.
type ErrorCode string

const (
	CodeUnauthorized      ErrorCode = "unauthorized"
	CodeNotFound          ErrorCode = "not_found"
	CodeValidation        ErrorCode = "validation"
	CodeMissingDependency ErrorCode = "missing_dependency"
	CodeQuotaExceeded     ErrorCode = "quota_exceeded"
	CodeMalformedOutput   ErrorCode = "malformed_generation_output"
	CodeGenerationFailure ErrorCode = "generation_service_failure"
	CodeConflict          ErrorCode = "conflict"
	CodeInternal          ErrorCode = "internal"
)

const maxRawExcerptRunes = 500

type Error struct {
	Code    ErrorCode
	Op      string
	Message string
	Cause   error

	// Stage is the missing upstream stage for CodeMissingDependency.
	Stage StageKind
	// Raw is a truncated copy of unparseable service text for CodeMalformedOutput.
	Raw   string
	Quota *QuotaDetails
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	op := strings.TrimSpace(e.Op)
	msg := strings.TrimSpace(e.Message)
	switch {
	case op != "" && msg != "":
		return fmt.Sprintf("%s: %s (%s)", op, msg, e.Code)
	case op != "":
		return fmt.Sprintf("%s (%s)", op, e.Code)
	case msg != "":
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	default:
		return string(e.Code)
	}
}

func (e *Error) Unwrap() error { return e.Cause }

func NewError(code ErrorCode, op, message string, cause error) error {
	return &Error{
		Code:    code,
		Op:      strings.TrimSpace(op),
		Message: strings.TrimSpace(message),
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) error {
	if err == nil {
		return nil
	}
	return NewError(code, op, err.Error(), err)
}

func MissingDependency(op string, stage StageKind) error {
	return &Error{
		Code:    CodeMissingDependency,
		Op:      op,
		Message: fmt.Sprintf("generate %s first", stageLabel(stage)),
		Stage:   stage,
	}
}

func MalformedOutput(op, raw string, cause error) error {
	return &Error{
		Code:    CodeMalformedOutput,
		Op:      op,
		Message: "generation service returned output that could not be parsed",
		Cause:   cause,
		Raw:     Excerpt(raw),
	}
}

func GenerationFailure(op string, cause error) error {
	msg := "generation service call failed"
	if cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, cause)
	}
	return &Error{Code: CodeGenerationFailure, Op: op, Message: msg, Cause: cause}
}

func QuotaExceeded(op string, details QuotaDetails) error {
	return &Error{
		Code:    CodeQuotaExceeded,
		Op:      op,
		Message: fmt.Sprintf("%s plan limit reached", details.Plan),
		Quota:   &details,
	}
}

func NotFound(op, what string) error {
	return NewError(CodeNotFound, op, what+" not found", nil)
}

func Validation(op, msg string) error {
	return NewError(CodeValidation, op, msg, nil)
}

func Unauthorized(op string) error {
	return NewError(CodeUnauthorized, op, "no valid account", nil)
}

func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

func CodeOf(err error) ErrorCode {
	var pe *Error
	if !errors.As(err, &pe) {
		return ""
	}
	return pe.Code
}

func AsError(err error) (*Error, bool) {
	var pe *Error
	if !errors.As(err, &pe) {
		return nil, false
	}
	return pe, true
}

// Excerpt truncates raw text for diagnostics.
func Excerpt(raw string) string {
	raw = strings.TrimSpace(raw)
	if utf8.RuneCountInString(raw) <= maxRawExcerptRunes {
		return raw
	}
	runes := []rune(raw)
	return string(runes[:maxRawExcerptRunes]) + "..."
}

func stageLabel(stage StageKind) string {
	return strings.ReplaceAll(string(stage), "_", " ")
}
