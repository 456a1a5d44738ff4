package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeConfig       ErrorCode = "CONFIG_ERROR"

	// Validation detail codes
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"
	CodeOutOfRange    ErrorCode = "OUT_OF_RANGE"

	// Transcript acquisition
	CodeInvalidURL            ErrorCode = "INVALID_URL"
	CodeTranscriptUnavailable ErrorCode = "TRANSCRIPT_UNAVAILABLE"
	CodeUnsupportedMedia      ErrorCode = "UNSUPPORTED_MEDIA"
	CodeTranscriptionFailed   ErrorCode = "TRANSCRIPTION_FAILED"
	CodeMediaConversion       ErrorCode = "MEDIA_CONVERSION_FAILED"

	// Upstream model
	CodeLLMServiceError  ErrorCode = "LLM_SERVICE_ERROR"
	CodeLLMEmptyResponse ErrorCode = "LLM_EMPTY_RESPONSE"

	// Quiz
	CodeQuizParseFailed ErrorCode = "QUIZ_PARSE_FAILED"
	CodeSessionNotFound ErrorCode = "SESSION_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// WithContext attaches a key/value pair that is returned to API clients as error details.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Context: e.Context,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err carries a DomainError with the given code anywhere in its chain.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// CodeOf returns the code of the first DomainError in err's chain, or CodeInternal.
func CodeOf(err error) ErrorCode {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}

// Helper functions for common errors
func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewConfigError(message string) *DomainError {
	return NewError(CodeConfig, message, nil)
}

func NewInvalidURLError(rawURL string) *DomainError {
	return NewError(CodeInvalidURL, "Could not extract a YouTube video ID from the URL", nil).
		WithContext("url", rawURL)
}

func NewTranscriptUnavailableError(videoID string, err error) *DomainError {
	return NewError(CodeTranscriptUnavailable, "No transcript is available for this video", err).
		WithContext("video_id", videoID)
}

func NewUnsupportedMediaError(fileName string) *DomainError {
	return NewError(CodeUnsupportedMedia, fmt.Sprintf("Unsupported media file: %s", fileName), nil)
}

func NewTranscriptionError(err error) *DomainError {
	return NewError(CodeTranscriptionFailed, "Failed to transcribe uploaded media", err)
}

func NewMediaConversionError(err error) *DomainError {
	return NewError(CodeMediaConversion, "Failed to convert uploaded media to audio", err)
}

func NewLLMServiceError(err error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", err)
}

func NewLLMEmptyResponseError(operation string) *DomainError {
	return NewError(CodeLLMEmptyResponse, "LLM returned an empty response", nil).
		WithContext("operation", operation)
}

func NewQuizParseError(blocks int) *DomainError {
	return NewError(CodeQuizParseFailed, "No quiz questions could be parsed from the model output", nil).
		WithContext("blocks", blocks)
}

func NewSessionNotFoundError(id string) *DomainError {
	return NewError(CodeSessionNotFound, fmt.Sprintf("Session not found: %s", id), nil)
}

// ErrorInfo is the serializable summary of a failure kept alongside a successful result.
type ErrorInfo struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ToErrorInfo converts err into an ErrorInfo, keeping the domain code when there is one.
func ToErrorInfo(err error) *ErrorInfo {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return &ErrorInfo{Code: domainErr.Code, Message: domainErr.Error()}
	}
	return &ErrorInfo{Code: CodeInternal, Message: err.Error()}
}

// ValidationError describes one invalid request field.
type ValidationError struct {
	Field   string    `json:"field"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field of a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: "field is required"}
}

func NewInvalidFormatError(field, value string) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: fmt.Sprintf("invalid format: %q", value)}
}

func NewOutOfRangeError(field string, value, min, max int) ValidationError {
	return ValidationError{
		Field:   field,
		Code:    CodeOutOfRange,
		Message: fmt.Sprintf("value %d is out of range [%d, %d]", value, min, max),
	}
}
