package validation

import (
	"strings"
	"unicode/utf8"

	"tubequiz/internal/adapter/transcriber"
	"tubequiz/internal/adapter/youtube"
	"tubequiz/internal/domain"
	"tubequiz/internal/util"
)

const (
	maxURLLength      = 2048
	maxQuestionLength = 1000
	maxAnswerLength   = 2000
)

// Validator provides request validation functionality
type Validator struct {
	maxUploadBytes int64
}

// NewValidator creates a new validator instance. maxUploadBytes <= 0
// disables the upload size check.
func NewValidator(maxUploadBytes int64) *Validator {
	return &Validator{maxUploadBytes: maxUploadBytes}
}

// ValidateVideoURL checks that url is present and names a YouTube video.
func (v *Validator) ValidateVideoURL(url string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	url = strings.TrimSpace(url)
	switch {
	case url == "":
		errors = append(errors, domain.NewMissingFieldError("url"))
	case len(url) > maxURLLength:
		errors = append(errors, domain.NewOutOfRangeError("url", len(url), 1, maxURLLength))
	default:
		if _, err := youtube.ExtractVideoID(url); err != nil {
			errors = append(errors, domain.NewInvalidFormatError("url", url))
		}
	}

	return errors
}

// ValidateSessionID checks for a canonical ULID.
func (v *Validator) ValidateSessionID(id string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(id) == "" {
		errors = append(errors, domain.NewMissingFieldError("id"))
	} else if !util.IsValidULID(id) {
		errors = append(errors, domain.NewInvalidFormatError("id", id))
	}

	return errors
}

// ValidateQuestion validates a follow-up question for the tutor.
func (v *Validator) ValidateQuestion(question string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	n := utf8.RuneCountInString(strings.TrimSpace(question))
	if n == 0 {
		errors = append(errors, domain.NewMissingFieldError("question"))
	} else if n > maxQuestionLength {
		errors = append(errors, domain.NewOutOfRangeError("question", n, 1, maxQuestionLength))
	}

	return errors
}

// ValidateAnswers validates the submitted answer map. Index bounds are
// checked against the session by the service.
func (v *Validator) ValidateAnswers(answers map[int]string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(answers) == 0 {
		errors = append(errors, domain.NewMissingFieldError("answers"))
		return errors
	}
	for _, a := range answers {
		if n := utf8.RuneCountInString(a); n > maxAnswerLength {
			errors = append(errors, domain.NewOutOfRangeError("answers", n, 0, maxAnswerLength))
			break
		}
	}

	return errors
}

// ValidateUpload validates an uploaded media file's name and size.
func (v *Validator) ValidateUpload(fileName string, size int64) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(fileName) == "" {
		errors = append(errors, domain.NewMissingFieldError("file"))
		return errors
	}
	if !transcriber.IsSupported(fileName) {
		errors = append(errors, domain.ValidationError{
			Field:   "file",
			Code:    domain.CodeInvalidFormat,
			Message: "supported formats: " + strings.Join(transcriber.SupportedExtensions(), ", "),
		})
	}
	if size <= 0 {
		errors = append(errors, domain.NewMissingFieldError("file"))
	} else if v.maxUploadBytes > 0 && size > v.maxUploadBytes {
		errors = append(errors, domain.ValidationError{
			Field:   "file",
			Code:    domain.CodeOutOfRange,
			Message: "file exceeds the upload size limit",
		})
	}

	return errors
}
