package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeInvalidSpec    ErrorType = "INVALID_SPEC"
	TypeAuthentication ErrorType = "AUTHENTICATION"
	TypeTransport      ErrorType = "TRANSPORT"
	TypeConfiguration  ErrorType = "CONFIGURATION"
	TypeInternal       ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		msg += " [" + strings.Join(parts, " ") + "]"
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError of the same type and message, so
// errors derived with WithError/WithContext still match their sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{}, len(e.Context)+1)
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// IsType reports whether any AppError in err's chain has type t.
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	for err != nil {
		if errors.As(err, &appErr) {
			if appErr.Type == t {
				return true
			}
			err = appErr.Err
			continue
		}
		return false
	}
	return false
}

// Form document errors
var (
	ErrUnknownQuestionType = NewAppError(TypeInvalidSpec, "unrecognized question type", nil).
				WithSuggestion("Use one of: RADIO, CHECKBOX, DROP_DOWN, SHORT_ANSWER, PARAGRAPH, SCALE, IMAGE")

	ErrEmptyOptions = NewAppError(TypeInvalidSpec, "choice question has no options", nil).
			WithSuggestion("Add at least one entry to \"options\"")

	ErrInvalidOption = NewAppError(TypeInvalidSpec, "choice option is empty or duplicated", nil).
				WithSuggestion("Option values must be non-empty and unique within a question")

	ErrUnknownCorrectAnswer = NewAppError(TypeInvalidSpec, "correct answer is not one of the options", nil).
				WithSuggestion("Every value in \"correct_answers\" must appear verbatim in \"options\"")

	ErrNegativePoints = NewAppError(TypeInvalidSpec, "points must not be negative", nil)

	ErrMissingCorrectAnswers = NewAppError(TypeInvalidSpec, "graded choice question has no correct answers", nil).
					WithSuggestion("Add \"correct_answers\", or drop \"points\" and \"feedback\" to leave the question ungraded")

	ErrMissingTitle = NewAppError(TypeInvalidSpec, "form title is required", nil).
			WithSuggestion("Set \"title\" at the top level of the form document")

	ErrMissingImage = NewAppError(TypeInvalidSpec, "image question has no image source", nil).
			WithSuggestion("Set \"image.source_uri\" or \"image.data\"")

	ErrInvalidImageData = NewAppError(TypeInvalidSpec, "image data is not valid base64", nil)

	ErrInvalidScale = NewAppError(TypeInvalidSpec, "scale bounds out of range", nil).
			WithSuggestion("Scale \"low\" must be 0 or 1 and \"high\" between 2 and 10")

	ErrInvalidReleasePolicy = NewAppError(TypeInvalidSpec, "unrecognized quiz release policy", nil).
				WithSuggestion("Use IMMEDIATE or LATER")

	ErrMalformedDocument = NewAppError(TypeInvalidSpec, "form document could not be parsed", nil).
				WithSuggestion("Check the document syntax; unknown fields are rejected")

	ErrReadDocument = NewAppError(TypeInvalidSpec, "form document could not be read", nil)
)

// Authentication errors
var (
	ErrClientSecretsMissing = NewAppError(TypeAuthentication, "OAuth client secrets file not found", nil).
				WithSuggestion("Download an OAuth client (Desktop app) JSON from the Google Cloud console and run: mateform config set-secrets <path>")

	ErrClientSecretsInvalid = NewAppError(TypeAuthentication, "OAuth client secrets file is invalid", nil)

	ErrTokenRefresh = NewAppError(TypeAuthentication, "failed to refresh cached credential", nil).
			WithSuggestion("Sign in again with: mateform auth login")

	ErrConsentFailed = NewAppError(TypeAuthentication, "authorization was not completed", nil).
				WithSuggestion("Retry with: mateform auth login --no-browser")

	ErrStateMismatch = NewAppError(TypeAuthentication, "authorization response state does not match", nil)

	ErrTokenStore = NewAppError(TypeAuthentication, "failed to access the credential cache", nil)
)

// Transport errors
var (
	ErrCreateForm = NewAppError(TypeTransport, "failed to create form", nil).
			WithSuggestion("Check that the Google Forms API is enabled for your OAuth client project")

	ErrSetQuizMode = NewAppError(TypeTransport, "failed to enable quiz mode", nil)

	ErrAppendQuestion = NewAppError(TypeTransport, "failed to append question", nil).
				WithSuggestion("The form was created without the remaining questions; open the edit link to fix or delete it")

	ErrMissingFormID = NewAppError(TypeTransport, "no form id available for request", nil)
)

// Configuration errors
var (
	ErrConfigMissing = NewAppError(TypeConfiguration, "Configuration is missing", nil).
				WithSuggestion("Run any mateform command once to create ~/.mateform/config.json")

	ErrUnsupportedLanguage = NewAppError(TypeConfiguration, "language not supported", nil).
				WithSuggestion("Supported languages: en, es")
)

var (
	ErrUnknownDescriptor = NewAppError(TypeInternal, "unknown request descriptor kind", nil)
)
