package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("original error")
	appErr := ErrCreateForm.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeTransport {
		t.Errorf("Expected type %s, got %s", TypeTransport, appErr.Type)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrAppendQuestion.WithContext("index", 3).WithContext("form_id", "abc")

	if appErr.Context["index"] != 3 {
		t.Errorf("Expected index context 3, got %v", appErr.Context["index"])
	}

	if appErr.Context["form_id"] != "abc" {
		t.Errorf("Expected form_id context 'abc', got %v", appErr.Context["form_id"])
	}

	if len(ErrAppendQuestion.Context) != 0 {
		t.Error("WithContext must not mutate the sentinel")
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "Simple error without underlying error",
			err:  ErrEmptyOptions,
			want: "INVALID_SPEC: choice question has no options",
		},
		{
			name: "Error with underlying error",
			err:  ErrCreateForm.WithError(errors.New("googleapi: Error 403")),
			want: "TRANSPORT: failed to create form (googleapi: Error 403)",
		},
		{
			name: "Error with sorted context",
			err:  ErrAppendQuestion.WithContext("index", 2).WithContext("form_id", "f1"),
			want: "TRANSPORT: failed to append question [form_id=f1 index=2]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAppError_Is(t *testing.T) {
	derived := ErrUnknownCorrectAnswer.WithContext("question", 1).WithContext("answer", "rm")
	wrapped := fmt.Errorf("translate: %w", derived)

	if !errors.Is(wrapped, ErrUnknownCorrectAnswer) {
		t.Error("expected derived error to match its sentinel")
	}

	if errors.Is(wrapped, ErrEmptyOptions) {
		t.Error("expected no match against a different sentinel")
	}
}

func TestIsType(t *testing.T) {
	cause := ErrTokenRefresh.WithError(errors.New("invalid_grant"))
	outer := ErrConsentFailed.WithError(cause)

	if !IsType(outer, TypeAuthentication) {
		t.Error("expected authentication type")
	}
	if IsType(outer, TypeTransport) {
		t.Error("did not expect transport type")
	}
	if IsType(errors.New("plain"), TypeInternal) {
		t.Error("plain errors have no type")
	}
	if !IsType(fmt.Errorf("wrap: %w", ErrNegativePoints), TypeInvalidSpec) {
		t.Error("expected wrapped invalid spec to be detected")
	}
}

func TestAppError_WithSuggestion(t *testing.T) {
	appErr := ErrNegativePoints.WithSuggestion("use 0 or more")
	if appErr.Suggestion != "use 0 or more" {
		t.Errorf("unexpected suggestion %q", appErr.Suggestion)
	}
	if ErrNegativePoints.Suggestion != "" {
		t.Error("sentinel suggestion must stay empty")
	}
}
