package forms

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/models"
	"github.com/thomas-vilte/mateform/internal/translator"
	formsv1 "google.golang.org/api/forms/v1"
	"google.golang.org/api/option"
)

type recordedCall struct {
	Method string
	Path   string
	Body   map[string]interface{}
}

// fakeFormsAPI mimics the REST surface of forms.googleapis.com.
type fakeFormsAPI struct {
	mu       sync.Mutex
	calls    []recordedCall
	failPath string
	failCode int
}

func (f *fakeFormsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	_ = json.Unmarshal(raw, &body)

	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{Method: r.Method, Path: r.URL.Path, Body: body})
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if f.failPath != "" && strings.HasSuffix(r.URL.Path, f.failPath) {
		w.WriteHeader(f.failCode)
		_, _ = io.WriteString(w, `{"error":{"code":400,"message":"Invalid requests[0].createItem","status":"INVALID_ARGUMENT"}}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/forms":
		_, _ = io.WriteString(w, `{"formId":"form-123","responderUri":"https://docs.google.com/forms/d/e/abc/viewform","info":{"title":"t"}}`)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
		_, _ = io.WriteString(w, `{"replies":[{}]}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeFormsAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newTestClient(t *testing.T, api *fakeFormsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := NewClient(context.Background(), srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return client
}

func quizDescriptors(t *testing.T, description string) []translator.Descriptor {
	t.Helper()
	spec := &models.FormSpec{
		Title:       "Linux basics",
		Description: description,
		IsQuiz:      true,
		Questions: []models.QuestionSpec{{
			Title:          "List files?",
			Type:           "RADIO",
			Options:        []string{"ls", "pwd", "cd", "touch"},
			CorrectAnswers: []string{"ls"},
			Points:         2,
		}},
	}
	descriptors, err := translator.Translate(spec)
	require.NoError(t, err)
	return descriptors
}

func TestClient_SendSequence(t *testing.T) {
	api := &fakeFormsAPI{}
	client := newTestClient(t, api)
	ctx := context.Background()
	descriptors := quizDescriptors(t, "")

	created, err := client.Send(ctx, descriptors[0], "")
	require.NoError(t, err)
	assert.Equal(t, "form-123", created.FormID)
	assert.Equal(t, "https://docs.google.com/forms/d/form-123/edit", created.EditURI)
	assert.Equal(t, "https://docs.google.com/forms/d/e/abc/viewform", created.ResponderURI)

	for _, d := range descriptors[1:] {
		res, err := client.Send(ctx, d, created.FormID)
		require.NoError(t, err)
		assert.Equal(t, "form-123", res.FormID)
	}

	require.Len(t, api.recorded(), 3)
	assert.Equal(t, "/v1/forms", api.recorded()[0].Path)
	info := api.recorded()[0].Body["info"].(map[string]interface{})
	assert.Equal(t, "Linux basics", info["title"])
	assert.NotContains(t, info, "description")

	assert.Equal(t, "/v1/forms/form-123:batchUpdate", api.recorded()[1].Path)
	quiz := api.recorded()[1].Body["requests"].([]interface{})[0].(map[string]interface{})
	assert.Contains(t, quiz, "updateSettings")

	create := api.recorded()[2].Body["requests"].([]interface{})[0].(map[string]interface{})["createItem"].(map[string]interface{})
	location := create["location"].(map[string]interface{})
	assert.Equal(t, float64(0), location["index"], "index 0 must be sent explicitly")
}

func TestClient_CreateWithDescription(t *testing.T) {
	api := &fakeFormsAPI{}
	client := newTestClient(t, api)

	descriptors := quizDescriptors(t, "Shell commands quiz")
	_, err := client.Send(context.Background(), descriptors[0], "")
	require.NoError(t, err)

	require.Len(t, api.recorded(), 2)
	update := api.recorded()[1].Body["requests"].([]interface{})[0].(map[string]interface{})["updateFormInfo"].(map[string]interface{})
	assert.Equal(t, "description", update["updateMask"])
	assert.Equal(t, "Shell commands quiz", update["info"].(map[string]interface{})["description"])
}

func TestClient_SendErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("should report the failing question with status", func(t *testing.T) {
		api := &fakeFormsAPI{failPath: ":batchUpdate", failCode: http.StatusBadRequest}
		client := newTestClient(t, api)
		descriptors := quizDescriptors(t, "")

		_, err := client.Send(ctx, descriptors[2], "form-123")

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrAppendQuestion)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, 400, appErr.Context["status"])
		assert.Equal(t, 0, appErr.Context["index"])
		assert.Equal(t, "form-123", appErr.Context["form_id"])
	})

	t.Run("should wrap create failures", func(t *testing.T) {
		api := &fakeFormsAPI{failPath: "/v1/forms", failCode: http.StatusForbidden}
		client := newTestClient(t, api)
		descriptors := quizDescriptors(t, "")

		_, err := client.Send(ctx, descriptors[0], "")

		assert.ErrorIs(t, err, apperrors.ErrCreateForm)
		assert.True(t, apperrors.IsType(err, apperrors.TypeTransport))
	})

	t.Run("should require a form id after create", func(t *testing.T) {
		api := &fakeFormsAPI{}
		client := newTestClient(t, api)
		descriptors := quizDescriptors(t, "")

		_, err := client.Send(ctx, descriptors[1], "")

		assert.ErrorIs(t, err, apperrors.ErrMissingFormID)
		assert.Empty(t, api.recorded())
	})

	t.Run("should reject unknown descriptors", func(t *testing.T) {
		client := NewClientWithAPI(&stubAPI{})

		_, err := client.Send(ctx, translator.Descriptor{Kind: translator.Kind(42)}, "form-123")

		assert.ErrorIs(t, err, apperrors.ErrUnknownDescriptor)
	})

	t.Run("should honour cancellation", func(t *testing.T) {
		client := NewClientWithAPI(&stubAPI{})
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Send(cancelled, quizDescriptors(t, "")[0], "")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

type stubAPI struct{}

func (s *stubAPI) Create(ctx context.Context, _ *formsv1.Form) (*formsv1.Form, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &formsv1.Form{FormId: "stub"}, nil
}

func (s *stubAPI) BatchUpdate(ctx context.Context, _ string, _ *formsv1.BatchUpdateFormRequest) (*formsv1.BatchUpdateFormResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &formsv1.BatchUpdateFormResponse{}, nil
}

func TestEditURI(t *testing.T) {
	assert.Equal(t, "https://docs.google.com/forms/d/x/edit", EditURI("x"))
	assert.Empty(t, EditURI(""))
}
