package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	cfg "github.com/thomas-vilte/mateform/internal/config"
	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/models"
	"github.com/thomas-vilte/mateform/internal/translator"
	"github.com/urfave/cli/v3"
)

const quizDocument = `{
  "title": "Linux basics",
  "is_quiz": true,
  "quiz_settings": {"release_score": "IMMEDIATE"},
  "questions": [
    {"title": "List files?", "type": "RADIO", "options": ["ls", "pwd", "cd", "touch"], "correct_answers": ["ls"], "points": 1}
  ]
}`

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func setupCreateTest(t *testing.T) (*i18n.Translations, *cfg.Config, string) {
	t.Helper()
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "quiz.json")
	require.NoError(t, os.WriteFile(path, []byte(quizDocument), 0644))

	return translations, &cfg.Config{Language: "en"}, path
}

func runCreate(t *testing.T, factory *CreateCommandFactory, trans *i18n.Translations, config *cfg.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := &cli.Command{
		Name:     "test",
		Writer:   &out,
		Commands: []*cli.Command{factory.CreateCommand(trans, config)},
	}
	err := app.Run(context.Background(), append([]string{"test", "create"}, args...))
	return out.String(), err
}

func TestCreateCommand(t *testing.T) {
	t.Run("should publish and print the form links", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		publisher := new(MockFormPublisher)
		publisher.On("Publish", mock.Anything, mock.MatchedBy(func(s *models.FormSpec) bool {
			return s.Title == "Linux basics" && len(s.Questions) == 1
		}), mock.Anything).Return(&models.FormResult{
			FormID:       "form-1",
			EditURI:      "https://docs.google.com/forms/d/form-1/edit",
			ResponderURI: "https://docs.google.com/forms/d/e/r/viewform",
			Questions:    1,
		}, nil)

		var gotNoBrowser bool
		provider := func(ctx context.Context, noBrowser bool) (FormPublisher, error) {
			gotNoBrowser = noBrowser
			return publisher, nil
		}

		out, err := runCreate(t, NewCreateCommandFactory(new(MockFormPreviewer), provider, nil), trans, config, "--no-browser", path)

		require.NoError(t, err)
		assert.True(t, gotNoBrowser)
		assert.Contains(t, out, "https://docs.google.com/forms/d/form-1/edit")
		assert.Contains(t, out, "https://docs.google.com/forms/d/e/r/viewform")
		publisher.AssertExpectations(t)
	})

	t.Run("should print JSON when asked", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		publisher := new(MockFormPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(&models.FormResult{
			FormID:  "form-1",
			EditURI: "https://docs.google.com/forms/d/form-1/edit",
		}, nil)
		provider := func(context.Context, bool) (FormPublisher, error) { return publisher, nil }

		out, err := runCreate(t, NewCreateCommandFactory(new(MockFormPreviewer), provider, nil), trans, config, "--json", path)

		require.NoError(t, err)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		assert.Equal(t, "form-1", got["form_id"])
		assert.Equal(t, "https://docs.google.com/forms/d/form-1/edit", got["edit_uri"])
	})

	t.Run("should not authenticate on dry run", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		descriptors, err := translator.Translate(&models.FormSpec{
			Title:  "Linux basics",
			IsQuiz: true,
			Questions: []models.QuestionSpec{{
				Title: "List files?", Options: []string{"ls", "pwd"}, CorrectAnswers: []string{"ls"},
			}},
		})
		require.NoError(t, err)

		previewer := new(MockFormPreviewer)
		previewer.On("Preview", mock.Anything).Return(descriptors, nil)
		provider := func(context.Context, bool) (FormPublisher, error) {
			t.Fatal("provider must not be called on dry run")
			return nil, nil
		}

		out, err := runCreate(t, NewCreateCommandFactory(previewer, provider, nil), trans, config, "--dry-run", "--json", path)

		require.NoError(t, err)
		var got plan
		require.NoError(t, json.Unmarshal([]byte(out), &got))
		require.Len(t, got.Steps, 3)
		assert.Equal(t, "create-form", got.Steps[0].Kind)
		assert.Equal(t, "set-quiz-mode", got.Steps[1].Kind)
		assert.Equal(t, "IMMEDIATE", got.Steps[1].Release)
		assert.Equal(t, "append-question", got.Steps[2].Kind)
		require.NotNil(t, got.Steps[2].Index)
		assert.Equal(t, 0, *got.Steps[2].Index)
		assert.Equal(t, "RADIO", got.Steps[2].Type)
	})

	t.Run("should list the plan on a human dry run", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		previewer := new(MockFormPreviewer)
		previewer.On("Preview", mock.Anything).Return([]translator.Descriptor{
			{Kind: translator.KindCreateForm},
			{Kind: translator.KindAppendQuestion, Index: 0, Question: models.KindRadio},
		}, nil)

		out, err := runCreate(t, NewCreateCommandFactory(previewer, nil, nil), trans, config, "--dry-run", path)

		require.NoError(t, err)
		assert.Contains(t, out, "1. create-form")
		assert.Contains(t, out, "2. append-question[0] RADIO")
	})

	t.Run("should fail without a document", func(t *testing.T) {
		trans, config, _ := setupCreateTest(t)

		_, err := runCreate(t, NewCreateCommandFactory(nil, nil, nil), trans, config)

		assert.Error(t, err)
	})

	t.Run("should report invalid documents", func(t *testing.T) {
		trans, config, _ := setupCreateTest(t)
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"title":"x","colour":"red"}`), 0644))

		_, err := runCreate(t, NewCreateCommandFactory(nil, nil, nil), trans, config, path)

		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.TypeInvalidSpec))
	})

	t.Run("should surface authentication failures", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		provider := func(context.Context, bool) (FormPublisher, error) {
			return nil, apperrors.ErrClientSecretsMissing
		}

		_, err := runCreate(t, NewCreateCommandFactory(nil, provider, nil), trans, config, path)

		assert.ErrorIs(t, err, apperrors.ErrClientSecretsMissing)
	})

	t.Run("should point at the partial form on failure", func(t *testing.T) {
		trans, config, path := setupCreateTest(t)
		publisher := new(MockFormPublisher)
		publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(
			&models.FormResult{FormID: "form-1", EditURI: "https://docs.google.com/forms/d/form-1/edit"},
			apperrors.ErrAppendQuestion.WithError(errors.New("boom")).WithContext("index", 0),
		)
		provider := func(context.Context, bool) (FormPublisher, error) { return publisher, nil }

		out, err := runCreate(t, NewCreateCommandFactory(nil, provider, nil), trans, config, "--json", path)

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrAppendQuestion)
		assert.Contains(t, out, "https://docs.google.com/forms/d/form-1/edit")
	})
}
