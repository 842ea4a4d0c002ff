// Package translator turns a FormSpec into the ordered list of Forms API
// calls that create it. Translation is pure: it performs no I/O and returns
// either every descriptor or none.
package translator

import (
	"encoding/base64"
	"net/http"
	"strings"

	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/models"
	"google.golang.org/api/forms/v1"
)

const (
	defaultScaleLow  = 1
	defaultScaleHigh = 5
)

// Translate builds the descriptor sequence for spec: create-form, then
// set-quiz-mode when the form is a quiz, then one append-question per
// question with index equal to its position.
func Translate(spec *models.FormSpec) ([]Descriptor, error) {
	if spec == nil || strings.TrimSpace(spec.Title) == "" {
		return nil, apperrors.ErrMissingTitle
	}
	if spec.QuizSettings != nil && !spec.QuizSettings.ReleaseScore.Valid() {
		return nil, apperrors.ErrInvalidReleasePolicy.
			WithContext("release_score", spec.QuizSettings.ReleaseScore)
	}

	size := 1 + len(spec.Questions)
	if spec.IsQuiz {
		size++
	}
	descriptors := make([]Descriptor, 0, size)

	descriptors = append(descriptors, Descriptor{
		Kind: KindCreateForm,
		Form: &forms.Form{
			Info: &forms.Info{
				Title:         spec.Title,
				DocumentTitle: spec.Title,
				Description:   spec.Description,
			},
		},
	})

	if spec.IsQuiz {
		descriptors = append(descriptors, quizModeDescriptor(spec.ReleaseScore()))
	}

	for i := range spec.Questions {
		q := &spec.Questions[i]
		item, err := buildItem(q, spec.IsQuiz)
		if err != nil {
			return nil, withQuestion(err, i, q)
		}
		descriptors = append(descriptors, Descriptor{
			Kind:     KindAppendQuestion,
			Index:    i,
			Question: q.Kind(),
			Request: &forms.Request{
				CreateItem: &forms.CreateItemRequest{
					Item: item,
					Location: &forms.Location{
						Index:           int64(i),
						ForceSendFields: []string{"Index"},
					},
				},
			},
		})
	}

	return descriptors, nil
}

func quizModeDescriptor(release models.ReleasePolicy) Descriptor {
	return Descriptor{
		Kind:    KindSetQuizMode,
		Release: release,
		Request: &forms.Request{
			UpdateSettings: &forms.UpdateSettingsRequest{
				Settings: &forms.FormSettings{
					QuizSettings: &forms.QuizSettings{IsQuiz: true},
				},
				UpdateMask: "quizSettings.isQuiz",
			},
		},
	}
}

func withQuestion(err error, index int, q *models.QuestionSpec) error {
	appErr, ok := err.(*apperrors.AppError)
	if !ok {
		return err
	}
	return appErr.WithContext("question", index).WithContext("title", q.Title)
}

func buildItem(q *models.QuestionSpec, quiz bool) (*forms.Item, error) {
	if q.Points < 0 {
		return nil, apperrors.ErrNegativePoints.WithContext("points", q.Points)
	}

	item := &forms.Item{
		Title:       q.Title,
		Description: q.Description,
	}

	kind := q.Kind()
	switch kind {
	case models.KindImage:
		image, err := buildImage(q.Image)
		if err != nil {
			return nil, err
		}
		question, err := buildQuestion(q, embeddedKind(q), quiz)
		if err != nil {
			return nil, err
		}
		item.QuestionItem = &forms.QuestionItem{Question: question, Image: image}
	case models.KindRadio, models.KindCheckbox, models.KindDropDown,
		models.KindShortAnswer, models.KindParagraph, models.KindScale:
		question, err := buildQuestion(q, kind, quiz)
		if err != nil {
			return nil, err
		}
		item.QuestionItem = &forms.QuestionItem{Question: question}
	case models.KindUnknown:
		return nil, apperrors.ErrUnknownQuestionType.WithContext("type", q.Type)
	default:
		return nil, apperrors.ErrUnknownQuestionType.WithContext("type", q.Type)
	}

	return item, nil
}

// embeddedKind picks the sub-question of an IMAGE question.
func embeddedKind(q *models.QuestionSpec) models.QuestionKind {
	if q.Image != nil && q.Image.QuestionType != "" {
		return models.ParseQuestionKind(q.Image.QuestionType)
	}
	if len(q.Options) > 0 {
		return models.KindRadio
	}
	return models.KindShortAnswer
}

func buildQuestion(q *models.QuestionSpec, kind models.QuestionKind, quiz bool) (*forms.Question, error) {
	question := &forms.Question{Required: q.Required}

	switch kind {
	case models.KindRadio, models.KindCheckbox, models.KindDropDown:
		choice, err := buildChoice(q, kind)
		if err != nil {
			return nil, err
		}
		question.ChoiceQuestion = choice
		if quiz {
			grading, err := choiceGrading(q)
			if err != nil {
				return nil, err
			}
			question.Grading = grading
		}
	case models.KindShortAnswer:
		question.TextQuestion = &forms.TextQuestion{Paragraph: false}
		if quiz {
			question.Grading = buildGrading(q, correctAnswers(q.CorrectAnswers))
		}
	case models.KindParagraph:
		question.TextQuestion = &forms.TextQuestion{Paragraph: true}
		if quiz {
			question.Grading = buildGrading(q, nil)
		}
	case models.KindScale:
		scale, err := buildScale(q)
		if err != nil {
			return nil, err
		}
		question.ScaleQuestion = scale
	case models.KindImage, models.KindUnknown:
		return nil, apperrors.ErrUnknownQuestionType.WithContext("type", kind.String())
	default:
		return nil, apperrors.ErrUnknownQuestionType.WithContext("type", kind.String())
	}

	return question, nil
}

func buildChoice(q *models.QuestionSpec, kind models.QuestionKind) (*forms.ChoiceQuestion, error) {
	if len(q.Options) == 0 {
		return nil, apperrors.ErrEmptyOptions
	}

	seen := make(map[string]struct{}, len(q.Options))
	options := make([]*forms.Option, 0, len(q.Options))
	for _, value := range q.Options {
		if _, dup := seen[value]; dup || value == "" {
			return nil, apperrors.ErrInvalidOption.WithContext("option", value)
		}
		seen[value] = struct{}{}
		options = append(options, &forms.Option{Value: value})
	}

	for _, answer := range q.CorrectAnswers {
		if _, ok := seen[answer]; !ok {
			return nil, apperrors.ErrUnknownCorrectAnswer.WithContext("answer", answer)
		}
	}

	return &forms.ChoiceQuestion{
		Type:    kind.String(),
		Options: options,
		Shuffle: q.Shuffle,
	}, nil
}

// correctAnswers dedupes values keeping their first-seen order.
func correctAnswers(values []string) *forms.CorrectAnswers {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	answers := make([]*forms.CorrectAnswer, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		answers = append(answers, &forms.CorrectAnswer{Value: v})
	}
	return &forms.CorrectAnswers{Answers: answers}
}

// choiceGrading leaves a quiz choice question ungraded when it has no answer
// key. Points or feedback without an answer key are rejected, since choice
// grading requires correct answers.
func choiceGrading(q *models.QuestionSpec) (*forms.Grading, error) {
	answers := correctAnswers(q.CorrectAnswers)
	if answers != nil {
		return buildGrading(q, answers), nil
	}
	if q.Points > 0 || q.Feedback != nil {
		return nil, apperrors.ErrMissingCorrectAnswers.WithContext("points", q.Points)
	}
	return nil, nil
}

func buildGrading(q *models.QuestionSpec, answers *forms.CorrectAnswers) *forms.Grading {
	grading := &forms.Grading{
		PointValue:      int64(q.Points),
		CorrectAnswers:  answers,
		ForceSendFields: []string{"PointValue"},
	}
	if q.Feedback == nil {
		return grading
	}

	if answers != nil {
		grading.WhenRight = feedback(q.Feedback.Correct)
		grading.WhenWrong = feedback(q.Feedback.Incorrect)
	} else {
		grading.GeneralFeedback = feedback(q.Feedback.General)
	}
	return grading
}

func feedback(text string) *forms.Feedback {
	if text == "" {
		return nil
	}
	return &forms.Feedback{Text: text}
}

func buildScale(q *models.QuestionSpec) (*forms.ScaleQuestion, error) {
	low, high := defaultScaleLow, defaultScaleHigh
	if q.Low != nil {
		low = *q.Low
	}
	if q.High != nil {
		high = *q.High
	}
	if (low != 0 && low != 1) || high < 2 || high > 10 {
		return nil, apperrors.ErrInvalidScale.WithContext("low", low).WithContext("high", high)
	}

	return &forms.ScaleQuestion{
		Low:             int64(low),
		High:            int64(high),
		LowLabel:        q.LowLabel,
		HighLabel:       q.HighLabel,
		ForceSendFields: []string{"Low"},
	}, nil
}

// buildImage prefers SourceURI. Inline data is sent as a data: URI, which the
// Forms API may refuse to fetch when the item is appended; a reachable URL is
// the reliable choice.
func buildImage(spec *models.ImageSpec) (*forms.Image, error) {
	if spec == nil || (spec.SourceURI == "" && spec.Data == "") {
		return nil, apperrors.ErrMissingImage
	}

	image := &forms.Image{AltText: spec.AltText, SourceUri: spec.SourceURI}
	if image.SourceUri != "" {
		return image, nil
	}

	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(spec.Data))
	if err != nil {
		return nil, apperrors.ErrInvalidImageData.WithError(err)
	}
	image.SourceUri = "data:" + http.DetectContentType(raw) + ";base64," + base64.StdEncoding.EncodeToString(raw)
	return image, nil
}
