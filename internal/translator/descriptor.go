package translator

import (
	"fmt"

	"github.com/thomas-vilte/mateform/internal/models"
	"google.golang.org/api/forms/v1"
)

// Kind identifies which API call a Descriptor stands for.
type Kind int

const (
	KindCreateForm Kind = iota + 1
	KindSetQuizMode
	KindAppendQuestion
)

func (k Kind) String() string {
	switch k {
	case KindCreateForm:
		return "create-form"
	case KindSetQuizMode:
		return "set-quiz-mode"
	case KindAppendQuestion:
		return "append-question"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Descriptor is one pending API call. Form is set for KindCreateForm, Request
// for the other kinds.
type Descriptor struct {
	Kind     Kind
	Index    int
	Question models.QuestionKind
	Release  models.ReleasePolicy
	Form     *forms.Form
	Request  *forms.Request
}

// Body returns the payload that will be sent for this descriptor.
func (d Descriptor) Body() interface{} {
	if d.Kind == KindCreateForm {
		return d.Form
	}
	return d.Request
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindAppendQuestion:
		return fmt.Sprintf("%s[%d] %s", d.Kind, d.Index, d.Question)
	case KindSetQuizMode:
		return fmt.Sprintf("%s release=%s", d.Kind, d.Release)
	default:
		return d.Kind.String()
	}
}

// AnswerKey maps every option of a graded choice question to whether it is a
// correct answer. It returns nil for descriptors without graded options.
func (d Descriptor) AnswerKey() map[string]bool {
	q := d.question()
	if q == nil || q.ChoiceQuestion == nil || q.Grading == nil {
		return nil
	}

	correct := make(map[string]bool)
	if q.Grading.CorrectAnswers != nil {
		for _, a := range q.Grading.CorrectAnswers.Answers {
			correct[a.Value] = true
		}
	}

	key := make(map[string]bool, len(q.ChoiceQuestion.Options))
	for _, opt := range q.ChoiceQuestion.Options {
		key[opt.Value] = correct[opt.Value]
	}
	return key
}

func (d Descriptor) question() *forms.Question {
	if d.Kind != KindAppendQuestion || d.Request == nil || d.Request.CreateItem == nil {
		return nil
	}
	item := d.Request.CreateItem.Item
	if item == nil || item.QuestionItem == nil {
		return nil
	}
	return item.QuestionItem.Question
}
