package models

import "strings"

// ReleasePolicy controls when quiz scores are shown to respondents.
type ReleasePolicy string

const (
	ReleaseImmediate ReleasePolicy = "IMMEDIATE"
	ReleaseLater     ReleasePolicy = "LATER"
)

// Normalize upper-cases p, so "immediate" and "IMMEDIATE" are the same policy.
func (p ReleasePolicy) Normalize() ReleasePolicy {
	return ReleasePolicy(strings.ToUpper(strings.TrimSpace(string(p))))
}

// Valid reports whether p is a known policy, ignoring case. The zero value is
// treated as IMMEDIATE.
func (p ReleasePolicy) Valid() bool {
	switch p.Normalize() {
	case "", ReleaseImmediate, ReleaseLater:
		return true
	}
	return false
}

// FormSpec is the declarative description of a form, as read from a form document.
type FormSpec struct {
	Title        string         `json:"title" yaml:"title"`
	Description  string         `json:"description,omitempty" yaml:"description,omitempty"`
	IsQuiz       bool           `json:"is_quiz,omitempty" yaml:"is_quiz,omitempty"`
	QuizSettings *QuizSettings  `json:"quiz_settings,omitempty" yaml:"quiz_settings,omitempty"`
	Questions    []QuestionSpec `json:"questions" yaml:"questions"`
}

type QuizSettings struct {
	ReleaseScore ReleasePolicy `json:"release_score,omitempty" yaml:"release_score,omitempty"`
}

// ReleaseScore returns the configured policy, IMMEDIATE when unset.
func (f *FormSpec) ReleaseScore() ReleasePolicy {
	if f.QuizSettings == nil || f.QuizSettings.ReleaseScore.Normalize() == "" {
		return ReleaseImmediate
	}
	return f.QuizSettings.ReleaseScore.Normalize()
}

// QuestionSpec describes a single question. Fields that do not apply to the
// question's type are ignored.
type QuestionSpec struct {
	Title          string     `json:"title" yaml:"title"`
	Description    string     `json:"description,omitempty" yaml:"description,omitempty"`
	Type           string     `json:"type,omitempty" yaml:"type,omitempty"`
	Required       bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Options        []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Shuffle        bool       `json:"shuffle,omitempty" yaml:"shuffle,omitempty"`
	CorrectAnswers []string   `json:"correct_answers,omitempty" yaml:"correct_answers,omitempty"`
	Points         int        `json:"points,omitempty" yaml:"points,omitempty"`
	Feedback       *Feedback  `json:"feedback,omitempty" yaml:"feedback,omitempty"`
	Low            *int       `json:"low,omitempty" yaml:"low,omitempty"`
	High           *int       `json:"high,omitempty" yaml:"high,omitempty"`
	LowLabel       string     `json:"low_label,omitempty" yaml:"low_label,omitempty"`
	HighLabel      string     `json:"high_label,omitempty" yaml:"high_label,omitempty"`
	Image          *ImageSpec `json:"image,omitempty" yaml:"image,omitempty"`
}

// Kind parses the question's type. An empty type means RADIO.
func (q *QuestionSpec) Kind() QuestionKind {
	return ParseQuestionKind(q.Type)
}

// Feedback holds the messages shown to respondents after grading.
type Feedback struct {
	Correct   string `json:"correct,omitempty" yaml:"correct,omitempty"`
	Incorrect string `json:"incorrect,omitempty" yaml:"incorrect,omitempty"`
	General   string `json:"general,omitempty" yaml:"general,omitempty"`
}

// ImageSpec attaches an image to a question. Data is base64 encoded and is
// only used when SourceURI is empty.
type ImageSpec struct {
	SourceURI    string `json:"source_uri,omitempty" yaml:"source_uri,omitempty"`
	Data         string `json:"data,omitempty" yaml:"data,omitempty"`
	AltText      string `json:"alt_text,omitempty" yaml:"alt_text,omitempty"`
	QuestionType string `json:"question_type,omitempty" yaml:"question_type,omitempty"`
}

// QuestionKind is the closed set of question types the translator understands.
type QuestionKind int

const (
	KindUnknown QuestionKind = iota
	KindRadio
	KindCheckbox
	KindDropDown
	KindShortAnswer
	KindParagraph
	KindScale
	KindImage
)

var kindNames = map[QuestionKind]string{
	KindUnknown:     "UNKNOWN",
	KindRadio:       "RADIO",
	KindCheckbox:    "CHECKBOX",
	KindDropDown:    "DROP_DOWN",
	KindShortAnswer: "SHORT_ANSWER",
	KindParagraph:   "PARAGRAPH",
	KindScale:       "SCALE",
	KindImage:       "IMAGE",
}

func (k QuestionKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}

// IsChoice reports whether the kind renders as a list of options.
func (k QuestionKind) IsChoice() bool {
	return k == KindRadio || k == KindCheckbox || k == KindDropDown
}

// ParseQuestionKind maps a wire spelling to a QuestionKind, case-insensitively.
// TEXT and PARAGRAPH_TEXT are accepted for older form documents.
func ParseQuestionKind(raw string) QuestionKind {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "RADIO":
		return KindRadio
	case "CHECKBOX":
		return KindCheckbox
	case "DROP_DOWN":
		return KindDropDown
	case "SHORT_ANSWER", "TEXT":
		return KindShortAnswer
	case "PARAGRAPH", "PARAGRAPH_TEXT":
		return KindParagraph
	case "SCALE":
		return KindScale
	case "IMAGE":
		return KindImage
	default:
		return KindUnknown
	}
}

// FormResult is what a completed run reports back to the caller.
type FormResult struct {
	FormID       string `json:"form_id"`
	EditURI      string `json:"edit_uri"`
	ResponderURI string `json:"responder_uri"`
	Questions    int    `json:"questions"`
}
