package models

type ProgressEventType string

const (
	ProgressFormCreated      ProgressEventType = "form_created"
	ProgressQuizEnabled      ProgressEventType = "quiz_enabled"
	ProgressQuestionAppended ProgressEventType = "question_appended"
)

type ProgressEvent struct {
	Type    ProgressEventType
	Message string
	Data    map[string]interface{}
}
