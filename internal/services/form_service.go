package services

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/forms"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/models"
	"github.com/thomas-vilte/mateform/internal/translator"
)

// Transport applies one descriptor to the remote form.
type Transport interface {
	Send(ctx context.Context, d translator.Descriptor, formID string) (forms.SendResult, error)
}

type FormService struct {
	transport Transport
}

func NewFormService(transport Transport) *FormService {
	return &FormService{transport: transport}
}

// Preview translates spec without sending anything.
func (s *FormService) Preview(spec *models.FormSpec) ([]translator.Descriptor, error) {
	return translator.Translate(spec)
}

// Publish translates spec and sends the descriptors one at a time, in order.
// The first failure stops the run. When the form had already been created the
// returned result is non-nil and identifies the partial form.
func (s *FormService) Publish(ctx context.Context, spec *models.FormSpec, progress func(models.ProgressEvent)) (*models.FormResult, error) {
	log := logger.FromContext(ctx)
	start := time.Now()

	descriptors, err := translator.Translate(spec)
	if err != nil {
		return nil, err
	}
	log.Debug("spec translated", "count", len(descriptors), "title", spec.Title)

	if progress == nil {
		progress = func(models.ProgressEvent) {}
	}

	var result *models.FormResult
	for _, d := range descriptors {
		formID := ""
		if result != nil {
			formID = result.FormID
		}

		sent, err := s.transport.Send(ctx, d, formID)
		if d.Kind == translator.KindCreateForm && sent.FormID != "" {
			result = &models.FormResult{
				FormID:       sent.FormID,
				EditURI:      sent.EditURI,
				ResponderURI: sent.ResponderURI,
			}
		}
		if err != nil {
			log.Error("publish aborted",
				"error", err,
				"req.kind", d.Kind.String(),
				"form_id", formID,
				"duration_ms", time.Since(start).Milliseconds())
			return result, sendFailure(err, d, formIDOf(result))
		}

		switch d.Kind {
		case translator.KindCreateForm:
			if result == nil {
				return nil, apperrors.ErrCreateForm.WithContext("reason", "empty form id in response")
			}
			progress(models.ProgressEvent{
				Type: models.ProgressFormCreated,
				Data: map[string]interface{}{"FormID": result.FormID},
			})
		case translator.KindSetQuizMode:
			progress(models.ProgressEvent{
				Type: models.ProgressQuizEnabled,
				Data: map[string]interface{}{"Release": string(d.Release)},
			})
		case translator.KindAppendQuestion:
			result.Questions++
			progress(models.ProgressEvent{
				Type: models.ProgressQuestionAppended,
				Data: map[string]interface{}{
					"Index": d.Index + 1,
					"Total": len(spec.Questions),
				},
			})
		}
	}

	log.Info("form published",
		"form_id", result.FormID,
		"count", result.Questions,
		"duration_ms", time.Since(start).Milliseconds())

	return result, nil
}

func formIDOf(result *models.FormResult) string {
	if result == nil {
		return ""
	}
	return result.FormID
}

// sendFailure makes sure the error carries the failing descriptor and the
// form it was applied to, whatever the transport returned.
func sendFailure(err error, d translator.Descriptor, formID string) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.TypeTransport {
		var base *apperrors.AppError
		switch d.Kind {
		case translator.KindCreateForm:
			base = apperrors.ErrCreateForm
		case translator.KindSetQuizMode:
			base = apperrors.ErrSetQuizMode
		default:
			base = apperrors.ErrAppendQuestion
		}
		appErr = base.WithError(err)
	}

	if formID != "" {
		appErr = appErr.WithContext("form_id", formID)
	}
	if d.Kind == translator.KindAppendQuestion {
		appErr = appErr.WithContext("index", d.Index)
	}
	return appErr
}
