// Package forms sends translated descriptors to the Google Forms API.
package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/translator"
	formsv1 "google.golang.org/api/forms/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const editURIFormat = "https://docs.google.com/forms/d/%s/edit"

// API is the subset of the Forms service used by Client.
type API interface {
	Create(ctx context.Context, form *formsv1.Form) (*formsv1.Form, error)
	BatchUpdate(ctx context.Context, formID string, req *formsv1.BatchUpdateFormRequest) (*formsv1.BatchUpdateFormResponse, error)
}

type serviceAPI struct {
	svc *formsv1.Service
}

func (s *serviceAPI) Create(ctx context.Context, form *formsv1.Form) (*formsv1.Form, error) {
	return s.svc.Forms.Create(form).Context(ctx).Do()
}

func (s *serviceAPI) BatchUpdate(ctx context.Context, formID string, req *formsv1.BatchUpdateFormRequest) (*formsv1.BatchUpdateFormResponse, error) {
	return s.svc.Forms.BatchUpdate(formID, req).Context(ctx).Do()
}

// SendResult identifies the form a descriptor was applied to.
type SendResult struct {
	FormID       string
	EditURI      string
	ResponderURI string
}

type Client struct {
	api API
}

// NewClient builds a Client on top of an already authorized HTTP client.
func NewClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := formsv1.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating forms service: %w", err)
	}
	return NewClientWithAPI(&serviceAPI{svc: svc}), nil
}

// NewClientWithAPI is used in tests to inject a fake API.
func NewClientWithAPI(api API) *Client {
	return &Client{api: api}
}

// Send performs the API call described by d. formID is ignored for
// create-form and required for every other kind.
func (c *Client) Send(ctx context.Context, d translator.Descriptor, formID string) (SendResult, error) {
	log := logger.FromContext(ctx).With("req.kind", d.Kind.String())

	switch d.Kind {
	case translator.KindCreateForm:
		return c.createForm(ctx, d)

	case translator.KindSetQuizMode:
		if formID == "" {
			return SendResult{}, apperrors.ErrMissingFormID.WithContext("kind", d.Kind)
		}
		if err := c.batch(ctx, formID, d.Request); err != nil {
			return SendResult{}, withAPIStatus(apperrors.ErrSetQuizMode, err).
				WithContext("form_id", formID)
		}
		log.Debug("quiz mode enabled", "form_id", formID, "release", d.Release)

	case translator.KindAppendQuestion:
		if formID == "" {
			return SendResult{}, apperrors.ErrMissingFormID.WithContext("kind", d.Kind)
		}
		if err := c.batch(ctx, formID, d.Request); err != nil {
			return SendResult{}, withAPIStatus(apperrors.ErrAppendQuestion, err).
				WithContext("form_id", formID).
				WithContext("index", d.Index)
		}
		log.Debug("question appended", "form_id", formID, "index", d.Index, "type", d.Question)

	default:
		return SendResult{}, apperrors.ErrUnknownDescriptor.WithContext("kind", d.Kind)
	}

	return SendResult{
		FormID:  formID,
		EditURI: EditURI(formID),
	}, nil
}

func (c *Client) createForm(ctx context.Context, d translator.Descriptor) (SendResult, error) {
	if d.Form == nil || d.Form.Info == nil {
		return SendResult{}, apperrors.ErrUnknownDescriptor.WithContext("kind", d.Kind)
	}
	info := d.Form.Info

	// Create copies only the titles; everything else goes through batchUpdate.
	created, err := c.api.Create(ctx, &formsv1.Form{
		Info: &formsv1.Info{
			Title:         info.Title,
			DocumentTitle: info.DocumentTitle,
		},
	})
	if err != nil {
		return SendResult{}, withAPIStatus(apperrors.ErrCreateForm, err)
	}
	if created == nil || created.FormId == "" {
		return SendResult{}, apperrors.ErrCreateForm.WithContext("reason", "empty form id in response")
	}

	result := SendResult{
		FormID:       created.FormId,
		EditURI:      EditURI(created.FormId),
		ResponderURI: created.ResponderUri,
	}
	logger.Info(ctx, "form created", "form_id", result.FormID)

	if info.Description != "" {
		err := c.batch(ctx, created.FormId, &formsv1.Request{
			UpdateFormInfo: &formsv1.UpdateFormInfoRequest{
				Info:       &formsv1.Info{Description: info.Description},
				UpdateMask: "description",
			},
		})
		if err != nil {
			return result, withAPIStatus(apperrors.ErrCreateForm, err).
				WithContext("form_id", created.FormId).
				WithContext("step", "description")
		}
	}

	return result, nil
}

func (c *Client) batch(ctx context.Context, formID string, req *formsv1.Request) error {
	if req == nil {
		return errors.New("descriptor has no request body")
	}
	_, err := c.api.BatchUpdate(ctx, formID, &formsv1.BatchUpdateFormRequest{
		Requests: []*formsv1.Request{req},
	})
	return err
}

// EditURI returns the editor address of a form.
func EditURI(formID string) string {
	if formID == "" {
		return ""
	}
	return fmt.Sprintf(editURIFormat, formID)
}

func withAPIStatus(base *apperrors.AppError, err error) *apperrors.AppError {
	appErr := base.WithError(err)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		appErr = appErr.WithContext("status", gerr.Code)
	}
	return appErr
}
