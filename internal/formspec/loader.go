// Package formspec reads form documents into models.FormSpec. Unknown fields
// are rejected in every format.
package formspec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/models"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a form document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// StdinPath makes Load read the document from standard input.
const StdinPath = "-"

// legacyDocument is the layout written by the earlier scripts, where the form
// header lives under "form_info".
type legacyDocument struct {
	FormInfo struct {
		Title       string `json:"title" yaml:"title"`
		Description string `json:"description,omitempty" yaml:"description,omitempty"`
	} `json:"form_info" yaml:"form_info"`
	IsQuiz       bool                  `json:"is_quiz,omitempty" yaml:"is_quiz,omitempty"`
	QuizSettings *models.QuizSettings  `json:"quiz_settings,omitempty" yaml:"quiz_settings,omitempty"`
	Questions    []models.QuestionSpec `json:"questions" yaml:"questions"`
}

func (d *legacyDocument) spec() *models.FormSpec {
	return &models.FormSpec{
		Title:        d.FormInfo.Title,
		Description:  d.FormInfo.Description,
		IsQuiz:       d.IsQuiz,
		QuizSettings: d.QuizSettings,
		Questions:    d.Questions,
	}
}

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the document at path. StdinPath reads JSON from stdin.
func Load(path string) (*models.FormSpec, error) {
	var (
		data []byte
		err  error
	)

	if path == StdinPath {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, apperrors.ErrReadDocument.WithError(err).WithContext("path", path)
	}

	spec, err := Parse(data, FormatFromPath(path))
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr.WithContext("path", path)
		}
		return nil, err
	}
	return spec, nil
}

// Parse decodes data in the given format. Both the flat layout and the
// legacy "form_info" layout are accepted.
func Parse(data []byte, format Format) (*models.FormSpec, error) {
	legacy, err := isLegacy(data, format)
	if err != nil {
		return nil, apperrors.ErrMalformedDocument.WithError(err)
	}

	if legacy {
		var doc legacyDocument
		if err := decode(data, format, &doc); err != nil {
			return nil, apperrors.ErrMalformedDocument.WithError(err)
		}
		return doc.spec(), nil
	}

	var spec models.FormSpec
	if err := decode(data, format, &spec); err != nil {
		return nil, apperrors.ErrMalformedDocument.WithError(err)
	}
	return &spec, nil
}

func decode(data []byte, format Format, out interface{}) error {
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("document is empty")
			}
			return err
		}
		var extra interface{}
		if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
			return errors.New("unexpected additional YAML document")
		}
		return nil
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(out); err != nil {
			if errors.Is(err, io.EOF) {
				return errors.New("document is empty")
			}
			return err
		}
		if dec.More() {
			return errors.New("unexpected data after JSON document")
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// isLegacy peeks at the top-level keys without enforcing the schema.
func isLegacy(data []byte, format Format) (bool, error) {
	var top map[string]interface{}
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &top)
	default:
		err = json.Unmarshal(data, &top)
	}
	if err != nil {
		return false, err
	}
	_, ok := top["form_info"]
	return ok, nil
}
