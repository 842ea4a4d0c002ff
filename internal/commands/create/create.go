package create

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/thomas-vilte/mateform/internal/commands"
	cfg "github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/formspec"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/models"
	"github.com/thomas-vilte/mateform/internal/translator"
	"github.com/thomas-vilte/mateform/internal/ui"
	"github.com/urfave/cli/v3"
)

// FormPublisher is a minimal interface for testing purposes
type FormPublisher interface {
	Publish(ctx context.Context, spec *models.FormSpec, progress func(models.ProgressEvent)) (*models.FormResult, error)
}

// FormPreviewer translates a spec without sending it.
type FormPreviewer interface {
	Preview(spec *models.FormSpec) ([]translator.Descriptor, error)
}

// PublisherProvider authenticates and returns a FormPublisher on demand, so
// --dry-run never triggers a consent flow.
type PublisherProvider func(ctx context.Context, noBrowser bool) (FormPublisher, error)

type CreateCommandFactory struct {
	previewer FormPreviewer
	provider  PublisherProvider
	spinners  *ui.SpinnerGroup
}

// NewCreateCommandFactory builds the create command. spinners may be nil, in
// which case progress spinners are not shared with anything else.
func NewCreateCommandFactory(previewer FormPreviewer, provider PublisherProvider, spinners *ui.SpinnerGroup) *CreateCommandFactory {
	if spinners == nil {
		spinners = ui.NewSpinnerGroup()
	}
	return &CreateCommandFactory{
		previewer: previewer,
		provider:  provider,
		spinners:  spinners,
	}
}

func (f *CreateCommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "create",
		Aliases:       []string{"c"},
		Usage:         t.GetMessage("create.usage", 0, nil),
		ArgsUsage:     t.GetMessage("create.args_usage", 0, nil),
		ShellComplete: commands.FlagComplete,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "dry-run",
				Aliases: []string{"n"},
				Usage:   t.GetMessage("create.dry_run_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: t.GetMessage("create.json_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: t.GetMessage("flags.no_browser_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = commands.Context(ctx, cmd)
			log := logger.FromContext(ctx)
			out := commands.Output(cmd)
			start := time.Now()

			if cmd.Args().Len() != 1 {
				return fmt.Errorf("%s", t.GetMessage("error.document_path_required", 0, nil))
			}
			path := cmd.Args().First()
			asJSON := cmd.Bool("json")
			noBrowser := cmd.Bool("no-browser") || config.NoBrowser

			log.Info("executing create command",
				"path", path,
				"dry_run", cmd.Bool("dry-run"),
				"json", asJSON)

			spec, err := formspec.Load(path)
			if err != nil {
				ui.HandleAppError(out, err, t)
				return fmt.Errorf(t.GetMessage("error.load_document", 0, nil)+": %w", err)
			}

			if cmd.Bool("dry-run") {
				descriptors, err := f.previewer.Preview(spec)
				if err != nil {
					ui.HandleAppError(out, err, t)
					return fmt.Errorf(t.GetMessage("error.invalid_document", 0, nil)+": %w", err)
				}
				if asJSON {
					return writeJSON(out, previewJSON(spec, descriptors))
				}
				printPlan(out, t, spec, descriptors)
				return nil
			}

			publisher, err := f.provider(ctx, noBrowser)
			if err != nil {
				log.Error("failed to create form service",
					"error", err,
					"duration_ms", time.Since(start).Milliseconds())
				ui.HandleAppError(out, err, t)
				return fmt.Errorf(t.GetMessage("error.service_creation", 0, nil)+": %w", err)
			}

			var spinner *ui.SmartSpinner
			if !asJSON {
				spinner = f.spinners.NewSpinner(t.GetMessage("create.creating", 0, map[string]interface{}{
					"Title": spec.Title,
				}))
				spinner.Start()
			}

			result, err := publisher.Publish(ctx, spec, func(event models.ProgressEvent) {
				if spinner == nil {
					return
				}
				switch event.Type {
				case models.ProgressFormCreated:
					spinner.Log(t.GetMessage("create.form_created", 0, event.Data))
				case models.ProgressQuizEnabled:
					spinner.Log(t.GetMessage("create.quiz_enabled", 0, event.Data))
				case models.ProgressQuestionAppended:
					spinner.UpdateMessage(t.GetMessage("create.question_appended", 0, event.Data))
				}
			})
			if err != nil {
				if spinner != nil {
					spinner.Error(t.GetMessage("create.failed", 0, nil))
				}
				ui.HandleAppError(out, err, t)
				if result != nil {
					ui.PrintWarning(out, t.GetMessage("create.partial_form", 0, map[string]interface{}{
						"EditURI": result.EditURI,
					}))
				}
				return fmt.Errorf(t.GetMessage("error.publish", 0, nil)+": %w", err)
			}

			log.Info("form created successfully",
				"form_id", result.FormID,
				"count", result.Questions,
				"duration_ms", time.Since(start).Milliseconds())

			if asJSON {
				return writeJSON(out, result)
			}

			spinner.Success(t.GetMessage("create.success", 0, map[string]interface{}{
				"Count": result.Questions,
			}))
			ui.PrintSectionBanner(out, spec.Title)
			ui.PrintKeyValue(out, t.GetMessage("create.form_id_label", 0, nil), result.FormID)
			ui.PrintKeyValue(out, t.GetMessage("create.edit_label", 0, nil), result.EditURI)
			if result.ResponderURI != "" {
				ui.PrintKeyValue(out, t.GetMessage("create.responder_label", 0, nil), result.ResponderURI)
			}
			return nil
		},
	}
}

type planStep struct {
	Kind    string `json:"kind"`
	Index   *int   `json:"index,omitempty"`
	Type    string `json:"type,omitempty"`
	Release string `json:"release,omitempty"`
}

type plan struct {
	Title string     `json:"title"`
	Steps []planStep `json:"steps"`
}

func previewJSON(spec *models.FormSpec, descriptors []translator.Descriptor) plan {
	p := plan{Title: spec.Title, Steps: make([]planStep, 0, len(descriptors))}
	for _, d := range descriptors {
		step := planStep{Kind: d.Kind.String()}
		switch d.Kind {
		case translator.KindSetQuizMode:
			step.Release = string(d.Release)
		case translator.KindAppendQuestion:
			index := d.Index
			step.Index = &index
			step.Type = d.Question.String()
		}
		p.Steps = append(p.Steps, step)
	}
	return p
}

func printPlan(w io.Writer, t *i18n.Translations, spec *models.FormSpec, descriptors []translator.Descriptor) {
	ui.PrintSectionBanner(w, t.GetMessage("create.dry_run_header", 0, map[string]interface{}{
		"Title": spec.Title,
	}))
	for i, d := range descriptors {
		_, _ = fmt.Fprintf(w, "  %d. %s\n", i+1, d)
	}
	_, _ = fmt.Fprintln(w)
	ui.PrintInfo(w, t.GetMessage("create.dry_run_footer", len(descriptors), map[string]interface{}{
		"Count": len(descriptors),
	}))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
