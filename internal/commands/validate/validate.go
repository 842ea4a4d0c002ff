package validate

import (
	"context"
	"fmt"

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

type FormPreviewer interface {
	Preview(spec *models.FormSpec) ([]translator.Descriptor, error)
}

type ValidateCommandFactory struct {
	previewer FormPreviewer
}

func NewValidateCommandFactory(previewer FormPreviewer) *ValidateCommandFactory {
	return &ValidateCommandFactory{previewer: previewer}
}

func (f *ValidateCommandFactory) CreateCommand(t *i18n.Translations, _ *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     t.GetMessage("validate.usage", 0, nil),
		ArgsUsage: t.GetMessage("create.args_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = commands.Context(ctx, cmd)
			out := commands.Output(cmd)

			if cmd.Args().Len() == 0 {
				return fmt.Errorf("%s", t.GetMessage("error.document_path_required", 0, nil))
			}

			// Every document is checked even after a failure, so one run reports them all.
			var failed int
			for _, path := range cmd.Args().Slice() {
				counts, err := f.check(path)
				if err != nil {
					failed++
					logger.Debug(ctx, "document rejected", "path", path, "error", err)
					ui.PrintError(out, t.GetMessage("validate.invalid", 0, map[string]interface{}{
						"Path": path,
					}))
					ui.HandleAppError(out, err, t)
					continue
				}
				ui.PrintSuccess(out, t.GetMessage("validate.valid", 0, map[string]interface{}{
					"Path":      path,
					"Questions": counts[translator.KindAppendQuestion],
					"Requests":  counts.total(),
				}))
				if counts[translator.KindSetQuizMode] > 0 {
					ui.PrintKeyValue(out, t.GetMessage("validate.quiz_label", 0, nil), t.GetMessage("validate.yes", 0, nil))
				}
			}

			if failed > 0 {
				return fmt.Errorf("%s", t.GetMessage("validate.failed", failed, map[string]interface{}{
					"Count": failed,
				}))
			}
			return nil
		},
	}
}

type kindCounts map[translator.Kind]int

func (c kindCounts) total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

func (f *ValidateCommandFactory) check(path string) (kindCounts, error) {
	spec, err := formspec.Load(path)
	if err != nil {
		return nil, err
	}
	descriptors, err := f.previewer.Preview(spec)
	if err != nil {
		return nil, err
	}
	counts := make(kindCounts)
	for _, d := range descriptors {
		counts[d.Kind]++
	}
	return counts, nil
}
