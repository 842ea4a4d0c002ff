package config

import (
	"context"
	"os"
	"strconv"

	"github.com/thomas-vilte/mateform/internal/commands"
	"github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/ui"
	"github.com/urfave/cli/v3"
)

func (c *ConfigCommandFactory) newShowCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "show",
		Usage: t.GetMessage("config.show_usage", 0, nil),
		Action: func(ctx context.Context, command *cli.Command) error {
			out := commands.Output(command)

			ui.PrintSectionBanner(out, t.GetMessage("config.current", 0, nil))
			ui.PrintKeyValue(out, t.GetMessage("config.file_label", 0, nil), cfg.PathFile)
			ui.PrintKeyValue(out, t.GetMessage("config.language_label", 0, nil), cfg.Language)
			ui.PrintKeyValue(out, t.GetMessage("config.secrets_label", 0, nil), cfg.ClientSecretsPath)
			ui.PrintKeyValue(out, t.GetMessage("config.token_label", 0, nil), cfg.TokenPath)
			ui.PrintKeyValue(out, t.GetMessage("config.no_browser_label", 0, nil), strconv.FormatBool(cfg.NoBrowser))

			if _, err := os.Stat(cfg.ClientSecretsPath); err != nil {
				ui.PrintWarning(out, t.GetMessage("config.secrets_missing", 0, map[string]interface{}{
					"Path": cfg.ClientSecretsPath,
				}))
			}
			return nil
		},
	}
}
