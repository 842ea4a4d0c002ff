package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/thomas-vilte/mateform/internal/commands"
	"github.com/thomas-vilte/mateform/internal/config"
	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/ui"
	"github.com/urfave/cli/v3"
)

// argOrFlag returns the first positional argument, or the named flag.
func argOrFlag(command *cli.Command, flag string) string {
	if command.Args().Len() > 0 {
		return command.Args().First()
	}
	return command.String(flag)
}

func (c *ConfigCommandFactory) newSetLangCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "set-lang",
		Usage:         t.GetMessage("config.set_lang_usage", 0, nil),
		ArgsUsage:     "<en|es>",
		ShellComplete: commands.FlagComplete,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "lang",
				Aliases: []string{"l"},
				Usage:   t.GetMessage("config.set_lang_flag_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			lang := argOrFlag(command, "lang")
			if !config.IsSupportedLanguage(lang) {
				return apperrors.ErrUnsupportedLanguage.WithContext("language", lang)
			}

			previous := cfg.Language
			cfg.Language = lang
			if err := config.SaveConfig(cfg); err != nil {
				cfg.Language = previous
				ui.PrintError(commands.Output(command), t.GetMessage("config.save_error", 0, nil))
				return fmt.Errorf(t.GetMessage("config.save_error", 0, nil)+": %w", err)
			}

			ui.PrintSuccess(commands.Output(command), t.GetMessage("config.language_set", 0, map[string]interface{}{
				"Lang": lang,
			}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetSecretsCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:          "set-secrets",
		Usage:         t.GetMessage("config.set_secrets_usage", 0, nil),
		ArgsUsage:     "<client_secrets.json>",
		ShellComplete: commands.FlagComplete,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   t.GetMessage("config.set_secrets_flag_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			out := commands.Output(command)
			path := argOrFlag(command, "path")
			if path == "" {
				return fmt.Errorf("%s", t.GetMessage("config.secrets_path_required", 0, nil))
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("error resolving path: %w", err)
			}
			if _, err := os.Stat(abs); err != nil {
				return apperrors.ErrClientSecretsMissing.WithError(err).WithContext("path", abs)
			}

			previous := cfg.ClientSecretsPath
			cfg.ClientSecretsPath = abs
			if err := config.SaveConfig(cfg); err != nil {
				cfg.ClientSecretsPath = previous
				ui.PrintError(out, t.GetMessage("config.save_error", 0, nil))
				return fmt.Errorf(t.GetMessage("config.save_error", 0, nil)+": %w", err)
			}

			ui.PrintSuccess(out, t.GetMessage("config.secrets_set", 0, map[string]interface{}{
				"Path": abs,
			}))
			return nil
		},
	}
}

func (c *ConfigCommandFactory) newSetBrowserCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "set-no-browser",
		Usage:     t.GetMessage("config.set_no_browser_usage", 0, nil),
		ArgsUsage: "<true|false>",
		Action: func(ctx context.Context, command *cli.Command) error {
			value, err := strconv.ParseBool(command.Args().First())
			if err != nil {
				return fmt.Errorf("invalid boolean value: %q", command.Args().First())
			}

			cfg.NoBrowser = value
			if err := config.SaveConfig(cfg); err != nil {
				return fmt.Errorf(t.GetMessage("config.save_error", 0, nil)+": %w", err)
			}

			ui.PrintSuccess(commands.Output(command), t.GetMessage("config.no_browser_set", 0, map[string]interface{}{
				"Value": value,
			}))
			return nil
		},
	}
}
