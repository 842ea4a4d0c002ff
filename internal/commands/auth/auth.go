package auth

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/thomas-vilte/mateform/internal/commands"
	cfg "github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/ui"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Authenticator is a minimal interface for testing purposes
type Authenticator interface {
	ObtainCredential(ctx context.Context) (*oauth2.Token, error)
}

// CredentialCache reads and clears the stored credential. It works without
// client secrets, so status and logout never depend on them.
type CredentialCache interface {
	Cached() (*oauth2.Token, error)
	Logout() error
}

type AuthenticatorProvider func(noBrowser bool) (Authenticator, error)

type AuthCommandFactory struct {
	provider AuthenticatorProvider
	cache    CredentialCache
	confirm  func(question string) bool
}

func NewAuthCommandFactory(provider AuthenticatorProvider, cache CredentialCache) *AuthCommandFactory {
	return &AuthCommandFactory{
		provider: provider,
		cache:    cache,
		confirm:  ui.AskConfirmation,
	}
}

func (f *AuthCommandFactory) CreateCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: t.GetMessage("auth.usage", 0, nil),
		Commands: []*cli.Command{
			f.newLoginCommand(t, config),
			f.newLogoutCommand(t),
			f.newStatusCommand(t),
		},
	}
}

func (f *AuthCommandFactory) newLoginCommand(t *i18n.Translations, config *cfg.Config) *cli.Command {
	return &cli.Command{
		Name:          "login",
		Usage:         t.GetMessage("auth.login_usage", 0, nil),
		ShellComplete: commands.FlagComplete,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: t.GetMessage("flags.no_browser_usage", 0, nil),
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   t.GetMessage("auth.force_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx = commands.Context(ctx, cmd)
			out := commands.Output(cmd)

			authenticator, err := f.provider(cmd.Bool("no-browser") || config.NoBrowser)
			if err != nil {
				ui.HandleAppError(out, err, t)
				return err
			}

			if cmd.Bool("force") {
				if err := f.cache.Logout(); err != nil {
					ui.HandleAppError(out, err, t)
					return err
				}
				logger.Debug(ctx, "cached credential discarded before login")
			}

			token, err := authenticator.ObtainCredential(ctx)
			if err != nil {
				ui.HandleAppError(out, err, t)
				return fmt.Errorf(t.GetMessage("error.login", 0, nil)+": %w", err)
			}

			ui.PrintSuccess(out, t.GetMessage("auth.login_success", 0, nil))
			printToken(out, t, token)
			return nil
		},
	}
}

func (f *AuthCommandFactory) newLogoutCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:          "logout",
		Usage:         t.GetMessage("auth.logout_usage", 0, nil),
		ShellComplete: commands.FlagComplete,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   t.GetMessage("auth.yes_usage", 0, nil),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := commands.Output(cmd)

			if !cmd.Bool("yes") && !f.confirm(t.GetMessage("auth.logout_confirm", 0, nil)) {
				ui.PrintInfo(out, t.GetMessage("auth.logout_cancelled", 0, nil))
				return nil
			}

			if err := f.cache.Logout(); err != nil {
				ui.HandleAppError(out, err, t)
				return err
			}

			ui.PrintSuccess(out, t.GetMessage("auth.logout_success", 0, nil))
			return nil
		},
	}
}

func (f *AuthCommandFactory) newStatusCommand(t *i18n.Translations) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: t.GetMessage("auth.status_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			out := commands.Output(cmd)

			token, err := f.cache.Cached()
			if err != nil {
				ui.HandleAppError(out, err, t)
				return err
			}
			if token == nil {
				ui.PrintWarning(out, t.GetMessage("auth.status_none", 0, nil))
				return nil
			}

			switch {
			case token.Valid():
				ui.PrintSuccess(out, t.GetMessage("auth.status_valid", 0, nil))
			case token.RefreshToken != "":
				ui.PrintInfo(out, t.GetMessage("auth.status_refreshable", 0, nil))
			default:
				ui.PrintWarning(out, t.GetMessage("auth.status_expired", 0, nil))
			}
			printToken(out, t, token)
			return nil
		},
	}
}

func printToken(out io.Writer, t *i18n.Translations, token *oauth2.Token) {
	if !token.Expiry.IsZero() {
		ui.PrintKeyValue(out, t.GetMessage("auth.expiry_label", 0, nil), token.Expiry.Local().Format(time.RFC1123))
	}
	refresh := t.GetMessage("auth.yes", 0, nil)
	if token.RefreshToken == "" {
		refresh = t.GetMessage("auth.no", 0, nil)
	}
	ui.PrintKeyValue(out, t.GetMessage("auth.refresh_label", 0, nil), refresh)
}
