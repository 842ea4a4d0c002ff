package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/thomas-vilte/mateform/internal/cli/registry"
	"github.com/thomas-vilte/mateform/internal/commands"
	authcmd "github.com/thomas-vilte/mateform/internal/commands/auth"
	configcmd "github.com/thomas-vilte/mateform/internal/commands/config"
	"github.com/thomas-vilte/mateform/internal/commands/create"
	"github.com/thomas-vilte/mateform/internal/commands/validate"
	cfg "github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/infrastructure/di"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/update"
	"github.com/thomas-vilte/mateform/internal/version"
	"github.com/urfave/cli/v3"
)

func main() {
	app, checker, err := initializeApp()
	if err != nil {
		log.Fatalf("Error starting mateform: %v", err)
	}

	ctx := context.Background()
	runErr := app.Run(ctx, os.Args)
	checker.Check(ctx, os.Stderr)
	if runErr != nil {
		os.Exit(1)
	}
}

func initializeApp() (*cli.Command, *update.Checker, error) {
	logger.Initialize(false, false)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, nil, fmt.Errorf("could not get the user home directory: %w", err)
	}

	cfgApp, err := cfg.LoadConfig(homeDir)
	if err != nil {
		return nil, nil, err
	}

	translations, err := i18n.NewTranslations(cfgApp.Language, "")
	if err != nil {
		return nil, nil, fmt.Errorf("error loading translations: %w", err)
	}

	checker := update.NewChecker(version.FullVersion(), translations, update.NewGitHubSource(), filepath.Dir(cfgApp.PathFile))

	container := di.NewContainer(cfgApp, translations, os.Stdout)

	publisherProvider := func(ctx context.Context, noBrowser bool) (create.FormPublisher, error) {
		service, err := container.FormService(ctx, noBrowser)
		if err != nil {
			return nil, err
		}
		return service, nil
	}
	authProvider := func(noBrowser bool) (authcmd.Authenticator, error) {
		authenticator, err := container.Authenticator(noBrowser)
		if err != nil {
			return nil, err
		}
		return authenticator, nil
	}

	registerCommand := registry.NewRegistry(cfgApp, translations)

	if err := registerCommand.Register("create", create.NewCreateCommandFactory(container.Previewer(), publisherProvider, container.Spinners())); err != nil {
		return nil, nil, fmt.Errorf("error registering the 'create' command: %w", err)
	}

	if err := registerCommand.Register("validate", validate.NewValidateCommandFactory(container.Previewer())); err != nil {
		return nil, nil, fmt.Errorf("error registering the 'validate' command: %w", err)
	}

	if err := registerCommand.Register("auth", authcmd.NewAuthCommandFactory(authProvider, container.CredentialCache())); err != nil {
		return nil, nil, fmt.Errorf("error registering the 'auth' command: %w", err)
	}

	if err := registerCommand.Register("config", configcmd.NewConfigCommandFactory()); err != nil {
		return nil, nil, fmt.Errorf("error registering the 'config' command: %w", err)
	}

	appCommands := registerCommand.CreateCommands()

	helpCommand := &cli.Command{
		Name:    "help",
		Aliases: []string{"h"},
		Usage:   translations.GetMessage("help_command_usage", 0, nil),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
	}
	appCommands = append(appCommands, helpCommand)

	return &cli.Command{
		Name:                  "mateform",
		Usage:                 translations.GetMessage("app_usage", 0, nil),
		Version:               version.FullVersion(),
		Description:           translations.GetMessage("app_description", 0, nil),
		Flags:                 commands.GlobalFlags(translations),
		Commands:              appCommands,
		EnableShellCompletion: true,
	}, checker, nil
}
