package config

import (
	"github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/urfave/cli/v3"
)

type ConfigCommandFactory struct{}

func NewConfigCommandFactory() *ConfigCommandFactory {
	return &ConfigCommandFactory{}
}

func (c *ConfigCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: t.GetMessage("config.usage", 0, nil),
		Commands: []*cli.Command{
			c.newShowCommand(t, cfg),
			c.newSetLangCommand(t, cfg),
			c.newSetSecretsCommand(t, cfg),
			c.newSetBrowserCommand(t, cfg),
		},
	}
}
