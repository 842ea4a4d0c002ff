package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/urfave/cli/v3"
)

type mockCommandFactory struct {
	name string
}

func (m *mockCommandFactory) CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name: m.name,
	}
}

func newTestRegistry(t *testing.T) (*Registry, *config.Config, *i18n.Translations) {
	t.Helper()
	cfg := &config.Config{}
	translations, err := i18n.NewTranslations("en", "")
	require.NoError(t, err)
	return NewRegistry(cfg, translations), cfg, translations
}

func TestRegistry_Register(t *testing.T) {
	t.Run("should register new factory successfully", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		// act
		err := registry.Register("create", &mockCommandFactory{name: "create"})

		// assert
		assert.NoError(t, err)
		assert.Len(t, registry.factories, 1)
		assert.Contains(t, registry.factories, "create")
	})

	t.Run("should return error when registering duplicate factory", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)
		factory := &mockCommandFactory{name: "create"}

		// act
		_ = registry.Register("create", factory)
		err := registry.Register("create", factory)

		// assert
		require.Error(t, err)
		assert.Contains(t, err.Error(), "create")
		assert.Len(t, registry.factories, 1)
	})
}

func TestRegistry_CreateCommands(t *testing.T) {
	t.Run("should create commands in registration order", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		for _, name := range []string{"create", "validate", "auth", "config"} {
			require.NoError(t, registry.Register(name, &mockCommandFactory{name: name}))
		}

		// Act
		commands := registry.CreateCommands()

		// Assert
		require.Len(t, commands, 4)
		assert.Equal(t, "create", commands[0].Name)
		assert.Equal(t, "validate", commands[1].Name)
		assert.Equal(t, "auth", commands[2].Name)
		assert.Equal(t, "config", commands[3].Name)
	})

	t.Run("should return empty slice when no factories registered", func(t *testing.T) {
		registry, _, _ := newTestRegistry(t)

		assert.Empty(t, registry.CreateCommands())
	})
}

func TestNewRegistry(t *testing.T) {
	registry, cfg, translations := newTestRegistry(t)

	assert.NotNil(t, registry)
	assert.Empty(t, registry.factories)
	assert.Equal(t, cfg, registry.config)
	assert.Equal(t, translations, registry.t)
}
