package di

import (
	"context"
	"fmt"
	"io"

	"github.com/thomas-vilte/mateform/internal/auth"
	"github.com/thomas-vilte/mateform/internal/config"
	"github.com/thomas-vilte/mateform/internal/forms"
	"github.com/thomas-vilte/mateform/internal/i18n"
	"github.com/thomas-vilte/mateform/internal/logger"
	"github.com/thomas-vilte/mateform/internal/services"
	"github.com/thomas-vilte/mateform/internal/ui"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

// Container builds the application services from the configuration.
type Container struct {
	config       *config.Config
	translations *i18n.Translations
	out          io.Writer
	spinners     *ui.SpinnerGroup

	// extra options for the Forms API client, used by tests to point it
	// at a local server
	formsOptions []option.ClientOption

	// Services (lazy initialized)
	formService *services.FormService
}

func NewContainer(cfg *config.Config, trans *i18n.Translations, out io.Writer) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
		out:          out,
		spinners:     ui.NewSpinnerGroup(),
	}
}

// Spinners is shared by the commands that draw progress, so consent can
// clear it.
func (c *Container) Spinners() *ui.SpinnerGroup {
	return c.spinners
}

// CredentialCache reads and clears the token cache without loading client
// secrets.
func (c *Container) CredentialCache() *auth.CredentialCache {
	return auth.NewCredentialCache(auth.NewFileTokenStore(c.config.TokenPath))
}

// Authenticator returns an authenticator using the configured client secrets
// and token cache. noBrowser selects the copy-paste consent flow.
func (c *Container) Authenticator(noBrowser bool) (*auth.Authenticator, error) {
	oauthConfig, err := auth.LoadClientConfig(c.config.ClientSecretsPath)
	if err != nil {
		return nil, err
	}

	messages := &auth.Messages{
		OpenURL:     c.translations.GetMessage("auth.consent_open_url", 0, nil),
		PastePrompt: c.translations.GetMessage("auth.consent_paste_prompt", 0, nil),
		Done:        c.translations.GetMessage("auth.consent_done", 0, nil),
	}

	var consent auth.ConsentFlow
	if noBrowser {
		consent = auth.NewManualFlow(c.out, messages)
	} else {
		consent = auth.NewLoopbackFlow(c.out, messages)
	}

	store := auth.NewFileTokenStore(c.config.TokenPath)
	return auth.NewAuthenticator(oauthConfig, store, &quietConsent{ConsentFlow: consent, spinners: c.spinners}), nil
}

// FormService authenticates and returns a service bound to the Forms API.
func (c *Container) FormService(ctx context.Context, noBrowser bool) (*services.FormService, error) {
	if c.formService != nil {
		return c.formService, nil
	}

	authenticator, err := c.Authenticator(noBrowser)
	if err != nil {
		return nil, err
	}

	token, err := authenticator.ObtainCredential(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug(ctx, "credential ready", "expiry", token.Expiry)

	client, err := forms.NewClient(ctx, authenticator.Client(ctx, token), c.formsOptions...)
	if err != nil {
		return nil, fmt.Errorf("error creating forms client: %w", err)
	}

	c.formService = services.NewFormService(client)
	return c.formService, nil
}

// Previewer returns a service that can only translate, never send.
func (c *Container) Previewer() *services.FormService {
	return services.NewFormService(nil)
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetTranslations returns the translations
func (c *Container) GetTranslations() *i18n.Translations {
	return c.translations
}

// quietConsent stops any running spinner before asking the user for consent.
type quietConsent struct {
	auth.ConsentFlow
	spinners *ui.SpinnerGroup
}

func (q *quietConsent) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	q.spinners.StopActive()
	return q.ConsentFlow.Authorize(ctx, cfg)
}
