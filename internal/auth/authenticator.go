// Package auth obtains and caches the OAuth credential used to call the
// Forms API.
package auth

import (
	"context"
	"net/http"
	"os"
	"sync"

	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/forms/v1"
)

// Scopes requested by mateform. forms.body is enough to create and edit forms.
var Scopes = []string{forms.FormsBodyScope}

// LoadClientConfig reads a Google OAuth client secrets file ("installed" or
// "web" application).
func LoadClientConfig(secretsPath string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(secretsPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.ErrClientSecretsMissing.WithContext("path", secretsPath)
		}
		return nil, apperrors.ErrClientSecretsInvalid.WithError(err).WithContext("path", secretsPath)
	}

	if len(scopes) == 0 {
		scopes = Scopes
	}
	cfg, err := google.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, apperrors.ErrClientSecretsInvalid.WithError(err).WithContext("path", secretsPath)
	}
	return cfg, nil
}

type Authenticator struct {
	oauthConfig *oauth2.Config
	store       TokenStore
	consent     ConsentFlow
}

func NewAuthenticator(oauthConfig *oauth2.Config, store TokenStore, consent ConsentFlow) *Authenticator {
	return &Authenticator{
		oauthConfig: oauthConfig,
		store:       store,
		consent:     consent,
	}
}

// ObtainCredential returns the cached token when still valid, refreshes it
// when it has expired, and otherwise runs the consent flow. Any new token is
// persisted before it is returned.
func (a *Authenticator) ObtainCredential(ctx context.Context) (*oauth2.Token, error) {
	log := logger.FromContext(ctx)

	token, err := a.store.Load()
	if err != nil {
		log.Warn("ignoring unreadable credential cache", "error", err)
		token = nil
	}

	if token != nil && token.Valid() {
		log.Debug("using cached credential", "expiry", token.Expiry)
		return token, nil
	}

	if token != nil && token.RefreshToken != "" {
		refreshed, err := a.oauthConfig.TokenSource(ctx, token).Token()
		if err == nil {
			log.Debug("cached credential refreshed", "expiry", refreshed.Expiry)
			if err := a.save(refreshed); err != nil {
				return nil, err
			}
			return refreshed, nil
		}
		log.Warn("credential refresh failed, asking for consent again", "error", err)
	}

	if a.consent == nil {
		return nil, apperrors.ErrConsentFailed.WithContext("reason", "no consent flow configured")
	}

	token, err = a.consent.Authorize(ctx, a.oauthConfig)
	if err != nil {
		return nil, apperrors.ErrConsentFailed.WithError(err)
	}
	log.Info("authorization granted")

	if err := a.save(token); err != nil {
		return nil, err
	}
	return token, nil
}

// Client returns an HTTP client authorized with token. Tokens refreshed while
// the client is in use are written back to the store.
func (a *Authenticator) Client(ctx context.Context, token *oauth2.Token) *http.Client {
	source := &persistingTokenSource{
		base:  a.oauthConfig.TokenSource(ctx, token),
		store: a.store,
		last:  token.AccessToken,
		ctx:   ctx,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, source))
}

// Cached returns the stored credential without refreshing it, or nil.
func (a *Authenticator) Cached() (*oauth2.Token, error) {
	return NewCredentialCache(a.store).Cached()
}

// Logout removes the cached credential.
func (a *Authenticator) Logout() error {
	return NewCredentialCache(a.store).Logout()
}

// CredentialCache inspects and clears the stored credential. It needs no
// OAuth client configuration.
type CredentialCache struct {
	store TokenStore
}

func NewCredentialCache(store TokenStore) *CredentialCache {
	return &CredentialCache{store: store}
}

func (c *CredentialCache) Cached() (*oauth2.Token, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, apperrors.ErrTokenStore.WithError(err)
	}
	return token, nil
}

func (c *CredentialCache) Logout() error {
	if err := c.store.Delete(); err != nil {
		return apperrors.ErrTokenStore.WithError(err)
	}
	return nil
}

func (a *Authenticator) save(token *oauth2.Token) error {
	if err := a.store.Save(token); err != nil {
		return apperrors.ErrTokenStore.WithError(err)
	}
	return nil
}

type persistingTokenSource struct {
	mu    sync.Mutex
	base  oauth2.TokenSource
	store TokenStore
	last  string
	ctx   context.Context
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, apperrors.ErrTokenRefresh.WithError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := s.store.Save(token); err != nil {
			logger.Warn(s.ctx, "could not persist refreshed credential", "error", err)
		}
	}
	return token, nil
}
