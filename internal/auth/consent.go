package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/google/uuid"
	apperrors "github.com/thomas-vilte/mateform/internal/errors"
	"github.com/thomas-vilte/mateform/internal/logger"
	"golang.org/x/oauth2"
)

// ConsentFlow asks the user to grant access and exchanges the resulting
// authorization code for a token.
type ConsentFlow interface {
	Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

// Messages are the user-facing lines printed by the consent flows.
type Messages struct {
	OpenURL     string
	PastePrompt string
	Done        string
}

var defaultMessages = Messages{
	OpenURL:     "Open the following link in your browser to authorize mateform:",
	PastePrompt: "Paste the address your browser was redirected to (or just the code):",
	Done:        "Authorization complete. You can close this window and return to the terminal.",
}

// LoopbackFlow receives the authorization code on a short-lived HTTP server
// bound to 127.0.0.1.
type LoopbackFlow struct {
	Out         io.Writer
	Messages    Messages
	OpenBrowser func(url string) error
	Timeout     time.Duration
}

func NewLoopbackFlow(out io.Writer, messages *Messages) *LoopbackFlow {
	f := &LoopbackFlow{
		Out:         out,
		Messages:    defaultMessages,
		OpenBrowser: openBrowser,
		Timeout:     5 * time.Minute,
	}
	if messages != nil {
		f.Messages = *messages
	}
	return f
}

type callbackResult struct {
	code string
	err  error
}

func (f *LoopbackFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	log := logger.FromContext(ctx)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("error starting callback listener: %w", err)
	}

	local := *cfg
	local.RedirectURL = fmt.Sprintf("http://%s/", listener.Addr().String())

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := local.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackHandler(state, f.Messages.Done, results),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			results <- callbackResult{err: err}
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	_, _ = fmt.Fprintf(f.Out, "%s\n\n%s\n\n", f.Messages.OpenURL, authURL)
	if f.OpenBrowser != nil {
		if err := f.OpenBrowser(authURL); err != nil {
			log.Debug("could not open browser", "error", err)
		}
	}

	timeout := f.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var result callbackResult
	select {
	case result = <-results:
	case <-waitCtx.Done():
		return nil, waitCtx.Err()
	}
	if result.err != nil {
		return nil, result.err
	}

	log.Debug("authorization code received, exchanging")
	return local.Exchange(ctx, result.code, oauth2.VerifierOption(verifier))
}

func callbackHandler(state, done string, results chan<- callbackResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("code") == "" && query.Get("error") == "" {
			http.NotFound(w, r)
			return
		}

		var result callbackResult
		switch {
		case query.Get("state") != state:
			result.err = apperrors.ErrStateMismatch
		case query.Get("error") != "":
			result.err = fmt.Errorf("authorization denied: %s", query.Get("error"))
		default:
			result.code = query.Get("code")
		}

		if result.err != nil {
			http.Error(w, result.err.Error(), http.StatusBadRequest)
		} else {
			_, _ = fmt.Fprintln(w, done)
		}

		select {
		case results <- result:
		default:
		}
	})
}

// ManualFlow prints the authorization link and reads the redirect back from
// the terminal, for machines where a local browser cannot reach the CLI.
type ManualFlow struct {
	Out      io.Writer
	Messages Messages
	Prompt   func(message string) (string, error)
}

const manualRedirectURL = "http://127.0.0.1:1/"

func NewManualFlow(out io.Writer, messages *Messages) *ManualFlow {
	f := &ManualFlow{
		Out:      out,
		Messages: defaultMessages,
		Prompt:   surveyPrompt,
	}
	if messages != nil {
		f.Messages = *messages
	}
	return f
}

func (f *ManualFlow) Authorize(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	local := *cfg
	local.RedirectURL = manualRedirectURL

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()
	authURL := local.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.S256ChallengeOption(verifier))

	_, _ = fmt.Fprintf(f.Out, "%s\n\n%s\n\n", f.Messages.OpenURL, authURL)

	answer, err := f.Prompt(f.Messages.PastePrompt)
	if err != nil {
		return nil, err
	}

	code, err := parseManualAnswer(answer, state)
	if err != nil {
		return nil, err
	}

	return local.Exchange(ctx, code, oauth2.VerifierOption(verifier))
}

// parseManualAnswer accepts either the full redirect URL or the bare code.
// Only a full URL carries a state that can be checked.
func parseManualAnswer(answer, state string) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", errors.New("no authorization code provided")
	}

	if !strings.Contains(answer, "://") {
		return answer, nil
	}

	u, err := url.Parse(answer)
	if err != nil {
		return "", fmt.Errorf("invalid redirect address: %w", err)
	}
	query := u.Query()
	if e := query.Get("error"); e != "" {
		return "", fmt.Errorf("authorization denied: %s", e)
	}
	if query.Get("state") != state {
		return "", apperrors.ErrStateMismatch
	}
	code := query.Get("code")
	if code == "" {
		return "", errors.New("redirect address has no code parameter")
	}
	return code, nil
}

func surveyPrompt(message string) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(survey.Required)); err != nil {
		return "", err
	}
	return answer, nil
}

func openBrowser(target string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", target)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", target)
	default:
		cmd = exec.Command("xdg-open", target)
	}
	return cmd.Start()
}
