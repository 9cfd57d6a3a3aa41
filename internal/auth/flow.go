package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yttransfer/internal/server"
	"github.com/desertthunder/yttransfer/internal/shared"
	"golang.org/x/oauth2"
)

const (
	googleAuthURL  = "https://accounts.google.com/o/oauth2/auth"
	googleTokenURL = "https://oauth2.googleapis.com/token"

	// Scope covering the read and write operations the engine performs.
	scopeYouTube = "https://www.googleapis.com/auth/youtube.force-ssl"

	flowTimeout = 2 * time.Minute
)

// OAuthConfig builds the oauth2 client configuration shared by both account roles.
func OAuthConfig(creds shared.CredentialsConfig) (*oauth2.Config, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_id and client_secret must be set", shared.ErrMissingCredentials)
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:3000/callback"
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{scopeYouTube},
		Endpoint: oauth2.Endpoint{
			AuthURL:  googleAuthURL,
			TokenURL: googleTokenURL,
		},
	}, nil
}

// Login runs the interactive consent flow for one account role: starts a
// local callback server, opens the browser, exchanges the authorization code
// and persists the token in the store under the account identifier.
func Login(ctx context.Context, config *oauth2.Config, store CredentialStore, account string, logger *log.Logger) error {
	state := shared.GenerateID()

	authURL := config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	handler := server.NewOAuthHandler(config, state)
	router := server.NewBasicRouter()
	router.Handler(handler)

	redirect, err := url.Parse(config.RedirectURL)
	if err != nil {
		return fmt.Errorf("%w: malformed redirect URI: %v", shared.ErrInvalidConfig, err)
	}

	httpServer := &http.Server{Addr: redirect.Host, Handler: router}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Infof("starting OAuth callback server for account %q at %v", account, redirect.Host)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	if err := shared.OpenBrowser(authURL); err != nil {
		logger.Warnf("failed to open browser automatically %v", err)
	}

	timeout := time.NewTimer(flowTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-handler.Result():
		// Got result from callback
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		return ctx.Err()
	case <-timeout.C:
		return fmt.Errorf("%w: authorization timed out after %v", shared.ErrTimeout, flowTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	if result.Token == nil {
		return fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return store.Save(account, result.Token)
}

// Client builds an authenticated HTTP client for an account role. Refreshed
// tokens are written back to the store transparently.
func Client(ctx context.Context, config *oauth2.Config, store CredentialStore, account string) (*http.Client, error) {
	token, err := store.Token(account)
	if err != nil {
		return nil, err
	}

	source := &savingTokenSource{
		account: account,
		store:   store,
		base:    config.TokenSource(ctx, token),
		last:    token,
	}

	return oauth2.NewClient(ctx, source), nil
}

// savingTokenSource persists tokens back to the store whenever the underlying
// source refreshes them.
type savingTokenSource struct {
	account string
	store   CredentialStore
	base    oauth2.TokenSource
	last    *oauth2.Token
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	if s.last == nil || token.AccessToken != s.last.AccessToken {
		s.last = token
		if err := s.store.Save(s.account, token); err != nil {
			return nil, fmt.Errorf("failed to persist refreshed token: %w", err)
		}
	}

	return token, nil
}
