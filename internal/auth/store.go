// package auth manages per-account OAuth2 credentials.
//
// Tokens are persisted per account role under caller-chosen identifiers so
// several source/target pairs can coexist; nothing is keyed by a fixed
// filename.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/yttransfer/internal/shared"
	"golang.org/x/oauth2"
)

// CredentialStore persists OAuth2 tokens keyed by account identifier.
type CredentialStore interface {
	// Token loads the stored token for an account. Returns an error wrapping
	// [shared.ErrNotAuthenticated] when no token exists.
	Token(account string) (*oauth2.Token, error)

	// Save stores the token for an account, replacing any existing one.
	Save(account string, token *oauth2.Token) error

	// Accounts lists the account identifiers with stored tokens.
	Accounts() ([]string, error)
}

// FileStore is a [CredentialStore] backed by one JSON file per account in a
// single directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed credential store rooted at dir. A
// leading "~" expands to the user's home directory; the directory is created
// with owner-only permissions if missing.
func NewFileStore(dir string) (*FileStore, error) {
	if strings.HasPrefix(dir, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create token directory: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

func (s *FileStore) tokenPath(account string) string {
	return filepath.Join(s.dir, account+".json")
}

// Token loads the stored token for an account.
func (s *FileStore) Token(account string) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.tokenPath(account))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no token for account %q", shared.ErrNotAuthenticated, account)
		}
		return nil, fmt.Errorf("failed to read token for account %q: %w", account, err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("%w: malformed token for account %q: %v", shared.ErrInvalidCredentials, account, err)
	}

	return &token, nil
}

// Save stores the token for an account with owner-only file permissions.
func (s *FileStore) Save(account string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if err := os.WriteFile(s.tokenPath(account), data, 0600); err != nil {
		return fmt.Errorf("failed to write token for account %q: %w", account, err)
	}

	return nil
}

// Accounts lists the account identifiers with stored tokens.
func (s *FileStore) Accounts() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read token directory: %w", err)
	}

	var accounts []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		accounts = append(accounts, strings.TrimSuffix(name, ".json"))
	}

	return accounts, nil
}
