// submodule cmd contains command definitions
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yttransfer/internal/auth"
	"github.com/desertthunder/yttransfer/internal/repositories"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/tasks"
	"github.com/desertthunder/yttransfer/internal/youtube"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	store  auth.CredentialStore
	source youtube.AccountService
	target youtube.AccountService
	engine tasks.TransferEngine
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Account clients, store and engine are optional overrides; when nil the
// Runner builds them from the configuration on first use.
type RunnerOpts struct {
	Config *shared.Config
	Store  auth.CredentialStore
	Source youtube.AccountService
	Target youtube.AccountService
	Engine tasks.TransferEngine
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		store:  opts.Store,
		source: opts.Source,
		target: opts.Target,
		engine: opts.Engine,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, transferCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the Runner's logger, used when the TUI redirects logs to a file.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// accountID maps an account role name to the configured account identifier.
func (r *Runner) accountID(role string) (string, error) {
	switch role {
	case "source":
		return r.config.Accounts.Source, nil
	case "target":
		return r.config.Accounts.Target, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q (must be 'source' or 'target')", shared.ErrInvalidArgument, role)
	}
}

// credentialStore lazily builds the file-backed token store.
func (r *Runner) credentialStore() (auth.CredentialStore, error) {
	if r.store != nil {
		return r.store, nil
	}

	dir := expandHome(r.config.Accounts.TokenDir)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".yttransfer")
	}

	store, err := auth.NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	r.store = store
	return store, nil
}

// accountService builds an authenticated Data API client for one account role.
func (r *Runner) accountService(ctx context.Context, role string) (youtube.AccountService, error) {
	switch role {
	case "source":
		if r.source != nil {
			return r.source, nil
		}
	case "target":
		if r.target != nil {
			return r.target, nil
		}
	}

	account, err := r.accountID(role)
	if err != nil {
		return nil, err
	}

	oauthConfig, err := auth.OAuthConfig(r.config.Credentials)
	if err != nil {
		return nil, err
	}

	store, err := r.credentialStore()
	if err != nil {
		return nil, err
	}

	httpClient, err := auth.Client(ctx, oauthConfig, store, account)
	if err != nil {
		return nil, fmt.Errorf("%w: run 'yttransfer auth login %s' first", err, role)
	}

	client := youtube.NewDataAPI(account, "", httpClient)
	client.UseLikesPlaylist(r.config.Engine.LikesViaPlaylist)

	if role == "source" {
		r.source = client
	} else {
		r.target = client
	}
	return client, nil
}

// transferEngine builds the orchestrator over both account roles.
func (r *Runner) transferEngine(ctx context.Context) (tasks.TransferEngine, error) {
	if r.engine != nil {
		return r.engine, nil
	}

	source, err := r.accountService(ctx, "source")
	if err != nil {
		return nil, err
	}
	target, err := r.accountService(ctx, "target")
	if err != nil {
		return nil, err
	}

	policy := tasks.BackoffPolicy{
		MaxAttempts: r.config.Engine.MaxAttempts,
		QuotaWait:   time.Duration(r.config.Engine.QuotaWaitSeconds) * time.Second,
	}
	exec := tasks.NewExecutor(r.config.Engine.RequestsPerSecond, policy, r.logger)

	r.engine = tasks.NewEngine(source, target, exec, r.logger)
	return r.engine, nil
}

// openRuns opens the run-history repository, migrating the database if needed.
// The returned closer releases the underlying connection.
func (r *Runner) openRuns() (*repositories.TransferRunRepository, func(), error) {
	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repositories.NewTransferRunRepository(db), func() { db.Close() }, nil
}

// expandHome resolves a leading "~" in a configured path.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}
	return path
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
