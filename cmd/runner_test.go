package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
	tu "github.com/desertthunder/yttransfer/internal/testing"
	"github.com/urfave/cli/v3"
)

// runCLI executes the runner's command tree with the given arguments.
func runCLI(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "yttransfer", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"yttransfer"}, args...))
}

func testConfig(t *testing.T) *shared.Config {
	t.Helper()
	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "runs.db")
	return config
}

func summaryFixture() *models.TransferSummary {
	return &models.TransferSummary{
		RunID: "run-cli",
		Subscriptions: &models.CategorySummary{
			Success: 2, Existing: 1, Total: 3,
		},
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			source := &tu.MockAccountService{Name: "src"}
			target := &tu.MockAccountService{Name: "dst"}
			engine := &tu.MockEngine{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
				Source: source,
				Target: target,
				Engine: engine,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.source != source || runner.target != target {
				t.Error("expected account services to be set")
			}
			if runner.engine != engine {
				t.Error("expected engine to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register returns all top-level commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		want := []string{"setup", "auth", "transfer", "serve", "tui"}
		if len(commands) != len(want) {
			t.Fatalf("register() returned %d commands, want %d", len(commands), len(want))
		}
		for i, name := range want {
			if commands[i].Name != name {
				t.Errorf("commands[%d] = %q, want %q", i, commands[i].Name, name)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("writeJSON() error = %v", err)
			}
			if !strings.Contains(output.String(), "\"key\": \"value\"") {
				t.Errorf("output = %q, want pretty JSON", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("accountID", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		for role, want := range map[string]string{"source": "source", "target": "target"} {
			got, err := runner.accountID(role)
			if err != nil {
				t.Fatalf("accountID(%q) error = %v", role, err)
			}
			if got != want {
				t.Errorf("accountID(%q) = %q, want %q", role, got, want)
			}
		}

		if _, err := runner.accountID("neither"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("accountID(neither) error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("expandHome", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skipf("no home directory: %v", err)
		}

		if got := expandHome("~/tokens"); got != filepath.Join(home, "tokens") {
			t.Errorf("expandHome(~/tokens) = %q", got)
		}
		if got := expandHome("/abs/path"); got != "/abs/path" {
			t.Errorf("expandHome(/abs/path) = %q", got)
		}
	})
}

func TestParseCategories(t *testing.T) {
	tests := []struct {
		name    string
		input   []string
		want    []models.Category
		wantErr bool
	}{
		{name: "empty defaults to all", input: nil, want: []models.Category{models.All}},
		{
			name:  "valid categories",
			input: []string{"subscriptions", "liked_videos"},
			want:  []models.Category{models.Subscriptions, models.LikedVideos},
		},
		{name: "all", input: []string{"all"}, want: []models.Category{models.All}},
		{name: "unknown category", input: []string{"watch_later"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCategories(tt.input)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Fatalf("parseCategories() error = %v, want ErrInvalidArgument", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCategories() error = %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseCategories() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseCategories()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestTransferRunCommand(t *testing.T) {
	t.Run("runs the requested categories and prints the summary", func(t *testing.T) {
		output := &bytes.Buffer{}
		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: output,
		})

		err := runCLI(t, runner, "transfer", "run", "-c", "subscriptions", "--no-history")
		if err != nil {
			t.Fatalf("transfer run error = %v", err)
		}

		if len(engine.Requests) != 1 {
			t.Fatalf("engine ran %d times, want 1", len(engine.Requests))
		}
		req := engine.Requests[0]
		if len(req.Categories) != 1 || req.Categories[0] != models.Subscriptions {
			t.Errorf("request categories = %v", req.Categories)
		}
		if req.Selection != nil {
			t.Errorf("request selection = %v, want nil", req.Selection)
		}

		if !strings.Contains(output.String(), "Transfer Summary") {
			t.Error("output missing summary header")
		}
		if !strings.Contains(output.String(), "2 transferred") {
			t.Errorf("output missing summary line:\n%s", output.String())
		}
	})

	t.Run("select narrows a single category", func(t *testing.T) {
		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: &bytes.Buffer{},
		})

		err := runCLI(t, runner, "transfer", "run", "-c", "subscriptions", "--select", "ch1", "--select", "ch2", "--no-history")
		if err != nil {
			t.Fatalf("transfer run error = %v", err)
		}

		sel := engine.Requests[0].Selection[models.Subscriptions]
		if len(sel) != 2 || sel[0] != "ch1" || sel[1] != "ch2" {
			t.Errorf("selection = %v, want [ch1 ch2]", sel)
		}
	})

	t.Run("select rejects multiple categories", func(t *testing.T) {
		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: &bytes.Buffer{},
		})

		err := runCLI(t, runner, "transfer", "run", "-c", "subscriptions", "-c", "playlists", "--select", "ch1")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
		if len(engine.Requests) != 0 {
			t.Errorf("engine ran %d times, want 0", len(engine.Requests))
		}
	})

	t.Run("quota exhaustion prints the resume advisory", func(t *testing.T) {
		output := &bytes.Buffer{}
		engine := &tu.MockEngine{
			Summary: summaryFixture(),
			Err:     fmt.Errorf("%w: try again tomorrow", shared.ErrQuotaExhausted),
		}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: output,
		})

		err := runCLI(t, runner, "transfer", "run", "--no-history")
		if !errors.Is(err, shared.ErrQuotaExhausted) {
			t.Fatalf("error = %v, want ErrQuotaExhausted", err)
		}

		if !strings.Contains(output.String(), "quota exhausted") {
			t.Errorf("output missing advisory:\n%s", output.String())
		}
		if !strings.Contains(output.String(), "2 transferred") {
			t.Error("partial summary should still be printed")
		}
	})

	t.Run("failure without a summary propagates the error", func(t *testing.T) {
		engine := &tu.MockEngine{Err: fmt.Errorf("%w: no token", shared.ErrNotAuthenticated)}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: &bytes.Buffer{},
		})

		err := runCLI(t, runner, "transfer", "run")
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("error = %v, want ErrNotAuthenticated", err)
		}
	})

	t.Run("writes the summary file when a format is chosen", func(t *testing.T) {
		t.Chdir(t.TempDir())

		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Engine: engine,
			Output: &bytes.Buffer{},
		})

		err := runCLI(t, runner, "transfer", "run", "-f", "json", "--no-history")
		if err != nil {
			t.Fatalf("transfer run error = %v", err)
		}

		tu.AssertFileExists(t, "transfer_run-cli.json")
	})
}

func TestTransferHistoryCommand(t *testing.T) {
	t.Run("recorded runs show up in history", func(t *testing.T) {
		config := testConfig(t)
		output := &bytes.Buffer{}
		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Engine: engine,
			Output: output,
		})

		if err := runCLI(t, runner, "transfer", "run", "-c", "subscriptions"); err != nil {
			t.Fatalf("transfer run error = %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "transfer", "history"); err != nil {
			t.Fatalf("transfer history error = %v", err)
		}

		if !strings.Contains(output.String(), "run-cli") {
			t.Errorf("history missing recorded run:\n%s", output.String())
		}
		if !strings.Contains(output.String(), "completed") {
			t.Errorf("history missing outcome:\n%s", output.String())
		}
	})

	t.Run("json output includes the run summary", func(t *testing.T) {
		config := testConfig(t)
		output := &bytes.Buffer{}
		engine := &tu.MockEngine{Summary: summaryFixture()}
		runner := NewRunner(RunnerOpts{
			Config: config,
			Engine: engine,
			Output: output,
		})

		if err := runCLI(t, runner, "transfer", "run", "-c", "subscriptions"); err != nil {
			t.Fatalf("transfer run error = %v", err)
		}

		output.Reset()
		if err := runCLI(t, runner, "transfer", "history", "--json"); err != nil {
			t.Fatalf("transfer history error = %v", err)
		}

		if !strings.Contains(output.String(), "\"run_id\": \"run-cli\"") {
			t.Errorf("json history missing run id:\n%s", output.String())
		}
	})

	t.Run("empty history prints a notice", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Output: output,
		})

		if err := runCLI(t, runner, "transfer", "history"); err != nil {
			t.Fatalf("transfer history error = %v", err)
		}
		if !strings.Contains(output.String(), "No transfer runs") {
			t.Errorf("output = %q", output.String())
		}
	})
}

func TestTransferExportCommand(t *testing.T) {
	t.Run("exports source subscriptions as CSV", func(t *testing.T) {
		output := &bytes.Buffer{}
		source := &tu.MockAccountService{
			Name: "source",
			Subs: []models.ChannelSubscription{
				{ChannelID: "ch1", Title: "Channel One"},
				{ChannelID: "ch2", Title: "Channel Two"},
			},
		}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Source: source,
			Output: output,
		})

		if err := runCLI(t, runner, "transfer", "export", "subscriptions"); err != nil {
			t.Fatalf("transfer export error = %v", err)
		}

		if !strings.Contains(output.String(), "Channel One") {
			t.Errorf("CSV missing subscription:\n%s", output.String())
		}
	})

	t.Run("rejects unknown categories", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Source: &tu.MockAccountService{Name: "source"},
			Output: &bytes.Buffer{},
		})

		err := runCLI(t, runner, "transfer", "export", "watch_later")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestAuthStatusCommand(t *testing.T) {
	t.Run("shows both channels when authenticated", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Source: &tu.MockAccountService{Name: "source"},
			Target: &tu.MockAccountService{Name: "target"},
			Output: output,
		})

		if err := runCLI(t, runner, "auth", "status"); err != nil {
			t.Fatalf("auth status error = %v", err)
		}

		for _, want := range []string{"source: source ✓", "target: target ✓"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("reports channel lookup failures per role", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Config: testConfig(t),
			Source: &tu.MockAccountService{Name: "source"},
			Target: &tu.MockAccountService{Name: "target", Err: errors.New("token revoked")},
			Output: output,
		})

		if err := runCLI(t, runner, "auth", "status"); err != nil {
			t.Fatalf("auth status error = %v", err)
		}

		if !strings.Contains(output.String(), "source: source ✓") {
			t.Error("healthy role missing from output")
		}
		if !strings.Contains(output.String(), "channel lookup failed") {
			t.Errorf("failed role not reported:\n%s", output.String())
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("setup config writes the example file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})
		if err := runCLI(t, runner, "setup", "config"); err != nil {
			t.Fatalf("setup config error = %v", err)
		}

		tu.AssertFileExists(t, "config.toml")
		if !strings.Contains(tu.MustReadFile(t, "config.toml"), "[credentials]") {
			t.Error("config file missing credentials section")
		}
	})

	t.Run("setup config refuses to overwrite", func(t *testing.T) {
		t.Chdir(t.TempDir())

		runner := NewRunner(RunnerOpts{Config: testConfig(t), Output: &bytes.Buffer{}})
		if err := runCLI(t, runner, "setup", "config"); err != nil {
			t.Fatalf("setup config error = %v", err)
		}
		if err := runCLI(t, runner, "setup", "config"); err == nil {
			t.Error("expected error on existing config file")
		}
	})

	t.Run("setup database migrates the configured history store", func(t *testing.T) {
		t.Chdir(t.TempDir())

		configToml := "[database]\npath = \"history.db\"\nmax_open_conns = 5\nmax_idle_conns = 2\n"
		if err := os.WriteFile("config.toml", []byte(configToml), 0644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		if err := runCLI(t, runner, "setup", "database"); err != nil {
			t.Fatalf("setup database error = %v", err)
		}

		tu.AssertFileExists(t, "history.db")
	})
}
