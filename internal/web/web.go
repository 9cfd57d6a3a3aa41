// Package web implements a small server-rendered web interface mirroring the
// TUI functionality.
//
// Routes
//
//	GET  /                   → Dashboard: account status and transfer form
//	GET  /select/{category}  → Per-resource selection form for one category
//	POST /transfer           → Run a transfer and render the summary
//	GET  /history            → Past run summaries from the history repository
//
// The app reuses the [server.BasicRouter] with logging and recovery
// middleware, the same [tasks.TransferEngine] as the CLI and TUI, and records
// finished runs through the history repository when one is configured.
// Transfers run synchronously within the request; progress streaming stays a
// TUI/CLI feature.
package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yttransfer/internal/formatter"
	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/repositories"
	"github.com/desertthunder/yttransfer/internal/server"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/tasks"
	"github.com/desertthunder/yttransfer/internal/youtube"
)

// App wires the transfer engine and account clients into HTTP handlers.
type App struct {
	source youtube.AccountService
	target youtube.AccountService
	engine tasks.TransferEngine
	runs   *repositories.TransferRunRepository
	logger *log.Logger
	tmpl   *template.Template
}

// NewApp creates the web application. The runs repository may be nil, in
// which case finished runs are not recorded.
func NewApp(source, target youtube.AccountService, engine tasks.TransferEngine, runs *repositories.TransferRunRepository, logger *log.Logger) *App {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &App{
		source: source,
		target: target,
		engine: engine,
		runs:   runs,
		logger: logger,
		tmpl:   template.Must(template.New("web").Parse(pageTemplates)),
	}
}

// Router builds the application router with logging and panic recovery.
func (a *App) Router() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.Recover(a.logger), server.RequestLogger(a.logger))

	router.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.handleDashboard))
	router.Handle(http.MethodGet, "/select/{category}", http.HandlerFunc(a.handleSelect))
	router.Handle(http.MethodPost, "/transfer", http.HandlerFunc(a.handleTransfer))
	router.Handle(http.MethodGet, "/history", http.HandlerFunc(a.handleHistory))

	return router
}

// accountStatus is the per-role identity block rendered on the dashboard.
type accountStatus struct {
	Role    string
	Account string
	Channel string
	Ready   bool
}

func (a *App) status(ctx context.Context, role string, svc youtube.AccountService) accountStatus {
	status := accountStatus{Role: role}
	if svc == nil {
		return status
	}

	status.Account = svc.Account()
	channel, err := svc.Channel(ctx)
	if err != nil {
		a.logger.Warn("channel lookup failed", "role", role, "error", err)
		return status
	}

	status.Channel = channel.Title
	status.Ready = true
	return status
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Source accountStatus
		Target accountStatus
	}{
		Source: a.status(r.Context(), "source", a.source),
		Target: a.status(r.Context(), "target", a.target),
	}

	a.render(w, "dashboard", data)
}

// selectEntry is one selectable resource row on a selection page.
type selectEntry struct {
	ID     string
	Title  string
	Detail string
}

// handleSelect renders the per-resource selection form for one category,
// enumerated from the source account and sorted by title.
func (a *App) handleSelect(w http.ResponseWriter, r *http.Request) {
	category := models.Category(r.PathValue("category"))

	var entries []selectEntry
	var err error

	switch category {
	case models.Subscriptions:
		var subs []models.ChannelSubscription
		if subs, err = a.source.Subscriptions(r.Context()); err == nil {
			for _, sub := range subs {
				entries = append(entries, selectEntry{ID: sub.ChannelID, Title: sub.Title, Detail: sub.Description})
			}
		}
	case models.LikedVideos:
		var videos []models.LikedVideo
		if videos, err = a.source.LikedVideos(r.Context()); err == nil {
			for _, video := range videos {
				entries = append(entries, selectEntry{ID: video.VideoID, Title: video.Title})
			}
		}
	case models.Playlists:
		var playlists []models.Playlist
		if playlists, err = a.source.Playlists(r.Context()); err == nil {
			for _, pl := range playlists {
				entries = append(entries, selectEntry{
					ID:     pl.ID,
					Title:  pl.Title,
					Detail: fmt.Sprintf("%d videos", pl.ItemCount),
				})
			}
		}
	default:
		http.Error(w, "Unknown category", http.StatusBadRequest)
		return
	}

	if err != nil {
		a.logger.Error("enumeration failed", "category", category, "error", err)
		http.Error(w, "Failed to list "+string(category)+": "+err.Error(), http.StatusBadGateway)
		return
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Title < entries[j].Title })

	data := struct {
		Category models.Category
		Entries  []selectEntry
	}{category, entries}
	a.render(w, "select", data)
}

func (a *App) handleTransfer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form", http.StatusBadRequest)
		return
	}

	var categories []models.Category
	for _, value := range r.PostForm["category"] {
		switch c := models.Category(value); c {
		case models.Subscriptions, models.LikedVideos, models.Playlists, models.All:
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		http.Error(w, "Select at least one category", http.StatusBadRequest)
		return
	}

	req := models.TransferRequest{Categories: categories}
	if selected := r.PostForm["selected"]; len(selected) > 0 {
		if len(categories) != 1 || categories[0] == models.All {
			http.Error(w, "Resource selection requires a single category", http.StatusBadRequest)
			return
		}
		req.Selection = map[models.Category][]string{categories[0]: selected}
	}

	started := time.Now()

	summary, runErr := a.engine.Run(r.Context(), nil, req)
	a.record(req, summary, started, runErr)

	if summary == nil {
		a.logger.Error("transfer failed", "error", runErr)
		http.Error(w, "Transfer failed: "+runErr.Error(), http.StatusBadGateway)
		return
	}

	data := struct {
		Summary  string
		RunError error
	}{
		Summary:  string(formatter.SummaryText(summary)),
		RunError: runErr,
	}
	a.render(w, "result", data)
}

func (a *App) record(req models.TransferRequest, summary *models.TransferSummary, started time.Time, runErr error) {
	if a.runs == nil || summary == nil {
		return
	}

	run := models.NewTransferRun(req, *summary, started, time.Now(), runErr)
	if err := a.runs.Create(run); err != nil {
		a.logger.Error("failed to record run", "run_id", summary.RunID, "error", err)
	}
}

// historyEntry is one row of the history table.
type historyEntry struct {
	ID         string
	StartedAt  string
	Categories string
	Outcome    string
}

func (a *App) handleHistory(w http.ResponseWriter, r *http.Request) {
	if a.runs == nil {
		http.Error(w, "Run history is not configured", http.StatusNotFound)
		return
	}

	runs, err := a.runs.List(map[string]any{"limit": 50})
	if err != nil {
		a.logger.Error("failed to list runs", "error", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	entries := make([]historyEntry, len(runs))
	for i, run := range runs {
		outcome := "completed"
		if !run.Succeeded() {
			outcome = "aborted: " + run.RunError()
		}
		entries[i] = historyEntry{
			ID:         run.ID(),
			StartedAt:  run.StartedAt().Format(time.RFC3339),
			Categories: run.CategoryList(),
			Outcome:    outcome,
		}
	}

	a.render(w, "history", struct{ Entries []historyEntry }{entries})
}

func (a *App) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := a.tmpl.ExecuteTemplate(w, name, data); err != nil {
		a.logger.Error("template error", "template", name, "error", err)
	}
}

const pageTemplates = `
{{define "layout_head"}}
<!DOCTYPE html>
<html>
<head>
<title>yttransfer</title>
<style>
 body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
        max-width: 40rem; margin: 2rem auto; color: #222; }
 h1 { color: #c4302b; }
 pre { background: #f5f5f5; padding: 1rem; border-radius: 6px; overflow-x: auto; }
 table { border-collapse: collapse; width: 100%; }
 td, th { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; }
 .ok { color: #04b575; } .warn { color: #b56d04; }
 nav a { margin-right: 1rem; }
</style>
</head>
<body>
<nav><a href="/">Dashboard</a><a href="/history">History</a></nav>
{{end}}

{{define "dashboard"}}
{{template "layout_head"}}
<h1>Transfer</h1>
<ul>
 <li>Source: <strong>{{.Source.Account}}</strong>
  {{if .Source.Ready}}<span class="ok">{{.Source.Channel}}</span>{{else}}<span class="warn">not authenticated</span>{{end}}</li>
 <li>Target: <strong>{{.Target.Account}}</strong>
  {{if .Target.Ready}}<span class="ok">{{.Target.Channel}}</span>{{else}}<span class="warn">not authenticated</span>{{end}}</li>
</ul>
<form method="post" action="/transfer">
 <label><input type="checkbox" name="category" value="subscriptions"> Subscriptions</label>
  <a href="/select/subscriptions">choose…</a><br>
 <label><input type="checkbox" name="category" value="liked_videos"> Liked videos</label>
  <a href="/select/liked_videos">choose…</a><br>
 <label><input type="checkbox" name="category" value="playlists"> Playlists</label>
  <a href="/select/playlists">choose…</a><br>
 <label><input type="checkbox" name="category" value="all"> Everything</label><br>
 <button type="submit">Start transfer</button>
</form>
</body></html>
{{end}}

{{define "select"}}
{{template "layout_head"}}
<h1>Select {{.Category}}</h1>
{{if .Entries}}
<form method="post" action="/transfer">
 <input type="hidden" name="category" value="{{.Category}}">
 {{range .Entries}}
 <label><input type="checkbox" name="selected" value="{{.ID}}" checked> {{.Title}}</label>
  {{if .Detail}}<small>{{.Detail}}</small>{{end}}<br>
 {{end}}
 <button type="submit">Transfer selected</button>
</form>
{{else}}<p>Nothing to select in this category.</p>{{end}}
</body></html>
{{end}}

{{define "result"}}
{{template "layout_head"}}
{{if .RunError}}<h1 class="warn">Transfer aborted</h1><p>{{.RunError}}</p>
{{else}}<h1 class="ok">Transfer complete</h1>{{end}}
<pre>{{.Summary}}</pre>
</body></html>
{{end}}

{{define "history"}}
{{template "layout_head"}}
<h1>Run history</h1>
{{if .Entries}}
<table>
<tr><th>Run</th><th>Started</th><th>Categories</th><th>Outcome</th></tr>
{{range .Entries}}<tr><td>{{.ID}}</td><td>{{.StartedAt}}</td><td>{{.Categories}}</td><td>{{.Outcome}}</td></tr>
{{end}}
</table>
{{else}}<p>No runs recorded yet.</p>{{end}}
</body></html>
{{end}}
`
