// package formatter renders transfer summaries and account snapshots to
// various formats (plain text, JSON, CSV, Markdown)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
)

// categoryLabels orders the summary sections for rendering.
var categoryLabels = []struct {
	label    string
	category models.Category
}{
	{"Subscriptions", models.Subscriptions},
	{"Liked videos", models.LikedVideos},
	{"Playlists", models.Playlists},
}

func categorySummary(summary *models.TransferSummary, c models.Category) *models.CategorySummary {
	switch c {
	case models.Subscriptions:
		return summary.Subscriptions
	case models.LikedVideos:
		return summary.LikedVideos
	case models.Playlists:
		if summary.Playlists == nil {
			return nil
		}
		return &summary.Playlists.CategorySummary
	}
	return nil
}

// SummaryText renders a transfer summary as plain text, one section per
// category that ran, with failure details at the end.
func SummaryText(summary *models.TransferSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Transfer run %s\n\n", summary.RunID))

	for _, entry := range categoryLabels {
		cat := categorySummary(summary, entry.category)
		if cat == nil {
			continue
		}

		buf.WriteString(fmt.Sprintf("%s: %d transferred, %d already present, %d failed (of %d)\n",
			entry.label, cat.Success, cat.Existing, cat.Failed, cat.Total))

		if entry.category == models.Playlists {
			pl := summary.Playlists
			buf.WriteString(fmt.Sprintf("  Videos: %d added, %d already present, %d failed\n",
				pl.VideosSuccess, pl.VideosExisting, pl.VideosFailed))
		}
	}

	failures := collectFailures(summary)
	if len(failures) > 0 {
		buf.WriteString("\nFailures:\n")
		for _, f := range failures {
			buf.WriteString(fmt.Sprintf("  %s (%s): %s\n", f.ResourceTitle, f.ResourceID, f.ErrorDetail))
		}
	}

	return buf.Bytes()
}

// SummaryJSON renders a transfer summary as indented JSON.
func SummaryJSON(summary *models.TransferSummary) ([]byte, error) {
	return shared.MarshalJSON(summary, true)
}

// SummaryMarkdown renders a transfer summary as a Markdown document with a
// per-category table.
func SummaryMarkdown(summary *models.TransferSummary) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# Transfer run `%s`\n\n", summary.RunID))
	buf.WriteString("| Category | Transferred | Already present | Failed | Total |\n")
	buf.WriteString("|----------|------------:|----------------:|-------:|------:|\n")

	for _, entry := range categoryLabels {
		cat := categorySummary(summary, entry.category)
		if cat == nil {
			continue
		}
		buf.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d |\n",
			entry.label, cat.Success, cat.Existing, cat.Failed, cat.Total))
	}

	if summary.Playlists != nil {
		pl := summary.Playlists
		buf.WriteString(fmt.Sprintf("\n**Playlist videos**: %d added, %d already present, %d failed\n",
			pl.VideosSuccess, pl.VideosExisting, pl.VideosFailed))
	}

	failures := collectFailures(summary)
	if len(failures) > 0 {
		buf.WriteString("\n## Failures\n\n")
		for _, f := range failures {
			buf.WriteString(fmt.Sprintf("- **%s** (`%s`): %s\n", f.ResourceTitle, f.ResourceID, f.ErrorDetail))
		}
	}

	return buf.Bytes()
}

func collectFailures(summary *models.TransferSummary) []models.FailureRecord {
	var failures []models.FailureRecord
	for _, entry := range categoryLabels {
		if cat := categorySummary(summary, entry.category); cat != nil {
			failures = append(failures, cat.Failures...)
		}
	}
	return failures
}

// SubscriptionsToCSV renders enumerated subscriptions with columns: ChannelID, Title, Description
func SubscriptionsToCSV(subs []models.ChannelSubscription) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ChannelID", "Title", "Description"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, sub := range subs {
		if err := writer.Write([]string{sub.ChannelID, sub.Title, sub.Description}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// LikedVideosToCSV renders enumerated liked videos with columns: VideoID, Title
func LikedVideosToCSV(videos []models.LikedVideo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"VideoID", "Title"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, video := range videos {
		if err := writer.Write([]string{video.VideoID, video.Title}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PlaylistsToCSV renders enumerated playlists with columns: ID, Title, Description, ItemCount
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "Title", "Description", "ItemCount"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pl := range playlists {
		record := []string{pl.ID, pl.Title, pl.Description, strconv.Itoa(pl.ItemCount)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteSummary writes a transfer summary to a file in the named format
// ("text", "json" or "markdown"), defaulting the filename to the run id.
func WriteSummary(summary *models.TransferSummary, format, filepath string) (string, error) {
	var data []byte
	var err error
	var ext string

	switch format {
	case "json":
		data, err = SummaryJSON(summary)
		ext = "json"
	case "markdown", "md":
		data = SummaryMarkdown(summary)
		ext = "md"
	case "text", "":
		data = SummaryText(summary)
		ext = "txt"
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}

	if filepath == "" {
		filepath = fmt.Sprintf("transfer_%s.%s", summary.RunID, ext)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write summary file: %w", err)
	}

	return filepath, nil
}
