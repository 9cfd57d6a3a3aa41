package tasks

import (
	"fmt"
	"time"

	"github.com/desertthunder/yttransfer/internal/models"
)

// ProgressUpdate represents a progress event during a transfer run.
//
// Used to send real-time updates to the CLI or web layer for display.
type ProgressUpdate struct {
	Phase    Phase           // Operation phase
	Category models.Category // Category being processed
	Step     int             // Current step number within phase
	Total    int             // Total steps in this phase
	Message  string          // Human-readable message for display
	Data     any             // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration, mirroring the per-category state machine:
// enumerate, filter, mutate, summarize.
type Phase int

const (
	Enumerate Phase = iota
	Filter
	Mutate
	Skip
	Backoff
	ReplicatePlaylist
	Summarize
)

func (p Phase) String() string {
	switch p {
	case Enumerate:
		return "enumerate"
	case Filter:
		return "filter"
	case Mutate:
		return "mutate"
	case Skip:
		return "skip"
	case Backoff:
		return "backoff"
	case ReplicatePlaylist:
		return "replicate_playlist"
	case Summarize:
		return "summarize"
	default:
		return ""
	}
}

func enumerateUpdate(cat models.Category, account string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Enumerate,
		Category: cat,
		Message:  fmt.Sprintf("Enumerating %s on %s...", cat, account),
	}
}

func enumeratedUpdate(cat models.Category, account string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Enumerate,
		Category: cat,
		Total:    count,
		Message:  fmt.Sprintf("Found %d %s on %s", count, cat, account),
	}
}

func filteredUpdate(cat models.Category, kept, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Filter,
		Category: cat,
		Step:     kept,
		Total:    total,
		Message:  fmt.Sprintf("Selected %d of %d %s", kept, total, cat),
	}
}

func mutateUpdate(cat models.Category, step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Mutate,
		Category: cat,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] %s", step, total, title),
	}
}

func skipUpdate(cat models.Category, step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Skip,
		Category: cat,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] already present: %s", step, total, title),
	}
}

func backoffUpdate(attempt int, wait time.Duration) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Backoff,
		Step:    attempt,
		Message: fmt.Sprintf("Rate limited, waiting %s before retrying (attempt %d)", wait, attempt),
	}
}

func replicateUpdate(step, total int, pl models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:    ReplicatePlaylist,
		Category: models.Playlists,
		Step:     step,
		Total:    total,
		Message:  fmt.Sprintf("[%d/%d] Replicating playlist: %s (%d items)", step, total, pl.Title, pl.ItemCount),
		Data:     pl,
	}
}

func summarizeUpdate(cat models.Category, summary any) ProgressUpdate {
	return ProgressUpdate{
		Phase:    Summarize,
		Category: cat,
		Message:  fmt.Sprintf("Finished %s", cat),
		Data:     summary,
	}
}
