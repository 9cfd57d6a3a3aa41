// package models defines the data model for the account transfer service
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the transfer service.
// Implementations include TransferRun.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Category identifies a transferable resource category.
type Category string

const (
	Subscriptions Category = "subscriptions"
	LikedVideos   Category = "liked_videos"
	Playlists     Category = "playlists"
	All           Category = "all"
)

// ChannelSubscription is a subscription on the source account, snapshotted at enumeration time.
//
// Identity is the channel id; title, description and thumbnail are carried for display only.
type ChannelSubscription struct {
	ChannelID   string `json:"channel_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Thumbnail   string `json:"thumbnail,omitempty"`
}

// LikedVideo is a video rated "like" on the source account.
type LikedVideo struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title"`
}

// Playlist is playlist metadata on its owning account.
//
// Playlist ids are account-scoped; cross-account matching is by exact title.
type Playlist struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	ItemCount   int    `json:"item_count"`
}

// PlaylistItem is a video within a playlist. Position is a zero-based
// insertion-order index meaningful only within its parent playlist.
type PlaylistItem struct {
	VideoID  string `json:"video_id"`
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// FailureRecord captures a single failed mutation for user-facing reporting.
type FailureRecord struct {
	ResourceID    string `json:"resource_id"`
	ResourceTitle string `json:"resource_title"`
	ErrorDetail   string `json:"error_detail"`
}

// CategorySummary aggregates outcomes for one resource category.
//
// For subscriptions and likes, Success + Failed + Existing == Total.
type CategorySummary struct {
	Success  int             `json:"success"`
	Failed   int             `json:"failed"`
	Existing int             `json:"existing"`
	Total    int             `json:"total"`
	Failures []FailureRecord `json:"failures,omitempty"`
}

// PlaylistSummary aggregates playlist-level outcomes plus per-video counts,
// which are tracked independently of the playlist-level counts.
type PlaylistSummary struct {
	CategorySummary
	VideosSuccess  int `json:"videos_success"`
	VideosFailed   int `json:"videos_failed"`
	VideosExisting int `json:"videos_existing"`
}

// TransferSummary is the outward-facing per-run result. Categories that were
// not part of the request are nil.
type TransferSummary struct {
	RunID         string           `json:"run_id"`
	Subscriptions *CategorySummary `json:"subscriptions,omitempty"`
	LikedVideos   *CategorySummary `json:"liked_videos,omitempty"`
	Playlists     *PlaylistSummary `json:"playlists,omitempty"`
}

// TransferRequest selects what to transfer. An empty Selection entry for a
// category means every enumerated resource in that category.
type TransferRequest struct {
	Categories []Category            `json:"categories"`
	Selection  map[Category][]string `json:"selection,omitempty"`
}

// Includes reports whether the request covers the given category, either
// explicitly or through All.
func (r TransferRequest) Includes(c Category) bool {
	for _, cat := range r.Categories {
		if cat == c || cat == All {
			return true
		}
	}
	return false
}

// SelectionFor returns the explicit id selection for a category as a set,
// or nil when the whole category was requested.
func (r TransferRequest) SelectionFor(c Category) map[string]bool {
	ids, ok := r.Selection[c]
	if !ok || len(ids) == 0 {
		return nil
	}

	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
