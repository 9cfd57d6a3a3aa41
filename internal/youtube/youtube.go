// package youtube implements a client for the YouTube Data API v3.
//
// One AccountService per account role (source, target); the transfer engine
// is agnostic to how the underlying HTTP client authenticates.
package youtube

import (
	"context"

	"github.com/desertthunder/yttransfer/internal/models"
)

// maxPageSize is the largest page the list endpoints accept.
const maxPageSize = 50

// AccountService is the capability one authenticated account exposes to the
// transfer engine: cursor-paginated reads, single mutations, and the batched
// rating check.
type AccountService interface {
	// Account returns the caller-chosen identifier for this account role.
	Account() string

	// Channel retrieves the authenticated account's own channel identity.
	Channel(ctx context.Context) (*Channel, error)

	// Subscriptions enumerates every channel subscription on the account.
	Subscriptions(ctx context.Context) ([]models.ChannelSubscription, error)

	// SubscriptionExists reports whether the account subscribes to a channel.
	SubscriptionExists(ctx context.Context, channelID string) (bool, error)

	// Subscribe creates a subscription to the given channel.
	Subscribe(ctx context.Context, channelID string) error

	// LikedVideos enumerates every video the account rated "like".
	LikedVideos(ctx context.Context) ([]models.LikedVideo, error)

	// VideoRatings retrieves the account's rating for up to 50 video ids in
	// one call. The result maps video id to rating ("like", "none", ...).
	VideoRatings(ctx context.Context, videoIDs []string) (map[string]string, error)

	// RateVideo rates a video "like" on the account.
	RateVideo(ctx context.Context, videoID string) error

	// Playlists enumerates every playlist owned by the account.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// CreatePlaylist creates a private playlist and returns its id.
	CreatePlaylist(ctx context.Context, title, description string) (string, error)

	// PlaylistItems enumerates a playlist's items in position order.
	PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error)

	// PlaylistItemExists reports whether a video is already in a playlist.
	PlaylistItemExists(ctx context.Context, playlistID, videoID string) (bool, error)

	// InsertPlaylistItem appends a video to a playlist.
	InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error
}

// Channel is the authenticated account's own channel identity, used by the
// presentation layers to show which channel an account role is bound to.
type Channel struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
