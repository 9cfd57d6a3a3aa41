package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// Subscribe creates a subscription to the given channel.
//
// The API rejects a duplicate subscription, but callers are expected to run
// an existence check first; see internal/tasks.
func (c *DataAPI) Subscribe(ctx context.Context, channelID string) error {
	params := url.Values{}
	params.Set("part", "snippet")

	var body subscriptionInsertBody
	body.Snippet.ResourceID = resourceID{Kind: "youtube#channel", ChannelID: channelID}

	return c.doRequest(ctx, http.MethodPost, "/subscriptions", params, &body, nil)
}

// RateVideo rates a video "like" on the account. The endpoint returns no body.
func (c *DataAPI) RateVideo(ctx context.Context, videoID string) error {
	params := url.Values{}
	params.Set("id", videoID)
	params.Set("rating", "like")

	return c.doRequest(ctx, http.MethodPost, "/videos/rate", params, nil, nil)
}

// CreatePlaylist creates a private playlist and returns its id.
func (c *DataAPI) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	params := url.Values{}
	params.Set("part", "snippet,status")

	var body playlistInsertBody
	body.Snippet.Title = title
	body.Snippet.Description = description
	body.Status.PrivacyStatus = "private"

	var resp playlistResource
	if err := c.doRequest(ctx, http.MethodPost, "/playlists", params, &body, &resp); err != nil {
		return "", err
	}

	if resp.ID == "" {
		return "", fmt.Errorf("playlist created without an id")
	}

	return resp.ID, nil
}

// InsertPlaylistItem appends a video to the end of a playlist. The position
// is not forced; the API appends by default, which preserves source order
// when items are inserted in sequence.
//
// The API happily duplicates playlist items, so callers must check existence
// first to stay idempotent.
func (c *DataAPI) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	params := url.Values{}
	params.Set("part", "snippet")

	var body playlistItemInsertBody
	body.Snippet.PlaylistID = playlistID
	body.Snippet.ResourceID = resourceID{Kind: "youtube#video", VideoID: videoID}

	return c.doRequest(ctx, http.MethodPost, "/playlistItems", params, &body, nil)
}
