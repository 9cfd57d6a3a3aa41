package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/desertthunder/yttransfer/internal/models"
)

// listPages walks a cursor-paginated list endpoint until the response omits a
// next page token. fetch receives the current token (empty on the first call)
// and returns the next one. No upper bound on page count is assumed; a failed
// page request propagates as-is since a partial enumeration cannot be
// trusted as complete.
func listPages(ctx context.Context, fetch func(ctx context.Context, pageToken string) (string, error)) error {
	token := ""
	for {
		next, err := fetch(ctx, token)
		if err != nil {
			return err
		}
		if next == "" {
			return nil
		}
		token = next
	}
}

func pageParams(part string, pageToken string) url.Values {
	params := url.Values{}
	params.Set("part", part)
	params.Set("maxResults", strconv.Itoa(maxPageSize))
	if pageToken != "" {
		params.Set("pageToken", pageToken)
	}
	return params
}

// Subscriptions enumerates every channel subscription on the account.
func (c *DataAPI) Subscriptions(ctx context.Context) ([]models.ChannelSubscription, error) {
	var subs []models.ChannelSubscription

	err := listPages(ctx, func(ctx context.Context, pageToken string) (string, error) {
		params := pageParams("snippet", pageToken)
		params.Set("mine", "true")

		var resp subscriptionListResponse
		if err := c.doRequest(ctx, http.MethodGet, "/subscriptions", params, nil, &resp); err != nil {
			return "", err
		}

		for _, item := range resp.Items {
			subs = append(subs, models.ChannelSubscription{
				ChannelID:   item.Snippet.ResourceID.ChannelID,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				Thumbnail:   item.Snippet.Thumbnails.Default.URL,
			})
		}

		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, err
	}

	return subs, nil
}

// SubscriptionExists reports whether the account subscribes to the channel,
// using the server-side forChannelId filter.
func (c *DataAPI) SubscriptionExists(ctx context.Context, channelID string) (bool, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("mine", "true")
	params.Set("forChannelId", channelID)
	params.Set("maxResults", "1")

	var resp subscriptionListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/subscriptions", params, nil, &resp); err != nil {
		return false, err
	}

	return len(resp.Items) > 0, nil
}

// LikedVideos enumerates every video the account rated "like", either via the
// myRating=like query or via the implicit likes playlist.
func (c *DataAPI) LikedVideos(ctx context.Context) ([]models.LikedVideo, error) {
	if c.likesViaPlaylist {
		return c.likedVideosViaPlaylist(ctx)
	}

	var videos []models.LikedVideo

	err := listPages(ctx, func(ctx context.Context, pageToken string) (string, error) {
		params := pageParams("snippet", pageToken)
		params.Set("myRating", "like")

		var resp videoListResponse
		if err := c.doRequest(ctx, http.MethodGet, "/videos", params, nil, &resp); err != nil {
			return "", err
		}

		for _, item := range resp.Items {
			videos = append(videos, models.LikedVideo{
				VideoID: item.ID,
				Title:   item.Snippet.Title,
			})
		}

		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, err
	}

	return videos, nil
}

func (c *DataAPI) likedVideosViaPlaylist(ctx context.Context) ([]models.LikedVideo, error) {
	likesID, err := c.likesPlaylist(ctx)
	if err != nil {
		return nil, err
	}

	items, err := c.PlaylistItems(ctx, likesID)
	if err != nil {
		return nil, err
	}

	videos := make([]models.LikedVideo, len(items))
	for i, item := range items {
		videos[i] = models.LikedVideo{VideoID: item.VideoID, Title: item.Title}
	}

	return videos, nil
}

// VideoRatings retrieves the account's rating for up to 50 video ids in one call.
func (c *DataAPI) VideoRatings(ctx context.Context, videoIDs []string) (map[string]string, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("no video IDs provided")
	}
	if len(videoIDs) > maxPageSize {
		return nil, fmt.Errorf("maximum %d video IDs allowed", maxPageSize)
	}

	params := url.Values{}
	params.Set("id", strings.Join(videoIDs, ","))

	var resp ratingListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/videos/getRating", params, nil, &resp); err != nil {
		return nil, err
	}

	ratings := make(map[string]string, len(resp.Items))
	for _, item := range resp.Items {
		ratings[item.VideoID] = item.Rating
	}

	return ratings, nil
}

// Playlists enumerates every playlist owned by the account.
func (c *DataAPI) Playlists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist

	err := listPages(ctx, func(ctx context.Context, pageToken string) (string, error) {
		params := pageParams("snippet,contentDetails", pageToken)
		params.Set("mine", "true")

		var resp playlistListResponse
		if err := c.doRequest(ctx, http.MethodGet, "/playlists", params, nil, &resp); err != nil {
			return "", err
		}

		for _, item := range resp.Items {
			playlists = append(playlists, models.Playlist{
				ID:          item.ID,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				ItemCount:   item.ContentDetails.ItemCount,
			})
		}

		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, err
	}

	return playlists, nil
}

// PlaylistItems enumerates a playlist's items, returned in position order.
func (c *DataAPI) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	var items []models.PlaylistItem

	err := listPages(ctx, func(ctx context.Context, pageToken string) (string, error) {
		params := pageParams("snippet,contentDetails", pageToken)
		params.Set("playlistId", playlistID)

		var resp playlistItemListResponse
		if err := c.doRequest(ctx, http.MethodGet, "/playlistItems", params, nil, &resp); err != nil {
			return "", err
		}

		for _, item := range resp.Items {
			items = append(items, models.PlaylistItem{
				VideoID:  item.ContentDetails.VideoID,
				Title:    item.Snippet.Title,
				Position: item.Snippet.Position,
			})
		}

		return resp.NextPageToken, nil
	})
	if err != nil {
		return nil, err
	}

	// Delivery order normally matches position order; keep the guarantee
	// explicit since the replicator depends on it.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Position < items[j].Position
	})

	return items, nil
}

// PlaylistItemExists reports whether a video is already in a playlist, using
// the server-side videoId filter.
func (c *DataAPI) PlaylistItemExists(ctx context.Context, playlistID, videoID string) (bool, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("playlistId", playlistID)
	params.Set("videoId", videoID)
	params.Set("maxResults", "1")

	var resp playlistItemListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/playlistItems", params, nil, &resp); err != nil {
		return false, err
	}

	return len(resp.Items) > 0, nil
}
