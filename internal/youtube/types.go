// YouTube Data API wire types.
//
// Response shapes based on https://developers.google.com/youtube/v3/docs
package youtube

// thumbnail represents a single thumbnail rendition.
type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type thumbnails struct {
	Default thumbnail `json:"default"`
	Medium  thumbnail `json:"medium"`
	High    thumbnail `json:"high"`
}

type resourceID struct {
	Kind       string `json:"kind"`
	ChannelID  string `json:"channelId,omitempty"`
	VideoID    string `json:"videoId,omitempty"`
	PlaylistID string `json:"playlistId,omitempty"`
}

// subscriptionResource is one item of a subscriptions.list response.
type subscriptionResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		ResourceID  resourceID `json:"resourceId"`
		Thumbnails  thumbnails `json:"thumbnails"`
	} `json:"snippet"`
}

type subscriptionListResponse struct {
	Items         []subscriptionResource `json:"items"`
	NextPageToken string                 `json:"nextPageToken"`
}

// videoResource is one item of a videos.list response.
type videoResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title string `json:"title"`
	} `json:"snippet"`
}

type videoListResponse struct {
	Items         []videoResource `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

// playlistResource is one item of a playlists.list response.
type playlistResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

type playlistListResponse struct {
	Items         []playlistResource `json:"items"`
	NextPageToken string             `json:"nextPageToken"`
}

// playlistItemResource is one item of a playlistItems.list response.
type playlistItemResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title      string     `json:"title"`
		Position   int        `json:"position"`
		PlaylistID string     `json:"playlistId"`
		ResourceID resourceID `json:"resourceId"`
	} `json:"snippet"`
	ContentDetails struct {
		VideoID string `json:"videoId"`
	} `json:"contentDetails"`
}

type playlistItemListResponse struct {
	Items         []playlistItemResource `json:"items"`
	NextPageToken string                 `json:"nextPageToken"`
}

// ratingListResponse is the videos.getRating response.
type ratingListResponse struct {
	Items []struct {
		VideoID string `json:"videoId"`
		Rating  string `json:"rating"`
	} `json:"items"`
}

// channelListResponse is the channels.list response. ContentDetails carries
// the implicit related playlists, including the account's likes playlist.
type channelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			RelatedPlaylists struct {
				Likes string `json:"likes"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

// Request bodies for the insert endpoints.

type subscriptionInsertBody struct {
	Snippet struct {
		ResourceID resourceID `json:"resourceId"`
	} `json:"snippet"`
}

type playlistInsertBody struct {
	Snippet struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"snippet"`
	Status struct {
		PrivacyStatus string `json:"privacyStatus"`
	} `json:"status"`
}

type playlistItemInsertBody struct {
	Snippet struct {
		PlaylistID string     `json:"playlistId"`
		ResourceID resourceID `json:"resourceId"`
	} `json:"snippet"`
}
