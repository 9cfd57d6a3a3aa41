// YouTube Data API [AccountService] implementation.
//
// Talks to the REST surface directly with an OAuth2-authenticated
// [http.Client]; token acquisition and refresh live in internal/auth.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const defaultBaseURL = "https://www.googleapis.com/youtube/v3"

// DataAPI implements [AccountService] against the YouTube Data API v3.
type DataAPI struct {
	account          string
	baseURL          string
	httpClient       *http.Client
	likesViaPlaylist bool

	// cached likes playlist id, resolved on first use
	likesPlaylistID string
}

// NewDataAPI creates a client for one account role. The http.Client must be
// authenticated for that account (see internal/auth); baseURL defaults to the
// public API endpoint when empty.
func NewDataAPI(account, baseURL string, client *http.Client) *DataAPI {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &DataAPI{
		account:    account,
		baseURL:    baseURL,
		httpClient: client,
	}
}

// UseLikesPlaylist switches liked-video enumeration from the myRating=like
// query to the account's implicit likes playlist. Both access patterns yield
// the same logical data.
func (c *DataAPI) UseLikesPlaylist(enabled bool) {
	c.likesViaPlaylist = enabled
}

// Account returns the caller-chosen identifier for this account role.
func (c *DataAPI) Account() string {
	return c.account
}

// doRequest performs an authenticated request against the Data API.
//
// Non-2xx responses are decoded into an [*APIError] carrying the status code
// and the first error reason from the body, so callers can classify
// rate-limit signals without string matching.
func (c *DataAPI) doRequest(ctx context.Context, method, endpoint string, params url.Values, body, result any) error {
	apiURL := c.baseURL + endpoint
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}

		var errResp apiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil {
			apiErr.Message = errResp.Error.Message
			if len(errResp.Error.Errors) > 0 {
				apiErr.Reason = errResp.Error.Errors[0].Reason
			}
		}

		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Channel retrieves the authenticated account's own channel identity.
func (c *DataAPI) Channel(ctx context.Context) (*Channel, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("mine", "true")

	var resp channelListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/channels", params, nil, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("no channel found for account %q", c.account)
	}

	return &Channel{
		ID:    resp.Items[0].ID,
		Title: resp.Items[0].Snippet.Title,
	}, nil
}

// likesPlaylist resolves and caches the id of the account's implicit likes playlist.
func (c *DataAPI) likesPlaylist(ctx context.Context) (string, error) {
	if c.likesPlaylistID != "" {
		return c.likesPlaylistID, nil
	}

	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("mine", "true")

	var resp channelListResponse
	if err := c.doRequest(ctx, http.MethodGet, "/channels", params, nil, &resp); err != nil {
		return "", err
	}

	if len(resp.Items) == 0 || resp.Items[0].ContentDetails.RelatedPlaylists.Likes == "" {
		return "", fmt.Errorf("no likes playlist found for account %q", c.account)
	}

	c.likesPlaylistID = resp.Items[0].ContentDetails.RelatedPlaylists.Likes
	return c.likesPlaylistID, nil
}
