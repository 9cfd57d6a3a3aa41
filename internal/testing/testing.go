// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/tasks"
	"github.com/desertthunder/yttransfer/internal/youtube"
)

// MockAccountService is a configurable test double for [youtube.AccountService].
//
// Mutations are recorded but do not change the configured state; tests that
// need stateful behavior layer it on top via the error and call hooks.
type MockAccountService struct {
	Name          string
	ChannelInfo   *youtube.Channel
	Subs          []models.ChannelSubscription
	Liked         []models.LikedVideo
	Ratings       map[string]string
	PlaylistList  []models.Playlist
	Items         map[string][]models.PlaylistItem
	Err           error
	SubscribedTo  []string
	RatedVideos   []string
	CreatedTitles []string
	InsertedItems []string
}

func (m *MockAccountService) Account() string { return m.Name }

func (m *MockAccountService) Channel(ctx context.Context) (*youtube.Channel, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ChannelInfo == nil {
		return &youtube.Channel{ID: "UC-" + m.Name, Title: m.Name}, nil
	}
	return m.ChannelInfo, nil
}

func (m *MockAccountService) Subscriptions(ctx context.Context) ([]models.ChannelSubscription, error) {
	return m.Subs, m.Err
}

func (m *MockAccountService) SubscriptionExists(ctx context.Context, channelID string) (bool, error) {
	for _, sub := range m.Subs {
		if sub.ChannelID == channelID {
			return true, m.Err
		}
	}
	return false, m.Err
}

func (m *MockAccountService) Subscribe(ctx context.Context, channelID string) error {
	m.SubscribedTo = append(m.SubscribedTo, channelID)
	return m.Err
}

func (m *MockAccountService) LikedVideos(ctx context.Context) ([]models.LikedVideo, error) {
	return m.Liked, m.Err
}

func (m *MockAccountService) VideoRatings(ctx context.Context, videoIDs []string) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]string, len(videoIDs))
	for _, id := range videoIDs {
		rating := m.Ratings[id]
		if rating == "" {
			rating = "none"
		}
		out[id] = rating
	}
	return out, nil
}

func (m *MockAccountService) RateVideo(ctx context.Context, videoID string) error {
	m.RatedVideos = append(m.RatedVideos, videoID)
	return m.Err
}

func (m *MockAccountService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	return m.PlaylistList, m.Err
}

func (m *MockAccountService) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	m.CreatedTitles = append(m.CreatedTitles, title)
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("%s-pl%d", m.Name, len(m.CreatedTitles)), nil
}

func (m *MockAccountService) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Items[playlistID], nil
}

func (m *MockAccountService) PlaylistItemExists(ctx context.Context, playlistID, videoID string) (bool, error) {
	for _, item := range m.Items[playlistID] {
		if item.VideoID == videoID {
			return true, m.Err
		}
	}
	return false, m.Err
}

func (m *MockAccountService) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	m.InsertedItems = append(m.InsertedItems, playlistID+":"+videoID)
	return m.Err
}

// MockEngine is a test double for [tasks.TransferEngine] returning canned results.
type MockEngine struct {
	Summary  *models.TransferSummary
	Err      error
	Requests []models.TransferRequest
}

func (m *MockEngine) Run(ctx context.Context, progress chan<- tasks.ProgressUpdate, req models.TransferRequest) (*models.TransferSummary, error) {
	m.Requests = append(m.Requests, req)
	return m.Summary, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
