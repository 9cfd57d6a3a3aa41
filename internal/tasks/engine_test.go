package tasks

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/youtube"
)

// mockAccount is a stateful in-memory AccountService. Successful mutations
// update its state, so re-running the engine against the same mocks exercises
// the real idempotence path.
type mockAccount struct {
	name string

	subscriptions []models.ChannelSubscription
	liked         []models.LikedVideo
	ratings       map[string]string
	playlists     []models.Playlist
	items         map[string][]models.PlaylistItem

	subscribeCalls []string
	rateCalls      []string
	createCalls    []string
	insertCalls    []string
	ratingsCalls   [][]string

	subscriptionsErr error
	likedErr         error
	playlistsErr     error
	itemsErr         error
	subscribeErr     error
	rateErr          error
	createErr        error
	insertErr        error

	// rateLimitNext makes the next N mutations fail with a 429 before
	// falling through to normal behavior.
	rateLimitNext int
}

func rateLimitedErr() error {
	return &youtube.APIError{StatusCode: 429, Reason: "rateLimitExceeded", Message: "too many requests"}
}

func (m *mockAccount) mutationGate() error {
	if m.rateLimitNext > 0 {
		m.rateLimitNext--
		return rateLimitedErr()
	}
	return nil
}

func (m *mockAccount) Account() string { return m.name }

func (m *mockAccount) Channel(ctx context.Context) (*youtube.Channel, error) {
	return &youtube.Channel{ID: "UC" + m.name, Title: m.name}, nil
}

func (m *mockAccount) Subscriptions(ctx context.Context) ([]models.ChannelSubscription, error) {
	if m.subscriptionsErr != nil {
		return nil, m.subscriptionsErr
	}
	return append([]models.ChannelSubscription(nil), m.subscriptions...), nil
}

func (m *mockAccount) SubscriptionExists(ctx context.Context, channelID string) (bool, error) {
	for _, sub := range m.subscriptions {
		if sub.ChannelID == channelID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccount) Subscribe(ctx context.Context, channelID string) error {
	m.subscribeCalls = append(m.subscribeCalls, channelID)
	if err := m.mutationGate(); err != nil {
		return err
	}
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscriptions = append(m.subscriptions, models.ChannelSubscription{ChannelID: channelID})
	return nil
}

func (m *mockAccount) LikedVideos(ctx context.Context) ([]models.LikedVideo, error) {
	if m.likedErr != nil {
		return nil, m.likedErr
	}
	return append([]models.LikedVideo(nil), m.liked...), nil
}

func (m *mockAccount) VideoRatings(ctx context.Context, videoIDs []string) (map[string]string, error) {
	if len(videoIDs) > 50 {
		return nil, fmt.Errorf("too many ids: %d", len(videoIDs))
	}
	m.ratingsCalls = append(m.ratingsCalls, videoIDs)

	out := make(map[string]string, len(videoIDs))
	for _, id := range videoIDs {
		rating := m.ratings[id]
		if rating == "" {
			rating = "none"
		}
		out[id] = rating
	}
	return out, nil
}

func (m *mockAccount) RateVideo(ctx context.Context, videoID string) error {
	m.rateCalls = append(m.rateCalls, videoID)
	if err := m.mutationGate(); err != nil {
		return err
	}
	if m.rateErr != nil {
		return m.rateErr
	}
	if m.ratings == nil {
		m.ratings = make(map[string]string)
	}
	m.ratings[videoID] = "like"
	m.liked = append(m.liked, models.LikedVideo{VideoID: videoID})
	return nil
}

func (m *mockAccount) Playlists(ctx context.Context) ([]models.Playlist, error) {
	if m.playlistsErr != nil {
		return nil, m.playlistsErr
	}
	return append([]models.Playlist(nil), m.playlists...), nil
}

func (m *mockAccount) CreatePlaylist(ctx context.Context, title, description string) (string, error) {
	m.createCalls = append(m.createCalls, title)
	if err := m.mutationGate(); err != nil {
		return "", err
	}
	if m.createErr != nil {
		return "", m.createErr
	}
	id := fmt.Sprintf("%s-pl%d", m.name, len(m.playlists)+1)
	m.playlists = append(m.playlists, models.Playlist{ID: id, Title: title, Description: description})
	return id, nil
}

func (m *mockAccount) PlaylistItems(ctx context.Context, playlistID string) ([]models.PlaylistItem, error) {
	if m.itemsErr != nil {
		return nil, m.itemsErr
	}
	return append([]models.PlaylistItem(nil), m.items[playlistID]...), nil
}

func (m *mockAccount) PlaylistItemExists(ctx context.Context, playlistID, videoID string) (bool, error) {
	for _, item := range m.items[playlistID] {
		if item.VideoID == videoID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAccount) InsertPlaylistItem(ctx context.Context, playlistID, videoID string) error {
	m.insertCalls = append(m.insertCalls, playlistID+":"+videoID)
	if err := m.mutationGate(); err != nil {
		return err
	}
	if m.insertErr != nil {
		return m.insertErr
	}
	if m.items == nil {
		m.items = make(map[string][]models.PlaylistItem)
	}
	m.items[playlistID] = append(m.items[playlistID], models.PlaylistItem{
		VideoID:  videoID,
		Position: len(m.items[playlistID]),
	})
	return nil
}

// fastExecutor paces at a rate tests will not notice and never sleeps for
// real during backoff.
func fastExecutor(policy BackoffPolicy) *Executor {
	if policy.Sleep == nil {
		policy.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	}
	return NewExecutor(100000, policy, nil)
}

func sourceFixture() *mockAccount {
	return &mockAccount{
		name: "source",
		subscriptions: []models.ChannelSubscription{
			{ChannelID: "ch1", Title: "Channel One"},
			{ChannelID: "ch2", Title: "Channel Two"},
			{ChannelID: "ch3", Title: "Channel Three"},
		},
		liked: []models.LikedVideo{
			{VideoID: "v1", Title: "Video One"},
			{VideoID: "v2", Title: "Video Two"},
		},
		ratings: map[string]string{"v1": "like", "v2": "like"},
		playlists: []models.Playlist{
			{ID: "src-pl1", Title: "Favorites", ItemCount: 2},
		},
		items: map[string][]models.PlaylistItem{
			"src-pl1": {
				{VideoID: "v10", Title: "Ten", Position: 0},
				{VideoID: "v11", Title: "Eleven", Position: 1},
			},
		},
	}
}

func checkInvariant(t *testing.T, label string, s *models.CategorySummary) {
	t.Helper()
	if s == nil {
		t.Fatalf("%s: summary is nil", label)
	}
	if s.Success+s.Failed+s.Existing != s.Total {
		t.Errorf("%s: %d + %d + %d != %d", label, s.Success, s.Failed, s.Existing, s.Total)
	}
}

func TestEngineRun(t *testing.T) {
	t.Run("full transfer onto empty target", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		progress := make(chan ProgressUpdate, 100)
		summary, err := engine.Run(context.Background(), progress, models.TransferRequest{
			Categories: []models.Category{models.All},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.RunID == "" {
			t.Error("expected run id")
		}

		checkInvariant(t, "subscriptions", summary.Subscriptions)
		checkInvariant(t, "likes", summary.LikedVideos)
		checkInvariant(t, "playlists", &summary.Playlists.CategorySummary)

		if summary.Subscriptions.Success != 3 || summary.Subscriptions.Total != 3 {
			t.Errorf("subscriptions = %+v, want 3/3 success", summary.Subscriptions)
		}
		if summary.LikedVideos.Success != 2 {
			t.Errorf("likes success = %d, want 2", summary.LikedVideos.Success)
		}
		if summary.Playlists.Success != 1 || summary.Playlists.VideosSuccess != 2 {
			t.Errorf("playlists = %+v, want 1 playlist and 2 videos", summary.Playlists)
		}
		if len(target.createCalls) != 1 || target.createCalls[0] != "Favorites" {
			t.Errorf("create calls = %v, want [Favorites]", target.createCalls)
		}

		// Item order must follow source positions.
		created := target.playlists[0].ID
		items := target.items[created]
		if len(items) != 2 || items[0].VideoID != "v10" || items[1].VideoID != "v11" {
			t.Errorf("target items = %+v, want v10 then v11", items)
		}
	})

	t.Run("second run is a no-op", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)
		req := models.TransferRequest{Categories: []models.Category{models.All}}

		if _, err := engine.Run(context.Background(), nil, req); err != nil {
			t.Fatalf("first run: %v", err)
		}

		target.subscribeCalls = nil
		target.rateCalls = nil
		target.createCalls = nil
		target.insertCalls = nil

		summary, err := engine.Run(context.Background(), nil, req)
		if err != nil {
			t.Fatalf("second run: %v", err)
		}

		if len(target.subscribeCalls)+len(target.rateCalls)+len(target.createCalls)+len(target.insertCalls) != 0 {
			t.Errorf("second run issued mutations: subscribe=%v rate=%v create=%v insert=%v",
				target.subscribeCalls, target.rateCalls, target.createCalls, target.insertCalls)
		}
		if summary.Subscriptions.Existing != 3 || summary.Subscriptions.Success != 0 {
			t.Errorf("subscriptions = %+v, want all existing", summary.Subscriptions)
		}
		if summary.LikedVideos.Existing != 2 {
			t.Errorf("likes = %+v, want all existing", summary.LikedVideos)
		}
		if summary.Playlists.Existing != 1 || summary.Playlists.VideosExisting != 2 {
			t.Errorf("playlists = %+v, want reused with all items existing", summary.Playlists)
		}
		checkInvariant(t, "subscriptions", summary.Subscriptions)
	})

	t.Run("explicit selection leaves the rest untouched", func(t *testing.T) {
		source := &mockAccount{name: "source"}
		for i := range 10 {
			source.subscriptions = append(source.subscriptions, models.ChannelSubscription{
				ChannelID: fmt.Sprintf("ch%d", i),
				Title:     fmt.Sprintf("Channel %d", i),
			})
		}
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
			Selection: map[models.Category][]string{
				models.Subscriptions: {"ch2", "ch5", "ch7"},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Subscriptions.Total != 3 || summary.Subscriptions.Success != 3 {
			t.Errorf("summary = %+v, want exactly the 3 selected", summary.Subscriptions)
		}
		if len(target.subscribeCalls) != 3 {
			t.Errorf("subscribe calls = %v, want exactly the 3 selected ids", target.subscribeCalls)
		}
		for _, id := range target.subscribeCalls {
			if id != "ch2" && id != "ch5" && id != "ch7" {
				t.Errorf("unselected channel %s was mutated", id)
			}
		}
	})

	t.Run("likes selection limits the rating prefetch", func(t *testing.T) {
		source := &mockAccount{name: "source"}
		for i := range 6 {
			source.liked = append(source.liked, models.LikedVideo{VideoID: fmt.Sprintf("v%d", i)})
		}
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		_, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.LikedVideos},
			Selection: map[models.Category][]string{
				models.LikedVideos: {"v1", "v4"},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(target.ratingsCalls) != 1 || len(target.ratingsCalls[0]) != 2 {
			t.Errorf("ratings calls = %v, want one batch of the 2 selected ids", target.ratingsCalls)
		}
	})

	t.Run("rating prefetch batches above fifty ids", func(t *testing.T) {
		source := &mockAccount{name: "source"}
		for i := range 120 {
			source.liked = append(source.liked, models.LikedVideo{VideoID: fmt.Sprintf("v%03d", i)})
		}
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.LikedVideos},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(target.ratingsCalls); got != 3 {
			t.Errorf("ratings calls = %d, want 3 batches for 120 ids", got)
		}
		if summary.LikedVideos.Success != 120 {
			t.Errorf("likes success = %d, want 120", summary.LikedVideos.Success)
		}
	})

	t.Run("per item failure does not stop the category", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target", subscribeErr: fmt.Errorf("subscription forbidden")}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Subscriptions.Failed != 3 || summary.Subscriptions.Success != 0 {
			t.Errorf("summary = %+v, want 3 failed", summary.Subscriptions)
		}
		if len(summary.Subscriptions.Failures) != 3 {
			t.Fatalf("failure records = %d, want 3", len(summary.Subscriptions.Failures))
		}
		rec := summary.Subscriptions.Failures[0]
		if rec.ResourceID != "ch1" || rec.ResourceTitle != "Channel One" || rec.ErrorDetail == "" {
			t.Errorf("failure record = %+v", rec)
		}
		checkInvariant(t, "subscriptions", summary.Subscriptions)
	})

	t.Run("enumeration failure aborts with partial summary", func(t *testing.T) {
		source := sourceFixture()
		source.likedErr = fmt.Errorf("503 backend error")
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.All},
		})
		if !errors.Is(err, shared.ErrEnumeration) {
			t.Fatalf("error = %v, want ErrEnumeration", err)
		}
		if summary == nil || summary.Subscriptions == nil {
			t.Fatal("expected partial summary with completed subscriptions category")
		}
		if summary.Subscriptions.Success != 3 {
			t.Errorf("subscriptions = %+v, want completed before abort", summary.Subscriptions)
		}
		if summary.Playlists != nil {
			t.Error("playlists should not have run after the abort")
		}
	})

	t.Run("empty request is rejected", func(t *testing.T) {
		engine := NewEngine(&mockAccount{name: "source"}, &mockAccount{name: "target"}, fastExecutor(BackoffPolicy{}), nil)
		if _, err := engine.Run(context.Background(), nil, models.TransferRequest{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("error = %v, want ErrInvalidArgument", err)
		}
	})

	t.Run("empty source category yields zero summary", func(t *testing.T) {
		engine := NewEngine(&mockAccount{name: "source"}, &mockAccount{name: "target"}, fastExecutor(BackoffPolicy{}), nil)
		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Subscriptions.Total != 0 {
			t.Errorf("summary = %+v, want empty", summary.Subscriptions)
		}
	})
}

func TestEngineBackoff(t *testing.T) {
	t.Run("rate limit waits then retries the same mutation", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target", rateLimitNext: 1}

		var waits []time.Duration
		policy := BackoffPolicy{
			MaxAttempts: 2,
			QuotaWait:   60 * time.Second,
			Sleep: func(ctx context.Context, d time.Duration) error {
				waits = append(waits, d)
				return nil
			},
		}
		engine := NewEngine(source, target, fastExecutor(policy), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(waits) != 1 || waits[0] != 60*time.Second {
			t.Errorf("waits = %v, want one 60s wait", waits)
		}
		// First channel needed two attempts, the rest one each.
		if len(target.subscribeCalls) != 4 {
			t.Errorf("subscribe calls = %v, want retry of ch1 then the rest", target.subscribeCalls)
		}
		if target.subscribeCalls[0] != "ch1" || target.subscribeCalls[1] != "ch1" {
			t.Errorf("retry should repeat the same mutation, got %v", target.subscribeCalls[:2])
		}
		if summary.Subscriptions.Success != 3 || summary.Subscriptions.Failed != 0 {
			t.Errorf("summary = %+v, want full success after backoff", summary.Subscriptions)
		}
		checkInvariant(t, "subscriptions", summary.Subscriptions)
	})

	t.Run("backoff wait is surfaced as a progress update", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target", rateLimitNext: 1}
		policy := BackoffPolicy{MaxAttempts: 2, QuotaWait: 60 * time.Second}
		engine := NewEngine(source, target, fastExecutor(policy), nil)

		progress := make(chan ProgressUpdate, 200)
		_, err := engine.Run(context.Background(), progress, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		close(progress)

		var backoffs []ProgressUpdate
		for update := range progress {
			if update.Phase == Backoff {
				backoffs = append(backoffs, update)
			}
		}
		if len(backoffs) != 1 {
			t.Fatalf("backoff updates = %d, want 1", len(backoffs))
		}
		if backoffs[0].Step != 1 {
			t.Errorf("backoff step = %d, want attempt 1", backoffs[0].Step)
		}
		if backoffs[0].Message == "" {
			t.Error("backoff update has no message")
		}
	})

	t.Run("persistent rate limiting aborts the run", func(t *testing.T) {
		source := sourceFixture()
		target := &mockAccount{name: "target", rateLimitNext: 100}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{MaxAttempts: 2}), nil)

		summary, err := engine.Run(context.Background(), nil, models.TransferRequest{
			Categories: []models.Category{models.All},
		})
		if !errors.Is(err, shared.ErrQuotaExhausted) {
			t.Fatalf("error = %v, want ErrQuotaExhausted", err)
		}
		if summary == nil || summary.Subscriptions == nil {
			t.Fatal("expected partial summary")
		}
		if summary.Subscriptions.Failed != 1 {
			t.Errorf("summary = %+v, want the aborting mutation recorded", summary.Subscriptions)
		}
		if summary.LikedVideos != nil {
			t.Error("later categories should not run after quota abort")
		}
	})

	t.Run("cancellation stops the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		source := sourceFixture()
		target := &mockAccount{name: "target"}
		engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

		_, err := engine.Run(ctx, nil, models.TransferRequest{
			Categories: []models.Category{models.Subscriptions},
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	})
}

func TestEngineProgress(t *testing.T) {
	source := sourceFixture()
	target := &mockAccount{name: "target"}
	engine := NewEngine(source, target, fastExecutor(BackoffPolicy{}), nil)

	progress := make(chan ProgressUpdate, 200)
	_, err := engine.Run(context.Background(), progress, models.TransferRequest{
		Categories: []models.Category{models.All},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(progress)

	seen := make(map[Phase]int)
	for update := range progress {
		seen[update.Phase]++
		if update.Message == "" {
			t.Errorf("empty message for phase %s", update.Phase)
		}
	}

	for _, phase := range []Phase{Enumerate, Filter, Mutate, ReplicatePlaylist, Summarize} {
		if seen[phase] == 0 {
			t.Errorf("no %s updates emitted", phase)
		}
	}
	if seen[Summarize] != 3 {
		t.Errorf("summarize updates = %d, want one per category", seen[Summarize])
	}

	t.Run("full channel does not block", func(t *testing.T) {
		tiny := make(chan ProgressUpdate, 1)
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = engine.Run(context.Background(), tiny, models.TransferRequest{
				Categories: []models.Category{models.Subscriptions},
			})
		}()

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("run blocked on a full progress channel")
		}
	})
}
