package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
	"github.com/desertthunder/yttransfer/internal/youtube"
)

// TransferEngine defines the orchestrator contract consumed by the CLI and
// web presentation layers.
type TransferEngine interface {
	// Run performs one transfer invocation: enumerate, filter, mutate and
	// summarize each requested category. The returned summary covers every
	// category attempted, even when the run aborts early; re-running the
	// same request is safe because existence checks make already-transferred
	// resources cheap no-ops.
	Run(ctx context.Context, progress chan<- ProgressUpdate, req models.TransferRequest) (*models.TransferSummary, error)
}

// Engine implements [TransferEngine] over one source and one target account.
// Each invocation is independent and stateless with respect to prior runs;
// the remote accounts are the only durable state consulted.
type Engine struct {
	source youtube.AccountService
	target youtube.AccountService
	exec   *Executor
	logger *log.Logger
}

// NewEngine creates an Engine with the provided account clients and executor.
func NewEngine(source, target youtube.AccountService, exec *Executor, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if exec == nil {
		exec = NewExecutor(0, DefaultBackoffPolicy(), logger)
	}

	return &Engine{
		source: source,
		target: target,
		exec:   exec,
		logger: logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run performs one transfer invocation over the requested categories.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, req models.TransferRequest) (*models.TransferSummary, error) {
	if e.source == nil || e.target == nil {
		return nil, fmt.Errorf("%w: account client not initialized", shared.ErrNotAuthenticated)
	}
	if len(req.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories requested", shared.ErrInvalidArgument)
	}

	summary := &models.TransferSummary{RunID: shared.GenerateID()}
	e.logger.Info("starting transfer run", "run_id", summary.RunID, "categories", req.Categories)

	e.exec.OnBackoff(func(attempt int, wait time.Duration) {
		e.sendProgress(progress, backoffUpdate(attempt, wait))
	})
	defer e.exec.OnBackoff(nil)

	if req.Includes(models.Subscriptions) {
		sub, err := e.transferSubscriptions(ctx, progress, req.SelectionFor(models.Subscriptions))
		summary.Subscriptions = sub
		if err != nil {
			return summary, err
		}
	}

	if req.Includes(models.LikedVideos) {
		likes, err := e.transferLikedVideos(ctx, progress, req.SelectionFor(models.LikedVideos))
		summary.LikedVideos = likes
		if err != nil {
			return summary, err
		}
	}

	if req.Includes(models.Playlists) {
		playlists, err := e.transferPlaylists(ctx, progress, req.SelectionFor(models.Playlists))
		summary.Playlists = playlists
		if err != nil {
			return summary, err
		}
	}

	return summary, nil
}

// abortive reports whether a mutation error must end the run rather than be
// recorded against a single resource.
func abortive(err error) bool {
	return errors.Is(err, shared.ErrQuotaExhausted) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// filterSelection keeps only the items whose id is in the selection set. A
// nil selection keeps everything. Filtered-out resources are untouched: no
// existence check or mutation is performed for them.
func filterSelection[T any](items []T, selection map[string]bool, id func(T) string) []T {
	if selection == nil {
		return items
	}

	kept := make([]T, 0, len(selection))
	for _, item := range items {
		if selection[id(item)] {
			kept = append(kept, item)
		}
	}
	return kept
}

// transferSubscriptions replicates channel subscriptions onto the target.
//
// The target's subscriptions are enumerated once into a lookup set, so the
// per-resource existence check costs no remote call.
func (e *Engine) transferSubscriptions(ctx context.Context, progress chan<- ProgressUpdate, selection map[string]bool) (*models.CategorySummary, error) {
	summary := &models.CategorySummary{}
	cat := models.Subscriptions

	e.sendProgress(progress, enumerateUpdate(cat, e.source.Account()))
	subs, err := e.source.Subscriptions(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: source subscriptions: %v", shared.ErrEnumeration, err)
	}
	e.sendProgress(progress, enumeratedUpdate(cat, e.source.Account(), len(subs)))

	filtered := filterSelection(subs, selection, func(s models.ChannelSubscription) string { return s.ChannelID })
	e.sendProgress(progress, filteredUpdate(cat, len(filtered), len(subs)))

	targetSubs, err := e.target.Subscriptions(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: target subscriptions: %v", shared.ErrEnumeration, err)
	}

	existing := make(map[string]bool, len(targetSubs))
	for _, sub := range targetSubs {
		existing[sub.ChannelID] = true
	}

	for i, sub := range filtered {
		summary.Total++

		if existing[sub.ChannelID] {
			summary.Existing++
			e.sendProgress(progress, skipUpdate(cat, i+1, len(filtered), sub.Title))
			continue
		}

		e.sendProgress(progress, mutateUpdate(cat, i+1, len(filtered), sub.Title))

		channelID := sub.ChannelID
		err := e.exec.Do(ctx, func(ctx context.Context) error {
			return e.target.Subscribe(ctx, channelID)
		})
		if err == nil {
			summary.Success++
			continue
		}

		summary.Failed++
		summary.Failures = append(summary.Failures, models.FailureRecord{
			ResourceID:    sub.ChannelID,
			ResourceTitle: sub.Title,
			ErrorDetail:   err.Error(),
		})

		if abortive(err) {
			return summary, err
		}

		e.logger.Warn("failed to subscribe", "channel", sub.Title, "error", err)
	}

	e.sendProgress(progress, summarizeUpdate(cat, summary))
	return summary, nil
}

// transferLikedVideos replicates "like" ratings onto the target.
//
// Already-liked videos are detected with the batched rating check (up to 50
// ids per call) over the filtered selection only.
func (e *Engine) transferLikedVideos(ctx context.Context, progress chan<- ProgressUpdate, selection map[string]bool) (*models.CategorySummary, error) {
	summary := &models.CategorySummary{}
	cat := models.LikedVideos

	e.sendProgress(progress, enumerateUpdate(cat, e.source.Account()))
	videos, err := e.source.LikedVideos(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: source liked videos: %v", shared.ErrEnumeration, err)
	}
	e.sendProgress(progress, enumeratedUpdate(cat, e.source.Account(), len(videos)))

	filtered := filterSelection(videos, selection, func(v models.LikedVideo) string { return v.VideoID })
	e.sendProgress(progress, filteredUpdate(cat, len(filtered), len(videos)))

	liked, err := e.targetLikes(ctx, filtered)
	if err != nil {
		return summary, fmt.Errorf("%w: target ratings: %v", shared.ErrEnumeration, err)
	}

	for i, video := range filtered {
		summary.Total++

		if liked[video.VideoID] {
			summary.Existing++
			e.sendProgress(progress, skipUpdate(cat, i+1, len(filtered), video.Title))
			continue
		}

		e.sendProgress(progress, mutateUpdate(cat, i+1, len(filtered), video.Title))

		videoID := video.VideoID
		err := e.exec.Do(ctx, func(ctx context.Context) error {
			return e.target.RateVideo(ctx, videoID)
		})
		if err == nil {
			summary.Success++
			continue
		}

		summary.Failed++
		summary.Failures = append(summary.Failures, models.FailureRecord{
			ResourceID:    video.VideoID,
			ResourceTitle: video.Title,
			ErrorDetail:   err.Error(),
		})

		if abortive(err) {
			return summary, err
		}

		e.logger.Warn("failed to rate video", "video", video.Title, "error", err)
	}

	e.sendProgress(progress, summarizeUpdate(cat, summary))
	return summary, nil
}

// targetLikes returns the set of video ids already rated "like" on the
// target, querying ratings in batches of up to 50.
func (e *Engine) targetLikes(ctx context.Context, videos []models.LikedVideo) (map[string]bool, error) {
	liked := make(map[string]bool, len(videos))

	for start := 0; start < len(videos); start += ratingBatchSize {
		end := start + ratingBatchSize
		if end > len(videos) {
			end = len(videos)
		}

		ids := make([]string, 0, end-start)
		for _, video := range videos[start:end] {
			ids = append(ids, video.VideoID)
		}

		ratings, err := e.target.VideoRatings(ctx, ids)
		if err != nil {
			return nil, err
		}

		for id, rating := range ratings {
			if rating == "like" {
				liked[id] = true
			}
		}
	}

	return liked, nil
}

// ratingBatchSize is the maximum number of video ids per rating check call.
const ratingBatchSize = 50
