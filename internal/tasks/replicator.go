package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/yttransfer/internal/models"
	"github.com/desertthunder/yttransfer/internal/shared"
)

// PlaylistReplicationResult captures the outcome of replicating one source
// playlist onto the target.
type PlaylistReplicationResult struct {
	Source   models.Playlist
	TargetID string

	// Created is true when a new private playlist was created on the target,
	// false when an existing playlist with the same title was reused.
	Created bool

	// CreateFailed is true when the playlist could not be created; no item
	// work is attempted in that case.
	CreateFailed bool

	ItemsAdded    int
	ItemsFailed   int
	ItemsExisting int
	Failures      []models.FailureRecord
}

// transferPlaylists replicates every selected source playlist onto the
// target, preserving item order.
//
// A playlist-level failure (create failed, or nothing added with at least
// one item failure) does not stop the remaining playlists.
func (e *Engine) transferPlaylists(ctx context.Context, progress chan<- ProgressUpdate, selection map[string]bool) (*models.PlaylistSummary, error) {
	summary := &models.PlaylistSummary{}
	cat := models.Playlists

	e.sendProgress(progress, enumerateUpdate(cat, e.source.Account()))
	playlists, err := e.source.Playlists(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: source playlists: %v", shared.ErrEnumeration, err)
	}
	e.sendProgress(progress, enumeratedUpdate(cat, e.source.Account(), len(playlists)))

	filtered := filterSelection(playlists, selection, func(p models.Playlist) string { return p.ID })
	e.sendProgress(progress, filteredUpdate(cat, len(filtered), len(playlists)))

	titleIndex, err := e.targetPlaylistTitles(ctx)
	if err != nil {
		return summary, fmt.Errorf("%w: target playlists: %v", shared.ErrEnumeration, err)
	}

	for i, pl := range filtered {
		e.sendProgress(progress, replicateUpdate(i+1, len(filtered), pl))

		res, err := e.replicatePlaylist(ctx, progress, pl, titleIndex)
		summary.Total++
		mergePlaylistResult(summary, res)

		if err != nil {
			return summary, err
		}
	}

	e.sendProgress(progress, summarizeUpdate(cat, summary))
	return summary, nil
}

// targetPlaylistTitles enumerates the target's playlists once and maps exact
// title to playlist id. When the target holds several playlists with the same
// title, the first one enumerated wins.
func (e *Engine) targetPlaylistTitles(ctx context.Context) (map[string]string, error) {
	playlists, err := e.target.Playlists(ctx)
	if err != nil {
		return nil, err
	}

	index := make(map[string]string, len(playlists))
	for _, pl := range playlists {
		if _, ok := index[pl.Title]; !ok {
			index[pl.Title] = pl.ID
		}
	}
	return index, nil
}

// replicatePlaylist copies one playlist: reuse the target playlist with the
// same exact title or create a new private one, then append the missing items
// in source order.
//
// The title index is updated with newly created playlists, so two source
// playlists sharing a title land in one target playlist rather than two.
// The returned error is non-nil only for abort-level failures (quota
// exhaustion, cancellation, enumeration of an existing target playlist);
// playlist- and item-level failures are reported through the result.
func (e *Engine) replicatePlaylist(ctx context.Context, progress chan<- ProgressUpdate, pl models.Playlist, titleIndex map[string]string) (*PlaylistReplicationResult, error) {
	res := &PlaylistReplicationResult{Source: pl}
	cat := models.Playlists

	present := make(map[string]bool)

	if id, ok := titleIndex[pl.Title]; ok {
		res.TargetID = id

		items, err := e.target.PlaylistItems(ctx, id)
		if err != nil {
			return res, fmt.Errorf("%w: target playlist items: %v", shared.ErrEnumeration, err)
		}
		for _, item := range items {
			present[item.VideoID] = true
		}
	} else {
		var createdID string
		err := e.exec.Do(ctx, func(ctx context.Context) error {
			id, err := e.target.CreatePlaylist(ctx, pl.Title, pl.Description)
			createdID = id
			return err
		})
		if err != nil {
			res.CreateFailed = true
			res.Failures = append(res.Failures, models.FailureRecord{
				ResourceID:    pl.ID,
				ResourceTitle: pl.Title,
				ErrorDetail:   err.Error(),
			})

			if abortive(err) {
				return res, err
			}

			e.logger.Warn("failed to create playlist", "playlist", pl.Title, "error", err)
			return res, nil
		}

		res.TargetID = createdID
		res.Created = true
		titleIndex[pl.Title] = createdID
	}

	items, err := e.source.PlaylistItems(ctx, pl.ID)
	if err != nil {
		return res, fmt.Errorf("%w: source playlist items: %v", shared.ErrEnumeration, err)
	}

	for i, item := range items {
		if present[item.VideoID] {
			res.ItemsExisting++
			e.sendProgress(progress, skipUpdate(cat, i+1, len(items), item.Title))
			continue
		}

		e.sendProgress(progress, mutateUpdate(cat, i+1, len(items), item.Title))

		videoID := item.VideoID
		err := e.exec.Do(ctx, func(ctx context.Context) error {
			return e.target.InsertPlaylistItem(ctx, res.TargetID, videoID)
		})
		if err == nil {
			res.ItemsAdded++
			present[item.VideoID] = true
			continue
		}

		res.ItemsFailed++
		res.Failures = append(res.Failures, models.FailureRecord{
			ResourceID:    item.VideoID,
			ResourceTitle: item.Title,
			ErrorDetail:   err.Error(),
		})

		if abortive(err) {
			return res, err
		}

		e.logger.Warn("failed to add playlist item", "playlist", pl.Title, "video", item.Title, "error", err)
	}

	return res, nil
}

// mergePlaylistResult folds one replication result into the category summary.
//
// Playlist-level buckets are mutually exclusive: Failed when creation failed
// or nothing was added despite item failures, Success when at least one item
// was newly added, Existing otherwise. A reused playlist whose items were all
// already present is therefore Existing, not a failure.
func mergePlaylistResult(summary *models.PlaylistSummary, res *PlaylistReplicationResult) {
	summary.VideosSuccess += res.ItemsAdded
	summary.VideosFailed += res.ItemsFailed
	summary.VideosExisting += res.ItemsExisting
	summary.Failures = append(summary.Failures, res.Failures...)

	switch {
	case res.CreateFailed:
		summary.Failed++
	case res.ItemsAdded > 0:
		summary.Success++
	case res.ItemsFailed > 0:
		summary.Failed++
	default:
		summary.Existing++
	}
}
