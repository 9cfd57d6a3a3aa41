// Package models defines domain entities for the YouTube account transfer service.
//
// The package contains two categories of types:
//
// 1. Resource snapshots: Immutable value objects read from the source account at enumeration time
//   - [ChannelSubscription] : A subscription to a channel
//   - [LikedVideo] : A video rated "like"
//   - [Playlist] : Playlist metadata including its item count
//   - [PlaylistItem] : A video within a playlist, ordered by position
//
// 2. Transfer bookkeeping: Per-run aggregates produced by the orchestrator
//   - [TransferRequest] : Category selection plus optional explicit resource ids
//   - [CategorySummary] : success/failed/existing counts with the summation invariant
//   - [PlaylistSummary] : playlist-level counts plus independent per-video counts
//   - [TransferSummary] : the outward-facing per-run result consumed by CLI and web layers
//   - [FailureRecord] : per-resource failure detail for user-facing reporting
//
// All entities are transient and per-run; the remote accounts are the only
// durable state the engine consults. The Model and Repository interfaces back
// the edge-layer run history persisted by internal/repositories.
package models
