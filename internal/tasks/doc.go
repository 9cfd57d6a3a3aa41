// Package tasks implements the cross-account transfer engine.
//
// The core abstraction is [TransferEngine], which orchestrates one transfer
// run: enumerate the source account's resources, filter them against an
// optional explicit selection, decide per resource whether it already exists
// on the target, perform the idempotent mutation, and aggregate
// success/failure/already-present counts per category.
//
// Every mutation is checked-then-act: the remote API does not report a
// duplicate insert as a distinguishable idempotent outcome for all resource
// kinds (playlist items in particular are happily duplicated), so existence
// checks make re-runs cheap no-ops. Instead of one remote existence check per
// resource, the engine enumerates the target once per category and builds a
// local lookup set before the mutation loop; observable behavior is identical
// with far fewer remote reads.
//
// Execution is strictly sequential with blocking I/O. The per-credential
// quota budget is opaque to the client, so mutations are paced with a fixed
// inter-call delay and a quota signal triggers a fixed backoff wait followed
// by a single item-level retry (see [BackoffPolicy]).
//
// Operations emit progress updates via channels for non-blocking status
// reporting to CLI/web layers.
package tasks
