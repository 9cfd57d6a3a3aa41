// Package repositories implements SQLite persistence for run history.
//
// The transfer engine keeps no state across invocations; the remote accounts
// are the source of truth for idempotence. History rows exist purely for the
// `transfer history` command and the web dashboard, recorded by the edge
// layers after a run finishes.
//
// [TransferRunRepository] implements models.Repository[*models.TransferRun].
// Summaries are stored denormalized as JSON per run; failure records are
// additionally flattened into their own table so they can be queried across
// runs.
package repositories
