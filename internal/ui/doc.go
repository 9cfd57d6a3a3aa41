// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for cross-account transfers:
//  1. [CategoryView] : Choose a resource category (subscriptions, liked videos, playlists, everything)
//  2. [ResourceView] : Multi-select individual resources within the category
//  3. [ConfirmView] : Confirm the transfer
//  4. [TransferView] : Monitor real-time progress updates
//  5. [ResultView] : Display per-category counts and failed resources
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the transfer engine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, space, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
