package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/yttransfer/internal/models"
)

var (
	_ list.Item = categoryItem{}
	_ list.Item = resourceItem{}
)

// categoryItem wraps a [models.Category] to implement [list.Item].
type categoryItem struct {
	category models.Category
	label    string
	detail   string
}

func (i categoryItem) FilterValue() string { return i.label }
func (i categoryItem) Title() string       { return i.label }
func (i categoryItem) Description() string { return i.detail }

func categoryItems() []list.Item {
	return []list.Item{
		categoryItem{models.Subscriptions, "Subscriptions", "Channel subscriptions"},
		categoryItem{models.LikedVideos, "Liked videos", "Videos rated \"like\""},
		categoryItem{models.Playlists, "Playlists", "Playlists with their items, in order"},
		categoryItem{models.All, "Everything", "All three categories"},
	}
}

// resourceItem is one selectable resource within a category.
type resourceItem struct {
	id       string
	title    string
	detail   string
	selected bool
}

func (i resourceItem) FilterValue() string { return i.title }
func (i resourceItem) Description() string { return i.detail }

func (i resourceItem) Title() string {
	box := "[ ]"
	if i.selected {
		box = "[x]"
	}
	return fmt.Sprintf("%s %s", box, i.title)
}

func subscriptionItems(subs []models.ChannelSubscription) []list.Item {
	items := make([]list.Item, len(subs))
	for i, sub := range subs {
		items[i] = resourceItem{id: sub.ChannelID, title: sub.Title, detail: sub.Description, selected: true}
	}
	return items
}

func likedVideoItems(videos []models.LikedVideo) []list.Item {
	items := make([]list.Item, len(videos))
	for i, video := range videos {
		items[i] = resourceItem{id: video.VideoID, title: video.Title, selected: true}
	}
	return items
}

func playlistItems(playlists []models.Playlist) []list.Item {
	items := make([]list.Item, len(playlists))
	for i, pl := range playlists {
		detail := fmt.Sprintf("%d videos", pl.ItemCount)
		if pl.Description != "" {
			detail = fmt.Sprintf("%s • %s", detail, pl.Description)
		}
		items[i] = resourceItem{id: pl.ID, title: pl.Title, detail: detail, selected: true}
	}
	return items
}
