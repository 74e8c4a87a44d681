package view

import (
	"net/url"
	"strings"
)

const (
	ActionOpenInTab = "open-in-tab"
	openInTabTitle  = "Open Progress DZ in New Tab"
)

// webModeMinWidth is the width above which a page is treated as a full tab
// rather than the side panel.
const webModeMinWidth = 600

type MenuAction struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Visible bool   `json:"visible"`
}

// WebMode reports whether the client is the full-tab UI: wide enough and
// not opened with a panel query parameter.
func WebMode(width int, query url.Values) bool {
	if width <= webModeMinWidth {
		return false
	}
	for k := range query {
		if strings.Contains(k, "panel") {
			return false
		}
	}
	for _, vs := range query {
		for _, v := range vs {
			if strings.Contains(v, "panel") {
				return false
			}
		}
	}
	return true
}

// Menu lists the host actions.  open-in-tab is hidden when the client is
// already the full-tab UI.
func Menu(publicURL string, webMode bool) []MenuAction {
	return []MenuAction{{
		ID:      ActionOpenInTab,
		Title:   openInTabTitle,
		URL:     strings.TrimRight(publicURL, "/") + "/",
		Visible: !webMode,
	}}
}
