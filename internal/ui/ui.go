// package ui provides lipgloss styles for CLI output
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/philipp-eisen/song-game/internal/models"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// Title renders a section heading.
func Title(s string) string {
	return styles.title.Render(s)
}

// Help renders secondary hint text.
func Help(s string) string {
	return styles.help.Render(s)
}

// PlaylistBadge colors a playlist status for terminal display.
func PlaylistBadge(status models.PlaylistStatus) string {
	switch status {
	case models.PlaylistReady:
		return styles.ok.Render(string(status))
	case models.PlaylistFailed:
		return styles.err.Render(string(status))
	default:
		return styles.warn.Render(string(status))
	}
}

// TrackBadge colors a track status for terminal display.
func TrackBadge(status models.TrackStatus) string {
	switch status {
	case models.TrackReady:
		return styles.ok.Render(string(status))
	case models.TrackUnmatched:
		return styles.err.Render(string(status))
	default:
		return styles.warn.Render(string(status))
	}
}
