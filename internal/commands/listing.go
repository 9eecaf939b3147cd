package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/revistaviva/leitor/internal/config"
	"github.com/revistaviva/leitor/internal/content"
	"github.com/revistaviva/leitor/internal/readthrough"
)

type styles struct {
	title  lipgloss.Style
	item   lipgloss.Style
	meta   lipgloss.Style
	accent lipgloss.Style
	status lipgloss.Style
}

func newStyles(theme config.Theme) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.TitleColor)).MarginBottom(1),
		item:   lipgloss.NewStyle().PaddingLeft(2),
		meta:   lipgloss.NewStyle().Foreground(lipgloss.Color(theme.MutedColor)),
		accent: lipgloss.NewStyle().Foreground(lipgloss.Color(theme.AccentColor)),
		status: lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color(theme.MutedColor)),
	}
}

// row is one printable line of any resource.
type row struct {
	ID        string
	Title     string
	Category  string
	Author    string
	Timestamp string
	Link      string
}

// FilterValue is what the filterer matches against.
func (r row) FilterValue() string {
	return r.Title + "||" + r.Category + "||" + r.Author
}

type listing struct {
	heading   string
	rows      []row
	source    readthrough.Source
	writtenAt time.Time
}

func fromResult[T any](heading string, res readthrough.Result[T], toRow func(T) row) listing {
	rows := make([]row, 0, len(res.Items))
	for _, it := range res.Items {
		rows = append(rows, toRow(it))
	}

	return listing{
		heading:   heading,
		rows:      rows,
		source:    res.Source,
		writtenAt: res.WrittenAt,
	}
}

func authorName(a *content.Columnist) string {
	if a == nil {
		return ""
	}
	return a.Name
}

func newsListing(res readthrough.Result[content.NewsItem]) listing {
	return fromResult("Notícias", res, func(it content.NewsItem) row {
		return row{
			ID:        it.ID,
			Title:     it.Title,
			Category:  it.Category,
			Author:    authorName(it.Author),
			Timestamp: it.Timestamp,
			Link:      it.SourceURL,
		}
	})
}

func editorialListing(res readthrough.Result[content.Editorial]) listing {
	return fromResult("Editoriais", res, func(it content.Editorial) row {
		return row{
			ID:        it.ID,
			Title:     it.Title,
			Category:  it.Theme,
			Author:    authorName(it.Author),
			Timestamp: it.Timestamp,
		}
	})
}

func videoListing(res readthrough.Result[content.Video]) listing {
	return fromResult("Vídeos", res, func(it content.Video) row {
		return row{
			ID:        it.ID,
			Title:     it.Title,
			Category:  it.Category,
			Timestamp: it.Timestamp,
			Link:      it.VideoURL,
		}
	})
}

func columnistListing(res readthrough.Result[content.Columnist]) listing {
	return fromResult("Colunistas", res, func(it content.Columnist) row {
		return row{
			ID:       it.ID,
			Title:    it.Name,
			Category: it.Role,
		}
	})
}

func (l listing) render(s styles) string {
	var b strings.Builder

	b.WriteString(s.title.Render(l.heading))
	b.WriteString("\n")

	switch l.source {
	case readthrough.SourceCache:
		b.WriteString(s.status.Render(fmt.Sprintf("offline: showing copy cached %s", cachedAgo(l.writtenAt))))
		b.WriteString("\n\n")
	case readthrough.SourceNone:
		b.WriteString(s.status.Render("offline: nothing cached yet"))
		b.WriteString("\n\n")
	}

	if len(l.rows) == 0 {
		b.WriteString(s.item.Render("no items"))
		b.WriteString("\n")
		return b.String()
	}

	for _, r := range l.rows {
		b.WriteString(s.item.Render(fmt.Sprintf("%s %s", s.accent.Render(r.ID), r.Title)))
		b.WriteString("\n")

		var meta []string
		for _, m := range []string{r.Category, r.Author, formatTimestamp(r.Timestamp)} {
			if m != "" {
				meta = append(meta, m)
			}
		}
		if len(meta) > 0 {
			b.WriteString(s.item.Render("  " + s.meta.Render(strings.Join(meta, " · "))))
			b.WriteString("\n")
		}
		if r.Link != "" {
			b.WriteString(s.item.Render("  " + s.meta.Render(r.Link)))
			b.WriteString("\n")
		}
	}

	return b.String()
}

func formatTimestamp(ts string) string {
	if ts == "" {
		return ""
	}

	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}

	return t.Local().Format("02/01/2006 15:04")
}
