package content

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMissingID = errors.New("content: row has no id")

func MapColumnist(r ColumnistRow) (Columnist, error) {
	if r.ID == "" {
		return Columnist{}, fmt.Errorf("MapColumnist: %w", ErrMissingID)
	}

	return Columnist{
		ID:        string(r.ID),
		Name:      r.Name,
		Bio:       r.Bio,
		AvatarURL: r.AvatarURL,
		Role:      r.Role,
	}, nil
}

// author maps an embedded author relation. A relation without an id is
// dropped rather than failing the row it belongs to.
func author(r *ColumnistRow) *Columnist {
	if r == nil {
		return nil
	}

	c, err := MapColumnist(*r)
	if err != nil {
		return nil
	}

	return &c
}

func MapNews(r NewsRow) (NewsItem, error) {
	if r.ID == "" {
		return NewsItem{}, fmt.Errorf("MapNews: %w", ErrMissingID)
	}

	return NewsItem{
		ID:        string(r.ID),
		Title:     r.Title,
		Excerpt:   r.Excerpt,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		Category:  r.Category,
		Timestamp: r.PublishedAt,
		SourceURL: r.SourceURL,
		Author:    author(r.Author),
	}, nil
}

func MapEditorial(r EditorialRow) (Editorial, error) {
	if r.ID == "" {
		return Editorial{}, fmt.Errorf("MapEditorial: %w", ErrMissingID)
	}

	return Editorial{
		ID:        string(r.ID),
		Title:     r.Title,
		Summary:   r.Summary,
		Content:   r.Content,
		ImageURL:  r.ImageURL,
		Theme:     r.Theme,
		Timestamp: r.PublishedAt,
		Author:    author(r.Author),
	}, nil
}

func MapVideo(r VideoRow) (Video, error) {
	if r.ID == "" {
		return Video{}, fmt.Errorf("MapVideo: %w", ErrMissingID)
	}

	return Video{
		ID:           string(r.ID),
		Title:        r.Title,
		Description:  r.Description,
		VideoURL:     r.VideoURL,
		ThumbnailURL: r.ThumbnailURL,
		Category:     r.Category,
		Timestamp:    r.PublishedAt,
		Duration:     r.Duration,
	}, nil
}

// Decode lifts a row mapper to raw json input, so rows can be kept in the
// exact form the backend sent them and decoded one at a time.
func Decode[R, T any](mapper func(R) (T, error)) func(json.RawMessage) (T, error) {
	return func(raw json.RawMessage) (T, error) {
		var r R
		if err := json.Unmarshal(raw, &r); err != nil {
			var zero T
			return zero, fmt.Errorf("content.Decode: %w", err)
		}

		return mapper(r)
	}
}
