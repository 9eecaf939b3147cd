package content

// Rows as the backend returns them.

type ColumnistRow struct {
	ID        ID     `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      string `json:"role,omitempty"`
}

type NewsRow struct {
	ID          ID            `json:"id"`
	Title       string        `json:"title"`
	Excerpt     string        `json:"excerpt,omitempty"`
	Content     string        `json:"content,omitempty"`
	PublishedAt string        `json:"published_at,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	Category    string        `json:"category,omitempty"`
	SourceURL   string        `json:"source_url,omitempty"`
	Author      *ColumnistRow `json:"author,omitempty"`
}

type EditorialRow struct {
	ID          ID            `json:"id"`
	Title       string        `json:"title"`
	Summary     string        `json:"summary,omitempty"`
	Content     string        `json:"content,omitempty"`
	Theme       string        `json:"theme,omitempty"`
	ImageURL    string        `json:"image_url,omitempty"`
	PublishedAt string        `json:"published_at,omitempty"`
	Author      *ColumnistRow `json:"author,omitempty"`
}

type VideoRow struct {
	ID           ID     `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Category     string `json:"category,omitempty"`
	PublishedAt  string `json:"published_at,omitempty"`
	Duration     string `json:"duration,omitempty"`
}

// Canonical items handed to the rest of the application. Optional fields are
// omitted when empty, never filled with placeholders.

type Columnist struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Bio       string `json:"bio,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      string `json:"role,omitempty"`
}

type NewsItem struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Excerpt   string     `json:"excerpt,omitempty"`
	Content   string     `json:"content,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Category  string     `json:"category,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
	SourceURL string     `json:"sourceUrl,omitempty"`
	Author    *Columnist `json:"author,omitempty"`
}

type Editorial struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Summary   string     `json:"summary,omitempty"`
	Content   string     `json:"content,omitempty"`
	ImageURL  string     `json:"imageUrl,omitempty"`
	Theme     string     `json:"theme,omitempty"`
	Timestamp string     `json:"timestamp,omitempty"`
	Author    *Columnist `json:"author,omitempty"`
}

type Video struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	VideoURL     string `json:"videoUrl,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Category     string `json:"category,omitempty"`
	Timestamp    string `json:"timestamp,omitempty"`
	Duration     string `json:"duration,omitempty"`
}
