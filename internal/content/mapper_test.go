package content

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/revistaviva/leitor/internal/test"
)

func TestMapNews(t *testing.T) {
	raw := `{"id":"a1","title":"X","published_at":"2024-01-01","image_url":"u","category":"Tech"}`

	item, err := Decode(MapNews)(json.RawMessage(raw))
	test.HandleError(t, err)

	test.DeepEqual(t, NewsItem{
		ID:        "a1",
		Title:     "X",
		Timestamp: "2024-01-01",
		ImageURL:  "u",
		Category:  "Tech",
	}, item, "bad news mapping")

	out, err := json.Marshal(item)
	test.HandleError(t, err)
	test.Equal(t, `{"id":"a1","title":"X","imageUrl":"u","category":"Tech","timestamp":"2024-01-01"}`, string(out), "absent fields must be omitted")
}

func TestMapNewsComposesAuthor(t *testing.T) {
	raw := `{"id":7,"title":"Y","author":{"id":3,"name":"Ana","avatar_url":"a.png"}}`

	item, err := Decode(MapNews)(json.RawMessage(raw))
	test.HandleError(t, err)

	test.Equal(t, "7", item.ID, "numeric ids become strings")
	if item.Author == nil {
		t.Fatal("expected author to be mapped")
	}
	test.DeepEqual(t, Columnist{ID: "3", Name: "Ana", AvatarURL: "a.png"}, *item.Author, "bad author")
}

func TestMapNewsAuthorWithoutIDIsDropped(t *testing.T) {
	item, err := MapNews(NewsRow{ID: "1", Author: &ColumnistRow{Name: "ghost"}})
	test.HandleError(t, err)

	if item.Author != nil {
		t.Fatalf("expected author to be dropped, got %+v", item.Author)
	}
}

func TestMapNullFields(t *testing.T) {
	raw := `{"id":"e1","title":"T","summary":null,"theme":null,"author":null}`

	ed, err := Decode(MapEditorial)(json.RawMessage(raw))
	test.HandleError(t, err)
	test.DeepEqual(t, Editorial{ID: "e1", Title: "T"}, ed, "nulls should read as absent")
}

func TestMapVideo(t *testing.T) {
	v, err := MapVideo(VideoRow{
		ID:           "v1",
		Title:        "Entrevista",
		VideoURL:     "https://youtu.be/x",
		ThumbnailURL: "https://i.ytimg.com/x.jpg",
		PublishedAt:  "2024-02-02T10:00:00Z",
		Duration:     "12:30",
	})
	test.HandleError(t, err)

	test.Equal(t, "v1", v.ID, "bad id")
	test.Equal(t, "https://youtu.be/x", v.VideoURL, "bad video url")
	test.Equal(t, "https://i.ytimg.com/x.jpg", v.ThumbnailURL, "bad thumbnail")
	test.Equal(t, "2024-02-02T10:00:00Z", v.Timestamp, "bad timestamp")
	test.Equal(t, "12:30", v.Duration, "bad duration")
}

func TestMissingID(t *testing.T) {
	_, err := MapNews(NewsRow{Title: "no id"})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}

	_, err = MapEditorial(EditorialRow{})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}

	_, err = MapVideo(VideoRow{})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}

	_, err = MapColumnist(ColumnistRow{})
	if !errors.Is(err, ErrMissingID) {
		t.Fatalf("expected ErrMissingID, got %v", err)
	}
}

func TestDecodeMalformedRow(t *testing.T) {
	_, err := Decode(MapNews)(json.RawMessage(`{"id":"1","title":42}`))
	if err == nil {
		t.Fatal("expected error for wrong field type")
	}
}

func TestIDUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want ID
	}{
		{in: `"abc"`, want: "abc"},
		{in: `12`, want: "12"},
		{in: `null`, want: ""},
		{in: `1.5e3`, want: "1.5e3"},
	}

	for _, c := range cases {
		var id ID
		test.HandleError(t, json.Unmarshal([]byte(c.in), &id))
		test.Equal(t, c.want, id, "bad id for "+c.in)
	}

	var id ID
	if err := json.Unmarshal([]byte(`{}`), &id); err == nil {
		t.Fatal("expected objects to be rejected")
	}
}
