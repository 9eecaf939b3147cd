package readthrough

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/revistaviva/leitor/internal/cache"
	"github.com/revistaviva/leitor/internal/content"
	"github.com/revistaviva/leitor/internal/store"
	"github.com/revistaviva/leitor/internal/test"
)

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

var errOffline = errors.New("dial tcp: network is unreachable")

var mapNews = content.Decode(content.MapNews)

func rows(raw ...string) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(raw))
	for _, r := range raw {
		out = append(out, json.RawMessage(r))
	}
	return out
}

func online(r []json.RawMessage) func(context.Context) ([]json.RawMessage, error) {
	return func(context.Context) ([]json.RawMessage, error) {
		return r, nil
	}
}

func offline(context.Context) ([]json.RawMessage, error) {
	return nil, errOffline
}

type failingPutStore struct {
	*store.MemoryStore
}

func (failingPutStore) Put(context.Context, store.Entry) error {
	return errors.New("quota exceeded")
}

func TestKeyDeterminism(t *testing.T) {
	test.Equal(t, Key("news", ""), Key("news", ""), "absent filters must agree")
	test.Equal(t, "news_all", Key("news", ""), "absent filter maps to all")
	test.Equal(t, Key("news", "Tecnologia"), Key("news", "Tecnologia"), "equal filters must agree")
	test.Equal(t, "news_Tecnologia", Key("news", "Tecnologia"), "bad key")
	test.Equal(t, "editorials_all", Key("editorials", ""), "bad key")
	test.Equal(t, "videos_all", Key("videos", ""), "bad key")

	if Key("news", "Todas") == Key("news", "Tecnologia") {
		t.Fatal("different filters must not share a key")
	}
}

func TestWriteThroughOnSuccess(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := cache.New(s, 0)

	row := `{"id":"a1","title":"X","published_at":"2024-01-01","image_url":"u","category":"Tech"}`

	res := Fetch(ctx, c, "news_all", online(rows(row)), mapNews)

	test.Equal(t, SourceNetwork, res.Source, "bad source")
	test.Equal(t, false, res.Stale(), "network results are fresh")
	test.DeepEqual(t, []content.NewsItem{{
		ID:        "a1",
		Title:     "X",
		Timestamp: "2024-01-01",
		ImageURL:  "u",
		Category:  "Tech",
	}}, res.Items, "bad mapped items")

	// the raw rows are cached, not the mapped items
	e, err := s.Get(ctx, "news_all")
	test.HandleError(t, err)
	test.Equal(t, "["+row+"]", string(e.Data), "raw rows should be cached")

	var cached []json.RawMessage
	_, ok := c.Get(ctx, "news_all", &cached)
	test.Equal(t, true, ok, "expected cache hit")

	var remapped []content.NewsItem
	for _, r := range cached {
		item, err := mapNews(r)
		test.HandleError(t, err)
		remapped = append(remapped, item)
	}
	test.DeepEqual(t, res.Items, remapped, "cached rows should map to the returned items")
}

func TestFallbackOnFailure(t *testing.T) {
	ctx := context.Background()
	c := cache.New(store.NewMemoryStore(), 0)

	first := Fetch(ctx, c, "news_all", online(rows(`{"id":"a1","title":"X"}`, `{"id":"a2","title":"Y"}`)), mapNews)
	second := Fetch(ctx, c, "news_all", offline, mapNews)

	test.Equal(t, SourceCache, second.Source, "bad source")
	test.Equal(t, true, second.Stale(), "cached results are stale")
	test.DeepEqual(t, first.Items, second.Items, "fallback should return the last good collection")

	if second.WrittenAt.IsZero() {
		t.Fatal("expected cache write time on fallback")
	}
}

func TestEmptyOnColdMiss(t *testing.T) {
	c := cache.New(store.NewMemoryStore(), 0)

	res := Fetch(context.Background(), c, "news_all", offline, mapNews)

	test.Equal(t, SourceNone, res.Source, "bad source")
	if res.Items == nil {
		t.Fatal("expected empty slice, not nil")
	}
	test.Equal(t, 0, len(res.Items), "expected no items")
}

func TestEmptyNetworkResultIsCached(t *testing.T) {
	ctx := context.Background()
	c := cache.New(store.NewMemoryStore(), 0)

	res := Fetch(ctx, c, "videos_all", online(nil), mapNews)
	test.Equal(t, SourceNetwork, res.Source, "bad source")
	test.Equal(t, 0, len(res.Items), "expected no items")

	res = Fetch(ctx, c, "videos_all", offline, mapNews)
	test.Equal(t, SourceCache, res.Source, "empty collection should be served from cache")
	test.Equal(t, 0, len(res.Items), "expected no items")
}

func TestOrderPreserved(t *testing.T) {
	ctx := context.Background()
	c := cache.New(store.NewMemoryStore(), 0)

	in := rows(`{"id":"3"}`, `{"id":"1"}`, `{"id":"2"}`, `{"id":"10"}`)

	for _, call := range []func(context.Context) ([]json.RawMessage, error){online(in), offline} {
		res := Fetch(ctx, c, "news_all", call, mapNews)

		var ids []string
		for _, it := range res.Items {
			ids = append(ids, it.ID)
		}
		test.DeepEqual(t, []string{"3", "1", "2", "10"}, ids, "order changed via "+res.Source.String())
	}
}

func TestStoreFailureIsolation(t *testing.T) {
	c := cache.New(failingPutStore{store.NewMemoryStore()}, 0)

	res := Fetch(context.Background(), c, "news_all", online(rows(`{"id":"a1","title":"X"}`)), mapNews)

	test.Equal(t, SourceNetwork, res.Source, "bad source")
	test.DeepEqual(t, []content.NewsItem{{ID: "a1", Title: "X"}}, res.Items, "store failure must not change the result")
}

func TestMalformedRowsAreSkipped(t *testing.T) {
	c := cache.New(store.NewMemoryStore(), 0)

	res := Fetch(context.Background(), c, "news_all", online(rows(
		`{"id":"a1","title":"X"}`,
		`{"title":"no id"}`,
		`{"id":"a3","title":42}`,
		`{"id":"a4","title":"Z"}`,
	)), mapNews)

	test.Equal(t, 2, len(res.Items), "malformed rows should be dropped")
	test.Equal(t, "a1", res.Items[0].ID, "bad first item")
	test.Equal(t, "a4", res.Items[1].ID, "bad second item")
}

func TestDistinctFiltersUseDistinctKeys(t *testing.T) {
	ctx := context.Background()
	c := cache.New(store.NewMemoryStore(), 0)

	tech := Key("news", "Tecnologia")
	all := Key("news", "Todas")

	Fetch(ctx, c, tech, online(rows(`{"id":"t1"}`)), mapNews)
	Fetch(ctx, c, all, online(rows(`{"id":"t1"}`, `{"id":"p1"}`)), mapNews)

	c.Delete(ctx, tech)

	res := Fetch(ctx, c, tech, offline, mapNews)
	test.Equal(t, SourceNone, res.Source, "cleared key should miss")

	res = Fetch(ctx, c, all, offline, mapNews)
	test.Equal(t, SourceCache, res.Source, "other key should survive")
	test.Equal(t, 2, len(res.Items), "bad surviving collection")
}

func TestConcurrentFetchesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	c := cache.New(store.NewMemoryStore(), 0)

	a := rows(`{"id":"a"}`)
	b := rows(`{"id":"b"}`)

	var wg sync.WaitGroup
	for _, r := range [][]json.RawMessage{a, b} {
		wg.Add(1)
		go func(r []json.RawMessage) {
			defer wg.Done()
			res := Fetch(ctx, c, "news_all", online(r), mapNews)
			if len(res.Items) != 1 {
				t.Errorf("expected one item, got %d", len(res.Items))
			}
		}(r)
	}
	wg.Wait()

	res := Fetch(ctx, c, "news_all", offline, mapNews)
	test.Equal(t, 1, len(res.Items), "expected one cached item")

	id := res.Items[0].ID
	if id != "a" && id != "b" {
		t.Fatalf("cached value should be one of the writes, got %q", id)
	}
}

func TestCancelledCallerStillWarmsCache(t *testing.T) {
	c := cache.New(store.NewMemoryStore(), 0)

	ctx, cancel := context.WithCancel(context.Background())
	call := func(context.Context) ([]json.RawMessage, error) {
		// the view went away while the request was in flight
		cancel()
		return rows(`{"id":"late"}`), nil
	}

	Fetch(ctx, c, "news_all", call, mapNews)

	res := Fetch(context.Background(), c, "news_all", offline, mapNews)
	test.Equal(t, SourceCache, res.Source, "write should land after cancellation")
	test.Equal(t, "late", res.Items[0].ID, "bad cached item")
}

func TestTTLExpiredCacheIsAMiss(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	c := cache.New(s, time.Minute)

	test.HandleError(t, s.Put(ctx, store.Entry{
		Key:       "news_all",
		Data:      []byte(`[{"id":"old"}]`),
		WrittenAt: time.Now().Add(-time.Hour),
	}))

	res := Fetch(ctx, c, "news_all", offline, mapNews)
	test.Equal(t, SourceNone, res.Source, "expired entry should not be served")
}
