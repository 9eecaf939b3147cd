package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/revistaviva/leitor/internal/test"
)

func TestNewRESTValidation(t *testing.T) {
	_, err := NewREST("", "", nil)
	if !errors.Is(err, ErrNoURL) {
		t.Fatalf("expected ErrNoURL, got %v", err)
	}

	_, err = NewREST("ftp://example.com", "", nil)
	if err == nil {
		t.Fatal("expected scheme to be rejected")
	}

	_, err = NewREST("https://xyz.example.co/", "key", nil)
	test.HandleError(t, err)
}

func TestBuildURL(t *testing.T) {
	r, err := NewREST("https://xyz.example.co/", "", nil)
	test.HandleError(t, err)

	got := r.buildURL(Query{
		Table:   "news",
		Select:  "*,author:columnists(*)",
		Filters: []Filter{Eq("category", "Tecnologia")},
		Order:   &Order{Column: "published_at"},
		Limit:   20,
	})

	want := "https://xyz.example.co/rest/v1/news?category=eq.Tecnologia&limit=20&order=published_at.desc&select=%2A%2Cauthor%3Acolumnists%28%2A%29"
	test.Equal(t, want, got, "bad query url")

	got = r.buildURL(Query{Table: "columnists", Order: &Order{Column: "name", Ascending: true}})
	test.Equal(t, "https://xyz.example.co/rest/v1/columnists?order=name.asc&select=%2A", got, "bad default select")
}

func TestContains(t *testing.T) {
	f := Contains("title", "copa")
	test.Equal(t, OpILike, f.Op, "bad op")
	test.Equal(t, "*copa*", f.Value, "bad pattern")
}

func TestQuery(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("apikey") != "anon" || r.Header.Get("Authorization") != "Bearer anon" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"message":"no api key"}`)
			return
		}
		if r.URL.Path != "/rest/v1/news" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.URL.Query().Get("category") != "eq.Tech" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, `[{"id":"a1","title":"X"},{"id":2,"title":"Y"}]`)
	}))
	defer ts.Close()

	r, err := NewREST(ts.URL, "anon", ts.Client())
	test.HandleError(t, err)

	rows, err := r.Query(context.Background(), Query{Table: "news", Filters: []Filter{Eq("category", "Tech")}})
	test.HandleError(t, err)

	test.Equal(t, 2, len(rows), "bad row count")
	test.Equal(t, `{"id":"a1","title":"X"}`, string(rows[0]), "rows should be passed through untouched")
	test.Equal(t, `{"id":2,"title":"Y"}`, string(rows[1]), "rows should be passed through untouched")
}

func TestQueryEmpty(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	}))
	defer ts.Close()

	r, err := NewREST(ts.URL, "", ts.Client())
	test.HandleError(t, err)

	rows, err := r.Query(context.Background(), Query{Table: "videos"})
	test.HandleError(t, err)

	if rows == nil {
		t.Fatal("expected empty slice, not nil")
	}
	test.Equal(t, 0, len(rows), "expected no rows")
}

func TestQueryHTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, "down for maintenance")
	}))
	defer ts.Close()

	r, err := NewREST(ts.URL, "", ts.Client())
	test.HandleError(t, err)

	_, err = r.Query(context.Background(), Query{Table: "news"})

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	test.Equal(t, http.StatusServiceUnavailable, httpErr.StatusCode, "bad status")
	test.Equal(t, "down for maintenance", string(httpErr.Body), "bad body")
}

func TestQueryBadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"not":"rows"}`)
	}))
	defer ts.Close()

	r, err := NewREST(ts.URL, "", ts.Client())
	test.HandleError(t, err)

	_, err = r.Query(context.Background(), Query{Table: "news"})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

func TestQueryTimeout(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer ts.Close()
	defer close(release)

	r, err := NewREST(ts.URL, "", ts.Client())
	test.HandleError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = r.Query(ctx, Query{Table: "news"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestQueryNoTable(t *testing.T) {
	r, err := NewREST("https://example.com", "", nil)
	test.HandleError(t, err)

	_, err = r.Query(context.Background(), Query{})
	if err == nil {
		t.Fatal("expected error without table")
	}
}
