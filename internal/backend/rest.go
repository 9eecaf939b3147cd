package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

var ErrNoURL = errors.New("backend: no url configured")

// maxErrorBody bounds how much of a failed response is kept in HTTPError.
const maxErrorBody = 4 << 10

// REST queries a PostgREST style API, the shape exposed by hosted
// backend-as-a-service databases:
//
//	GET {url}/rest/v1/{table}?select=*&category=eq.Tech&order=published_at.desc&limit=20
type REST struct {
	baseURL    *url.URL
	apiKey     string
	httpClient *http.Client
}

func NewREST(baseURL string, apiKey string, httpClient *http.Client) (*REST, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, ErrNoURL
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("backend.NewREST: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("backend.NewREST: url scheme must be http or https, got %q", u.Scheme)
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &REST{
		baseURL:    u,
		apiKey:     apiKey,
		httpClient: httpClient,
	}, nil
}

func (r *REST) buildURL(q Query) string {
	u := *r.baseURL
	u.Path = u.Path + "/rest/v1/" + q.Table

	params := url.Values{}

	sel := q.Select
	if sel == "" {
		sel = "*"
	}
	params.Set("select", sel)

	for _, f := range q.Filters {
		params.Add(f.Column, string(f.Op)+"."+f.Value)
	}

	if q.Order != nil {
		dir := "desc"
		if q.Order.Ascending {
			dir = "asc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}

	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	u.RawQuery = params.Encode()

	return u.String()
}

func (r *REST) Query(ctx context.Context, q Query) ([]json.RawMessage, error) {
	if q.Table == "" {
		return nil, errors.New("backend.Query: no table")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.buildURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("backend.Query: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("apikey", r.apiKey)
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend.Query %s: %w", q.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("backend.Query %s: %w", q.Table, &HTTPError{StatusCode: resp.StatusCode, Body: body})
	}

	var rows []json.RawMessage
	err = json.NewDecoder(resp.Body).Decode(&rows)
	if err != nil {
		return nil, fmt.Errorf("backend.Query %s: decoding rows: %w", q.Table, err)
	}

	if rows == nil {
		rows = []json.RawMessage{}
	}

	return rows, nil
}
