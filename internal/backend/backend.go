// Package backend talks to the hosted database holding the magazine content.
package backend

import (
	"context"
	"encoding/json"
	"fmt"
)

type Op string

const (
	OpEq    Op = "eq"
	OpILike Op = "ilike"
)

type Filter struct {
	Column string
	Op     Op
	Value  string
}

type Order struct {
	Column    string
	Ascending bool
}

// Query selects rows from one table: which columns, which rows, in what
// order and how many.
type Query struct {
	Table   string
	Select  string
	Filters []Filter
	Order   *Order
	Limit   int
}

// Client runs queries against the backend. Rows come back undecoded so they
// can be cached exactly as received.
type Client interface {
	Query(ctx context.Context, q Query) ([]json.RawMessage, error)
}

// HTTPError captures an unexpected status code and the response body.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", e.StatusCode, string(e.Body))
}

func Eq(column, value string) Filter {
	return Filter{Column: column, Op: OpEq, Value: value}
}

// Contains matches rows whose column has term as a case-insensitive substring.
func Contains(column, term string) Filter {
	return Filter{Column: column, Op: OpILike, Value: "*" + term + "*"}
}
