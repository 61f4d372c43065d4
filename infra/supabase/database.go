package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DatabaseClient handles PostgREST operations.
type DatabaseClient struct {
	client *Client
}

// From starts a query builder for a table.
func (d *DatabaseClient) From(table string) *QueryBuilder {
	return &QueryBuilder{
		client:  d.client,
		table:   table,
		method:  "GET",
		columns: "*",
		filters: make([]string, 0),
		headers: make(map[string]string),
	}
}

// QueryBuilder builds and executes PostgREST queries.
type QueryBuilder struct {
	client      *Client
	table       string
	method      string
	columns     string
	filters     []string
	orders      []string
	limitVal    *int
	body        []byte
	headers     map[string]string
	onConflict  string
	accessToken string
	useService  bool
	err         error
}

// Select specifies columns to select.
func (q *QueryBuilder) Select(columns string) *QueryBuilder {
	q.method = "GET"
	q.columns = columns
	return q
}

// Insert inserts records.
func (q *QueryBuilder) Insert(data interface{}) *QueryBuilder {
	q.method = "POST"
	q.setBody(data)
	q.headers["Prefer"] = "return=representation"
	return q
}

// Upsert upserts records, merging on the conflict target columns. The
// target goes into the on_conflict query parameter, which is where
// PostgREST reads it; without it merging falls back to the primary key.
func (q *QueryBuilder) Upsert(data interface{}, onConflict string) *QueryBuilder {
	q.method = "POST"
	q.setBody(data)
	q.headers["Prefer"] = "return=representation,resolution=merge-duplicates"
	q.onConflict = onConflict
	return q
}

// Update updates matching records.
func (q *QueryBuilder) Update(data interface{}) *QueryBuilder {
	q.method = "PATCH"
	q.setBody(data)
	q.headers["Prefer"] = "return=representation"
	return q
}

func (q *QueryBuilder) setBody(data interface{}) {
	body, err := json.Marshal(data)
	if err != nil && q.err == nil {
		q.err = fmt.Errorf("marshal request body: %w", err)
	}
	q.body = body
}

// Delete deletes matching records.
func (q *QueryBuilder) Delete() *QueryBuilder {
	q.method = "DELETE"
	q.headers["Prefer"] = "return=representation"
	return q
}

// Eq adds an equality filter.
func (q *QueryBuilder) Eq(column string, value interface{}) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=eq.%v", column, value))
	return q
}

// ILike adds a case-insensitive LIKE filter.
func (q *QueryBuilder) ILike(column, pattern string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=ilike.%s", column, url.QueryEscape(pattern)))
	return q
}

// In adds an inclusion-set filter.
func (q *QueryBuilder) In(column string, values []string) *QueryBuilder {
	q.filters = append(q.filters, fmt.Sprintf("%s=in.(%s)", column, strings.Join(values, ",")))
	return q
}

// Order adds an order clause.
func (q *QueryBuilder) Order(column string, opts ...OrderDirection) *QueryBuilder {
	dir := OrderAsc
	if len(opts) > 0 {
		dir = opts[0]
	}
	q.orders = append(q.orders, fmt.Sprintf("%s.%s", column, dir))
	return q
}

// Limit sets the maximum number of rows.
func (q *QueryBuilder) Limit(n int) *QueryBuilder {
	q.limitVal = &n
	return q
}

// Single expects exactly one row; no match surfaces as CodeNoRows.
func (q *QueryBuilder) Single() *QueryBuilder {
	q.headers["Accept"] = "application/vnd.pgrst.object+json"
	return q
}

// WithToken runs the query as a user for row-level security.
func (q *QueryBuilder) WithToken(token string) *QueryBuilder {
	q.accessToken = token
	return q
}

// WithServiceKey runs the query with the service role key.
func (q *QueryBuilder) WithServiceKey() *QueryBuilder {
	q.useService = true
	return q
}

// Execute executes the query and returns the raw response body.
func (q *QueryBuilder) Execute(ctx context.Context) ([]byte, error) {
	if q.err != nil {
		return nil, q.err
	}
	urlStr := q.buildURL()

	var respBody []byte
	var statusCode int
	var err error

	switch {
	case q.accessToken != "":
		respBody, statusCode, err = q.client.requestWithToken(ctx, q.method, urlStr, q.body, q.headers, q.accessToken)
	case q.useService:
		respBody, statusCode, err = q.client.requestWithServiceKey(ctx, q.method, urlStr, q.body, q.headers)
	default:
		respBody, statusCode, err = q.client.request(ctx, q.method, urlStr, q.body, q.headers)
	}
	if err != nil {
		return nil, err
	}

	if statusCode >= 400 {
		return nil, parseError(respBody, statusCode)
	}

	return respBody, nil
}

// ExecuteInto executes the query and unmarshals the response into dest.
func (q *QueryBuilder) ExecuteInto(ctx context.Context, dest interface{}) error {
	data, err := q.Execute(ctx)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func (q *QueryBuilder) buildURL() string {
	urlStr := q.client.restURL + "/" + url.PathEscape(q.table)

	params := make([]string, 0)
	if q.method == "GET" && q.columns != "" {
		params = append(params, "select="+url.QueryEscape(q.columns))
	}
	if q.onConflict != "" {
		params = append(params, "on_conflict="+url.QueryEscape(q.onConflict))
	}
	params = append(params, q.filters...)
	if len(q.orders) > 0 {
		params = append(params, "order="+strings.Join(q.orders, ","))
	}
	if q.limitVal != nil {
		params = append(params, fmt.Sprintf("limit=%d", *q.limitVal))
	}

	if len(params) > 0 {
		urlStr += "?" + strings.Join(params, "&")
	}
	return urlStr
}
