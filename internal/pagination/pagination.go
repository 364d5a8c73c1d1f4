package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var ErrInvalidParam = errors.New("invalid pagination parameter")

// Config holds per-endpoint page size limits.
type Config struct {
	Default int
	Max     int
}

// Params are the paging arguments of a collection request. After carries the
// raw cursor value; endpoints that page by timestamp parse it with AfterTime.
type Params struct {
	Limit  int
	Offset int
	After  string
}

type Info struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// Page is the response envelope shared by every collection endpoint.
type Page struct {
	Data       any  `json:"data"`
	Pagination Info `json:"pagination"`
}

// FromQuery parses limit, offset and after from the request query and clamps
// the limit to the endpoint config. Malformed numeric values are an error,
// never silently ignored.
func FromQuery(query url.Values, cfg Config) (Params, error) {
	p := Params{After: query.Get("after")}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("%w: limit %q", ErrInvalidParam, raw)
		}
		p.Limit = limit
	}

	if raw := query.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return Params{}, fmt.Errorf("%w: offset %q", ErrInvalidParam, raw)
		}
		p.Offset = offset
	}

	p.Limit = ClampLimit(p.Limit, cfg)
	return p, nil
}

// ClampLimit applies the endpoint default and maximum for page sizes.
func ClampLimit(limit int, cfg Config) int {
	if limit <= 0 {
		limit = cfg.Default
	}
	if cfg.Max > 0 && limit > cfg.Max {
		limit = cfg.Max
	}
	if limit <= 0 {
		limit = 1
	}
	return limit
}

// AfterTime parses the after cursor as an RFC 3339 timestamp.
func (p Params) AfterTime() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, p.After)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: after %q", ErrInvalidParam, p.After)
	}
	return ts, nil
}

// NewPage wraps a result window in the response envelope. count is the number
// of items in data, total the full collection size under current filters.
func NewPage(data any, p Params, count, total int) Page {
	return Page{
		Data: data,
		Pagination: Info{
			Offset: p.Offset,
			Limit:  p.Limit,
			Count:  count,
			Total:  total,
		},
	}
}
