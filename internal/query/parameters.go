package query

import (
	"math"
	"strconv"
)

const (
	DefaultPageSize    = 10
	DefaultMaxPageSize = 100
	DefaultOrderBy     = "id"
)

// QueryParameters are the paging, sorting and shaping parameters shared by
// every collection endpoint.
type QueryParameters struct {
	PageIndex int    `form:"pageIndex"`
	PageSize  int    `form:"pageSize"`
	OrderBy   string `form:"orderBy"`
	Fields    string `form:"fields"`
}

// Normalize clamps paging values: negative pageIndex becomes 0, a missing or
// non-positive pageSize becomes defaultSize and anything above maxSize is cut
// to maxSize. pageIndex is capped where the row offset would overflow.
func (q *QueryParameters) Normalize(defaultSize, maxSize int) {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxPageSize
	}
	if q.PageIndex < 0 {
		q.PageIndex = 0
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultSize
	}
	if q.PageSize > maxSize {
		q.PageSize = maxSize
	}
	if limit := math.MaxInt / q.PageSize; q.PageIndex > limit {
		q.PageIndex = limit
	}
}

// Offset is the number of rows skipped before this page.
func (q QueryParameters) Offset() int { return q.PageIndex * q.PageSize }

func (q QueryParameters) Index() int { return q.PageIndex }

// PageParams is the full parameter set of this query moved to pageIndex.
func (q QueryParameters) PageParams(pageIndex int) map[string]string {
	return map[string]string{
		"pageIndex": strconv.Itoa(pageIndex),
		"pageSize":  strconv.Itoa(q.PageSize),
		"orderBy":   q.OrderBy,
		"fields":    q.Fields,
	}
}

// PostParameters adds the post filters to QueryParameters. Title matches
// exactly, ignoring case.
type PostParameters struct {
	QueryParameters
	Title string `form:"title"`
}

func (p PostParameters) PageParams(pageIndex int) map[string]string {
	params := p.QueryParameters.PageParams(pageIndex)
	params["title"] = p.Title
	return params
}
