// Package links builds the hypermedia links attached to single resources and
// to collection pages.
package links

import (
	"net/http"
	"strconv"
)

const (
	RelSelf     = "self"
	RelPrevious = "previous_page"
	RelNext     = "next_page"
	RelDelete   = "delete_post"
)

// Link is one hypermedia link.
type Link struct {
	Href   string `json:"href"`
	Rel    string `json:"rel"`
	Method string `json:"method"`
}

// PageKind selects which page a collection URI points at.
type PageKind int

const (
	CurrentPage PageKind = iota
	PreviousPage
	NextPage
)

// CollectionQuery is the query state of a collection request.
type CollectionQuery interface {
	// Index is the current page index.
	Index() int
	// PageParams is the full parameter set moved to pageIndex.
	PageParams(pageIndex int) map[string]string
}

// Builder creates links for one resource type.
type Builder struct {
	URLs            URLResolver
	CollectionRoute string
	ItemRoute       string
	DeleteRoute     string
	DeleteRel       string
}

// PageURI is the collection URI for the current, previous or next page.
// Only pageIndex changes; every other parameter is carried over.
func (b Builder) PageURI(q CollectionQuery, kind PageKind) (string, error) {
	index := q.Index()
	switch kind {
	case PreviousPage:
		index--
	case NextPage:
		index++
	}
	return b.URLs.Link(b.CollectionRoute, q.PageParams(index))
}

// ForResource returns the self link (carrying fields when set) and the delete
// link of one resource.
func (b Builder) ForResource(id int64, fields string) ([]Link, error) {
	idStr := strconv.FormatInt(id, 10)

	selfParams := map[string]string{"id": idStr}
	if fields != "" {
		selfParams["fields"] = fields
	}
	self, err := b.URLs.Link(b.ItemRoute, selfParams)
	if err != nil {
		return nil, err
	}

	del, err := b.URLs.Link(b.DeleteRoute, map[string]string{"id": idStr})
	if err != nil {
		return nil, err
	}

	rel := b.DeleteRel
	if rel == "" {
		rel = RelDelete
	}
	return []Link{
		{Href: self, Rel: RelSelf, Method: http.MethodGet},
		{Href: del, Rel: rel, Method: http.MethodDelete},
	}, nil
}

// ForCollection returns the self link of the current page, followed by
// previous and next page links when those pages exist.
func (b Builder) ForCollection(q CollectionQuery, hasPrevious, hasNext bool) ([]Link, error) {
	self, err := b.PageURI(q, CurrentPage)
	if err != nil {
		return nil, err
	}
	out := []Link{{Href: self, Rel: RelSelf, Method: http.MethodGet}}

	if hasPrevious {
		prev, err := b.PageURI(q, PreviousPage)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Href: prev, Rel: RelPrevious, Method: http.MethodGet})
	}
	if hasNext {
		next, err := b.PageURI(q, NextPage)
		if err != nil {
			return nil, err
		}
		out = append(out, Link{Href: next, Rel: RelNext, Method: http.MethodGet})
	}
	return out, nil
}
