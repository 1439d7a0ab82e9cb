package query

// Page is one page of a collection plus the facts needed to navigate it.
type Page[T any] struct {
	Items      []T
	PageIndex  int
	PageSize   int
	totalCount int
}

// NewPage wraps items. A negative totalCount is stored as 0; an out of range
// pageIndex is kept as given.
func NewPage[T any](items []T, pageIndex, pageSize, totalCount int) Page[T] {
	p := Page[T]{Items: items, PageIndex: pageIndex, PageSize: pageSize}
	p.SetTotalCount(totalCount)
	return p
}

func (p *Page[T]) SetTotalCount(n int) {
	if n < 0 {
		n = 0
	}
	p.totalCount = n
}

func (p Page[T]) TotalCount() int { return p.totalCount }

// PageCount is ceil(totalCount / pageSize), 0 when pageSize is not positive.
func (p Page[T]) PageCount() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.totalCount + p.PageSize - 1) / p.PageSize
}

func (p Page[T]) HasPrevious() bool { return p.PageIndex > 0 }

func (p Page[T]) HasNext() bool { return p.PageIndex < p.PageCount()-1 }

// Map converts the items of p, keeping its paging facts.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Items))
	for i, item := range p.Items {
		out[i] = fn(item)
	}
	return Page[U]{Items: out, PageIndex: p.PageIndex, PageSize: p.PageSize, totalCount: p.totalCount}
}
