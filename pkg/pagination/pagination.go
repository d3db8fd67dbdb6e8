package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 50
)

// Params is bound from ?page=&limit=. Page is 1-based.
type Params struct {
	Page  int `query:"page" json:"page"`
	Limit int `query:"limit" json:"limit"`
}

// Normalize clamps Page to >= 1 and Limit to [1, MaxLimit], defaulting to DefaultLimit.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.Limit <= 0:
		p.Limit = DefaultLimit
	case p.Limit > MaxLimit:
		p.Limit = MaxLimit
	}
	return p
}

// Skip returns the offset of the first item of the normalized page.
func (p Params) Skip() int {
	p = p.Normalize()
	return (p.Page - 1) * p.Limit
}

// Window returns the [start, end) bounds of the page within n items.
func (p Params) Window(n int) (start, end int) {
	p = p.Normalize()
	start = min(p.Skip(), n)
	end = min(start+p.Limit, n)
	return start, end
}

// Result is a page of items with totals.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewResult builds a Result. A nil items slice is rendered as [].
func NewResult[T any](items []T, total int64, p Params) Result[T] {
	p = p.Normalize()
	if items == nil {
		items = []T{}
	}
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Result[T]{Items: items, Total: total, Page: p.Page, Limit: p.Limit, TotalPages: pages}
}

// Map converts the items of a result, keeping the totals.
func Map[T, U any](r Result[T], fn func(T) U) Result[U] {
	out := make([]U, len(r.Items))
	for i, it := range r.Items {
		out[i] = fn(it)
	}
	return Result[U]{Items: out, Total: r.Total, Page: r.Page, Limit: r.Limit, TotalPages: r.TotalPages}
}
