// Package content serves the blog, comment and category routes.
package content

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type Mountable interface {
	Handle() http.Handler
}

// RouterOptions configures which services to mount. Each service is
// optional and will only be mounted if provided.
type RouterOptions struct {
	Blogs      Mountable
	Comments   Mountable
	Categories Mountable
}

// Router creates the content module router. Comments live under
// /blog/{blogId}/comments.
func Router(opts RouterOptions) chi.Router {
	r := chi.NewRouter()
	Routes(r, opts)
	return r
}

// Routes registers the content routes on an existing router, so several
// modules can share one prefix.
func Routes(r chi.Router, opts RouterOptions) {
	r.Route("/blog", func(b chi.Router) {
		if opts.Comments != nil {
			b.Mount("/{blogId}/comments", opts.Comments.Handle())
		}
		if opts.Blogs != nil {
			b.Mount("/", opts.Blogs.Handle())
		}
	})
	if opts.Categories != nil {
		r.Mount("/categories", opts.Categories.Handle())
	}
}
