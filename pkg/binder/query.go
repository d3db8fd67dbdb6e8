package binder

import "net/http"

// Query binds URL query parameters into fields tagged `query:"name"`.
//
//	type ListRequest struct {
//		Page     int      `query:"page"`
//		Category string   `query:"category"`
//		Tags     []string `query:"tags"` // ?tags=go&tags=web or ?tags=go,web
//	}
func Query() func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "query", func(name string) []string {
			return r.URL.Query()[name]
		}, ErrInvalidQuery)
	}
}

// Path binds route parameters into fields tagged `path:"name"` using extractor,
// typically chi.URLParam.
func Path(extractor func(r *http.Request, name string) string) func(r *http.Request, v any) error {
	return func(r *http.Request, v any) error {
		return bindToStruct(v, "path", func(name string) []string {
			if val := extractor(r, name); val != "" {
				return []string{val}
			}
			return nil
		}, ErrInvalidPath)
	}
}
