// Package binder decodes HTTP requests into handler request structs.
//
// Each binder is a func(r *http.Request, v any) error and reads one source:
//
//   - JSON decodes an application/json body and rejects unknown fields.
//   - Query fills fields tagged `query:"name"` from the URL query.
//   - Path fills fields tagged `path:"name"` from route parameters.
//   - File reads multipart files into FileUpload fields tagged `file:"name"`.
//
// Binders are composed per endpoint, so one struct can mix sources:
//
//	type RepliesRequest struct {
//		ID    string `path:"id"`
//		Page  int    `query:"page"`
//		Limit int    `query:"limit"`
//	}
//
//	path := binder.Path(chi.URLParam)
//	r.Get("/{id}/replies", endpoint.Wrap(cfg, replies, path, binder.Query()))
//
// A binder that does not apply to the request (no JSON body, not multipart)
// returns ErrBinderNotApplicable and the next one runs. Decoding failures wrap
// ErrInvalidJSON, ErrInvalidForm and friends so the handler layer can answer
// with 400. Body sizes are capped by DefaultMaxJSONSize and DefaultMaxUploadSize.
//
// FileUpload.ContentType sniffs the MIME type from the bytes; the header sent
// by the client is ignored.
package binder
