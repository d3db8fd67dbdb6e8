package blog

import (
	"net/http"

	"github.com/dmitrymomot/blogify/handler"
)

var (
	ErrBlogNotFound     = handler.NewHTTPError(http.StatusNotFound, "Blog not found")
	ErrNotAuthor        = handler.NewHTTPError(http.StatusForbidden, "Only the author can do this")
	ErrInvalidCategory  = handler.NewHTTPError(http.StatusBadRequest, "Invalid category")
	ErrInvalidSort      = handler.NewHTTPError(http.StatusBadRequest, "Invalid sort order")
	ErrAlreadyPublished = handler.NewHTTPError(http.StatusBadRequest, "Blog is already published")
	ErrNotPublished     = handler.NewHTTPError(http.StatusBadRequest, "Blog is not published")
	ErrArchived         = handler.NewHTTPError(http.StatusBadRequest, "Blog is archived")
	ErrEmptyQuery       = handler.NewHTTPError(http.StatusBadRequest, "Search query is required")
	ErrSlugTaken        = handler.NewHTTPError(http.StatusConflict, "A blog with this title already exists")
	ErrInvalidCover     = handler.NewHTTPError(http.StatusBadRequest, "Cover image must be a JPEG, PNG, GIF or WebP image")
	ErrCoverTooLarge    = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "Cover image must be at most 10MB")
	ErrUploadsDisabled  = handler.NewHTTPError(http.StatusServiceUnavailable, "File uploads are not configured")
)
