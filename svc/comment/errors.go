package comment

import (
	"net/http"

	"github.com/dmitrymomot/blogify/handler"
)

var (
	ErrCommentNotFound = handler.NewHTTPError(http.StatusNotFound, "Comment not found")
	ErrNotOwner        = handler.NewHTTPError(http.StatusForbidden, "You can only change your own comments")
	ErrCannotDelete    = handler.NewHTTPError(http.StatusForbidden, "Only the comment owner, the blog author or an admin can delete this comment")
	ErrParentMismatch  = handler.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to another blog")
	ErrInvalidSort     = handler.NewHTTPError(http.StatusBadRequest, "Invalid sort order")
)
