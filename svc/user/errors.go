package user

import (
	"net/http"

	"github.com/dmitrymomot/blogify/handler"
)

var (
	ErrUserNotFound       = handler.NewHTTPError(http.StatusNotFound, "User not found")
	ErrSelfAction         = handler.NewHTTPError(http.StatusBadRequest, "You cannot do this to yourself")
	ErrBlockedByUser      = handler.NewHTTPError(http.StatusForbidden, "This user has blocked you")
	ErrUnblockFirst       = handler.NewHTTPError(http.StatusBadRequest, "Unblock this user first")
	ErrWrongPassword      = handler.NewHTTPError(http.StatusUnauthorized, "Old password is incorrect")
	ErrSamePassword       = handler.NewHTTPError(http.StatusBadRequest, "New password must differ from the old one")
	ErrInvalidStatus      = handler.NewHTTPError(http.StatusBadRequest, "Invalid status")
	ErrInvalidRole        = handler.NewHTTPError(http.StatusBadRequest, "Invalid role")
	ErrInvalidAvatar      = handler.NewHTTPError(http.StatusBadRequest, "Avatar must be a JPEG, PNG, GIF or WebP image")
	ErrAvatarTooLarge     = handler.NewHTTPError(http.StatusRequestEntityTooLarge, "Avatar must be at most 5MB")
	ErrUploadsDisabled    = handler.NewHTTPError(http.StatusServiceUnavailable, "File uploads are not configured")
	ErrAlreadyDeactivated = handler.NewHTTPError(http.StatusBadRequest, "Account is already deactivated")
)
