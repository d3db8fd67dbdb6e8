package auth

import (
	"net/http"

	"github.com/dmitrymomot/blogify/handler"
)

var (
	ErrEmailTaken          = handler.NewHTTPError(http.StatusConflict, "User already exists with this email")
	ErrUsernameTaken       = handler.NewHTTPError(http.StatusConflict, "Username is already taken, try a different one")
	ErrEmptyToken          = handler.NewHTTPError(http.StatusBadRequest, "Token is required")
	ErrTokenNotFound       = handler.NewHTTPError(http.StatusNotFound, "Invalid or already used token")
	ErrVerificationExpired = handler.NewHTTPError(http.StatusGone, "Verification link has expired, please request a new one")
	ErrResetExpired        = handler.NewHTTPError(http.StatusGone, "Password reset link has expired, please request a new one")
	ErrEmailNotRegistered  = handler.NewHTTPError(http.StatusNotFound, "No account with this email, please register first")
	ErrInvalidCredentials  = handler.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	ErrAccountLocked       = handler.NewHTTPError(http.StatusForbidden, "Account is suspended or banned")
	ErrConcurrentLogin     = handler.NewHTTPError(http.StatusConflict, "Another login is in progress, please retry")
	ErrAlreadyVerified     = handler.NewHTTPError(http.StatusBadRequest, "Email is already verified")
	ErrNoToken             = handler.NewHTTPError(http.StatusUnauthorized, "Unauthorized: no token provided")
	ErrInvalidRefreshToken = handler.NewHTTPError(http.StatusForbidden, "Invalid or expired refresh token")
	ErrSessionSuperseded   = handler.NewHTTPError(http.StatusForbidden, "Invalid session, please login again")
	ErrInsufficientRole    = handler.NewHTTPError(http.StatusForbidden, "You do not have permission to perform this action")
	ErrEmailDelivery       = handler.NewHTTPError(http.StatusInternalServerError, "Failed to send email, please try again")
)
