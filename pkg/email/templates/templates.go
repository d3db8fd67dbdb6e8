package templates

import (
	"context"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// Render renders a component to a string.
func Render(ctx context.Context, tpl templ.Component) (string, error) {
	var sb strings.Builder
	if err := tpl.Render(ctx, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ActionEmail is the data for a message with a single call-to-action link.
// It is rendered by the action component in email.templ.
type ActionEmail struct {
	AppName   string
	Username  string
	Title     string
	Intro     string
	Action    string
	Link      string
	ExpiresIn time.Duration
}

// Verification is sent after registration and on resend.
func Verification(appName, username, link string, expiresIn time.Duration) templ.Component {
	return action(ActionEmail{
		AppName:   appName,
		Username:  username,
		Title:     "Verify your email",
		Intro:     "Thanks for signing up. Confirm your email address to finish setting up your account.",
		Action:    "Verify email",
		Link:      link,
		ExpiresIn: expiresIn,
	})
}

// PasswordReset is sent by the forgot-password flow.
func PasswordReset(appName, username, link string, expiresIn time.Duration) templ.Component {
	return action(ActionEmail{
		AppName:   appName,
		Username:  username,
		Title:     "Reset your password",
		Intro:     "We received a request to reset your password. If you did not ask for it, ignore this email.",
		Action:    "Reset password",
		Link:      link,
		ExpiresIn: expiresIn,
	})
}

// Welcome is sent once the email address is verified.
func Welcome(appName, username, link string) templ.Component {
	return action(ActionEmail{
		AppName:  appName,
		Username: username,
		Title:    "Welcome to " + appName,
		Intro:    "Your email is verified. Start writing your first post.",
		Action:   "Open " + appName,
		Link:     link,
	})
}
