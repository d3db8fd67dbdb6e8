package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/email"
)

func validParams() email.SendEmailParams {
	return email.SendEmailParams{
		SendTo:   "user@example.com",
		Subject:  "Verify your email",
		BodyHTML: "<p>hello</p>",
		Tag:      "verification",
	}
}

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*email.SendEmailParams)
		errMsg string
	}{
		{"valid", func(*email.SendEmailParams) {}, ""},
		{"empty recipient", func(p *email.SendEmailParams) { p.SendTo = " " }, "SendTo is required"},
		{"bad recipient", func(p *email.SendEmailParams) { p.SendTo = "nope" }, "SendTo must be a valid email address"},
		{"empty subject", func(p *email.SendEmailParams) { p.Subject = "" }, "Subject is required"},
		{"empty body", func(p *email.SendEmailParams) { p.BodyHTML = "" }, "BodyHTML is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := validParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "emails")
	sender := email.NewDevSender(dir)

	require.NoError(t, sender.SendEmail(context.Background(), validParams()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	assert.True(t, strings.HasSuffix(htmlFile, "_verification.html"))

	body, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(body))

	raw, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	var meta map[string]string
	require.NoError(t, json.Unmarshal(raw, &meta))
	assert.Equal(t, "user@example.com", meta["send_to"])
	_, err = time.Parse(time.RFC3339, meta["timestamp"])
	assert.NoError(t, err)
}

func TestDevSender_InvalidParams(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "emails")
	err := email.NewDevSender(dir).SendEmail(context.Background(), email.SendEmailParams{})
	assert.ErrorIs(t, err, email.ErrInvalidParams)
	_, statErr := os.Stat(dir)
	assert.True(t, os.IsNotExist(statErr))
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	base := email.Config{SenderEmail: "no-reply@example.com", SupportEmail: "help@example.com"}

	t.Run("dev", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = email.ProviderDev
		cfg.DevDir = t.TempDir()
		s, err := email.NewFromConfig(cfg)
		require.NoError(t, err)
		assert.IsType(t, &email.DevSender{}, s)
	})

	t.Run("postmark requires tokens", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = email.ProviderPostmark
		_, err := email.NewFromConfig(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "PostmarkServerToken")
	})

	t.Run("postmark", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = email.ProviderPostmark
		cfg.PostmarkServerToken = "server"
		cfg.PostmarkAccountToken = "account"
		s, err := email.NewFromConfig(cfg)
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("smtp requires host", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = email.ProviderSMTP
		_, err := email.NewFromConfig(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})

	t.Run("smtp invalid sender", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = email.ProviderSMTP
		cfg.SMTPHost = "localhost"
		cfg.SMTPPort = 25
		cfg.SenderEmail = "bad"
		_, err := email.NewFromConfig(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "SenderEmail")
	})

	t.Run("unknown provider", func(t *testing.T) {
		t.Parallel()
		cfg := base
		cfg.Provider = "carrier-pigeon"
		_, err := email.NewFromConfig(cfg)
		assert.ErrorIs(t, err, email.ErrInvalidConfig)
	})
}

func TestSMTPSender_RejectsBeforeDial(t *testing.T) {
	t.Parallel()

	s, err := email.NewSMTPSender(email.Config{
		SenderEmail: "no-reply@example.com",
		SMTPHost:    "127.0.0.1",
		SMTPPort:    1,
	})
	require.NoError(t, err)

	err = s.SendEmail(context.Background(), email.SendEmailParams{SendTo: "x@example.com"})
	assert.ErrorIs(t, err, email.ErrInvalidParams)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = s.SendEmail(ctx, validParams())
	assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	assert.ErrorIs(t, err, context.Canceled)
}
