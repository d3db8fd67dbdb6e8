package auth_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogify/pkg/email"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, params email.SendEmailParams) error {
	return m.Called(ctx, params).Error(0)
}

var tokenParam = regexp.MustCompile(`token=([0-9a-f]{64})`)

// lastToken extracts the plain token from the most recent email with tag.
func (m *mockSender) lastToken(t *testing.T, tag string) string {
	t.Helper()

	for i := len(m.Calls) - 1; i >= 0; i-- {
		p, ok := m.Calls[i].Arguments.Get(1).(email.SendEmailParams)
		if !ok || p.Tag != tag {
			continue
		}
		match := tokenParam.FindStringSubmatch(p.BodyHTML)
		require.Len(t, match, 2, "email %q carries no token", tag)
		return match[1]
	}
	require.Failf(t, "no email sent", "tag %q", tag)
	return ""
}

func (m *mockSender) sent(tag string) int {
	n := 0
	for _, c := range m.Calls {
		if p, ok := c.Arguments.Get(1).(email.SendEmailParams); ok && p.Tag == tag {
			n++
		}
	}
	return n
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
