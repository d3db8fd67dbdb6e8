package fingerprint_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/blogify/pkg/clientip"
	"github.com/dmitrymomot/blogify/pkg/fingerprint"
)

func request(remote string, headers map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = remote
	for k, v := range headers {
		r.Header.Set(k, v)
	}
	return r
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	mac := map[string]string{"User-Agent": "Mozilla/5.0 (Macintosh)", "Accept-Language": "en-US"}
	win := map[string]string{"User-Agent": "Mozilla/5.0 (Windows NT 10.0)", "Accept-Language": "en-US"}

	fp := fingerprint.Generate(request("203.0.113.7:1000", mac))
	assert.Regexp(t, "^[0-9a-f]{32}$", fp)

	t.Run("port is ignored", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, fp, fingerprint.Generate(request("203.0.113.7:2000", mac)))
	})

	t.Run("browsers behind one address differ", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, fp, fingerprint.Generate(request("203.0.113.7:1000", win)))
	})

	t.Run("addresses differ", func(t *testing.T) {
		t.Parallel()
		assert.NotEqual(t, fp, fingerprint.Generate(request("203.0.113.8:1000", mac)))
	})

	t.Run("resolved address wins over remote addr", func(t *testing.T) {
		t.Parallel()
		r := request("10.0.0.1:1000", mac)
		r = r.WithContext(clientip.WithContext(r.Context(), "203.0.113.7"))
		assert.Equal(t, fp, fingerprint.Generate(r))
	})

	t.Run("nothing to identify", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, fingerprint.Generate(request("garbage", nil)))
	})
}
