package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURL_Success(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><h1>Test</h1></body></html>"))
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, server.URL, result.URL)
	assert.Contains(t, result.HTML, "<h1>Test</h1>")
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestURL_InvalidURL(t *testing.T) {
	_, err := URL(context.Background(), "not-a-valid-url", nil)
	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	result, err := URL(context.Background(), server.URL, nil)
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, http.StatusNotFound, result.StatusCode)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestURL_Blocked(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "challenge page",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html><title>Just a moment...</title><script src="/cdn-cgi/challenge-platform/h/b"></script></html>`))
			},
		},
		{
			name: "403 with cf-ray",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("cf-ray", "8a1b2c3d4e5f-AMS")
				w.WriteHeader(http.StatusForbidden)
			},
		},
		{
			name: "503 from cloudflare",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Server", "cloudflare")
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := URL(context.Background(), server.URL, nil)
			var blocked *BlockedError
			require.ErrorAs(t, err, &blocked)
			assert.Equal(t, server.URL, blocked.URL)
			assert.NotEmpty(t, blocked.Reason)
		})
	}
}

func TestURL_PlainForbiddenIsNotBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := URL(context.Background(), server.URL, nil)
	var blocked *BlockedError
	assert.False(t, errors.As(err, &blocked))
	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
}

func TestExtractMainText(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		selectors  []string
		noise      []string
		want       []string
		wantAbsent []string
	}{
		{
			name:       "main element wins over chrome",
			html:       `<html><body><nav>Navigation</nav><main><h1>Main Content</h1><p>This is the important text.</p></main><footer>Footer</footer></body></html>`,
			selectors:  JobPostingSelectors(),
			want:       []string{"Main Content", "important text"},
			wantAbsent: []string{"Navigation", "Footer"},
		},
		{
			name:      "falls back to body",
			html:      `<html><body><div>Some content here.</div></body></html>`,
			selectors: JobPostingSelectors(),
			want:      []string{"Some content here"},
		},
		{
			name:       "job description selector",
			html:       `<html><body><div class="sidebar">Sidebar junk</div><div class="job-description"><h2>Requirements</h2><p>5 years experience in Go</p></div></body></html>`,
			selectors:  JobPostingSelectors(),
			want:       []string{"Requirements", "5 years experience"},
			wantAbsent: []string{"Sidebar junk"},
		},
		{
			name:       "noise selectors removed",
			html:       `<html><body><main><p>Build APIs</p><form>Apply now</form><div class="eeo-statement">EEO text</div></main></body></html>`,
			selectors:  JobPostingSelectors(),
			noise:      PlatformNoiseSelectors(PlatformUnknown),
			want:       []string{"Build APIs"},
			wantAbsent: []string{"Apply now", "EEO text"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := ExtractMainText(tt.html, tt.selectors, tt.noise...)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, text, w)
			}
			for _, w := range tt.wantAbsent {
				assert.NotContains(t, text, w)
			}
		})
	}
}

func TestExtractMainText_KeepsLines(t *testing.T) {
	text, err := ExtractMainText(`<main><ul><li>Go</li><li>Kubernetes</li></ul></main>`, JobPostingSelectors())
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "Kubernetes"}, strings.Split(text, "\n"))
}

func TestJobText(t *testing.T) {
	body := `<html><body><nav>Jobs home</nav><div class="job-description"><h1>Backend Engineer</h1><p>We use Go and Postgres.</p></div></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	text, err := JobText(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer\nWe use Go and Postgres.", text)
}

func TestJobText_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><script>render()</script></body></html>`))
	}))
	defer server.Close()

	_, err := JobText(context.Background(), server.URL, nil)
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestShouldUseBrowser(t *testing.T) {
	assert.True(t, ShouldUseBrowser("  short  "))
	assert.False(t, ShouldUseBrowser(strings.Repeat("x", MinContentLength)))
}
