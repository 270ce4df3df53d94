package fetch

import (
	"fmt"
	"net/http"
	"strings"
)

// BlockedError reports that a site answered with a bot protection challenge
// instead of the page.
type BlockedError struct {
	URL        string
	StatusCode int
	Reason     string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("blocked by bot protection at %s (HTTP %d): %s", e.URL, e.StatusCode, e.Reason)
}

var challengeMarkers = []string{
	"cf-browser-verification",
	"cf_chl_opt",
	"challenge-platform",
	"just a moment...",
	"checking your browser before accessing",
	"attention required! | cloudflare",
}

// detectBlock recognizes Cloudflare style challenge pages.
func detectBlock(status int, header http.Header, body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, marker := range challengeMarkers {
		if strings.Contains(lower, marker) {
			return "challenge page marker " + fmt.Sprintf("%q", marker), true
		}
	}
	if status == http.StatusForbidden || status == http.StatusServiceUnavailable {
		if header.Get("cf-ray") != "" || strings.EqualFold(header.Get("Server"), "cloudflare") {
			return "cloudflare denied the request", true
		}
	}
	return "", false
}
