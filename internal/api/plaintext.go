package api

import (
	"net/http"
	"strings"
)

// plaintextAgents are command line clients that always get raw content.
var plaintextAgents = []string{"curl", "Wget", "HTTPie"}

// isPlaintextRequest reports whether the client should get the raw paste
// instead of the HTML page.
func isPlaintextRequest(r *http.Request) bool {
	ua := r.Header.Get("User-Agent")
	for _, agent := range plaintextAgents {
		if strings.HasPrefix(ua, agent) {
			return true
		}
	}

	return !strings.Contains(r.Header.Get("Accept"), "text/html")
}
