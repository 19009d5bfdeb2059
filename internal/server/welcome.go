// AngelaMos | 2026
// welcome.go

package server

import (
	"net/http"
)

const welcomeText = "Welcome to ESB Website"

func Welcome(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // best-effort response write
	_, _ = w.Write([]byte(welcomeText))
}
