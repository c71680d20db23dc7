package httpserver

import (
	"net/http"
	"time"
)

// New builds the engine's HTTP server. Long-running work never happens in a
// handler, so the write timeout can stay tight; the chi Timeout middleware
// bounds handler time separately.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
