package middleware

import "net/http"

// NoStore marks a response as non-cacheable and visitor-specific. Every
// gated response must carry these headers: a challenge or an unlock
// served from a shared cache to the wrong visitor is a security failure,
// not a staleness bug.
func NoStore(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}
