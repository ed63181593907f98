package middleware

import (
	"math"
	"net/http"

	"github.com/dustin/go-humanize"
)

const defaultMaxBodySize = 10 * humanize.MiByte

// BodyLimit converts a size such as "10MB" or "512KiB" to bytes. Empty or
// unreadable sizes fall back to 10 MiB.
func BodyLimit(maxSize string) int64 {
	n, err := humanize.ParseBytes(maxSize)
	if err != nil || n == 0 || n > math.MaxInt64 {
		return defaultMaxBodySize
	}
	return int64(n)
}

// BodySizeLimit caps request bodies at maxSize (see BodyLimit).
// Graph exports are the largest bodies the service accepts.
func BodySizeLimit(maxSize string) Middleware {
	size := BodyLimit(maxSize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > size {
				writeJSON(w, http.StatusRequestEntityTooLarge, tooLarge(size).ToResponse())
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, size)
			next.ServeHTTP(w, r)
		})
	}
}
