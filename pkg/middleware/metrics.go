package middleware

import (
	"net/http"
	"time"
)

// RequestObserver records finished HTTP requests.
type RequestObserver interface {
	ObserveRequest(route string, status int, took time.Duration)
}

// Metrics creates middleware reporting every request to obs, labelled with
// the chi route pattern. A nil obs disables it.
func Metrics(obs RequestObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if obs == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := wrap(w, r)

			next.ServeHTTP(ww, r)

			obs.ObserveRequest(routePattern(r), statusOf(ww), time.Since(start))
		})
	}
}
