package metrics

import (
	"net/http"
)

// ScrapePath is the route serving Prometheus; requests to it are not counted.
const ScrapePath = "/metrics"

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// RequestMiddleware counts status API requests and responses with a 4xx or
// 5xx status. Scrapes of ScrapePath are left out.
func RequestMiddleware(m *Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == ScrapePath {
				next.ServeHTTP(w, r)
				return
			}
			sw := &statusWriter{ResponseWriter: w}
			next.ServeHTTP(sw, r)
			m.IncRequests()
			if sw.status >= http.StatusBadRequest {
				m.IncErrors()
			}
		})
	}
}
