package middleware

import (
	"encoding/json"
	"log"
	"net/http"
)

// RecoverMiddleware turns a panic in a handler into a 500 JSON error. If the
// handler had already started its response the panic is only logged.
func RecoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rw := &statusRecorder{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				requestID := GetRequestID(r.Context())
				if rw.status != 0 {
					log.Printf("❌ panic serving %s %s [%s] after %d response started: %v", r.Method, r.URL.Path, requestID, rw.status, rec)
					return
				}
				log.Printf("❌ panic serving %s %s [%s]: %v", r.Method, r.URL.Path, requestID, rec)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"error": "Internal server error"})
			}
		}()
		next.ServeHTTP(rw, r)
	})
}
