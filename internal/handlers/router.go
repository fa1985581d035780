package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/neochat/relay/internal/apperr"
	"github.com/neochat/relay/internal/buildinfo"
	"github.com/neochat/relay/internal/directory"
	"github.com/neochat/relay/internal/mailbox"
	"github.com/neochat/relay/internal/middleware"
)

// Options controls response shaping
type Options struct {
	// ExposeInternalErrors puts storage error text into 500 bodies.
	// When false a generic message is returned instead.
	ExposeInternalErrors bool
}

// Router wraps the mux router and the relay services. It keeps no
// per-request state between requests.
type Router struct {
	*mux.Router
	directory *directory.Service
	mailbox   *mailbox.Service
	opts      Options
	now       func() time.Time
}

// NewRouter creates a new HTTP router with all relay routes
func NewRouter(dir *directory.Service, mb *mailbox.Service, opts Options) *Router {
	r := &Router{
		Router:    mux.NewRouter(),
		directory: dir,
		mailbox:   mb,
		opts:      opts,
		now:       time.Now,
	}

	// Profile directory
	r.HandleFunc("/profile", r.upsertProfile).Methods("POST")
	r.HandleFunc("/profile/{id}", r.getProfile).Methods("GET")
	r.HandleFunc("/profile/{id}/qr", r.profileQR).Methods("GET")

	// Mailbox
	r.HandleFunc("/send", r.send).Methods("POST")
	r.HandleFunc("/poll/{recipient}", r.poll).Methods("GET")
	r.HandleFunc("/ack/{recipient}/{message_id}", r.ack).Methods("DELETE")

	// Health check
	r.HandleFunc("/status", r.getStatus)

	// Unknown paths and wrong methods look the same to callers
	r.NotFoundHandler = http.HandlerFunc(notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(notFound)

	return r
}

// Handler returns the router wrapped in the relay middleware chain
func (r *Router) Handler() http.Handler {
	return middleware.LoggingMiddleware(
		middleware.CORSMiddleware(
			middleware.RecoverMiddleware(r.Router),
		),
	)
}

// getStatus returns the relay health status
func (r *Router) getStatus(w http.ResponseWriter, req *http.Request) {
	respondJSON(w, http.StatusOK, StatusResponse{
		Status:    "ok",
		Service:   buildinfo.ServiceName,
		Version:   buildinfo.Version,
		Timestamp: r.now().UnixMilli(),
	})
}

func notFound(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(buildinfo.Banner()))
}

// decodeJSON reads the request body into v; malformed bodies are
// validation failures.
func decodeJSON(req *http.Request, v interface{}) error {
	if err := json.NewDecoder(req.Body).Decode(v); err != nil {
		return apperr.Validation("Invalid JSON body")
	}
	return nil
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondAppError maps err to its status code and error body
func (r *Router) respondAppError(w http.ResponseWriter, req *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	message := err.Error()
	if kind == apperr.KindStorage {
		log.Printf("❌ %s %s [%s]: %v", req.Method, req.URL.Path, middleware.GetRequestID(req.Context()), err)
		if !r.opts.ExposeInternalErrors {
			message = "Internal server error"
		}
	}
	respondError(w, status, message)
}
