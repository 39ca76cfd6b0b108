package routes

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/middleware"
	"ecosnap_server/services"
)

// Dependencies is everything the HTTP surface is built from.
type Dependencies struct {
	Auth          *services.AuthService
	Organizations *services.OrganizationService
	Charities     *services.CharityService
	Chat          *services.ChatService
	Uploads       *services.UploadService
	Tokens        middleware.TokenVerifier

	// Socket serves /socket.io/ when set.
	Socket http.Handler

	MaxUploadBytes int64
	RequestTimeout time.Duration
	RequireAuth    bool
	Log            *logger.Logger
}

// NewRouter builds the full application router.
func NewRouter(d Dependencies) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID(), middleware.Recover(d.Log), middleware.AccessLog(d.Log))

	RegisterRoutes(r)
	if d.Socket != nil {
		RegisterSocketRoutes(r, d.Socket)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Timeout(d.RequestTimeout))

	var protected []mux.MiddlewareFunc
	if d.RequireAuth {
		protected = append(protected, middleware.RequireAuth(d.Tokens, d.Log))
	}

	RegisterAuthRoutes(api, d.Auth, d.Log)
	RegisterOrganizationRoutes(api, d.Organizations, d.Log, protected...)
	RegisterCharityRoutes(api, d.Charities, d.Log, protected...)
	RegisterChatRoutes(api, d.Chat, d.Log, protected...)
	RegisterUploadRoutes(api, d.Uploads, d.MaxUploadBytes, d.Log)
	return r
}

// RegisterRoutes sets up the base routes for the application
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", controllers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/", controllers.WelcomeHandler).Methods("GET")
}

// RegisterSocketRoutes mounts the socket.io endpoint.
func RegisterSocketRoutes(r *mux.Router, hub http.Handler) {
	r.PathPrefix("/socket.io/").Handler(hub)
}

// handleRoot registers h for the resource root with and without the
// trailing slash.
func handleRoot(r *mux.Router, h http.HandlerFunc, method string) {
	r.HandleFunc("", h).Methods(method)
	r.HandleFunc("/", h).Methods(method)
}
