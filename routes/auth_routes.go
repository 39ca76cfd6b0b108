package routes

import (
	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/services"
)

// RegisterAuthRoutes sets up routes for signup and login under /auth
func RegisterAuthRoutes(r *mux.Router, authService *services.AuthService, log *logger.Logger) {
	controller := controllers.NewAuthController(authService, log)

	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/signup", controller.Signup).Methods("POST")
	authRouter.HandleFunc("/login", controller.Login).Methods("POST")
}
