package routes

import (
	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/services"
)

// RegisterCharityRoutes sets up routes for charities under /charities
func RegisterCharityRoutes(r *mux.Router, charityService *services.CharityService, log *logger.Logger, mw ...mux.MiddlewareFunc) {
	controller := controllers.NewCharityController(charityService, log)

	charityRouter := r.PathPrefix("/charities").Subrouter()
	charityRouter.Use(mw...)

	charityRouter.HandleFunc("/create", controller.CreateCharity).Methods("POST")
	handleRoot(charityRouter, controller.ListCharities, "GET")
	charityRouter.HandleFunc("/{charityId}/signup", controller.SignupForCharity).Methods("POST")
	charityRouter.HandleFunc("/user/{userId}", controller.GetUserCharities).Methods("GET")
}
