package routes

import (
	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/services"
)

// RegisterOrganizationRoutes sets up routes for organizations under /orgs.
// mw wraps every organization route, e.g. with bearer-token auth.
func RegisterOrganizationRoutes(r *mux.Router, orgService *services.OrganizationService, log *logger.Logger, mw ...mux.MiddlewareFunc) {
	controller := controllers.NewOrganizationController(orgService, log)

	orgRouter := r.PathPrefix("/orgs").Subrouter()
	orgRouter.Use(mw...)

	orgRouter.HandleFunc("/create", controller.CreateOrganization).Methods("POST")
	handleRoot(orgRouter, controller.ListOrganizations, "GET")
	orgRouter.HandleFunc("/{orgId}/signup", controller.SignupForOrganization).Methods("POST")
	orgRouter.HandleFunc("/{orgId}/increment", controller.IncrementCustomCounter).Methods("POST")
	orgRouter.HandleFunc("/user/{userId}", controller.GetUserOrganizations).Methods("GET")
}
