package controllers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

type nameRequest struct {
	Name string `json:"name"`
}

type userRequest struct {
	UserID string `json:"userId"`
}

type OrganizationController struct {
	OrganizationService *services.OrganizationService
	log                 *logger.Logger
}

func NewOrganizationController(service *services.OrganizationService, log *logger.Logger) *OrganizationController {
	return &OrganizationController{OrganizationService: service, log: log.With("controller", "organizations")}
}

// CreateOrganization - POST /api/orgs/create
func (c *OrganizationController) CreateOrganization(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	org, err := c.OrganizationService.CreateOrganization(r.Context(), req.Name)
	if err != nil {
		writeError(w, c.log, err, "Failed to create organization.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"message":      "Organization created successfully.",
		"organization": org,
	})
}

// ListOrganizations - GET /api/orgs/
func (c *OrganizationController) ListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := c.OrganizationService.ListOrganizations(r.Context())
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve organizations.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, orgs)
}

// SignupForOrganization - POST /api/orgs/{orgId}/signup
func (c *OrganizationController) SignupForOrganization(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	if err := c.OrganizationService.SignupForOrganization(r.Context(), orgID, req.UserID); err != nil {
		writeError(w, c.log, err, "Failed to sign up for organization.", errorMessages{
			services.ErrAlreadyMember: "User has already signed up for this organization.",
			services.ErrGroupNotFound: "Organization not found.",
		})
		return
	}
	utils.WriteMessage(w, http.StatusOK, fmt.Sprintf("Successfully signed up for organization %s.", orgID))
}

// IncrementCustomCounter - POST /api/orgs/{orgId}/increment
func (c *OrganizationController) IncrementCustomCounter(w http.ResponseWriter, r *http.Request) {
	orgID := mux.Vars(r)["orgId"]
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	if err := c.OrganizationService.IncrementCustomCounter(r.Context(), orgID, req.UserID); err != nil {
		writeError(w, c.log, err, "Failed to increment counter.", errorMessages{
			services.ErrNotAMember:    "Failed to increment. Ensure user is a member of the organization.",
			services.ErrGroupNotFound: "Organization not found.",
		})
		return
	}
	utils.WriteMessage(w, http.StatusOK,
		fmt.Sprintf("Counter for user %s and the organization's total were incremented successfully.", req.UserID))
}

// GetUserOrganizations - GET /api/orgs/user/{userId}
func (c *OrganizationController) GetUserOrganizations(w http.ResponseWriter, r *http.Request) {
	ids, err := c.OrganizationService.GetUserOrganizations(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve user organizations.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, ids)
}
