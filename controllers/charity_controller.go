package controllers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

type CharityController struct {
	CharityService *services.CharityService
	log            *logger.Logger
}

func NewCharityController(service *services.CharityService, log *logger.Logger) *CharityController {
	return &CharityController{CharityService: service, log: log.With("controller", "charities")}
}

func (c *CharityController) CreateCharity(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	charity, err := c.CharityService.CreateCharity(r.Context(), req.Name)
	if err != nil {
		writeError(w, c.log, err, "Failed to create charity.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, map[string]any{
		"message": "Charity created successfully.",
		"charity": charity,
	})
}

func (c *CharityController) ListCharities(w http.ResponseWriter, r *http.Request) {
	charities, err := c.CharityService.ListCharities(r.Context())
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve charities.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, charities)
}

func (c *CharityController) SignupForCharity(w http.ResponseWriter, r *http.Request) {
	charityID := mux.Vars(r)["charityId"]
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	if err := c.CharityService.SignupForCharity(r.Context(), charityID, req.UserID); err != nil {
		writeError(w, c.log, err, "Failed to sign up for charity.", errorMessages{
			services.ErrAlreadyMember: "User has already signed up for this charity.",
			services.ErrGroupNotFound: "Charity not found.",
		})
		return
	}
	utils.WriteMessage(w, http.StatusOK, fmt.Sprintf("Successfully signed up for charity %s.", charityID))
}

func (c *CharityController) GetUserCharities(w http.ResponseWriter, r *http.Request) {
	ids, err := c.CharityService.GetUserCharities(r.Context(), mux.Vars(r)["userId"])
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve user charities.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, ids)
}
