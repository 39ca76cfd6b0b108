package controllers

import (
	"net/http"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthController serves signup and login.
type AuthController struct {
	AuthService *services.AuthService
	log         *logger.Logger
}

func NewAuthController(service *services.AuthService, log *logger.Logger) *AuthController {
	return &AuthController{AuthService: service, log: log.With("controller", "auth")}
}

// Signup - POST /api/auth/signup
func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	userID, err := c.AuthService.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, c.log, err, "Internal server error.", nil)
		return
	}

	utils.WriteJSONResponse(w, http.StatusCreated, map[string]string{
		"message": "User created successfully.",
		"userId":  userID,
	})
}

// Login - POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	res, err := c.AuthService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, c.log, err, "Internal server error.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, res)
}
