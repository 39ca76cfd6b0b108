package controllers

import (
	"net/http"

	"ecosnap_server/logger"
	"ecosnap_server/services"
	"ecosnap_server/utils"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
	log         *logger.Logger
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService, log *logger.Logger) *ChatController {
	return &ChatController{ChatService: service, log: log.With("controller", "chat")}
}

// HandleSendMessage - POST /api/chat/messages
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req services.SendMessageInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	msg, err := c.ChatService.SendMessage(r.Context(), req)
	if err != nil {
		writeError(w, c.log, err, "Failed to send message.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, msg)
}

// HandleGetConversations - POST /api/chat/conversations
func (c *ChatController) HandleGetConversations(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	convos, err := c.ChatService.GetConversations(r.Context(), req.UserID)
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve conversations.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, convos)
}

// HandleGetMessages - POST /api/chat/messages/history
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID      string `json:"userId"`
		OtherUserID string `json:"otherUserId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, c.log, err, "", nil)
		return
	}

	messages, err := c.ChatService.GetMessages(r.Context(), req.UserID, req.OtherUserID)
	if err != nil {
		writeError(w, c.log, err, "Failed to retrieve messages.", nil)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, messages)
}
