package routes

import (
	"github.com/gorilla/mux"

	"ecosnap_server/controllers"
	"ecosnap_server/logger"
	"ecosnap_server/services"
)

// RegisterChatRoutes sets up routes for chat-related operations under /chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, log *logger.Logger, mw ...mux.MiddlewareFunc) {
	// Initialize the controller with the ChatService
	controller := controllers.NewChatController(chatService, log)

	chatRouter := r.PathPrefix("/chat").Subrouter()
	chatRouter.Use(mw...)

	chatRouter.HandleFunc("/messages", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/conversations", controller.HandleGetConversations).Methods("POST")
	chatRouter.HandleFunc("/messages/history", controller.HandleGetMessages).Methods("POST")
}
