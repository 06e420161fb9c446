// internal/chat/routes.go

package chat

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/ws", handler.ServeWS).Methods("GET")

	api.HandleFunc("/conversations", handler.GetConversations).Methods("GET")
	api.HandleFunc("/conversations", handler.OpenConversation).Methods("POST")
	api.HandleFunc("/conversations/{id}/messages", handler.GetMessages).Methods("GET")
	api.HandleFunc("/conversations/{id}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/messages", handler.SendMessage).Methods("POST")
	api.HandleFunc("/messages/{id}/translation", handler.TranslateMessage).Methods("GET")
}
