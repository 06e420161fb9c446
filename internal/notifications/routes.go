// internal/notifications/routes.go

package notifications

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/notifications").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.GetNotifications).Methods("GET")
	api.HandleFunc("/unread", handler.GetUnreadCount).Methods("GET")
	api.HandleFunc("/{id}/read", handler.MarkRead).Methods("POST")
	api.HandleFunc("/read-all", handler.MarkAllRead).Methods("POST")
	api.HandleFunc("/preferences", handler.GetPreferences).Methods("GET")
	api.HandleFunc("/preferences", handler.UpdatePreferences).Methods("PUT")

	devices := router.PathPrefix("/api/v1/devices").Subrouter()
	devices.Use(authMiddleware.Authenticate)
	devices.HandleFunc("", handler.RegisterDevice).Methods("POST")
	devices.HandleFunc("/{token}", handler.UnregisterDevice).Methods("DELETE")
}
