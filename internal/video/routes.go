// internal/video/routes.go

package video

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/video").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/calls", handler.StartCall).Methods("POST")
	api.HandleFunc("/calls", handler.CallHistory).Methods("GET")
	api.HandleFunc("/calls/{id}/join", handler.JoinCall).Methods("POST")
	api.HandleFunc("/calls/{id}/decline", handler.DeclineCall).Methods("POST")
	api.HandleFunc("/calls/{id}/end", handler.EndCall).Methods("POST")
}
