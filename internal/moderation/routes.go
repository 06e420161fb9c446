// internal/moderation/routes.go

package moderation

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/reports", handler.ReportUser).Methods("POST")
	api.HandleFunc("/blocks", handler.GetBlocks).Methods("GET")
	api.HandleFunc("/blocks", handler.BlockUser).Methods("POST")
	api.HandleFunc("/blocks/{id}", handler.UnblockUser).Methods("DELETE")
}
