// internal/admin/routes.go

package admin

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/admin").Subrouter()
	api.Use(authMiddleware.Authenticate)
	api.Use(authMiddleware.RequireAdmin)

	api.HandleFunc("/stats", handler.GetStats).Methods("GET")

	api.HandleFunc("/users", handler.SearchUsers).Methods("GET")
	api.HandleFunc("/users/{id}", handler.GetUser).Methods("GET")
	api.HandleFunc("/users/{id}/record", handler.GetUserRecord).Methods("GET")
	api.HandleFunc("/users/{id}/actions", handler.ApplyAction).Methods("POST")
	api.HandleFunc("/users/{id}/reinstate", handler.ReinstateUser).Methods("POST")

	api.HandleFunc("/reports", handler.GetReportQueue).Methods("GET")
	api.HandleFunc("/reports/{id}/review", handler.ReviewReport).Methods("POST")
}
