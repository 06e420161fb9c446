// internal/matching/routes.go

package matching

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/discover", handler.Discover).Methods("GET")
	api.HandleFunc("/swipes", handler.Swipe).Methods("POST")
	api.HandleFunc("/likes/received", handler.GetLikers).Methods("GET")

	api.HandleFunc("/matches", handler.GetMatches).Methods("GET")
	api.HandleFunc("/matches/{id}", handler.GetMatch).Methods("GET")
	api.HandleFunc("/matches/{id}", handler.Unmatch).Methods("DELETE")
}
