// internal/profile/routes.go

package profile

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Own profile
	api.HandleFunc("/profile", handler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile", handler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/preferences", handler.UpdatePreferences).Methods("PUT")
	api.HandleFunc("/profile/completion", handler.GetCompletion).Methods("GET")

	// Photos
	api.HandleFunc("/profile/photos", handler.UploadPhoto).Methods("POST")
	api.HandleFunc("/profile/photos/{id}", handler.DeletePhoto).Methods("DELETE")
	api.HandleFunc("/profile/photos/{id}/primary", handler.SetPrimaryPhoto).Methods("POST")

	// Other users
	api.HandleFunc("/users/{id}/profile", handler.GetUserProfile).Methods("GET")
}
