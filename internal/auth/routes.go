// internal/auth/routes.go

package auth

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, middleware *Middleware) {
	// Public routes
	public := router.PathPrefix("/api/v1/auth").Subrouter()
	public.HandleFunc("/signup", handler.Signup).Methods("POST")
	public.HandleFunc("/signin", handler.Signin).Methods("POST")
	public.HandleFunc("/refresh", handler.Refresh).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/api/v1/auth").Subrouter()
	protected.Use(middleware.Authenticate)
	protected.HandleFunc("/logout", handler.Logout).Methods("POST")
	protected.HandleFunc("/verify", handler.Verify).Methods("POST")
	protected.HandleFunc("/verify/resend", handler.ResendCode).Methods("POST")
	protected.HandleFunc("/me", handler.Me).Methods("GET")
}
