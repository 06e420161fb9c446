// internal/billing/routes.go

package billing

import (
	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	// Stripe calls this; no auth middleware
	router.HandleFunc("/api/v1/billing/webhook", handler.Webhook).Methods("POST")

	api := router.PathPrefix("/api/v1/billing").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/checkout", handler.CreateCheckout).Methods("POST")
	api.HandleFunc("/subscription", handler.GetSubscription).Methods("GET")
	api.HandleFunc("/entitlement", handler.GetEntitlement).Methods("GET")
}
