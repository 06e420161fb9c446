// internal/billing/handlers.go

package billing

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/amoria-app/amoria-backend/internal/auth"
	"github.com/amoria-app/amoria-backend/internal/common/utils"
)

const maxWebhookBody = 64 << 10 // Stripe's documented cap is 64KB

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	checkout, err := h.service.CreateCheckoutSession(r.Context(), userID, req.Plan)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownPlan):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrBillingDisabled):
			utils.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
		default:
			utils.RespondWithError(w, http.StatusBadGateway, "Failed to start checkout")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, checkout)
}

// Webhook receives Stripe events. Unauthenticated; the signature
// header is the authentication.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	if err := h.service.HandleWebhook(payload, r.Header.Get("Stripe-Signature")); err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		// Non-2xx makes Stripe retry, which is what we want
		log.Printf("billing: webhook: %v", err)
		utils.RespondWithError(w, http.StatusInternalServerError, "Webhook processing failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) GetSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	sub, err := h.service.GetSubscription(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			utils.RespondWithData(w, http.StatusOK, &Subscription{UserID: userID, Plan: PlanFree})
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get subscription")
		return
	}

	utils.RespondWithData(w, http.StatusOK, sub)
}

func (h *Handler) GetEntitlement(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	ent, err := h.service.GetEntitlement(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get entitlement")
		return
	}

	utils.RespondWithData(w, http.StatusOK, ent)
}
