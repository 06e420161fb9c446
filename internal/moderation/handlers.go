// internal/moderation/handlers.go

package moderation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
	"github.com/amoria-app/amoria-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) ReportUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.service.ReportUser(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfReport):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrTooManyReports):
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to file report")
		}
		return
	}

	utils.RespondWithData(w, http.StatusCreated, report)
}

func (h *Handler) BlockUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.BlockUser(r.Context(), userID, req.BlockedID); err != nil {
		if errors.Is(err, ErrSelfBlock) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to block user")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User blocked")
}

func (h *Handler) UnblockUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	blockedID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.UnblockUser(r.Context(), userID, blockedID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unblock user")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User unblocked")
}

func (h *Handler) GetBlocks(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	blocks, err := h.service.GetBlocks(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get blocked users")
		return
	}

	if blocks == nil {
		blocks = []*Block{}
	}
	utils.RespondWithData(w, http.StatusOK, blocks)
}
