// internal/video/handlers.go

package video

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

func (h *Handler) StartCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req StartCallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	grant, err := h.service.StartCall(r.Context(), userID, req.MatchID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotMatched):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrPlanRequired):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to start call")
		}
		return
	}

	utils.RespondWithData(w, http.StatusCreated, grant)
}

func (h *Handler) JoinCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	callID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid call ID")
		return
	}

	grant, err := h.service.JoinCall(r.Context(), userID, callID)
	if err != nil {
		switch {
		case errors.Is(err, ErrCallNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotInCall):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrCallOver):
			utils.RespondWithError(w, http.StatusGone, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to join call")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, grant)
}

func (h *Handler) DeclineCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	callID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid call ID")
		return
	}

	if err := h.service.DeclineCall(r.Context(), userID, callID); err != nil {
		switch {
		case errors.Is(err, ErrCallNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotInCall):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, ErrInvalidCallState):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to decline call")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Call declined")
}

func (h *Handler) EndCall(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	callID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid call ID")
		return
	}

	if err := h.service.EndCall(r.Context(), userID, callID); err != nil {
		switch {
		case errors.Is(err, ErrCallNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotInCall):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to end call")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Call ended")
}

func (h *Handler) CallHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	calls, err := h.service.CallHistory(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get call history")
		return
	}

	if calls == nil {
		calls = []*Call{}
	}
	utils.RespondWithData(w, http.StatusOK, calls)
}
