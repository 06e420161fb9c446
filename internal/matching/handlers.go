// internal/matching/handlers.go

package matching

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

func (h *Handler) Discover(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	feed, err := h.service.Discover(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			utils.RespondWithError(w, http.StatusPreconditionFailed, "Complete your profile to start discovering")
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load discovery feed")
		return
	}

	if feed == nil {
		feed = []*ScoredCandidate{}
	}
	utils.RespondWithData(w, http.StatusOK, feed)
}

func (h *Handler) Swipe(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	var req SwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Swipe(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrSelfSwipe):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrRateLimited):
			utils.RespondWithError(w, http.StatusTooManyRequests, err.Error())
		case errors.Is(err, ErrLikeBudgetExhausted):
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, ErrTargetUnavailable):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to record swipe")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, result)
}

func (h *Handler) GetMatches(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	matches, err := h.service.GetMatches(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get matches")
		return
	}

	if matches == nil {
		matches = []*Match{}
	}
	utils.RespondWithData(w, http.StatusOK, matches)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	match, err := h.service.GetMatch(r.Context(), userID, matchID)
	if err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotInMatch):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get match")
		}
		return
	}

	utils.RespondWithData(w, http.StatusOK, match)
}

func (h *Handler) Unmatch(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	matchID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid match ID")
		return
	}

	if err := h.service.Unmatch(r.Context(), userID, matchID); err != nil {
		switch {
		case errors.Is(err, ErrMatchNotFound):
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, ErrNotInMatch):
			utils.RespondWithError(w, http.StatusForbidden, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to unmatch")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Unmatched")
}

func (h *Handler) GetLikers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.GetUserIDFromContext(r.Context())

	likers, err := h.service.GetLikers(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrPremiumRequired) {
			utils.RespondWithError(w, http.StatusPaymentRequired, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to get likes")
		return
	}

	if likers == nil {
		likers = []*Liker{}
	}
	utils.RespondWithData(w, http.StatusOK, likers)
}
