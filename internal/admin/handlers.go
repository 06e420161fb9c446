// internal/admin/handlers.go

package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/amoria-app/amoria-backend/internal/auth"
	"github.com/amoria-app/amoria-backend/internal/common/utils"
	"github.com/amoria-app/amoria-backend/internal/moderation"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetStats(r.Context())
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load stats")
		return
	}

	utils.RespondWithData(w, http.StatusOK, stats)
}

func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	users, err := h.service.SearchUsers(r.Context(), q.Get("q"), q.Get("status"), limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to search users")
		return
	}

	if users == nil {
		users = []*UserSummary{}
	}
	utils.RespondWithData(w, http.StatusOK, users)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	user, err := h.service.GetUser(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "User not found")
		return
	}

	utils.RespondWithData(w, http.StatusOK, user)
}

func (h *Handler) GetUserRecord(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	record, err := h.service.GetUserRecord(r.Context(), userID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load moderation record")
		return
	}

	utils.RespondWithData(w, http.StatusOK, record)
}

func (h *Handler) GetReportQueue(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	reports, err := h.service.GetReportQueue(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to load report queue")
		return
	}

	if reports == nil {
		reports = []*moderation.Report{}
	}
	utils.RespondWithData(w, http.StatusOK, reports)
}

func (h *Handler) ReviewReport(w http.ResponseWriter, r *http.Request) {
	adminID, _ := auth.GetUserIDFromContext(r.Context())

	reportID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid report ID")
		return
	}

	var req ReviewReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ReviewReport(r.Context(), adminID, reportID, req.Status); err != nil {
		if errors.Is(err, moderation.ErrReportNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to review report")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Report reviewed")
}

func (h *Handler) ApplyAction(w http.ResponseWriter, r *http.Request) {
	adminID, _ := auth.GetUserIDFromContext(r.Context())

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	var req UserActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.ApplyAction(r.Context(), adminID, userID, req.Action, req.Reason); err != nil {
		switch {
		case errors.Is(err, moderation.ErrInvalidAction):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, moderation.ErrStatusDowngrade):
			utils.RespondWithError(w, http.StatusConflict, err.Error())
		default:
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to apply action")
		}
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "Action applied")
}

func (h *Handler) ReinstateUser(w http.ResponseWriter, r *http.Request) {
	adminID, _ := auth.GetUserIDFromContext(r.Context())

	userID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if err := h.service.ReinstateUser(r.Context(), adminID, userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to reinstate user")
		return
	}

	utils.RespondWithMessage(w, http.StatusOK, "User reinstated")
}
