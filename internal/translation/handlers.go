// internal/translation/handlers.go

package translation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/amoria-app/amoria-backend/internal/common/utils"
)

type TranslateRequest struct {
	Text   string `json:"text" validate:"required,max=4000"`
	Source string `json:"source" validate:"omitempty,bcp47_language_tag"`
	Target string `json:"target" validate:"required,bcp47_language_tag"`
}

type TranslateResponse struct {
	Text           string `json:"text"`
	DetectedSource string `json:"detected_source,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Translate handles ad-hoc translation, e.g. profile bios
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	translated, detected, err := h.service.Translate(r.Context(), req.Text, req.Source, req.Target)
	if err != nil {
		if errors.Is(err, ErrEmptyText) || errors.Is(err, ErrMissingLanguage) {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithError(w, http.StatusBadGateway, "Translation failed")
		return
	}

	utils.RespondWithData(w, http.StatusOK, &TranslateResponse{
		Text:           translated,
		DetectedSource: detected,
	})
}
