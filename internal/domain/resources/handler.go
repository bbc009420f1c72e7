package resources

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"campaign-grants/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/holders/{holderID}/resources", getStateHandler(svc))
	r.Put("/holders/{holderID}/resources", initStateHandler(svc))
	r.Post("/holders/{holderID}/resources/adjust", adjustStateHandler(svc))
}

type stateResponse struct {
	HolderID    string    `json:"holder_id"`
	Health      int       `json:"health"`
	Vitality    int       `json:"vitality"`
	MaxVitality int       `json:"max_vitality"`
	Travel      int       `json:"travel"`
	MaxTravel   int       `json:"max_travel"`
	Reserve     int       `json:"reserve"`
	MaxReserve  int       `json:"max_reserve"`
	Progress    int       `json:"progress"`
	Version     int64     `json:"version"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// getStateHandler godoc
// @Summary Ver recursos de un holder
// @Description El propio holder o una autoridad.
// @Tags resources
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param holderID path string true "ID del holder"
// @Success 200 {object} stateResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "resource state not found"
// @Router /holders/{holderID}/resources [get]
func getStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		st, err := svc.Get(r.Context(), chi.URLParam(r, "holderID"), callerID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStateResponse(st))
	}
}

func initStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in InitInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.Init(r.Context(), callerID, chi.URLParam(r, "holderID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStateResponse(st))
	}
}

// adjustStateHandler godoc
// @Summary Ajustar un recurso
// @Description Solo autoridad. Aplica un delta a un campo; clamp_max (default true) acota el current a su máximo.
// @Tags resources
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param holderID path string true "ID del holder"
// @Param payload body AdjustInput true "Campo y delta"
// @Success 200 {object} stateResponse
// @Failure 400 {string} string "invalid json / campo inválido"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "resource state not found"
// @Failure 409 {string} string "conflict"
// @Router /holders/{holderID}/resources/adjust [post]
func adjustStateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in AdjustInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		st, err := svc.Adjust(r.Context(), callerID, chi.URLParam(r, "holderID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toStateResponse(st))
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "resource state not found", http.StatusNotFound)
	case errors.Is(err, ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toStateResponse(s State) stateResponse {
	return stateResponse{
		HolderID:    s.HolderID,
		Health:      s.Health,
		Vitality:    s.Vitality,
		MaxVitality: s.MaxVitality,
		Travel:      s.Travel,
		MaxTravel:   s.MaxTravel,
		Reserve:     s.Reserve,
		MaxReserve:  s.MaxReserve,
		Progress:    s.Progress,
		Version:     s.Version,
		UpdatedAt:   s.UpdatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
