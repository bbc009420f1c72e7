package abilities

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"campaign-grants/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/abilities", func(ar chi.Router) {
		ar.Get("/", listAbilitiesHandler(svc))
		ar.Post("/", createAbilityHandler(svc))
		ar.Get("/{abilityID}", getAbilityHandler(svc))
	})
}

type abilityResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	BaseCost    int       `json:"base_cost"`
	CreatedAt   time.Time `json:"created_at"`
}

// createAbilityHandler godoc
// @Summary Crear habilidad en el catálogo
// @Description Solo autoridad. base_cost es el costo en reserve que paga el holder en cada consumo.
// @Tags abilities
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param payload body CreateInput true "Habilidad"
// @Success 201 {object} abilityResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 403 {string} string "forbidden"
// @Router /abilities [post]
func createAbilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in CreateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), callerID, in)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrForbidden):
				http.Error(w, "forbidden", http.StatusForbidden)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusCreated, toAbilityResponse(a))
	}
}

func listAbilitiesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CallerID(r.Context()) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out := make([]abilityResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAbilityResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAbilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if middleware.CallerID(r.Context()) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a, err := svc.Get(r.Context(), strings.TrimSpace(chi.URLParam(r, "abilityID")))
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "ability not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAbilityResponse(a))
	}
}

func toAbilityResponse(a Ability) abilityResponse {
	return abilityResponse{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		BaseCost:    a.BaseCost,
		CreatedAt:   a.CreatedAt,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
