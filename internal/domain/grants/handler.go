package grants

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/middleware"
	"campaign-grants/internal/platform/logger"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/grants", func(gr chi.Router) {
		// Emisión (autoridad)
		gr.Post("/", issueHandler(svc))

		gr.Route("/{grantID}", func(ir chi.Router) {
			ir.Get("/", getGrantHandler(svc))
			ir.Patch("/", updateDetailsHandler(svc))
			ir.Get("/usage", historyHandler(svc))

			// Transiciones
			ir.Post("/consume", consumeHandler(svc))
			ir.Post("/transfer", transferHandler(svc))
			ir.Post("/revoke", revokeHandler(svc))
		})
	})

	r.Get("/holders/{holderID}/grants", listHolderGrantsHandler(svc))
	r.Get("/me/grants", listMyGrantsHandler(svc))
}

type issueRequest struct {
	HolderID        string       `json:"holder_id"`
	AbilityID       string       `json:"ability_id"`
	Title           string       `json:"title"`
	Detail          string       `json:"detail"`
	ImageURL        string       `json:"image_url"`
	Transferable    bool         `json:"transferable"`
	ReusePolicy     string       `json:"reuse_policy"` // once | cooldown | unlimited
	CooldownMinutes *int         `json:"cooldown_minutes"`
	ExpiresAt       string       `json:"expires_at"` // RFC3339 opcional
	Effect          EffectVector `json:"effect"`
}

type transferRequest struct {
	ToHolderID string `json:"to_holder_id"`
}

type revokeRequest struct {
	Note string `json:"note"`
}

type grantResponse struct {
	ID              string       `json:"id"`
	HolderID        string       `json:"holder_id"`
	AbilityID       string       `json:"ability_id"`
	IssuerID        string       `json:"issuer_id"`
	Title           string       `json:"title"`
	Detail          string       `json:"detail"`
	ImageURL        string       `json:"image_url"`
	Transferable    bool         `json:"transferable"`
	ReusePolicy     PolicyKind   `json:"reuse_policy"`
	CooldownMinutes *int         `json:"cooldown_minutes"`
	ExpiresAt       *time.Time   `json:"expires_at"`
	Effect          EffectVector `json:"effect"`
	Active          bool         `json:"active"`
	Expired         bool         `json:"expired"`
	AvailableAt     *time.Time   `json:"available_at,omitempty"`
	TimesUsed       int          `json:"times_used"`
	LastUsedAt      *time.Time   `json:"last_used_at"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type resourceTotals struct {
	Health      int `json:"health"`
	Vitality    int `json:"vitality"`
	MaxVitality int `json:"max_vitality"`
	Travel      int `json:"travel"`
	MaxTravel   int `json:"max_travel"`
	Reserve     int `json:"reserve"`
	MaxReserve  int `json:"max_reserve"`
	Progress    int `json:"progress"`
}

type consumeResponse struct {
	GrantID       string         `json:"grant_id"`
	ReferenceCode string         `json:"reference_code"`
	Outcome       Outcome        `json:"outcome"`
	Cost          int            `json:"cost"`
	Applied       EffectVector   `json:"applied"`
	Resources     resourceTotals `json:"resources"`
	TimesUsed     int            `json:"times_used"`
	Active        bool           `json:"active"`
}

type usageResponse struct {
	ID             string        `json:"id"`
	GrantID        string        `json:"grant_id"`
	HolderID       string        `json:"holder_id"`
	ActorID        string        `json:"actor_id"`
	Action         Action        `json:"action"`
	Effect         *EffectVector `json:"effect,omitempty"`
	Applied        *EffectVector `json:"applied,omitempty"`
	Cost           int           `json:"cost,omitempty"`
	ReferenceCode  string        `json:"reference_code,omitempty"`
	Note           string        `json:"note,omitempty"`
	TargetHolderID string        `json:"target_holder_id,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// issueHandler godoc
// @Summary Emitir un grant de habilidad
// @Description Solo autoridad. cooldown_minutes es obligatorio (y > 0) si reuse_policy es cooldown y se ignora en otro caso.
// @Tags grants
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body issueRequest true "Grant a emitir; expires_at en RFC3339"
// @Success 201 {object} grantResponse
// @Failure 400 {object} errorResponse "validation_error"
// @Failure 403 {object} errorResponse "forbidden"
// @Failure 404 {object} errorResponse "holder o ability inexistente"
// @Router /grants [post]
func issueHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req issueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		policy, err := ParsePolicy(req.ReusePolicy, req.CooldownMinutes)
		if err != nil {
			writeError(w, r, err)
			return
		}

		var exp *time.Time
		if strings.TrimSpace(req.ExpiresAt) != "" {
			t, err := time.Parse(time.RFC3339, strings.TrimSpace(req.ExpiresAt))
			if err != nil {
				writeError(w, r, &ValidationError{Field: "expires_at", Reason: "must be RFC3339"})
				return
			}
			exp = &t
		}

		g, err := svc.Issue(r.Context(), callerID, IssueInput{
			HolderID:     req.HolderID,
			AbilityID:    req.AbilityID,
			Title:        req.Title,
			Detail:       req.Detail,
			ImageURL:     req.ImageURL,
			Transferable: req.Transferable,
			Policy:       policy,
			ExpiresAt:    exp,
			Effect:       req.Effect,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, toGrantResponse(svc.summarize(g, svc.now().UTC())))
	}
}

func getGrantHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		sum, err := svc.Get(r.Context(), chi.URLParam(r, "grantID"), callerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGrantResponse(sum))
	}
}

// updateDetailsHandler: PATCH con punteros, nil = no tocar. Solo autoridad.
func updateDetailsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var p DetailsPatch
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.UpdateDetails(r.Context(), chi.URLParam(r, "grantID"), callerID, p)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGrantResponse(svc.summarize(g, svc.now().UTC())))
	}
}

// consumeHandler godoc
// @Summary Consumir un grant
// @Description Solo el holder actual. Descuenta el costo base de la habilidad de reserve sin importar el resultado de la tirada y aplica el vector de efectos.
// @Tags grants
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param grantID path string true "ID del grant"
// @Param payload body ConsumeInput true "Tirada (threshold, roll) y nota opcional"
// @Success 200 {object} consumeResponse
// @Failure 403 {object} errorResponse "forbidden"
// @Failure 404 {object} errorResponse "not_found"
// @Failure 409 {object} errorResponse "grant_inactive / grant_expired / grant_exhausted / cooldown_active / conflict"
// @Failure 422 {object} errorResponse "insufficient_resource"
// @Router /grants/{grantID}/consume [post]
func consumeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var in ConsumeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		out, err := svc.Consume(r.Context(), chi.URLParam(r, "grantID"), callerID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, consumeResponse{
			GrantID:       out.Grant.ID,
			ReferenceCode: out.ReferenceCode,
			Outcome:       out.Outcome,
			Cost:          out.Cost,
			Applied:       out.Applied,
			Resources:     toResourceTotals(out.Resources),
			TimesUsed:     out.Grant.TimesUsed,
			Active:        out.Grant.IsActive,
		})
	}
}

// transferHandler godoc
// @Summary Transferir un grant a otro holder
// @Description Solo el holder actual y solo si el grant es transferable y está activo. Reinicia times_used y last_used_at.
// @Tags grants
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param grantID path string true "ID del grant"
// @Param payload body transferRequest true "Holder destino"
// @Success 200 {object} grantResponse
// @Failure 400 {object} errorResponse "validation_error"
// @Failure 403 {object} errorResponse "forbidden"
// @Failure 404 {object} errorResponse "not_found"
// @Failure 409 {object} errorResponse "grant_not_transferable / grant_inactive / grant_expired"
// @Router /grants/{grantID}/transfer [post]
func transferHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req transferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.Transfer(r.Context(), chi.URLParam(r, "grantID"), callerID, req.ToHolderID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGrantResponse(svc.summarize(g, svc.now().UTC())))
	}
}

func revokeHandler(svc *Service) http.HandlerFunc {
	// Idempotente: revocar un grant inactivo devuelve 200 igual.
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		// Body opcional.
		var req revokeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		g, err := svc.Revoke(r.Context(), chi.URLParam(r, "grantID"), callerID, req.Note)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toGrantResponse(svc.summarize(g, svc.now().UTC())))
	}
}

func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.History(r.Context(), chi.URLParam(r, "grantID"), callerID)
		if err != nil {
			writeError(w, r, err)
			return
		}

		out := make([]usageResponse, 0, len(items))
		for _, e := range items {
			out = append(out, usageResponse{
				ID:             e.ID,
				GrantID:        e.GrantID,
				HolderID:       e.HolderID,
				ActorID:        e.ActorID,
				Action:         e.Action,
				Effect:         e.Effect,
				Applied:        e.Applied,
				Cost:           e.Cost,
				ReferenceCode:  e.ReferenceCode,
				Note:           e.Note,
				TargetHolderID: e.TargetHolderID,
				CreatedAt:      e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// listHolderGrantsHandler godoc
// @Summary Listar grants de un holder
// @Description El propio holder o una autoridad. Solo lectura: un grant vencido aparece con active=false aunque no se haya persistido.
// @Tags grants
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param holderID path string true "ID del holder"
// @Success 200 {array} grantResponse
// @Failure 403 {object} errorResponse "forbidden"
// @Router /holders/{holderID}/grants [get]
func listHolderGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeGrantList(w, r, svc, chi.URLParam(r, "holderID"), callerID)
	}
}

func listMyGrantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		callerID := middleware.CallerID(r.Context())
		if callerID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		writeGrantList(w, r, svc, callerID, callerID)
	}
}

func writeGrantList(w http.ResponseWriter, r *http.Request, svc *Service, holderID, callerID string) {
	items, err := svc.ListForHolder(r.Context(), holderID, callerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]grantResponse, 0, len(items))
	for _, sum := range items {
		out = append(out, toGrantResponse(sum))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := errorBody(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("grants request failed", map[string]any{"error": err})
	}
	writeJSON(w, status, body)
}

// errorBody traduce errores del motor a status + cuerpo JSON con detalles estructurados.
func errorBody(err error) (int, errorResponse) {
	var (
		ve  *ValidationError
		nf  *NotFoundError
		ce  *CooldownActiveError
		ie  *InsufficientResourceError
		gse *GrantStateError
	)

	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, errorResponse{
			Error:   "validation_error",
			Message: err.Error(),
			Details: map[string]any{"field": ve.Field, "reason": ve.Reason},
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorResponse{Error: "forbidden", Message: err.Error()}
	case errors.As(err, &nf):
		return http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: err.Error(),
			Details: map[string]any{"entity": nf.Entity, "id": nf.ID},
		}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}
	case errors.As(err, &ce):
		return http.StatusConflict, errorResponse{
			Error:   "cooldown_active",
			Message: err.Error(),
			Details: map[string]any{
				"grant_id":          ce.GrantID,
				"remaining_minutes": ce.RemainingMinutes,
				"available_at":      ce.AvailableAt,
			},
		}
	case errors.As(err, &ie):
		return http.StatusUnprocessableEntity, errorResponse{
			Error:   "insufficient_resource",
			Message: err.Error(),
			Details: map[string]any{
				"resource":  ie.Resource,
				"required":  ie.Required,
				"available": ie.Available,
			},
		}
	case errors.As(err, &gse):
		return http.StatusConflict, errorResponse{
			Error:   stateCode(gse.Err),
			Message: err.Error(),
			Details: map[string]any{"grant_id": gse.GrantID, "policy": gse.Policy},
		}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}
	}
	return http.StatusInternalServerError, errorResponse{Error: "internal", Message: "internal error"}
}

func stateCode(err error) string {
	switch {
	case errors.Is(err, ErrExpired):
		return "grant_expired"
	case errors.Is(err, ErrExhausted):
		return "grant_exhausted"
	case errors.Is(err, ErrNotTransferable):
		return "grant_not_transferable"
	}
	return "grant_inactive"
}

func toGrantResponse(sum GrantSummary) grantResponse {
	g := sum.Grant
	var minutes *int
	if m, ok := g.Policy.CooldownMinutes(); ok {
		minutes = &m
	}
	return grantResponse{
		ID:              g.ID,
		HolderID:        g.HolderID,
		AbilityID:       g.AbilityID,
		IssuerID:        g.IssuerID,
		Title:           g.Title,
		Detail:          g.Detail,
		ImageURL:        g.ImageURL,
		Transferable:    g.Transferable,
		ReusePolicy:     g.Policy.Kind(),
		CooldownMinutes: minutes,
		ExpiresAt:       g.ExpiresAt,
		Effect:          g.Effect,
		Active:          sum.Active,
		Expired:         sum.Expired,
		AvailableAt:     sum.AvailableAt,
		TimesUsed:       g.TimesUsed,
		LastUsedAt:      g.LastUsedAt,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func toResourceTotals(s resources.State) resourceTotals {
	return resourceTotals{
		Health:      s.Health,
		Vitality:    s.Vitality,
		MaxVitality: s.MaxVitality,
		Travel:      s.Travel,
		MaxTravel:   s.MaxTravel,
		Reserve:     s.Reserve,
		MaxReserve:  s.MaxReserve,
		Progress:    s.Progress,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
