package grants

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campaign-grants/internal/domain/abilities"
	"campaign-grants/internal/domain/resources"
	"campaign-grants/internal/notify"
	"campaign-grants/internal/platform/logger"
	"campaign-grants/internal/platform/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Solo ErrConflict se reintenta.
const maxTxAttempts = 3

type Options struct {
	Notifier        notify.Notifier
	Logger          logger.Logger
	ReferencePrefix string
}

type Service struct {
	store    Store
	dir      Directory
	catalog  Catalog
	notifier notify.Notifier
	log      logger.Logger
	tracer   trace.Tracer

	refPrefix string
	now       func() time.Time
}

func NewService(store Store, dir Directory, catalog Catalog, opts Options) *Service {
	n := opts.Notifier
	if n == nil {
		n = notify.Discard
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	prefix := strings.TrimSpace(opts.ReferencePrefix)
	if prefix == "" {
		prefix = DefaultReferencePrefix
	}
	return &Service{
		store:     store,
		dir:       dir,
		catalog:   catalog,
		notifier:  n,
		log:       log.With(map[string]any{"component": "grants"}),
		tracer:    newTracer(),
		refPrefix: prefix,
		now:       time.Now,
	}
}

// -------------------------
// Issue
// -------------------------

type IssueInput struct {
	HolderID  string `json:"holder_id" validate:"required,max=64"`
	AbilityID string `json:"ability_id" validate:"required,max=64"`

	Title    string `json:"title" validate:"required,max=200"`
	Detail   string `json:"detail" validate:"max=4000"`
	ImageURL string `json:"image_url" validate:"omitempty,url,max=2048"`

	Transferable bool         `json:"transferable"`
	Policy       ReusePolicy  `json:"-" validate:"-"`
	ExpiresAt    *time.Time   `json:"expires_at"`
	Effect       EffectVector `json:"effect"`
}

// Issue crea un grant activo y sin usos para holderID. Solo autoridad.
func (s *Service) Issue(ctx context.Context, issuerID string, in IssueInput) (AbilityGrant, error) {
	ctx, span := s.startSpan(ctx, "grants.Issue",
		attribute.String("holder.id", in.HolderID),
		attribute.String("ability.id", in.AbilityID),
	)
	g, err := s.issue(ctx, strings.TrimSpace(issuerID), in)
	if err == nil {
		span.SetAttributes(attribute.String("grant.id", g.ID))
	}
	endSpan(span, err)
	return g, err
}

func (s *Service) issue(ctx context.Context, issuerID string, in IssueInput) (AbilityGrant, error) {
	if err := s.requireAuthority(ctx, issuerID); err != nil {
		return AbilityGrant{}, err
	}

	in.HolderID = strings.TrimSpace(in.HolderID)
	in.AbilityID = strings.TrimSpace(in.AbilityID)
	in.Title = strings.TrimSpace(in.Title)
	in.Detail = strings.TrimSpace(in.Detail)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	if err := validateInput(in); err != nil {
		return AbilityGrant{}, err
	}
	if in.Policy.IsZero() {
		return AbilityGrant{}, &ValidationError{Field: "reuse_policy", Reason: "required"}
	}

	now := s.now().UTC()
	if in.ExpiresAt != nil && !in.ExpiresAt.After(now) {
		return AbilityGrant{}, &ValidationError{Field: "expires_at", Reason: "must be in the future"}
	}

	if err := s.requireHolder(ctx, in.HolderID); err != nil {
		return AbilityGrant{}, err
	}
	if _, err := s.lookupAbility(ctx, in.AbilityID); err != nil {
		return AbilityGrant{}, err
	}

	g := AbilityGrant{
		ID:           uuid.NewString(),
		HolderID:     in.HolderID,
		AbilityID:    in.AbilityID,
		IssuerID:     issuerID,
		Title:        in.Title,
		Detail:       in.Detail,
		ImageURL:     in.ImageURL,
		Transferable: in.Transferable,
		Policy:       in.Policy,
		Effect:       in.Effect,
		IsActive:     true,
		TimesUsed:    0,
		LastUsedAt:   nil,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.ExpiresAt != nil {
		exp := in.ExpiresAt.UTC()
		g.ExpiresAt = &exp
	}

	err := s.withRetry(ctx, "issue", func() error {
		return s.store.WithinTx(ctx, func(tx Tx) error {
			if err := tx.InsertGrant(ctx, g); err != nil {
				return err
			}
			eff := g.Effect
			return tx.AppendUsage(ctx, UsageLogEntry{
				ID:        uuid.NewString(),
				GrantID:   g.ID,
				HolderID:  g.HolderID,
				ActorID:   issuerID,
				Action:    ActionGrant,
				Effect:    &eff,
				Note:      g.Title,
				CreatedAt: now,
			})
		})
	})
	if err != nil {
		return AbilityGrant{}, err
	}

	s.log.Info("grant issued", map[string]any{
		"grant_id":     g.ID,
		"holder_id":    g.HolderID,
		"issuer_id":    issuerID,
		"reuse_policy": g.Policy.String(),
	})
	s.publish(ctx, notify.Event{
		Kind:        notify.KindGrantIssued,
		RecipientID: g.HolderID,
		GrantID:     g.ID,
		ActorID:     issuerID,
		Payload: map[string]any{
			"title":        g.Title,
			"ability_id":   g.AbilityID,
			"reuse_policy": string(g.Policy.Kind()),
		},
	})
	return g, nil
}

// -------------------------
// Consume
// -------------------------

type ConsumeInput struct {
	Note      string `json:"note" validate:"max=1000"`
	Threshold int    `json:"threshold" validate:"gte=0"`
	Roll      int    `json:"roll" validate:"gte=0"`
}

// Consume usa el grant: paga el costo de la habilidad en reserve, aplica el
// vector de efectos y registra la entrada "use", todo en una transacción.
func (s *Service) Consume(ctx context.Context, grantID, callerID string, in ConsumeInput) (EffectOutcome, error) {
	ctx, span := s.startSpan(ctx, "grants.Consume",
		attribute.String("grant.id", grantID),
		attribute.String("caller.id", callerID),
	)
	out, err := s.consume(ctx, strings.TrimSpace(grantID), strings.TrimSpace(callerID), in)
	if err == nil {
		span.SetAttributes(attribute.String("grant.outcome", string(out.Outcome)))
	}
	endSpan(span, err)
	return out, err
}

func (s *Service) consume(ctx context.Context, grantID, callerID string, in ConsumeInput) (EffectOutcome, error) {
	if grantID == "" {
		return EffectOutcome{}, &ValidationError{Field: "grant_id", Reason: "required"}
	}
	in.Note = strings.TrimSpace(in.Note)
	if err := validateInput(in); err != nil {
		return EffectOutcome{}, err
	}

	var (
		out     EffectOutcome
		expired *AbilityGrant
	)
	err := s.withRetry(ctx, "consume", func() error {
		out, expired = EffectOutcome{}, nil
		return s.store.WithinTx(ctx, func(tx Tx) error {
			g, err := tx.GetGrantForUpdate(ctx, grantID)
			if err != nil {
				return grantLookupError(err, grantID)
			}
			if g.HolderID != callerID {
				return fmt.Errorf("%w: caller is not the holder", ErrForbidden)
			}
			if !g.IsActive {
				return inactiveError(g)
			}

			now := s.now().UTC()
			if g.ExpiredAt(now) {
				// La desactivación se confirma aunque la llamada falle con ErrExpired.
				if err := s.deactivate(ctx, tx, &g, now); err != nil {
					return err
				}
				expired = &g
				return nil
			}
			if err := g.Policy.gate(g, now); err != nil {
				return err
			}

			ab, err := s.lookupAbility(ctx, g.AbilityID)
			if err != nil {
				return err
			}
			st, err := tx.LockResources(ctx, g.HolderID)
			if err != nil {
				if errors.Is(err, resources.ErrNotFound) {
					return &NotFoundError{Entity: "resources", ID: g.HolderID}
				}
				return err
			}
			if st.Reserve < ab.BaseCost {
				return &InsufficientResourceError{
					Resource:  resources.FieldReserve,
					Required:  ab.BaseCost,
					Available: st.Reserve,
				}
			}

			next := applyEffects(st, ab.BaseCost, g.Effect)
			saved, err := tx.SetResourceFields(ctx, g.HolderID, resources.Diff(st, next))
			if err != nil {
				return err
			}

			g.TimesUsed++
			g.LastUsedAt = &now
			if g.Policy.Kind() == PolicyOnce {
				g.IsActive = false
			}
			g.UpdatedAt = now
			if err := tx.UpdateGrant(ctx, g); err != nil {
				return err
			}
			g.Version++

			postCost := st
			postCost.Reserve -= ab.BaseCost
			applied := vectorBetween(postCost, next)
			eff := g.Effect
			code := ReferenceCode(s.refPrefix, g.HolderID, now, in.Threshold, in.Roll)

			if err := tx.AppendUsage(ctx, UsageLogEntry{
				ID:            uuid.NewString(),
				GrantID:       g.ID,
				HolderID:      g.HolderID,
				ActorID:       callerID,
				Action:        ActionUse,
				Effect:        &eff,
				Applied:       &applied,
				Cost:          ab.BaseCost,
				ReferenceCode: code,
				Note:          in.Note,
				CreatedAt:     now,
			}); err != nil {
				return err
			}

			out = EffectOutcome{
				Grant:         g,
				Resources:     saved,
				Applied:       applied,
				Cost:          ab.BaseCost,
				ReferenceCode: code,
				Outcome:       OutcomeFor(in.Threshold, in.Roll),
			}
			return nil
		})
	})
	if err != nil {
		return EffectOutcome{}, err
	}
	if expired != nil {
		s.log.Info("grant expired on access", map[string]any{"grant_id": expired.ID, "holder_id": expired.HolderID})
		return EffectOutcome{}, stateError(ErrExpired, *expired)
	}

	s.log.Info("grant consumed", map[string]any{
		"grant_id":       out.Grant.ID,
		"holder_id":      out.Grant.HolderID,
		"cost":           out.Cost,
		"reference_code": out.ReferenceCode,
		"times_used":     out.Grant.TimesUsed,
	})
	s.publish(ctx, notify.Event{
		Kind:        notify.KindGrantUsed,
		RecipientID: out.Grant.IssuerID,
		GrantID:     out.Grant.ID,
		ActorID:     callerID,
		Payload: map[string]any{
			"holder_id":      out.Grant.HolderID,
			"reference_code": out.ReferenceCode,
			"outcome":        string(out.Outcome),
		},
	})
	return out, nil
}

// -------------------------
// Transfer
// -------------------------

// Transfer pasa el grant a toHolderID y reinicia su uso.
func (s *Service) Transfer(ctx context.Context, grantID, fromHolderID, toHolderID string) (AbilityGrant, error) {
	ctx, span := s.startSpan(ctx, "grants.Transfer",
		attribute.String("grant.id", grantID),
		attribute.String("holder.from", fromHolderID),
		attribute.String("holder.to", toHolderID),
	)
	g, err := s.transfer(ctx, strings.TrimSpace(grantID), strings.TrimSpace(fromHolderID), strings.TrimSpace(toHolderID))
	endSpan(span, err)
	return g, err
}

func (s *Service) transfer(ctx context.Context, grantID, fromHolderID, toHolderID string) (AbilityGrant, error) {
	if grantID == "" {
		return AbilityGrant{}, &ValidationError{Field: "grant_id", Reason: "required"}
	}
	if toHolderID == "" {
		return AbilityGrant{}, &ValidationError{Field: "to_holder_id", Reason: "required"}
	}

	var (
		out     AbilityGrant
		expired bool
	)
	err := s.withRetry(ctx, "transfer", func() error {
		out, expired = AbilityGrant{}, false
		return s.store.WithinTx(ctx, func(tx Tx) error {
			g, err := tx.GetGrantForUpdate(ctx, grantID)
			if err != nil {
				return grantLookupError(err, grantID)
			}
			if g.HolderID != fromHolderID {
				return fmt.Errorf("%w: caller is not the holder", ErrForbidden)
			}
			if toHolderID == fromHolderID {
				return &ValidationError{Field: "to_holder_id", Reason: "must differ from current holder"}
			}
			if err := s.requireHolder(ctx, toHolderID); err != nil {
				return err
			}
			if !g.Transferable {
				return stateError(ErrNotTransferable, g)
			}
			if !g.IsActive {
				return stateError(ErrInactive, g)
			}

			now := s.now().UTC()
			if g.ExpiredAt(now) {
				if err := s.deactivate(ctx, tx, &g, now); err != nil {
					return err
				}
				out, expired = g, true
				return nil
			}

			g.HolderID = toHolderID
			g.TimesUsed = 0
			g.LastUsedAt = nil
			g.UpdatedAt = now
			if err := tx.UpdateGrant(ctx, g); err != nil {
				return err
			}
			g.Version++

			if err := tx.AppendUsage(ctx, UsageLogEntry{
				ID:             uuid.NewString(),
				GrantID:        g.ID,
				HolderID:       fromHolderID,
				ActorID:        fromHolderID,
				Action:         ActionTransfer,
				TargetHolderID: toHolderID,
				CreatedAt:      now,
			}); err != nil {
				return err
			}
			out = g
			return nil
		})
	})
	if err != nil {
		return AbilityGrant{}, err
	}
	if expired {
		s.log.Info("grant expired on access", map[string]any{"grant_id": out.ID, "holder_id": out.HolderID})
		return AbilityGrant{}, stateError(ErrExpired, out)
	}

	s.log.Info("grant transferred", map[string]any{
		"grant_id": out.ID,
		"from":     fromHolderID,
		"to":       toHolderID,
	})
	s.publish(ctx, notify.Event{
		Kind:        notify.KindGrantTransferred,
		RecipientID: toHolderID,
		GrantID:     out.ID,
		ActorID:     fromHolderID,
		Payload:     map[string]any{"from_holder_id": fromHolderID, "title": out.Title},
	})
	return out, nil
}

// -------------------------
// Revoke
// -------------------------

// Revoke desactiva el grant. Revocar uno ya inactivo es éxito sin cambios ni log.
func (s *Service) Revoke(ctx context.Context, grantID, authorityID, note string) (AbilityGrant, error) {
	ctx, span := s.startSpan(ctx, "grants.Revoke",
		attribute.String("grant.id", grantID),
		attribute.String("authority.id", authorityID),
	)
	g, err := s.revoke(ctx, strings.TrimSpace(grantID), strings.TrimSpace(authorityID), strings.TrimSpace(note))
	endSpan(span, err)
	return g, err
}

func (s *Service) revoke(ctx context.Context, grantID, authorityID, note string) (AbilityGrant, error) {
	if err := s.requireAuthority(ctx, authorityID); err != nil {
		return AbilityGrant{}, err
	}
	if grantID == "" {
		return AbilityGrant{}, &ValidationError{Field: "grant_id", Reason: "required"}
	}
	if len(note) > 1000 {
		return AbilityGrant{}, &ValidationError{Field: "note", Reason: "max=1000"}
	}

	var (
		out     AbilityGrant
		changed bool
	)
	err := s.withRetry(ctx, "revoke", func() error {
		out, changed = AbilityGrant{}, false
		return s.store.WithinTx(ctx, func(tx Tx) error {
			g, err := tx.GetGrantForUpdate(ctx, grantID)
			if err != nil {
				return grantLookupError(err, grantID)
			}
			if !g.IsActive {
				out = g
				return nil
			}

			now := s.now().UTC()
			if err := s.deactivate(ctx, tx, &g, now); err != nil {
				return err
			}
			if err := tx.AppendUsage(ctx, UsageLogEntry{
				ID:        uuid.NewString(),
				GrantID:   g.ID,
				HolderID:  g.HolderID,
				ActorID:   authorityID,
				Action:    ActionRevoke,
				Note:      note,
				CreatedAt: now,
			}); err != nil {
				return err
			}
			out, changed = g, true
			return nil
		})
	})
	if err != nil {
		return AbilityGrant{}, err
	}
	if !changed {
		s.log.Debug("revoke on inactive grant", map[string]any{"grant_id": out.ID})
		return out, nil
	}

	s.log.Info("grant revoked", map[string]any{"grant_id": out.ID, "holder_id": out.HolderID, "authority_id": authorityID})
	s.publish(ctx, notify.Event{
		Kind:        notify.KindGrantRevoked,
		RecipientID: out.HolderID,
		GrantID:     out.ID,
		ActorID:     authorityID,
		Payload:     map[string]any{"title": out.Title, "note": note},
	})
	return out, nil
}

// -------------------------
// Lecturas y edición
// -------------------------

// Get: el holder actual o una autoridad.
func (s *Service) Get(ctx context.Context, grantID, callerID string) (GrantSummary, error) {
	ctx, span := s.startSpan(ctx, "grants.Get", attribute.String("grant.id", grantID))
	sum, err := s.get(ctx, strings.TrimSpace(grantID), strings.TrimSpace(callerID))
	endSpan(span, err)
	return sum, err
}

func (s *Service) get(ctx context.Context, grantID, callerID string) (GrantSummary, error) {
	g, err := s.store.GetByID(ctx, grantID)
	if err != nil {
		return GrantSummary{}, grantLookupError(err, grantID)
	}
	if g.HolderID != callerID {
		if err := s.requireAuthority(ctx, callerID); err != nil {
			return GrantSummary{}, err
		}
	}
	return s.summarize(g, s.now().UTC()), nil
}

// ListForHolder no escribe: los grants vencidos se muestran inactivos sin persistirlo.
func (s *Service) ListForHolder(ctx context.Context, holderID, callerID string) ([]GrantSummary, error) {
	ctx, span := s.startSpan(ctx, "grants.ListForHolder", attribute.String("holder.id", holderID))
	out, err := s.listForHolder(ctx, strings.TrimSpace(holderID), strings.TrimSpace(callerID))
	endSpan(span, err)
	return out, err
}

func (s *Service) listForHolder(ctx context.Context, holderID, callerID string) ([]GrantSummary, error) {
	if holderID == "" {
		return nil, &ValidationError{Field: "holder_id", Reason: "required"}
	}
	if holderID != callerID {
		if err := s.requireAuthority(ctx, callerID); err != nil {
			return nil, err
		}
	}

	items, err := s.store.ListByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	out := make([]GrantSummary, 0, len(items))
	for _, g := range items {
		out = append(out, s.summarize(g, now))
	}
	return out, nil
}

// History devuelve el log del grant, más viejo primero.
func (s *Service) History(ctx context.Context, grantID, callerID string) ([]UsageLogEntry, error) {
	ctx, span := s.startSpan(ctx, "grants.History", attribute.String("grant.id", grantID))
	defer span.End()

	if _, err := s.get(ctx, strings.TrimSpace(grantID), strings.TrimSpace(callerID)); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return s.store.ListUsage(ctx, strings.TrimSpace(grantID))
}

// DetailsPatch: nil = no tocar. Es la única forma de cambiar transferable después del Issue.
type DetailsPatch struct {
	Title        *string `json:"title"`
	Detail       *string `json:"detail"`
	ImageURL     *string `json:"image_url"`
	Transferable *bool   `json:"transferable"`
}

func (s *Service) UpdateDetails(ctx context.Context, grantID, authorityID string, p DetailsPatch) (AbilityGrant, error) {
	ctx, span := s.startSpan(ctx, "grants.UpdateDetails", attribute.String("grant.id", grantID))
	g, err := s.updateDetails(ctx, strings.TrimSpace(grantID), strings.TrimSpace(authorityID), p)
	endSpan(span, err)
	return g, err
}

func (s *Service) updateDetails(ctx context.Context, grantID, authorityID string, p DetailsPatch) (AbilityGrant, error) {
	if err := s.requireAuthority(ctx, authorityID); err != nil {
		return AbilityGrant{}, err
	}
	if err := validatePatch(&p); err != nil {
		return AbilityGrant{}, err
	}

	var out AbilityGrant
	err := s.withRetry(ctx, "update_details", func() error {
		return s.store.WithinTx(ctx, func(tx Tx) error {
			g, err := tx.GetGrantForUpdate(ctx, grantID)
			if err != nil {
				return grantLookupError(err, grantID)
			}
			if p.Title != nil {
				g.Title = *p.Title
			}
			if p.Detail != nil {
				g.Detail = *p.Detail
			}
			if p.ImageURL != nil {
				g.ImageURL = *p.ImageURL
			}
			if p.Transferable != nil {
				g.Transferable = *p.Transferable
			}
			g.UpdatedAt = s.now().UTC()
			if err := tx.UpdateGrant(ctx, g); err != nil {
				return err
			}
			g.Version++
			out = g
			return nil
		})
	})
	if err != nil {
		return AbilityGrant{}, err
	}
	s.log.Info("grant details updated", map[string]any{"grant_id": out.ID, "authority_id": authorityID})
	return out, nil
}

// -------------------------
// helpers
// -------------------------

func (s *Service) summarize(g AbilityGrant, now time.Time) GrantSummary {
	expired := g.ExpiredAt(now)
	sum := GrantSummary{
		Grant:   g,
		Active:  g.IsActive && !expired,
		Expired: expired,
	}
	if sum.Active {
		sum.AvailableAt = g.Policy.AvailableAt(g.LastUsedAt, now)
	}
	return sum
}

func (s *Service) deactivate(ctx context.Context, tx Tx, g *AbilityGrant, now time.Time) error {
	g.IsActive = false
	g.UpdatedAt = now
	if err := tx.UpdateGrant(ctx, *g); err != nil {
		return err
	}
	g.Version++
	return nil
}

func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = fn()
		if !errors.Is(err, ErrConflict) {
			return err
		}
		s.log.Debug("transaction conflict", map[string]any{"op": op, "attempt": attempt})
		if ctx.Err() != nil {
			break
		}
	}
	return err
}

// publish corre después del commit; nada de lo que pase acá llega al caller.
func (s *Service) publish(ctx context.Context, e notify.Event) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Warn("notifier panic", map[string]any{"kind": e.Kind, "grant_id": e.GrantID, "panic": rec})
		}
	}()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	s.notifier.Notify(context.WithoutCancel(ctx), e)
}

func (s *Service) requireAuthority(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: caller required", ErrForbidden)
	}
	ok, err := s.dir.IsAuthority(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: authority role required", ErrForbidden)
	}
	return nil
}

func (s *Service) requireHolder(ctx context.Context, id string) error {
	ok, err := s.dir.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return &NotFoundError{Entity: "holder", ID: id}
	}
	return nil
}

func (s *Service) lookupAbility(ctx context.Context, id string) (abilities.Ability, error) {
	ab, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, abilities.ErrNotFound) {
			return abilities.Ability{}, &NotFoundError{Entity: "ability", ID: id}
		}
		return abilities.Ability{}, err
	}
	return ab, nil
}

// inactiveError: un Once ya usado reporta ErrExhausted en lugar de ErrInactive.
func inactiveError(g AbilityGrant) error {
	if g.Policy.Kind() == PolicyOnce && g.TimesUsed > 0 {
		return stateError(ErrExhausted, g)
	}
	return stateError(ErrInactive, g)
}

func grantLookupError(err error, id string) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{Entity: "grant", ID: id}
	}
	return err
}

func validateInput(in any) error {
	return fieldError(validate.Struct(in))
}

func validatePatch(p *DetailsPatch) error {
	if p.Title != nil {
		t := strings.TrimSpace(*p.Title)
		if t == "" {
			return &ValidationError{Field: "title", Reason: "required"}
		}
		if err := validate.Var("title", t, "max=200"); err != nil {
			return fieldError(err)
		}
		p.Title = &t
	}
	if p.Detail != nil {
		d := strings.TrimSpace(*p.Detail)
		if err := validate.Var("detail", d, "max=4000"); err != nil {
			return fieldError(err)
		}
		p.Detail = &d
	}
	if p.ImageURL != nil {
		u := strings.TrimSpace(*p.ImageURL)
		if u != "" {
			if err := validate.Var("image_url", u, "url,max=2048"); err != nil {
				return fieldError(err)
			}
		}
		p.ImageURL = &u
	}
	return nil
}

func fieldError(err error) error {
	var fe *validate.FieldError
	if errors.As(err, &fe) {
		return fieldValidationError(fe)
	}
	return err
}

func fieldValidationError(fe *validate.FieldError) *ValidationError {
	reason := fe.Rule
	if fe.Param != "" {
		reason += "=" + fe.Param
	}
	return &ValidationError{Field: fe.Field, Reason: reason}
}
