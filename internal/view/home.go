// Package view holds the page-level state of the gallery and the admin
// dashboard. Renderers (the CLI) read it and forward user gestures to it.
package view

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/dom/cyprine-heroes/internal/collection"
	"github.com/dom/cyprine-heroes/internal/domain"
	"github.com/dom/cyprine-heroes/internal/logger"
	"github.com/dom/cyprine-heroes/internal/team"
)

const (
	MsgLoadFailed    = "Impossible de charger les héros. Vérifiez que le serveur est démarré."
	MsgNoHeroes      = "Aucun héros disponible"
	MsgUnknownHero   = "Héros introuvable"
	MsgAlreadyInTeam = "Ce héros fait déjà partie de l'équipe"
	MsgNoDrag        = "Aucun héros sélectionné pour le glisser-déposer"
	MsgInvalidSlot   = "Emplacement invalide"
	MsgTeamComplete  = "Équipe complète ! Prêts pour l'aventure !"
)

var ErrUnknownHero = errors.New("hero not in collection")

// Home is the gallery page: hero list, detail panel and team builder.
// It is owned by a single goroutine.
type Home struct {
	heroes *collection.State
	team   *team.Engine
	log    *zap.SugaredLogger

	message string
}

func NewHome(lister collection.Lister, log *zap.SugaredLogger) *Home {
	log = logger.OrNop(log)
	heroes := collection.New(lister, log)
	return &Home{
		heroes: heroes,
		team:   team.NewEngine(heroes),
		log:    log,
	}
}

// Load fetches the hero list and selects the first hero when nothing is
// selected. On failure the retry message is set and the error returned.
func (h *Home) Load(ctx context.Context) error {
	heroes, err := h.heroes.Load(ctx)
	if errors.Is(err, collection.ErrClosed) {
		return nil
	}
	if err != nil {
		h.message = MsgLoadFailed
		return err
	}
	h.message = ""
	if len(heroes) == 0 {
		h.message = MsgNoHeroes
	}
	h.team.SelectDefault(heroes)
	return nil
}

// Retry is the explicit user action after a failed Load.
func (h *Home) Retry(ctx context.Context) error {
	return h.Load(ctx)
}

// Close discards any Load still in flight.
func (h *Home) Close() {
	h.heroes.Close()
}

func (h *Home) Heroes() []domain.Hero {
	return h.heroes.Heroes()
}

// Loading reports whether a Load is in progress.
func (h *Home) Loading() bool {
	return h.heroes.Loading()
}

// Failed reports whether the last Load failed.
func (h *Home) Failed() bool {
	return h.heroes.Err() != nil
}

// Message is the current status line, empty when there is nothing to say.
func (h *Home) Message() string {
	return h.message
}

// ClearMessage drops the status line left by the previous gesture.
func (h *Home) ClearMessage() {
	h.message = ""
}

func (h *Home) Select(id string) error {
	hero, ok := h.heroes.Lookup(id)
	if !ok {
		h.message = MsgUnknownHero
		return fmt.Errorf("select %s: %w", id, ErrUnknownHero)
	}
	h.team.SelectHero(hero)
	h.message = ""
	return nil
}

func (h *Home) Selected() (domain.Hero, bool) {
	return h.team.Selected()
}

// Drag starts dragging id. Starting a new drag replaces the previous one.
func (h *Home) Drag(id string) error {
	hero, ok := h.heroes.Lookup(id)
	if !ok {
		h.message = MsgUnknownHero
		return fmt.Errorf("drag %s: %w", id, ErrUnknownHero)
	}
	h.team.BeginDrag(hero)
	h.message = ""
	return nil
}

// CancelDrag is a drop outside any slot.
func (h *Home) CancelDrag() {
	h.team.CancelDrag()
	h.message = ""
}

// Drop releases the dragged hero over slot.
func (h *Home) Drop(slot int) error {
	err := h.team.Drop(slot)
	h.message = dropMessage(err)
	if err == nil && h.team.IsComplete() {
		h.message = MsgTeamComplete
	}
	return err
}

// Place assigns id to slot directly, without a drag gesture.
func (h *Home) Place(slot int, id string) error {
	hero, ok := h.heroes.Lookup(id)
	if !ok {
		h.message = MsgUnknownHero
		return fmt.Errorf("place %s: %w", id, ErrUnknownHero)
	}
	err := h.team.DropOnSlot(slot, hero)
	h.message = dropMessage(err)
	if err == nil && h.team.IsComplete() {
		h.message = MsgTeamComplete
	}
	return err
}

// Fire empties slot.
func (h *Home) Fire(slot int) error {
	if err := h.team.RemoveFromSlot(slot); err != nil {
		h.message = MsgInvalidSlot
		return err
	}
	h.message = ""
	return nil
}

// ResetTeam empties every slot, cancels any drag and selects the first hero.
func (h *Home) ResetTeam() {
	h.team.Reset()
	h.team.SelectDefault(h.heroes.Heroes())
	h.message = ""
}

// HeroDeleted drops id from the page, including selection and team slots.
func (h *Home) HeroDeleted(id string) {
	h.heroes.ApplyDeleted(id)
	h.team.Forget(id)
}

// TeamSummary is a render-ready snapshot of the team builder.
type TeamSummary struct {
	Slots    [team.SlotCount]*domain.Hero
	Filled   int
	Strength float64
	Complete bool
}

// StrengthLabel is empty when no slot is filled.
func (s TeamSummary) StrengthLabel() string {
	if s.Filled == 0 {
		return ""
	}
	return fmt.Sprintf("Force: %.1f/%d", s.Strength, domain.MaxSkillRating)
}

func (h *Home) TeamSummary() TeamSummary {
	return TeamSummary{
		Slots:    h.team.Slots(),
		Filled:   h.team.FilledCount(),
		Strength: h.team.DerivedStrength(),
		Complete: h.team.IsComplete(),
	}
}

func dropMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, team.ErrAlreadyInTeam):
		return MsgAlreadyInTeam
	case errors.Is(err, team.ErrNoDragCandidate):
		return MsgNoDrag
	case errors.Is(err, team.ErrSlotOutOfRange):
		return MsgInvalidSlot
	default:
		return err.Error()
	}
}
