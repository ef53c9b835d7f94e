// Package team holds the selection and three-slot team composition state of
// the gallery page.
//
// The engine stores hero ids only. Every read resolves them against the
// page's hero collection, so a hero deleted from the collection reads as an
// empty slot (or no selection) even before Forget is called.
package team

import (
	"errors"

	"github.com/dom/cyprine-heroes/internal/domain"
)

// SlotCount is the fixed size of a team.
const SlotCount = 3

var (
	ErrSlotOutOfRange  = errors.New("slot index out of range")
	ErrAlreadyInTeam   = errors.New("hero already in team")
	ErrNoDragCandidate = errors.New("no hero being dragged")
)

// Lookup resolves hero ids against the owning collection.
type Lookup interface {
	Lookup(id string) (domain.Hero, bool)
}

// Engine is not safe for concurrent use; it belongs to a single view.
type Engine struct {
	heroes   Lookup
	selected string
	slots    [SlotCount]string
	// dragging is the pending drop candidate. It is transient and cleared
	// at the end of every drop attempt.
	dragging string
}

func NewEngine(heroes Lookup) *Engine {
	return &Engine{heroes: heroes}
}

// SelectHero shows hero in the detail panel, replacing any prior selection.
func (e *Engine) SelectHero(hero domain.Hero) {
	e.selected = hero.ID
}

// SelectDefault selects the first hero when nothing (still present) is
// selected.
func (e *Engine) SelectDefault(heroes []domain.Hero) {
	if _, ok := e.Selected(); ok || len(heroes) == 0 {
		return
	}
	e.selected = heroes[0].ID
}

// Selected returns the selected hero, if it is still in the collection.
func (e *Engine) Selected() (domain.Hero, bool) {
	return e.resolve(e.selected)
}

func (e *Engine) BeginDrag(hero domain.Hero) {
	e.dragging = hero.ID
}

func (e *Engine) CancelDrag() {
	e.dragging = ""
}

// Dragging returns the pending drop candidate.
func (e *Engine) Dragging() (domain.Hero, bool) {
	return e.resolve(e.dragging)
}

// Drop places the drag candidate into slot. The candidate is cleared whether
// or not the drop succeeds.
func (e *Engine) Drop(slot int) error {
	hero, ok := e.Dragging()
	e.dragging = ""
	if !ok {
		return ErrNoDragCandidate
	}
	return e.DropOnSlot(slot, hero)
}

// DropOnSlot assigns hero to slot, evicting the previous occupant. A hero
// already sitting in any slot is not moved: the call is a no-op returning
// ErrAlreadyInTeam.
func (e *Engine) DropOnSlot(slot int, hero domain.Hero) error {
	e.dragging = ""
	if slot < 0 || slot >= SlotCount {
		return ErrSlotOutOfRange
	}
	if e.Contains(hero.ID) {
		return ErrAlreadyInTeam
	}
	e.slots[slot] = hero.ID
	return nil
}

// RemoveFromSlot empties slot. Removing from an empty slot is allowed.
func (e *Engine) RemoveFromSlot(slot int) error {
	if slot < 0 || slot >= SlotCount {
		return ErrSlotOutOfRange
	}
	e.slots[slot] = ""
	return nil
}

// Contains reports whether a slot holds id. Matching is by identity, never by
// display fields.
func (e *Engine) Contains(id string) bool {
	if id == "" {
		return false
	}
	for i := range e.slots {
		if e.slots[i] == id {
			if _, ok := e.resolve(id); ok {
				return true
			}
		}
	}
	return false
}

// Slots returns the resolved team; nil entries are empty slots.
func (e *Engine) Slots() [SlotCount]*domain.Hero {
	var out [SlotCount]*domain.Hero
	for i, id := range e.slots {
		if hero, ok := e.resolve(id); ok {
			h := hero
			out[i] = &h
		}
	}
	return out
}

func (e *Engine) FilledCount() int {
	n := 0
	for _, h := range e.Slots() {
		if h != nil {
			n++
		}
	}
	return n
}

func (e *Engine) IsComplete() bool {
	return e.FilledCount() == SlotCount
}

// DerivedStrength is the mean, over filled slots, of each hero's mean skill
// rating. It is 0 for an empty team; callers should check FilledCount before
// displaying it.
func (e *Engine) DerivedStrength() float64 {
	total, filled := 0.0, 0
	for _, h := range e.Slots() {
		if h == nil {
			continue
		}
		total += h.Skills.Average()
		filled++
	}
	if filled == 0 {
		return 0
	}
	return total / float64(filled)
}

// Forget drops every reference to id: selection, slots and drag candidate.
// Call it when the hero is deleted from the collection.
func (e *Engine) Forget(id string) {
	if e.selected == id {
		e.selected = ""
	}
	if e.dragging == id {
		e.dragging = ""
	}
	for i := range e.slots {
		if e.slots[i] == id {
			e.slots[i] = ""
		}
	}
}

// Reset empties the team and clears selection and drag state.
func (e *Engine) Reset() {
	*e = Engine{heroes: e.heroes}
}

func (e *Engine) resolve(id string) (domain.Hero, bool) {
	if id == "" {
		return domain.Hero{}, false
	}
	return e.heroes.Lookup(id)
}
