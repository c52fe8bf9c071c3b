package wizard

import (
	"log"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
	"github.com/myintmo/knitcost/internal/schema"
)

// DraftStore is the persistence collaborator for the single draft slot.
type DraftStore interface {
	// GetDraft returns the stored draft and step index, or (nil, 0, nil)
	// when the slot is empty.
	GetDraft() (*costing.WizardDraft, int, error)

	// PutDraft stores the draft and step index, overwriting the slot.
	PutDraft(d *costing.WizardDraft, stepIndex int) error

	// ClearDraft empties the slot.
	ClearDraft() error
}

// Machine is the wizard state machine: the in-progress draft plus the
// current step pointer. All operations run synchronously; the machine
// is the single owner of the draft for the session, and persistence is
// purely for crash/refresh recovery.
type Machine struct {
	store DraftStore
	draft *costing.WizardDraft
	index int
}

// New starts a fresh wizard session with schema defaults, overwriting
// any stored draft.
func New(store DraftStore, currency string) *Machine {
	m := &Machine{store: store, draft: costing.NewDraft(currency)}
	m.persist()
	return m
}

// Resume continues from the stored draft if one exists, else starts a
// fresh session. The step pointer is restored clamped to the schema.
func Resume(store DraftStore, currency string) (*Machine, error) {
	draft, index, err := store.GetDraft()
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return New(store, currency), nil
	}
	return &Machine{store: store, draft: draft, index: clampIndex(index)}, nil
}

// Index returns the current step pointer.
func (m *Machine) Index() int { return m.index }

// Step returns the current step descriptor.
func (m *Machine) Step() schema.Step { return schema.At(m.index) }

// AtPreview reports whether the machine is on the terminal preview step.
func (m *Machine) AtPreview() bool { return m.index == schema.PreviewIndex() }

// Draft exposes the in-progress draft for display. Mutations must go
// through the Set methods so every change is autosaved.
func (m *Machine) Draft() *costing.WizardDraft { return m.draft }

// Snapshot computes the running derivation preview for the current
// draft contents.
func (m *Machine) Snapshot() costing.ComputedSnapshot {
	return costing.Compute(m.draft.Inputs())
}

// Advance validates the current step. On rejection the step pointer is
// unchanged and the rejection is returned. On acceptance at the preview
// step, (true, nil) is returned and the caller commits via the record
// builder; otherwise the pointer moves forward one step.
func (m *Machine) Advance() (commit bool, err error) {
	if err := ValidateStep(m.Step(), m.draft); err != nil {
		return false, err
	}
	if m.AtPreview() {
		return true, nil
	}
	m.index++
	m.persist()
	return false, nil
}

// Retreat moves back one step, floored at 0. Never validates.
func (m *Machine) Retreat() {
	if m.index == 0 {
		return
	}
	m.index--
	m.persist()
}

// JumpTo sets the step pointer directly, clamped to the valid range.
// Used from the preview step's jump-to-edit rows; no validation.
func (m *Machine) JumpTo(index int) {
	m.index = clampIndex(index)
	m.persist()
}

// SetField updates a numeric entry field and autosaves the draft.
func (m *Machine) SetField(key costing.FieldKey, value string) error {
	if !m.draft.SetField(key, value) {
		return errors.NewInvalidRequest("unknown field: " + string(key))
	}
	m.persist()
	return nil
}

// Style setters. Each mutation autosaves the whole draft so an
// interrupted session resumes exactly where it left off.

func (m *Machine) SetName(v string)        { m.draft.Name = v; m.persist() }
func (m *Machine) SetDescription(v string) { m.draft.Description = v; m.persist() }
func (m *Machine) SetComposition(v string) { m.draft.Composition = v; m.persist() }
func (m *Machine) SetCurrency(v string)    { m.draft.Currency = v; m.persist() }
func (m *Machine) SetWeight(v string)      { m.draft.WeightGrams = v; m.persist() }

func (m *Machine) SetGauge(g costing.Gauge) {
	m.draft.Gauge = g
	m.persist()
}

func (m *Machine) SetPhoto(p *costing.PhotoRef) {
	m.draft.Photo = p
	m.persist()
}

// Discard clears the stored draft slot. The in-memory draft is
// abandoned by dropping the machine.
func (m *Machine) Discard() error {
	return m.store.ClearDraft()
}

// persist autosaves the draft. Best-effort: a failed save is logged and
// the session continues in memory (data loss risk only on crash).
func (m *Machine) persist() {
	if err := m.store.PutDraft(m.draft, m.index); err != nil {
		log.Printf("draft autosave failed: %v", err)
	}
}

func clampIndex(i int) int {
	if i < 0 {
		return 0
	}
	if max := schema.Count() - 1; i > max {
		return max
	}
	return i
}
