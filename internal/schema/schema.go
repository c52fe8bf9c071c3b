// Package schema defines the fixed, ordered step sequence that drives
// the costing wizard. The schema is pure data: it is consulted by the
// validation engine, the state machine, and the renderers, and never
// mutated.
package schema

import "github.com/myintmo/knitcost/internal/costing"

// Kind classifies a step's behavior.
type Kind string

const (
	// KindStyleGroup collects the style attributes (name, description,
	// composition, gauge, weight, photo, currency) as one atomic unit.
	KindStyleGroup Kind = "style-group"

	// KindNumeric is a single optional-or-required non-negative number.
	KindNumeric Kind = "numeric"

	// KindPercent is a number bounded to [0, 100].
	KindPercent Kind = "percent"

	// KindInteger is a whole non-negative number.
	KindInteger Kind = "integer"

	// KindComputed displays a running derivation; nothing is editable.
	KindComputed Kind = "computed"

	// KindPreview lists every value with its source step for jump-to-edit.
	// Advancing from it commits the record.
	KindPreview Kind = "preview"
)

// IsValid checks if the kind is one of the defined constants.
func (k Kind) IsValid() bool {
	switch k {
	case KindStyleGroup, KindNumeric, KindPercent, KindInteger, KindComputed, KindPreview:
		return true
	}
	return false
}

// Step describes one wizard step. A step's index in the sequence is its
// position and its jump-to-edit navigation target.
type Step struct {
	ID       string
	Kind     Kind
	Field    costing.FieldKey // "" for style-group/computed/preview steps
	Required bool
	Title    string
	Hint     string
}

// HasField reports whether the step carries a single editable field.
func (s Step) HasField() bool { return s.Field != "" }

var steps = []Step{
	{ID: "style", Kind: KindStyleGroup, Title: "Style details",
		Hint: "Name, description, composition, gauge, per-piece weight in grams, photo, currency"},
	{ID: "yarn_price", Kind: KindNumeric, Field: costing.FieldYarnPrice, Required: true,
		Title: "Yarn price per pound", Hint: "Raw material price per pound of yarn"},
	{ID: "wastage", Kind: KindPercent, Field: costing.FieldWastagePct, Required: true,
		Title: "Wastage percent", Hint: "Production loss factor applied to raw material weight"},
	{ID: "lbs_per_dozen", Kind: KindComputed, Title: "Pounds per dozen"},
	{ID: "lbs_with_wastage", Kind: KindComputed, Title: "Pounds per dozen incl. wastage"},
	{ID: "yarn_cost", Kind: KindComputed, Title: "Yarn cost per dozen"},
	{ID: "accessories", Kind: KindNumeric, Field: costing.FieldAccessories,
		Title: "Accessories per dozen", Hint: "Buttons, zippers, labels; blank counts as 0"},
	{ID: "fabric", Kind: KindNumeric, Field: costing.FieldFabric,
		Title: "Fabric per dozen", Hint: "Blank counts as 0"},
	{ID: "fabric_cost", Kind: KindNumeric, Field: costing.FieldFabricCost,
		Title: "Fabric cost per dozen", Hint: "Blank counts as 0"},
	{ID: "fabric_attach", Kind: KindNumeric, Field: costing.FieldFabricAttach,
		Title: "Fabric attach per dozen", Hint: "Blank counts as 0"},
	{ID: "knit_minutes", Kind: KindInteger, Field: costing.FieldKnitMinutes,
		Title: "Knitting time in minutes", Hint: "Per-piece machine minutes; whole number"},
	{ID: "cut_make", Kind: KindNumeric, Field: costing.FieldCutMake, Required: true,
		Title: "Cut and make per dozen", Hint: "Labor rate per dozen pieces"},
	{ID: "total_fob", Kind: KindComputed, Title: "Total per dozen and FOB per piece"},
	{ID: "markup", Kind: KindComputed, Title: "Markup percent"},
	{ID: "final_price", Kind: KindComputed, Title: "Final price per piece"},
	{ID: "preview", Kind: KindPreview, Title: "Review and save"},
}

// Steps returns the ordered step sequence. Callers must not modify it.
func Steps() []Step { return steps }

// Count returns the number of steps.
func Count() int { return len(steps) }

// At returns the step at the given index.
// The index must be in range; the state machine clamps before calling.
func At(i int) Step { return steps[i] }

// PreviewIndex returns the index of the terminal preview step.
func PreviewIndex() int { return len(steps) - 1 }

// IndexOf returns the index of the step with the given id, or -1.
func IndexOf(id string) int {
	for i, s := range steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// FieldStep returns the index of the input step editing the given
// field key, or -1 when no step edits it (e.g. the markup percent).
func FieldStep(key costing.FieldKey) int {
	for i, s := range steps {
		if s.Field == key {
			return i
		}
	}
	return -1
}
