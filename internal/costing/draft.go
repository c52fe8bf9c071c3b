package costing

// DraftSlot is the fixed persistence key for the single in-progress
// draft. Starting a new costing or importing a duplicate seed
// overwrites this slot; there is no draft history.
const DraftSlot = "current"

// PhotoRef is a compressed, bounded-size style photo.
type PhotoRef struct {
	// Width and Height are the dimensions of the encoded image.
	Width  int `json:"width"`
	Height int `json:"height"`

	// MimeType is the encoded type, e.g. "image/jpeg".
	MimeType string `json:"mime_type"`

	// Data is the encoded image payload.
	Data []byte `json:"data"`
}

// Clone returns a deep copy of the photo reference.
func (p *PhotoRef) Clone() *PhotoRef {
	if p == nil {
		return nil
	}
	c := *p
	c.Data = make([]byte, len(p.Data))
	copy(c.Data, p.Data)
	return &c
}

// FieldKey identifies a numeric entry field of the draft.
type FieldKey string

const (
	FieldWeightGrams  FieldKey = "weight_g"
	FieldYarnPrice    FieldKey = "yarn_price_lb"
	FieldWastagePct   FieldKey = "wastage_pct"
	FieldAccessories  FieldKey = "accessories_doz"
	FieldFabric       FieldKey = "fabric_doz"
	FieldFabricCost   FieldKey = "fabric_cost_doz"
	FieldFabricAttach FieldKey = "fabric_attach_doz"
	FieldKnitMinutes  FieldKey = "knit_minutes"
	FieldCutMake      FieldKey = "cut_make_doz"
	FieldMarkupPct    FieldKey = "markup_pct"
)

// WizardDraft is the single mutable in-progress costing session.
// Numeric entry fields hold the typed string, where "" means
// "untouched" as opposed to an explicit "0". The draft is persisted
// whole on every mutation so an interrupted session resumes exactly
// where it left off.
type WizardDraft struct {
	// Style attributes, collected together by the style step.
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Composition string    `json:"composition"`
	Gauge       Gauge     `json:"gauge"`
	WeightGrams string    `json:"weight_g"`
	Currency    string    `json:"currency"`
	Photo       *PhotoRef `json:"photo,omitempty"`

	// Cost inputs. Dozen-rate fields are per 12 pieces.
	YarnPricePerPound    string `json:"yarn_price_lb"`
	WastagePct           string `json:"wastage_pct"`
	AccessoriesPerDozen  string `json:"accessories_doz"`
	FabricPerDozen       string `json:"fabric_doz"`
	FabricCostPerDozen   string `json:"fabric_cost_doz"`
	FabricAttachPerDozen string `json:"fabric_attach_doz"`
	KnitMinutes          string `json:"knit_minutes"`
	CutMakePerDozen      string `json:"cut_make_doz"`
	MarkupPct            string `json:"markup_pct"`
}

// NewDraft returns a draft seeded with schema defaults: 8% wastage,
// the fixed markup constant, and the configured currency symbol.
// All other fields start blank.
func NewDraft(currency string) *WizardDraft {
	return &WizardDraft{
		Currency:   currency,
		WastagePct: DefaultWastagePct,
		MarkupPct:  FixedMarkupPct.String(),
	}
}

// Field returns the value of a numeric entry field.
// The second return is false for unknown keys.
func (d *WizardDraft) Field(key FieldKey) (string, bool) {
	switch key {
	case FieldWeightGrams:
		return d.WeightGrams, true
	case FieldYarnPrice:
		return d.YarnPricePerPound, true
	case FieldWastagePct:
		return d.WastagePct, true
	case FieldAccessories:
		return d.AccessoriesPerDozen, true
	case FieldFabric:
		return d.FabricPerDozen, true
	case FieldFabricCost:
		return d.FabricCostPerDozen, true
	case FieldFabricAttach:
		return d.FabricAttachPerDozen, true
	case FieldKnitMinutes:
		return d.KnitMinutes, true
	case FieldCutMake:
		return d.CutMakePerDozen, true
	case FieldMarkupPct:
		return d.MarkupPct, true
	}
	return "", false
}

// SetField sets the value of a numeric entry field.
// Returns false for unknown keys.
func (d *WizardDraft) SetField(key FieldKey, value string) bool {
	switch key {
	case FieldWeightGrams:
		d.WeightGrams = value
	case FieldYarnPrice:
		d.YarnPricePerPound = value
	case FieldWastagePct:
		d.WastagePct = value
	case FieldAccessories:
		d.AccessoriesPerDozen = value
	case FieldFabric:
		d.FabricPerDozen = value
	case FieldFabricCost:
		d.FabricCostPerDozen = value
	case FieldFabricAttach:
		d.FabricAttachPerDozen = value
	case FieldKnitMinutes:
		d.KnitMinutes = value
	case FieldCutMake:
		d.CutMakePerDozen = value
	case FieldMarkupPct:
		d.MarkupPct = value
	default:
		return false
	}
	return true
}

// Inputs converts the draft's entry fields into typed cost inputs.
// Fields that do not parse are treated as absent; the record builder
// revalidates every required field before a record is built, so
// invalid text never reaches a committed record.
func (d *WizardDraft) Inputs() CostInputs {
	var in CostInputs
	in.WeightGrams, _ = ParseNumber(d.WeightGrams)
	in.YarnPricePerPound, _ = ParseNumber(d.YarnPricePerPound)
	in.WastagePct, _ = ParsePercent(d.WastagePct)
	in.AccessoriesPerDozen, _ = ParseNumber(d.AccessoriesPerDozen)
	in.FabricPerDozen, _ = ParseNumber(d.FabricPerDozen)
	in.FabricCostPerDozen, _ = ParseNumber(d.FabricCostPerDozen)
	in.FabricAttachPerDozen, _ = ParseNumber(d.FabricAttachPerDozen)
	in.KnitMinutes, _ = ParseCount(d.KnitMinutes)
	in.CutMakePerDozen, _ = ParseNumber(d.CutMakePerDozen)
	in.MarkupPct, _ = ParsePercent(d.MarkupPct)
	return in
}
