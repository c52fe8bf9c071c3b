package costing

// StyleAttrs are the style attributes captured by the style step and
// frozen into records at commit.
type StyleAttrs struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Composition string `json:"composition"`
	Gauge       Gauge  `json:"gauge"`
	Currency    string `json:"currency"`
}

// CostInputs is the typed, frozen form of every numeric entry field.
// Absent and zero stay distinct, and the original string form survives
// draft save, commit, and backup round-trips.
type CostInputs struct {
	WeightGrams          Number  `json:"weight_g"`
	YarnPricePerPound    Number  `json:"yarn_price_lb"`
	WastagePct           Percent `json:"wastage_pct"`
	AccessoriesPerDozen  Number  `json:"accessories_doz"`
	FabricPerDozen       Number  `json:"fabric_doz"`
	FabricCostPerDozen   Number  `json:"fabric_cost_doz"`
	FabricAttachPerDozen Number  `json:"fabric_attach_doz"`
	KnitMinutes          Count   `json:"knit_minutes"`
	CutMakePerDozen      Number  `json:"cut_make_doz"`
	MarkupPct            Percent `json:"markup_pct"`
}

// CostingRecord is an immutable, versioned costing result. It is
// created only by the record builder after full validation and is never
// mutated afterwards; correction is modeled as duplicating into a new
// draft and committing a brand-new record.
type CostingRecord struct {
	// ID is a ULID that uniquely identifies this record.
	ID string `json:"id"`

	// CreatedAt is the Unix timestamp of the commit.
	CreatedAt int64 `json:"created_at"`

	// AppVersion is the application version at commit time.
	AppVersion string `json:"app_version"`

	// CalcVersion is the formula pipeline revision at commit time.
	CalcVersion string `json:"calc_version"`

	// Style is a frozen copy of the style attributes.
	Style StyleAttrs `json:"style"`

	// Photo is a frozen copy of the attached photo, if any.
	Photo *PhotoRef `json:"photo,omitempty"`

	// Inputs is a frozen copy of every numeric input.
	Inputs CostInputs `json:"inputs"`

	// Snapshot is the computed snapshot taken at commit time.
	Snapshot ComputedSnapshot `json:"snapshot"`
}

// Clone returns a deep copy of the record. Callers that hand records
// across package boundaries clone first so the stored record can never
// be mutated through an alias.
func (r *CostingRecord) Clone() *CostingRecord {
	if r == nil {
		return nil
	}
	c := *r
	c.Photo = r.Photo.Clone()
	return &c
}
