package costing

import "github.com/shopspring/decimal"

// CalcVersion tags every record with the revision of the cost pipeline
// that produced its snapshot. Bump this when the pipeline changes.
const CalcVersion = "fob-1"

// DefaultWastagePct is the wastage percent seeded into new drafts.
const DefaultWastagePct = "8"

// 453.6 grams per pound and 12 pieces per dozen give 37.8 grams of
// per-piece weight per pound-in-a-dozen (453.6 / 12, exact).
var (
	GramsPerPound  = decimal.RequireFromString("453.6")
	PiecesPerDozen = decimal.NewFromInt(12)

	gramsPerDozenPound = decimal.RequireFromString("37.8")

	// FixedMarkupPct is the process-wide markup applied to FOB to get
	// the final quoted per-piece cost. It is displayed and stored per
	// record but not user-editable.
	FixedMarkupPct = decimal.RequireFromString("2.5")

	one        = decimal.NewFromInt(1)
	oneHundred = decimal.NewFromInt(100)
)

// ComputedSnapshot holds the derived cost figures for one set of
// inputs. It is recomputed on demand and frozen into records at commit;
// it is never persisted on its own.
//
// The three nullable fields are null exactly when weight-per-piece is
// not strictly positive. In that case yarn cost contributes 0 (not
// null) to the total.
type ComputedSnapshot struct {
	PoundsPerDozen    decimal.NullDecimal `json:"lbs_per_dozen"`
	PoundsWithWastage decimal.NullDecimal `json:"lbs_with_wastage"`
	YarnCostPerDozen  decimal.NullDecimal `json:"yarn_cost_per_dozen"`
	TotalPerDozen     decimal.Decimal     `json:"total_per_dozen"`
	FOBPerPiece       decimal.Decimal     `json:"fob_per_piece"`
	FinalPerPiece     decimal.Decimal     `json:"final_per_piece"`
	MarkupPct         decimal.Decimal     `json:"markup_pct"`
}

// Compute derives a snapshot from cost inputs. Pure and total: absent
// inputs resolve to 0, and a non-positive weight nulls the per-pound
// chain without failing the pipeline.
//
// Intermediate pound/rate values retain full precision; rounding to
// money happens only at the two per-piece stages.
func Compute(in CostInputs) ComputedSnapshot {
	var s ComputedSnapshot
	s.MarkupPct = FixedMarkupPct

	weight := in.WeightGrams.OrZero()
	if weight.IsPositive() {
		lbsPerDozen := weight.Div(gramsPerDozenPound)
		lbsWithWastage := lbsPerDozen.Mul(one.Add(in.WastagePct.OrZero().Div(oneHundred)))
		yarnCost := in.YarnPricePerPound.OrZero().Mul(lbsWithWastage)

		s.PoundsPerDozen = decimal.NullDecimal{Decimal: lbsPerDozen, Valid: true}
		s.PoundsWithWastage = decimal.NullDecimal{Decimal: lbsWithWastage, Valid: true}
		s.YarnCostPerDozen = decimal.NullDecimal{Decimal: yarnCost, Valid: true}
	}

	yarn := decimal.Zero
	if s.YarnCostPerDozen.Valid {
		yarn = s.YarnCostPerDozen.Decimal
	}

	s.TotalPerDozen = yarn.
		Add(in.AccessoriesPerDozen.OrZero()).
		Add(in.FabricPerDozen.OrZero()).
		Add(in.FabricCostPerDozen.OrZero()).
		Add(in.FabricAttachPerDozen.OrZero()).
		Add(in.CutMakePerDozen.OrZero())

	s.FOBPerPiece = RoundMoney(s.TotalPerDozen.Div(PiecesPerDozen))
	s.FinalPerPiece = RoundMoney(s.FOBPerPiece.Mul(one.Add(FixedMarkupPct.Div(oneHundred))))

	return s
}

// RoundMoney rounds to 2 decimal places, half away from zero.
// Idempotent: an already-2-decimal value is returned unchanged.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Equal reports whether two snapshots hold the same values.
func (s ComputedSnapshot) Equal(o ComputedSnapshot) bool {
	return nullEqual(s.PoundsPerDozen, o.PoundsPerDozen) &&
		nullEqual(s.PoundsWithWastage, o.PoundsWithWastage) &&
		nullEqual(s.YarnCostPerDozen, o.YarnCostPerDozen) &&
		s.TotalPerDozen.Equal(o.TotalPerDozen) &&
		s.FOBPerPiece.Equal(o.FOBPerPiece) &&
		s.FinalPerPiece.Equal(o.FinalPerPiece) &&
		s.MarkupPct.Equal(o.MarkupPct)
}

func nullEqual(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	if !a.Valid {
		return true
	}
	return a.Decimal.Equal(b.Decimal)
}
