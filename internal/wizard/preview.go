package wizard

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/schema"
)

// PreviewRow is one line of the preview step: a value with the index of
// the step that edits it, for jump-to-edit.
type PreviewRow struct {
	StepIndex int    `json:"step_index"`
	Label     string `json:"label"`
	Value     string `json:"value"`
}

// PreviewRows lists every entered and derived value with its source
// step index.
func (m *Machine) PreviewRows() []PreviewRow {
	d := m.draft
	snap := m.Snapshot()

	rows := []PreviewRow{{
		StepIndex: 0,
		Label:     "Style",
		Value:     fmt.Sprintf("%s, gauge %s, %sg/piece", d.Name, d.Gauge, d.WeightGrams),
	}}

	for i, s := range schema.Steps() {
		switch s.Kind {
		case schema.KindNumeric, schema.KindPercent, schema.KindInteger:
			raw, _ := d.Field(s.Field)
			if raw == "" {
				raw = "0 (blank)"
			}
			rows = append(rows, PreviewRow{StepIndex: i, Label: s.Title, Value: raw})
		case schema.KindComputed:
			rows = append(rows, PreviewRow{StepIndex: i, Label: s.Title, Value: computedDisplay(s, d.Currency, snap)})
		case schema.KindStyleGroup, schema.KindPreview:
			// Style is summarized above; the preview step has no value row.
		}
	}
	return rows
}

// ComputedDisplay formats the value shown on a computed step for the
// current draft contents.
func (m *Machine) ComputedDisplay(step schema.Step) string {
	return computedDisplay(step, m.draft.Currency, m.Snapshot())
}

func computedDisplay(step schema.Step, currency string, s costing.ComputedSnapshot) string {
	switch step.ID {
	case "lbs_per_dozen":
		return formatPounds(s.PoundsPerDozen) + " lbs"
	case "lbs_with_wastage":
		return formatPounds(s.PoundsWithWastage) + " lbs"
	case "yarn_cost":
		return formatNullMoney(currency, s.YarnCostPerDozen)
	case "total_fob":
		return fmt.Sprintf("%s/dozen, FOB %s/piece",
			formatMoney(currency, s.TotalPerDozen),
			formatMoney(currency, s.FOBPerPiece))
	case "markup":
		return s.MarkupPct.String() + "%"
	case "final_price":
		return formatMoney(currency, s.FinalPerPiece) + "/piece"
	}
	return ""
}

// formatMoney renders a money value rounded for display.
func formatMoney(currency string, d decimal.Decimal) string {
	return currency + costing.RoundMoney(d).StringFixed(2)
}

func formatNullMoney(currency string, nd decimal.NullDecimal) string {
	if !nd.Valid {
		return "n/a"
	}
	return formatMoney(currency, nd.Decimal)
}

// formatPounds renders an intermediate pound value. Full precision is
// kept in the pipeline; display rounds to 3 places.
func formatPounds(nd decimal.NullDecimal) string {
	if !nd.Valid {
		return "n/a"
	}
	return nd.Decimal.Round(3).String()
}
