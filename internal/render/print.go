// Package render turns frozen costing records into shareable forms: a
// printable HTML document and a fixed-size PNG share card. Both
// renderers consume only the record; they never touch the draft or the
// database.
package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"

	"github.com/myintmo/knitcost/internal/costing"
	"github.com/myintmo/knitcost/internal/errors"
)

// PrintDocument renders a record as an HTML fragment for the print
// view: style header, photo, every input as entered, and the computed
// snapshot. The markdown intermediate keeps the document structure in
// one legible place.
func PrintDocument(r *costing.CostingRecord) (string, error) {
	if r == nil {
		return "", errors.NewInvalidRequest("record is required")
	}

	md := buildMarkdown(r)
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", errors.NewInternal(fmt.Errorf("failed to render print document: %w", err))
	}
	return buf.String(), nil
}

func buildMarkdown(r *costing.CostingRecord) string {
	var b strings.Builder
	cur := r.Style.Currency

	fmt.Fprintf(&b, "# %s\n\n", r.Style.Name)
	if r.Photo != nil {
		uri := fmt.Sprintf("data:%s;base64,%s",
			r.Photo.MimeType, base64.StdEncoding.EncodeToString(r.Photo.Data))
		fmt.Fprintf(&b, "![%s](%s)\n\n", r.Style.Name, uri)
	}

	fmt.Fprintf(&b, "%s\n\n", r.Style.Description)
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Composition | %s |\n", r.Style.Composition)
	fmt.Fprintf(&b, "| Gauge | %sgg |\n", r.Style.Gauge)
	fmt.Fprintf(&b, "| Weight per piece | %s g |\n", r.Inputs.WeightGrams.Raw())
	fmt.Fprintf(&b, "| Costed | %s |\n\n", time.Unix(r.CreatedAt, 0).UTC().Format("2006-01-02"))

	b.WriteString("## Inputs\n\n| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Yarn price per pound | %s |\n", entry(cur, r.Inputs.YarnPricePerPound))
	fmt.Fprintf(&b, "| Wastage | %s%% |\n", r.Inputs.WastagePct.Raw())
	fmt.Fprintf(&b, "| Accessories per dozen | %s |\n", entry(cur, r.Inputs.AccessoriesPerDozen))
	fmt.Fprintf(&b, "| Fabric per dozen | %s |\n", entry(cur, r.Inputs.FabricPerDozen))
	fmt.Fprintf(&b, "| Fabric cost per dozen | %s |\n", entry(cur, r.Inputs.FabricCostPerDozen))
	fmt.Fprintf(&b, "| Fabric attach per dozen | %s |\n", entry(cur, r.Inputs.FabricAttachPerDozen))
	fmt.Fprintf(&b, "| Knitting time | %s min |\n", r.Inputs.KnitMinutes.Raw())
	fmt.Fprintf(&b, "| Cut and make per dozen | %s |\n\n", entry(cur, r.Inputs.CutMakePerDozen))

	s := r.Snapshot
	b.WriteString("## Costing\n\n| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Pounds per dozen | %s |\n", pounds(s.PoundsPerDozen))
	fmt.Fprintf(&b, "| Pounds incl. wastage | %s |\n", pounds(s.PoundsWithWastage))
	fmt.Fprintf(&b, "| Yarn cost per dozen | %s |\n", nullMoney(cur, s.YarnCostPerDozen))
	fmt.Fprintf(&b, "| Total per dozen | %s |\n", money(cur, s.TotalPerDozen))
	fmt.Fprintf(&b, "| **FOB per piece** | **%s** |\n", money(cur, s.FOBPerPiece))
	fmt.Fprintf(&b, "| Markup | %s%% |\n", s.MarkupPct)
	fmt.Fprintf(&b, "| **Final price per piece** | **%s** |\n", money(cur, s.FinalPerPiece))

	return b.String()
}

// entry formats a raw money entry; blank entries render as 0.
func entry(currency string, n costing.Number) string {
	if !n.Present() {
		return currency + "0"
	}
	return currency + n.Raw()
}

func money(currency string, d decimal.Decimal) string {
	return currency + costing.RoundMoney(d).StringFixed(2)
}

func nullMoney(currency string, d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return money(currency, d.Decimal)
}

func pounds(d decimal.NullDecimal) string {
	if !d.Valid {
		return "n/a"
	}
	return d.Decimal.Round(3).String() + " lbs"
}
