package cart

import "github.com/shopspring/decimal"

// PricedLine is a line item with its computed nights and total.
type PricedLine struct {
	LineItem
	Nights int             `json:"nights"`
	Total  decimal.Decimal `json:"total"`
}

// Summary is the view model handed to the renderer.
type Summary struct {
	Lines []PricedLine    `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// PriceLine computes nights and total for a single line.
func PriceLine(l LineItem) PricedLine {
	nights := 1
	if l.Stay != nil {
		nights = Nights(l.Stay.CheckIn, l.Stay.CheckOut)
	}
	qty := l.Quantity
	if qty < 1 {
		qty = 1
	}
	total := l.UnitPrice.Mul(decimal.NewFromInt(int64(qty))).Mul(decimal.NewFromInt(int64(nights)))
	return PricedLine{LineItem: l, Nights: nights, Total: total}
}

// ComputeTotals prices every line from scratch. It never mutates lines and
// returns the same result for the same input.
func ComputeTotals(lines []LineItem) Summary {
	s := Summary{
		Lines: make([]PricedLine, 0, len(lines)),
		Count: len(lines),
		Total: decimal.Zero,
	}
	for _, l := range lines {
		pl := PriceLine(l)
		s.Lines = append(s.Lines, pl)
		s.Total = s.Total.Add(pl.Total)
	}
	return s
}
