package cart

import (
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/shopspring/decimal"
)

// Line is a cart row joined with its catalog product. Available is false when
// the product is no longer in the catalog; such lines carry no price.
type Line struct {
	types.CartLine
	Product   *types.Product
	Available bool
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// View is the joined cart with client-computed totals. Totals are estimates;
// the order total charged by the backend is authoritative.
type View struct {
	Lines     []Line
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	Total     decimal.Decimal
	TaxRate   decimal.Decimal
	Estimated bool
}

func newView(lines []types.CartLine, products []types.Product, taxRate decimal.Decimal) View {
	byID := make(map[int64]types.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	v := View{
		Lines:     make([]Line, 0, len(lines)),
		Subtotal:  decimal.Zero,
		TaxRate:   taxRate,
		Estimated: true,
	}
	for _, cl := range lines {
		line := Line{CartLine: cl, UnitPrice: decimal.Zero, LineTotal: decimal.Zero}
		if p, ok := byID[cl.ProductID]; ok {
			line.Product = &p
			line.Available = true
			line.UnitPrice = p.EffectivePrice()
			line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(int64(cl.Quantity)))
			v.Subtotal = v.Subtotal.Add(line.LineTotal)
		}
		v.Lines = append(v.Lines, line)
	}
	v.Subtotal = v.Subtotal.Round(2)
	v.Tax = v.Subtotal.Mul(taxRate).Round(2)
	v.Total = v.Subtotal.Add(v.Tax)
	return v
}

// Line returns the row for productID.
func (v View) Line(productID int64) (Line, bool) {
	for _, l := range v.Lines {
		if l.ProductID == productID {
			return l, true
		}
	}
	return Line{}, false
}

// Count is the number of units across all lines.
func (v View) Count() int {
	n := 0
	for _, l := range v.Lines {
		n += l.Quantity
	}
	return n
}

func (v View) Empty() bool {
	return len(v.Lines) == 0
}

func (v View) clone() View {
	out := v
	out.Lines = append([]Line(nil), v.Lines...)
	return out
}
