package cart

import (
	"github.com/shopspring/decimal"

	"github.com/MorseWayne/nursery_shop/internal/domain"
)

// ProductLookup 按ID解析商品，商品已被删除时返回 false
type ProductLookup func(id string) (*domain.Product, bool)

// LineTotal 单行金额（ILS）
// 商品无法解析时 Orphaned 为 true，金额为 0
type LineTotal struct {
	Key       string          `json:"key"`
	Line      domain.CartLine `json:"line"`
	Product   *domain.Product `json:"-"`
	UnitPrice float64         `json:"unit_price"`
	Total     float64         `json:"line_total"`
	Orphaned  bool            `json:"orphaned"`

	unit  decimal.Decimal
	total decimal.Decimal
}

// Totals 购物车汇总，全部为派生值
type Totals struct {
	Lines          []LineTotal    `json:"lines"`
	Subtotal       float64        `json:"subtotal"`
	DiscountAmount float64        `json:"discount_amount"`
	Total          float64        `json:"total"`
	LineCount      int            `json:"line_count"`
	OrphanedCount  int            `json:"orphaned_count"`
	Coupon         *domain.Coupon `json:"applied_coupon,omitempty"`
}

// ComputeLineTotal 计算单行金额：(商品价 + 配件价之和) × 数量
func ComputeLineTotal(line domain.CartLine, lookup ProductLookup) LineTotal {
	lt := LineTotal{Key: KeyOf(line), Line: cloneLine(line)}
	var product *domain.Product
	if lookup != nil {
		if p, ok := lookup(line.ProductID); ok && p != nil {
			product = p
		}
	}
	if product == nil {
		lt.Orphaned = true
		return lt
	}

	unit := decimal.NewFromFloat(product.Price.ILS)
	for _, a := range line.Accessories {
		unit = unit.Add(decimal.NewFromFloat(a.Price.ILS))
	}
	total := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))

	lt.Product = product
	lt.unit = unit
	lt.total = total
	lt.UnitPrice = unit.InexactFloat64()
	lt.Total = total.InexactFloat64()
	return lt
}

// Totals 计算小计、折扣和总额；孤立行不计入小计
func (c *Cart) Totals(lookup ProductLookup) Totals {
	t := Totals{
		Lines:  make([]LineTotal, 0, len(c.lines)),
		Coupon: c.Coupon(),
	}

	subtotal := decimal.Zero
	for _, line := range c.lines {
		lt := ComputeLineTotal(line, lookup)
		t.LineCount += line.Quantity
		if lt.Orphaned {
			t.OrphanedCount++
		} else {
			subtotal = subtotal.Add(lt.total)
		}
		t.Lines = append(t.Lines, lt)
	}

	discount := decimal.Zero
	if c.coupon != nil {
		discount = subtotal.Mul(decimal.NewFromFloat(c.coupon.DiscountPercent)).Div(decimal.NewFromInt(100))
	}

	t.Subtotal = subtotal.InexactFloat64()
	t.DiscountAmount = discount.InexactFloat64()
	t.Total = subtotal.Sub(discount).InexactFloat64()
	return t
}

// Resolved 返回可结算（非孤立）的行
func (t Totals) Resolved() []LineTotal {
	out := make([]LineTotal, 0, len(t.Lines))
	for _, lt := range t.Lines {
		if !lt.Orphaned {
			out = append(out, lt)
		}
	}
	return out
}
