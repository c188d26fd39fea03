// backend-go/internal/finance/cost.go
package finance

import (
	"math"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// dec converts a stored amount, treating non-finite values as 0.
func dec(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func effectivePriceToBuy(p domain.Product) decimal.Decimal {
	base := dec(p.UnitBaseCost)
	if p.PurchasedQty <= 0 {
		return base
	}
	batch := dec(p.BatchTax).Add(dec(p.BatchFreight))
	return base.Add(batch.Div(decimal.NewFromInt(p.PurchasedQty)))
}

func grossProfitPerUnit(p domain.Product) decimal.Decimal {
	return dec(p.SalePrice).
		Sub(dec(p.MarketplaceFees)).
		Sub(dec(p.PrepCost)).
		Sub(effectivePriceToBuy(p))
}

func totalPurchaseCost(p domain.Product) decimal.Decimal {
	unit := dec(p.UnitBaseCost).Add(dec(p.PrepCost)).Add(dec(p.MarketplaceFees))
	return unit.Mul(decimal.NewFromInt(p.PurchasedQty)).
		Add(dec(p.BatchFreight)).
		Add(dec(p.BatchTax))
}

// EffectivePriceToBuy is the unit cost with the batch tax and freight spread
// evenly over the purchased units. Without purchased units it is the base cost.
func EffectivePriceToBuy(p domain.Product) float64 {
	return effectivePriceToBuy(p).InexactFloat64()
}

// GrossProfitPerUnit is sale price minus fees, prep and EffectivePriceToBuy.
func GrossProfitPerUnit(p domain.Product) float64 {
	return grossProfitPerUnit(p).InexactFloat64()
}

// MarginPercent returns the gross margin over the sale price. ok is false when
// the sale price is not positive; callers must not render that as 0%.
func MarginPercent(p domain.Product) (margin float64, ok bool) {
	price := dec(p.SalePrice)
	if !price.IsPositive() {
		return 0, false
	}
	return grossProfitPerUnit(p).Div(price).Mul(hundred).InexactFloat64(), true
}

// TotalPurchaseCostUSD is what buying the batch cost, counted as a monthly
// expense on the product's effective date.
func TotalPurchaseCostUSD(p domain.Product) float64 {
	return totalPurchaseCost(p).InexactFloat64()
}

// Metrics bundles the per-product figures shown in the product listing.
func Metrics(p domain.Product) domain.ProductMetrics {
	m := domain.ProductMetrics{
		EffectivePriceToBuy: EffectivePriceToBuy(p),
		GrossProfitPerUnit:  GrossProfitPerUnit(p),
		TotalPurchaseCost:   TotalPurchaseCostUSD(p),
	}
	if margin, ok := MarginPercent(p); ok {
		m.MarginPercent = &margin
	}
	return m
}
