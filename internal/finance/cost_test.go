package finance

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/andresuchdata/qota-finance/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEffectivePriceToBuy(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		want    float64
	}{
		{
			name:    "apportions tax and freight",
			product: domain.Product{PurchasedQty: 10, BatchTax: 50, BatchFreight: 50, UnitBaseCost: 5},
			want:    15,
		},
		{
			name:    "zero purchased quantity keeps base cost",
			product: domain.Product{PurchasedQty: 0, BatchTax: 50, BatchFreight: 50, UnitBaseCost: 5},
			want:    5,
		},
		{
			name:    "negative purchased quantity keeps base cost",
			product: domain.Product{PurchasedQty: -3, BatchTax: 12, UnitBaseCost: 4.5},
			want:    4.5,
		},
		{
			name:    "non finite amounts count as zero",
			product: domain.Product{PurchasedQty: 2, BatchTax: math.Inf(1), BatchFreight: math.NaN(), UnitBaseCost: 3},
			want:    3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EffectivePriceToBuy(tt.product)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got) || math.IsInf(got, 0))
		})
	}
}

func TestGrossProfitAndMargin(t *testing.T) {
	p := domain.Product{
		PurchasedQty:    10,
		BatchTax:        50,
		BatchFreight:    50,
		UnitBaseCost:    5,
		SalePrice:       30,
		MarketplaceFees: 6,
		PrepCost:        2,
	}

	assert.InDelta(t, 7, GrossProfitPerUnit(p), 1e-9)

	margin, ok := MarginPercent(p)
	assert.True(t, ok)
	assert.InDelta(t, 23.333, margin, 0.001)
}

func TestMarginUndefinedWithoutSalePrice(t *testing.T) {
	for _, price := range []float64{0, -1} {
		p := domain.Product{SalePrice: price, UnitBaseCost: 5}
		margin, ok := MarginPercent(p)
		assert.False(t, ok)
		assert.Zero(t, margin)

		m := Metrics(p)
		assert.Nil(t, m.MarginPercent)

		raw, err := json.Marshal(m)
		assert.NoError(t, err)
		assert.Contains(t, string(raw), `"margin_pct":null`)
	}
}

func TestTotalPurchaseCostUSD(t *testing.T) {
	p := domain.Product{
		PurchasedQty:    10,
		UnitBaseCost:    5,
		PrepCost:        2,
		MarketplaceFees: 6,
		BatchFreight:    50,
		BatchTax:        50,
	}

	// 10 * (5 + 2 + 6) + 50 + 50
	assert.InDelta(t, 230, TotalPurchaseCostUSD(p), 1e-9)
	assert.InDelta(t, 100, TotalPurchaseCostUSD(domain.Product{BatchFreight: 60, BatchTax: 40, UnitBaseCost: 9}), 1e-9)
}

func TestMetricsBundle(t *testing.T) {
	p := domain.Product{PurchasedQty: 4, UnitBaseCost: 10, BatchFreight: 8, SalePrice: 25, MarketplaceFees: 5, PrepCost: 1}

	m := Metrics(p)
	assert.InDelta(t, 12, m.EffectivePriceToBuy, 1e-9)
	assert.InDelta(t, 7, m.GrossProfitPerUnit, 1e-9)
	if assert.NotNil(t, m.MarginPercent) {
		assert.InDelta(t, 28, *m.MarginPercent, 1e-9)
	}
	assert.InDelta(t, 72, m.TotalPurchaseCost, 1e-9)
}
