package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEffectivePrice_NoDiscount(t *testing.T) {
	assert.Equal(t, 100.0, EffectivePrice(100, 0))
}

func TestEffectivePrice_MonotonicInDiscount(t *testing.T) {
	//割引率が上がるほど価格は下がる（または同じ）
	prev := EffectivePrice(1000, 0)
	for d := 1; d <= 100; d++ {
		p := EffectivePrice(1000, float64(d))
		assert.LessOrEqual(t, p, prev)
		prev = p
	}
	assert.Equal(t, 0.0, EffectivePrice(1000, 100))
}

func TestEffectivePrice_ClampsOutOfRangeDiscount(t *testing.T) {
	assert.Equal(t, 100.0, EffectivePrice(100, -10))
	assert.Equal(t, 0.0, EffectivePrice(100, 150))
}

func TestComputeTotals_FreeShippingAtThreshold(t *testing.T) {
	//閾値ちょうどで送料無料（閾値含む）
	lines := []Line{{Price: 500, DiscountPercentage: 0, Quantity: 1}}
	got := ComputeTotals(lines, 50, 500)

	assert.Equal(t, 500.0, got.Subtotal)
	assert.Equal(t, 0.0, got.Shipping)
	assert.Equal(t, 500.0, got.Total)
}

func TestComputeTotals_DiscountedAboveThreshold(t *testing.T) {
	lines := []Line{{Price: 1000, DiscountPercentage: 10, Quantity: 2}}
	got := ComputeTotals(lines, 50, 500)

	assert.Equal(t, 1800.0, got.Subtotal)
	assert.Equal(t, 0.0, got.Shipping)
	assert.Equal(t, 1800.0, got.Total)
}

func TestComputeTotals_BelowThresholdAddsFlatFee(t *testing.T) {
	lines := []Line{{Price: 100, DiscountPercentage: 0, Quantity: 1}}
	got := ComputeTotals(lines, 50, 500)

	assert.Equal(t, 100.0, got.Subtotal)
	assert.Equal(t, 50.0, got.Shipping)
	assert.Equal(t, 150.0, got.Total)
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	got := ComputeTotals(nil, 50, 500)

	assert.Equal(t, 0.0, got.Subtotal)
	assert.Equal(t, 50.0, got.Shipping)
}
