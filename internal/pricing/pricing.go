package pricing

// Lineは金額計算に必要な最小の明細。
type Line struct {
	Price              float64
	DiscountPercentage float64
	Quantity           int64
}

// Totalsは注文金額の内訳。
type Totals struct {
	Subtotal float64
	Shipping float64
	Total    float64
}

// EffectivePriceは割引適用後の価格を返す。
// 割引率は[0,100]にクランプするので、結果が負になることはない。
func EffectivePrice(basePrice float64, discountPercentage float64) float64 {
	if discountPercentage < 0 {
		discountPercentage = 0
	}
	if discountPercentage > 100 {
		discountPercentage = 100
	}

	price := basePrice - (basePrice * discountPercentage / 100)
	if price < 0 {
		return 0
	}
	return price
}

// ComputeTotalsは小計・送料・合計を計算する。
// 小計がfreeShippingThreshold以上（閾値含む）なら送料は無料。
func ComputeTotals(lines []Line, shippingFlatFee float64, freeShippingThreshold float64) Totals {
	var subtotal float64
	for _, l := range lines {
		subtotal += EffectivePrice(l.Price, l.DiscountPercentage) * float64(l.Quantity)
	}

	shipping := shippingFlatFee
	if subtotal >= freeShippingThreshold {
		shipping = 0
	}

	return Totals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}
