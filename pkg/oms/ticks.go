package oms

import "github.com/shopspring/decimal"

// The book prices in integer ticks. scale is the number of decimal places
// one tick represents for a symbol; a price that does not land exactly on a
// tick is rejected before it can touch the book.

func priceToTicks(price decimal.Decimal, scale int32) (int64, error) {
	shifted := price.Shift(scale)
	if !shifted.IsInteger() {
		return 0, errOffTickPrice
	}
	return shifted.IntPart(), nil
}

func priceFromTicks(ticks int64, scale int32) decimal.Decimal {
	return decimal.New(ticks, -scale)
}

func qtyToLots(qty decimal.Decimal) (int64, error) {
	if !qty.IsInteger() {
		return 0, errInvalidQuantity
	}
	return qty.IntPart(), nil
}
