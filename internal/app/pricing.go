/**
 * @description
 * Discount and return math for the marketplace. All monetary values are in
 * the ledger's smallest unit; rates are basis points (1/100th of a percent,
 * range 0-10000).
 */

package app

// PurchasePrice is the amount a financier pays for an invoice at the given
// discount: face * (10000 - bps) / 10000, in integer arithmetic.
func PurchasePrice(faceValue int64, discountBps int64) int64 {
	return faceValue * (maxDiscountBps - discountBps) / maxDiscountBps
}

// APY annualizes the return of buying at purchasePrice and collecting
// faceValue after daysToMaturity days, as a percentage.
func APY(faceValue, purchasePrice int64, daysToMaturity int) float64 {
	if daysToMaturity <= 0 || purchasePrice == 0 {
		return 0
	}
	profit := float64(faceValue - purchasePrice)
	investment := float64(purchasePrice)
	periodReturn := profit / investment
	periodsPerYear := 365.0 / float64(daysToMaturity)
	return periodReturn * periodsPerYear * 100
}

// DaysBetween returns the whole days between two unix timestamps, regardless
// of order.
func DaysBetween(a, b int64) int {
	seconds := b - a
	if seconds < 0 {
		seconds = -seconds
	}
	return int(seconds / (60 * 60 * 24))
}
