package types

import "strconv"

// Amount is a fixed-precision quantity stored as an integer number of
// minor units (the number of decimal digits per unit is a deployment-wide
// configuration value, see config.CoreConfig.NumericPrecision). Using an
// integer instead of a float avoids floating-point ambiguity in balances,
// fees, and hashed canonical serialization.
type Amount int64

// Zero is the additive identity.
const Zero Amount = 0

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return a - b
}

// Negative reports whether the amount is below zero.
func (a Amount) Negative() bool {
	return a < 0
}

// Less reports whether a < b.
func (a Amount) Less(b Amount) bool {
	return a < b
}

// String renders the raw minor-unit integer. For a decimal rendering at
// a configured precision, use FormatAmount.
func (a Amount) String() string {
	return strconv.FormatInt(int64(a), 10)
}
