package entities

import (
	"fmt"
	"math"
)

// Money is an amount in minor currency units (cents).
type Money int64

// MoneyFromDecimal converts a major-unit amount (45.00) into minor units (4500).
func MoneyFromDecimal(v float64) Money {
	return Money(math.Round(v * 100))
}

// Decimal returns the major-unit value, 4500 -> 45.
func (m Money) Decimal() float64 {
	return float64(m) / 100
}

func (m Money) String() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}
