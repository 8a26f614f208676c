package utils

import "math"

// RoundMoney rounds to 2 decimal places
func RoundMoney(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToPaise converts rupees to the smallest currency unit
func ToPaise(v float64) int64 {
	return int64(math.Round(v * 100))
}
