// Package score maps a habit's accumulated value to a qualitative tier.
package score

import "sort"

// Breakpoints separate the tiers in ascending order.
var Breakpoints = []float64{-20, -10, -1, 1, 5, 10}

// Tiers are ordered from weakest to strongest; len(Tiers) == len(Breakpoints)+1.
var Tiers = []string{"*", "**", "***", "****", "*****", "******", "*******"}

// Tier returns the index of the tier for value. A value equal to a breakpoint
// lands in the tier above it.
func Tier(value float64) int {
	return sort.Search(len(Breakpoints), func(i int) bool { return Breakpoints[i] > value })
}

// Symbol returns the display symbol for value.
func Symbol(value float64) string {
	return Tiers[Tier(value)]
}
