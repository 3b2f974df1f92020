package domain

import (
	"strings"
)

// NormalizeCity converts city input to the form used for comparisons.
// Examples: "Montréal" -> "montréal", "  QUEBEC  " -> "quebec"
func NormalizeCity(input string) string {
	return strings.ToLower(strings.Join(strings.Fields(input), " "))
}

// SameVenue reports whether two venue (name, city) pairs refer to the same place.
func SameVenue(nameA, cityA, nameB, cityB string) bool {
	return NormalizeCity(nameA) == NormalizeCity(nameB) && NormalizeCity(cityA) == NormalizeCity(cityB)
}
