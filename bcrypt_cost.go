//go:build !race

package flightdeck

func passwordHashCost() int {
	return 14
}
