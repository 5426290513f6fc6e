//go:build !race

package relink

func passwordHashCost() int {
	return 14
}
