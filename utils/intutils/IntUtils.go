// Package intutils provides utilities for working with ints
package intutils

// Abs returns the absolute value of an int
func Abs(i int) int {
	if i < 0 {
		return -i
	}
	return i
}
