package util

import (
	"os"
	"sort"

	"golang.org/x/exp/constraints"
)

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func Min[A constraints.Integer](num1 A, num2 A) A {
	if num1 > num2 {
		return num2
	}
	return num1
}

// Clamp pins v into [lo, hi].
func Clamp[A constraints.Integer](v, lo, hi A) A {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ReadFileBytes loads a whole file into memory. Every codec entry point
// works on whole-file buffers, so this is the only file read we do.
func ReadFileBytes(path string) ([]byte, error) {
	return os.ReadFile(path)
}
