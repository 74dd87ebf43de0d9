// Package random provides unpredictable random draws for game outcomes.
// Every draw reads from crypto/rand so players cannot predict results
// from previously observed ones.
package random

import (
	"crypto/rand"
	"math/big"
)

// PartsPerMillion is the denominator used by Chance.
const PartsPerMillion = 1_000_000

// Intn returns a uniform random int in [0, n) using crypto/rand.
// Returns 0 if n <= 0.
func Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand.Reader does not fail on supported platforms.
		panic("random: crypto source unavailable: " + err.Error())
	}
	return int(v.Int64())
}

// IntRange returns a uniform random int in [lo, hi].
func IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + Intn(hi-lo+1)
}

// Int64Range returns a uniform random int64 in [lo, hi].
func Int64Range(lo, hi int64) int64 {
	if hi <= lo {
		return lo
	}
	v, err := rand.Int(rand.Reader, big.NewInt(hi-lo+1))
	if err != nil {
		panic("random: crypto source unavailable: " + err.Error())
	}
	return lo + v.Int64()
}

// Chance reports true with probability ppm / 1,000,000.
func Chance(ppm int) bool {
	if ppm <= 0 {
		return false
	}
	if ppm >= PartsPerMillion {
		return true
	}
	return Intn(PartsPerMillion) < ppm
}

// Shuffle permutes n elements in place with the Fisher-Yates algorithm.
func Shuffle(n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		swap(i, Intn(i+1))
	}
}
