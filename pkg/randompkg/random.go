// Package randompkg provides functionality for generating random ledger items in tests.
package randompkg

import (
	"crypto/rand"
	"math/big"
)

// Intn is a shortcut for generating a random integer between 0 and max using crypto/rand.
func Intn(max int64) int64 {
	nBig, err := rand.Int(rand.Reader, big.NewInt(max))
	if err != nil {
		panic(err)
	}

	return nBig.Int64()
}

// Int64Between generates a random integer between min and max inclusive.
func Int64Between(min, max int64) int64 {
	return min + Intn(max-min+1)
}

// AccountID generates a random positive account id.
func AccountID() int64 {
	return Int64Between(1, 1_000_000)
}

// Balance generates a random non-negative balance in minor units.
func Balance() int64 {
	return Int64Between(0, 1_000_000)
}

// Amount generates a random positive transfer amount not greater than max.
func Amount(max int64) int64 {
	return Int64Between(1, max)
}
