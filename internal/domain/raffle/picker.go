package raffle

import (
	crand "crypto/rand"
	"math/big"
	mrand "math/rand/v2"
)

// Picker yields uniform integers in [0, n).
type Picker interface {
	IntN(n int) int
}

type cryptoPicker struct{}

// CryptoPicker draws from crypto/rand.
func CryptoPicker() Picker { return cryptoPicker{} }

func (cryptoPicker) IntN(n int) int {
	if n <= 1 {
		return 0
	}
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return mrand.IntN(n)
	}
	return int(v.Int64())
}

// PickN returns n distinct items chosen uniformly with a partial Fisher-Yates shuffle.
// items is not modified.
func PickN[T any](p Picker, items []T, n int) []T {
	if n <= 0 || len(items) == 0 {
		return nil
	}
	if n > len(items) {
		n = len(items)
	}

	pool := make([]T, len(items))
	copy(pool, items)
	for i := 0; i < n; i++ {
		j := i + p.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
