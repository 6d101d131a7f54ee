package encoding

import (
	"math"
	"math/big"
)

// Fixed-point factors used by the canonical schemas. A factor of 100 keeps
// two implied decimals, 1e4 four, and so on.
const (
	Scale1   int64 = 1
	Scale100 int64 = 100
	Scale1e4 int64 = 10_000
	Scale1e6 int64 = 1_000_000
	Scale1e8 int64 = 100_000_000
)

// ScaledUint converts a sampled float to its fixed-point uint256 value.
// NaN, infinities and anything negative after scaling collapse to zero:
// a bad reading must still encode deterministically.
func ScaledUint(v float64, scale int64, r Rounding) *big.Int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return new(big.Int)
	}

	scaled := v * float64(scale)
	switch r {
	case Truncate:
		scaled = math.Trunc(scaled)
	default:
		scaled = math.Round(scaled)
	}

	if scaled <= 0 || math.IsInf(scaled, 0) {
		return new(big.Int)
	}

	// Values can exceed int64 (18-decimal token quantities); go through
	// big.Float, which is exact for integral float64 inputs.
	i, _ := new(big.Float).SetFloat64(scaled).Int(nil)
	return i
}

// Uint wraps a counter in the big.Int form the encoder wants. Negative
// counts clamp to zero.
func Uint(n int) *big.Int {
	if n < 0 {
		return new(big.Int)
	}
	return big.NewInt(int64(n))
}

// PackLanes16 packs up to sixteen 16-bit lanes into one uint256 word, lane
// 0 in the least significant bits. Values past 0xFFFF clamp to 0xFFFF;
// lanes past the sixteenth are dropped.
func PackLanes16(values []uint64) *big.Int {
	word := new(big.Int)
	for i, v := range values {
		if i >= 16 {
			break
		}
		if v > 0xFFFF {
			v = 0xFFFF
		}
		lane := new(big.Int).Lsh(new(big.Int).SetUint64(v), uint(16*i))
		word.Or(word, lane)
	}
	return word
}
