// Package proof turns canonical snapshot encodings into the digests the
// registry stores. The hash is Keccak-256 (the Ethereum variant, not
// standardized SHA-3), so digests line up with what on-chain code computes
// for the same bytes.
package proof

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Hash computes the Keccak-256 digest of a canonical encoding. Pure: equal
// input bytes always give equal digests.
func Hash(encoded []byte) common.Hash {
	return crypto.Keccak256Hash(encoded)
}
