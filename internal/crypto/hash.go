package crypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/yourusername/powchain/pkg/types"
)

// HashBytes returns SHA-256 hash of the input data
func HashBytes(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// HashHex returns the SHA-256 hash of the input data as a 64-character
// lowercase hex string
func HashHex(data []byte) string {
	return hex.EncodeToString(HashBytes(data))
}

// HashBlock computes the fingerprint of a block from its current field
// values, including payload serialization
func HashBlock(b *types.Block) (string, error) {
	serialized, err := b.Serialize()
	if err != nil {
		return "", err
	}
	return HashHex(serialized), nil
}
