package pow

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/powchain/internal/crypto"
	"github.com/yourusername/powchain/pkg/types"
)

const (
	// MaxNonce is the default upper bound of the nonce search space
	MaxNonce = uint64(math.MaxUint64)

	// DefaultDifficulty is the number of leading zero hex characters a
	// fingerprint must carry. Each extra character multiplies the
	// expected mining work by 16.
	DefaultDifficulty = 4
)

// ErrNonceExhausted is returned when the nonce space was exhausted before a
// fingerprint meeting the difficulty was found.
var ErrNonceExhausted = errors.New("nonce space exhausted before difficulty was met")

// ProofOfWork represents a proof-of-work round over a single block
type ProofOfWork struct {
	Block      *types.Block
	Difficulty int
	MaxNonce   uint64 // last nonce tried before giving up
	prefix     string
}

// NewProofOfWork creates a new PoW instance for a block
func NewProofOfWork(block *types.Block, difficulty int) *ProofOfWork {
	return &ProofOfWork{
		Block:      block,
		Difficulty: difficulty,
		MaxNonce:   MaxNonce,
		prefix:     Prefix(difficulty),
	}
}

// Mine searches nonces from zero upward until the block fingerprint meets
// the difficulty requirement. On success the winning nonce and fingerprint
// are committed to the block and returned.
func (pow *ProofOfWork) Mine() (uint64, string, error) {
	// Serialize the payload once; it does not change during the search
	payload, err := pow.Block.PayloadBytes()
	if err != nil {
		return 0, "", fmt.Errorf("failed to serialize payload: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"index":      pow.Block.Index,
		"difficulty": pow.Difficulty,
	}).Debug("mining block")

	nonce := uint64(0)

	for {
		// Set the candidate nonce
		pow.Block.Nonce = nonce

		// Calculate the fingerprint
		fingerprint := crypto.HashHex(pow.Block.Preimage(payload))

		// Check the leading-zero requirement
		if strings.HasPrefix(fingerprint, pow.prefix) {
			pow.Block.Fingerprint = fingerprint
			logrus.WithFields(logrus.Fields{
				"index":       pow.Block.Index,
				"nonce":       nonce,
				"fingerprint": fingerprint,
			}).Debug("block mined")
			return nonce, fingerprint, nil
		}

		if nonce == pow.MaxNonce {
			return 0, "", ErrNonceExhausted
		}
		nonce++
	}
}

// Validate checks the block's stored fingerprint against the difficulty
// rule. It does not recompute the fingerprint, so it proves format only;
// consistency with the block contents is a separate check.
func (pow *ProofOfWork) Validate() bool {
	return IsValidFingerprint(pow.Block.Fingerprint, pow.Difficulty)
}

// IsValidFingerprint checks if a fingerprint meets the difficulty requirement
func IsValidFingerprint(fingerprint string, difficulty int) bool {
	return strings.HasPrefix(fingerprint, Prefix(difficulty))
}

// Prefix returns the hex prefix a fingerprint must carry at the given
// difficulty: one '0' character per difficulty unit.
func Prefix(difficulty int) string {
	if difficulty <= 0 {
		return ""
	}
	return strings.Repeat("0", difficulty)
}
