package pow

import (
	"fmt"
	"runtime"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/powchain/internal/crypto"
)

// parallelChunk is the number of nonces each worker scans per round
const parallelChunk = 4096

// MineParallel splits the nonce space into fixed chunks and scans it with a
// pool of workers, round by round. A round finishes before its results are
// inspected, so the returned nonce is always the lowest valid one and
// matches what the sequential search would find. workers <= 0 means one
// worker per CPU.
func (pow *ProofOfWork) MineParallel(workers int) (uint64, string, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 {
		return pow.Mine()
	}

	payload, err := pow.Block.PayloadBytes()
	if err != nil {
		return 0, "", fmt.Errorf("failed to serialize payload: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"index":      pow.Block.Index,
		"difficulty": pow.Difficulty,
		"workers":    workers,
	}).Debug("mining block in parallel")

	type result struct {
		nonce       uint64
		fingerprint string
		found       bool
	}

	span := uint64(workers) * parallelChunk

	for base := uint64(0); ; base += span {
		results := make([]result, workers)
		var wg sync.WaitGroup

		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()

				// Workers hash a private copy of the block and report
				// into disjoint slots, so no locking is needed.
				blk := *pow.Block

				start := base + uint64(w)*parallelChunk
				if start < base || start > pow.MaxNonce {
					return
				}
				end := pow.MaxNonce
				if pow.MaxNonce-start >= parallelChunk {
					end = start + parallelChunk - 1
				}

				for nonce := start; ; nonce++ {
					blk.Nonce = nonce
					fingerprint := crypto.HashHex(blk.Preimage(payload))
					if strings.HasPrefix(fingerprint, pow.prefix) {
						results[w] = result{nonce: nonce, fingerprint: fingerprint, found: true}
						return
					}
					if nonce == end {
						return
					}
				}
			}(w)
		}
		wg.Wait()

		// Pick the lowest winning nonce of the round, if any
		best := result{}
		for _, r := range results {
			if r.found && (!best.found || r.nonce < best.nonce) {
				best = r
			}
		}
		if best.found {
			pow.Block.Nonce = best.nonce
			pow.Block.Fingerprint = best.fingerprint
			logrus.WithFields(logrus.Fields{
				"index":       pow.Block.Index,
				"nonce":       best.nonce,
				"fingerprint": best.fingerprint,
			}).Debug("block mined")
			return best.nonce, best.fingerprint, nil
		}

		if pow.MaxNonce-base < span {
			return 0, "", ErrNonceExhausted
		}
	}
}
