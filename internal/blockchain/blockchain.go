package blockchain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/powchain/internal/crypto"
	"github.com/yourusername/powchain/internal/pow"
	"github.com/yourusername/powchain/internal/storage"
	"github.com/yourusername/powchain/pkg/types"
)

// GenesisPayload is the payload carried by the genesis block
const GenesisPayload = "Genesis Block"

// Blockchain represents the entire chain
type Blockchain struct {
	Blocks     []*types.Block
	Difficulty int
	Storage    *storage.Storage
}

// NewBlockchain opens the chain at dbPath, creating and mining a genesis
// block if no chain exists yet. An empty dbPath keeps the chain in memory
// only. A chain loaded from disk keeps the difficulty it was created with.
func NewBlockchain(difficulty int, dbPath string) (*Blockchain, error) {
	if difficulty < 0 {
		return nil, fmt.Errorf("difficulty must be non-negative, got %d", difficulty)
	}

	var store *storage.Storage
	if dbPath != "" {
		var err error
		store, err = storage.NewStorage(dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %v", err)
		}

		// Try to load an existing chain
		if tip, err := store.GetChainTip(); err == nil && len(tip) > 0 {
			logrus.WithField("path", dbPath).Info("loading existing chain from disk")
			return loadBlockchain(store)
		}
	}

	logrus.WithField("difficulty", difficulty).Info("creating new chain")
	genesisBlock, err := createGenesisBlock(difficulty)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, fmt.Errorf("failed to create genesis block: %v", err)
	}

	bc := &Blockchain{
		Blocks:     []*types.Block{genesisBlock},
		Difficulty: difficulty,
		Storage:    store,
	}

	if err := bc.saveBlockToDB(genesisBlock); err != nil {
		bc.Close()
		return nil, fmt.Errorf("failed to save genesis block: %v", err)
	}

	return bc, nil
}

// loadBlockchain loads an existing chain from storage
func loadBlockchain(store *storage.Storage) (*Blockchain, error) {
	height, err := store.GetChainHeight()
	if err != nil {
		return nil, fmt.Errorf("failed to get chain height: %v", err)
	}

	difficulty, err := store.GetDifficulty()
	if err != nil {
		return nil, fmt.Errorf("failed to get difficulty: %v", err)
	}

	currentFingerprint, err := store.GetChainTip()
	if err != nil {
		return nil, fmt.Errorf("failed to get chain tip: %v", err)
	}

	// Walk backwards from the tip to genesis
	var blocks []*types.Block
	for {
		block, err := store.GetBlock(currentFingerprint)
		if err != nil {
			return nil, fmt.Errorf("failed to load block %s: %v", currentFingerprint, err)
		}

		blocks = append([]*types.Block{block}, blocks...) // Prepend block

		if block.PrevFingerprint == types.GenesisPrevFingerprint {
			break
		}
		currentFingerprint = block.PrevFingerprint
	}

	logrus.WithFields(logrus.Fields{
		"height":     height,
		"difficulty": difficulty,
	}).Info("loaded chain")

	return &Blockchain{
		Blocks:     blocks,
		Difficulty: difficulty,
		Storage:    store,
	}, nil
}

// NewBlock assembles a block for the given position and stamps its creation
// time. The initial fingerprint is computed with a zero nonce; it generally
// does not satisfy any difficulty and becomes final only through mining.
func NewBlock(index uint64, payload any, prevFingerprint string) (*types.Block, error) {
	block := &types.Block{
		Index:           index,
		Timestamp:       time.Now().UnixMilli(),
		Payload:         payload,
		PrevFingerprint: prevFingerprint,
		Nonce:           0,
	}

	fingerprint, err := crypto.HashBlock(block)
	if err != nil {
		return nil, err
	}
	block.Fingerprint = fingerprint

	return block, nil
}

// createGenesisBlock creates and mines the first block in the chain
func createGenesisBlock(difficulty int) (*types.Block, error) {
	block, err := NewBlock(0, GenesisPayload, types.GenesisPrevFingerprint)
	if err != nil {
		return nil, err
	}

	proofOfWork := pow.NewProofOfWork(block, difficulty)
	if _, _, err := proofOfWork.Mine(); err != nil {
		return nil, err
	}

	return block, nil
}

// AddBlock mines and appends a new block carrying the given payload
func (bc *Blockchain) AddBlock(payload any) (*types.Block, error) {
	prevBlock := bc.GetLatestBlock()

	newBlock, err := NewBlock(prevBlock.Index+1, payload, prevBlock.Fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to create block: %v", err)
	}

	// Mine the block
	proofOfWork := pow.NewProofOfWork(newBlock, bc.Difficulty)
	if _, _, err := proofOfWork.Mine(); err != nil {
		return nil, fmt.Errorf("failed to mine block: %v", err)
	}

	// Validate before adding
	if err := bc.ValidateBlock(newBlock); err != nil {
		return nil, fmt.Errorf("block validation failed: %v", err)
	}

	bc.Blocks = append(bc.Blocks, newBlock)

	if err := bc.saveBlockToDB(newBlock); err != nil {
		return nil, fmt.Errorf("failed to save block: %v", err)
	}

	return newBlock, nil
}

// saveBlockToDB saves a block and updates chain metadata
func (bc *Blockchain) saveBlockToDB(block *types.Block) error {
	if bc.Storage == nil {
		return nil // Storage not enabled
	}

	if err := bc.Storage.SaveBlock(block); err != nil {
		return err
	}

	if err := bc.Storage.SaveChainTip(block.Fingerprint); err != nil {
		return err
	}

	if err := bc.Storage.SaveChainHeight(len(bc.Blocks)); err != nil {
		return err
	}

	return bc.Storage.SaveDifficulty(bc.Difficulty)
}

// Close closes the blockchain storage
func (bc *Blockchain) Close() error {
	if bc.Storage != nil {
		return bc.Storage.Close()
	}
	return nil
}

// ValidateBlock runs the complete audit of a single block
func (bc *Blockchain) ValidateBlock(block *types.Block) error {
	// 1. Check the stored fingerprint against the difficulty rule. This
	// proves format only: a block re-mined after tampering passes it.
	proofOfWork := pow.NewProofOfWork(block, bc.Difficulty)
	if !proofOfWork.Validate() {
		return fmt.Errorf("fingerprint does not meet difficulty %d", bc.Difficulty)
	}

	// 2. Recompute the fingerprint from the current field values; any
	// drift means the block was changed after mining
	computed, err := crypto.HashBlock(block)
	if err != nil {
		return fmt.Errorf("failed to recompute fingerprint: %v", err)
	}
	if computed != block.Fingerprint {
		return fmt.Errorf("fingerprint mismatch: stored %s, computed %s", block.Fingerprint, computed)
	}

	return nil
}

// ValidateChain audits every block and the linkage between consecutive
// blocks, in order from genesis to tip. It only reads the chain; repeated
// calls return the same verdict.
func (bc *Blockchain) ValidateChain() error {
	for i, block := range bc.Blocks {
		if err := bc.ValidateBlock(block); err != nil {
			return fmt.Errorf("invalid block %d: %v", i, err)
		}

		if block.Index != uint64(i) {
			return fmt.Errorf("block %d carries index %d", i, block.Index)
		}

		if i == 0 {
			if block.PrevFingerprint != types.GenesisPrevFingerprint {
				return fmt.Errorf("genesis block has predecessor %s", block.PrevFingerprint)
			}
			continue
		}

		// Linkage to the predecessor
		if block.PrevFingerprint != bc.Blocks[i-1].Fingerprint {
			return fmt.Errorf("broken chain at block %d", i)
		}
	}

	return nil
}

// GetLatestBlock returns the most recent block
func (bc *Blockchain) GetLatestBlock() *types.Block {
	return bc.Blocks[len(bc.Blocks)-1]
}

// GetBlock returns a block by index
func (bc *Blockchain) GetBlock(index int) (*types.Block, error) {
	if index < 0 || index >= len(bc.Blocks) {
		return nil, fmt.Errorf("block index out of range")
	}
	return bc.Blocks[index], nil
}

// GetBlockByFingerprint finds a block by its fingerprint
func (bc *Blockchain) GetBlockByFingerprint(fingerprint string) (*types.Block, error) {
	for _, block := range bc.Blocks {
		if block.Fingerprint == fingerprint {
			return block, nil
		}
	}
	return nil, fmt.Errorf("block not found")
}

// Height returns the current chain height
func (bc *Blockchain) Height() int {
	return len(bc.Blocks)
}

// PrintChain prints the blockchain for debugging
func (bc *Blockchain) PrintChain() {
	fmt.Println("\n=== BLOCKCHAIN ===")
	for _, block := range bc.Blocks {
		fmt.Printf("\nBlock %d:\n", block.Index)
		fmt.Printf("  Fingerprint: %s\n", block.Fingerprint)
		fmt.Printf("  Prev: %s\n", block.PrevFingerprint)
		fmt.Printf("  Timestamp: %s\n", time.UnixMilli(block.Timestamp).Format(time.RFC3339))
		fmt.Printf("  Nonce: %d\n", block.Nonce)
		fmt.Printf("  Payload: %s\n", FormatPayload(block.Payload))
	}
	fmt.Println("==================")
}

// FormatPayload renders a block payload for display
func FormatPayload(payload any) string {
	switch v := payload.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case json.RawMessage:
		return string(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
