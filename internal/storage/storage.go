package storage

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	lru "github.com/hashicorp/golang-lru"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/yourusername/powchain/pkg/types"
)

const (
	// Database key prefixes
	blockPrefix   = "block_"
	tipKey        = "chain_tip"
	heightKey     = "chain_height"
	difficultyKey = "difficulty"

	// blockCacheSize bounds the number of decoded blocks kept in memory
	blockCacheSize = 256
)

// Payload kind markers for blocks at rest
const (
	payloadString byte = iota
	payloadBytes
	payloadJSON
)

// Storage represents the LevelDB storage layer
type Storage struct {
	db    *leveldb.DB
	cache *lru.Cache // fingerprint -> *types.Block
}

// NewStorage creates a new storage instance
func NewStorage(path string) (*Storage, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	cache, err := lru.New(blockCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create block cache: %v", err)
	}

	return &Storage{db: db, cache: cache}, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveBlock saves a block to the database, keyed by its fingerprint
func (s *Storage) SaveBlock(block *types.Block) error {
	serialized, err := serializeBlock(block)
	if err != nil {
		return fmt.Errorf("failed to serialize block: %v", err)
	}

	key := []byte(blockPrefix + block.Fingerprint)
	if err := s.db.Put(key, serialized, nil); err != nil {
		return fmt.Errorf("failed to save block: %v", err)
	}

	s.cache.Add(block.Fingerprint, block)
	return nil
}

// GetBlock retrieves a block by fingerprint
func (s *Storage) GetBlock(fingerprint string) (*types.Block, error) {
	if cached, ok := s.cache.Get(fingerprint); ok {
		return cached.(*types.Block), nil
	}

	key := []byte(blockPrefix + fingerprint)
	data, err := s.db.Get(key, nil)
	if err != nil {
		return nil, fmt.Errorf("block not found: %v", err)
	}

	block, err := deserializeBlock(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize block: %v", err)
	}

	s.cache.Add(fingerprint, block)
	return block, nil
}

// SaveChainTip saves the fingerprint of the latest block
func (s *Storage) SaveChainTip(fingerprint string) error {
	return s.db.Put([]byte(tipKey), []byte(fingerprint), nil)
}

// GetChainTip retrieves the fingerprint of the latest block
func (s *Storage) GetChainTip() (string, error) {
	data, err := s.db.Get([]byte(tipKey), nil)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveChainHeight saves the current chain height
func (s *Storage) SaveChainHeight(height int) error {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(height); err != nil {
		return err
	}
	return s.db.Put([]byte(heightKey), buf.Bytes(), nil)
}

// GetChainHeight retrieves the current chain height
func (s *Storage) GetChainHeight() (int, error) {
	data, err := s.db.Get([]byte(heightKey), nil)
	if err != nil {
		return 0, err
	}

	var height int
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&height); err != nil {
		return 0, err
	}

	return height, nil
}

// SaveDifficulty saves the mining difficulty the chain was created with
func (s *Storage) SaveDifficulty(difficulty int) error {
	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(difficulty); err != nil {
		return err
	}
	return s.db.Put([]byte(difficultyKey), buf.Bytes(), nil)
}

// GetDifficulty retrieves the stored mining difficulty
func (s *Storage) GetDifficulty() (int, error) {
	data, err := s.db.Get([]byte(difficultyKey), nil)
	if err != nil {
		return 0, err
	}

	var difficulty int
	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&difficulty); err != nil {
		return 0, err
	}

	return difficulty, nil
}

// Clear removes all data from the database
func (s *Storage) Clear() error {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(iter.Key())
	}

	s.cache.Purge()
	return s.db.Write(batch, nil)
}

// storedBlock is the at-rest shape of a block. The payload is kept as its
// canonical bytes plus a kind marker so a reload reproduces the exact bytes
// the fingerprint was computed over.
type storedBlock struct {
	Index           uint64
	Timestamp       int64
	PayloadKind     byte
	Payload         []byte
	PrevFingerprint string
	Nonce           uint64
	Fingerprint     string
}

// serializeBlock serializes a block to bytes
func serializeBlock(block *types.Block) ([]byte, error) {
	data := storedBlock{
		Index:           block.Index,
		Timestamp:       block.Timestamp,
		PrevFingerprint: block.PrevFingerprint,
		Nonce:           block.Nonce,
		Fingerprint:     block.Fingerprint,
	}

	switch v := block.Payload.(type) {
	case string:
		data.PayloadKind = payloadString
		data.Payload = []byte(v)
	case []byte:
		data.PayloadKind = payloadBytes
		data.Payload = v
	default:
		payload, err := block.PayloadBytes()
		if err != nil {
			return nil, err
		}
		data.PayloadKind = payloadJSON
		data.Payload = payload
	}

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)
	if err := encoder.Encode(data); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// deserializeBlock deserializes bytes to a block
func deserializeBlock(data []byte) (*types.Block, error) {
	var blockData storedBlock

	decoder := gob.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&blockData); err != nil {
		return nil, err
	}

	block := &types.Block{
		Index:           blockData.Index,
		Timestamp:       blockData.Timestamp,
		PrevFingerprint: blockData.PrevFingerprint,
		Nonce:           blockData.Nonce,
		Fingerprint:     blockData.Fingerprint,
	}

	switch blockData.PayloadKind {
	case payloadString:
		block.Payload = string(blockData.Payload)
	case payloadBytes:
		block.Payload = blockData.Payload
	case payloadJSON:
		block.Payload = json.RawMessage(blockData.Payload)
	default:
		return nil, fmt.Errorf("unknown payload kind: %d", blockData.PayloadKind)
	}

	return block, nil
}
