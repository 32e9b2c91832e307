package types

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

// GenesisPrevFingerprint is the predecessor sentinel carried by the first
// block of a chain, which has no real predecessor.
const GenesisPrevFingerprint = "0"

// ErrPayloadNotSerializable is returned when a block payload cannot be
// reduced to canonical bytes for hashing.
var ErrPayloadNotSerializable = errors.New("payload is not serializable")

// Block is a single unit of the hash-linked chain.
// Note: Payload is `any` so callers can store text, raw bytes or any
// JSON-serializable value
type Block struct {
	Index           uint64 // Position in the chain (0 = genesis)
	Timestamp       int64  // Creation time in Unix milliseconds
	Payload         any    // Application data carried by the block
	PrevFingerprint string // Fingerprint of the predecessor ("0" for genesis)
	Nonce           uint64 // Varied during mining
	Fingerprint     string // SHA-256 over the other fields, hex encoded
}

// PayloadBytes reduces the payload to its canonical byte form: raw bytes
// pass through, strings become their UTF-8 bytes, everything else is
// JSON-encoded. A payload that JSON cannot encode yields
// ErrPayloadNotSerializable.
func (b *Block) PayloadBytes() ([]byte, error) {
	switch v := b.Payload.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPayloadNotSerializable, err)
		}
		return data, nil
	}
}

// Preimage assembles the canonical hashing input from the block fields and
// pre-serialized payload bytes. Variable-length fields are length-prefixed
// so distinct field combinations can never produce the same byte stream.
func (b *Block) Preimage(payload []byte) []byte {
	var buf bytes.Buffer

	// Index (8 bytes)
	binary.Write(&buf, binary.LittleEndian, b.Index)

	// PrevFingerprint (4-byte length + bytes)
	binary.Write(&buf, binary.LittleEndian, uint32(len(b.PrevFingerprint)))
	buf.WriteString(b.PrevFingerprint)

	// Timestamp (8 bytes - Unix milliseconds)
	binary.Write(&buf, binary.LittleEndian, b.Timestamp)

	// Payload (4-byte length + bytes)
	binary.Write(&buf, binary.LittleEndian, uint32(len(payload)))
	buf.Write(payload)

	// Nonce (8 bytes)
	binary.Write(&buf, binary.LittleEndian, b.Nonce)

	return buf.Bytes()
}

// Serialize converts the block to its canonical hashing input.
func (b *Block) Serialize() ([]byte, error) {
	payload, err := b.PayloadBytes()
	if err != nil {
		return nil, err
	}
	return b.Preimage(payload), nil
}
