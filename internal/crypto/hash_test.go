package crypto

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/yourusername/powchain/pkg/types"
)

func testBlock(payload any) *types.Block {
	return &types.Block{
		Index:           1,
		Timestamp:       1700000000000,
		Payload:         payload,
		PrevFingerprint: "0000aaaa",
		Nonce:           7,
	}
}

func TestHashBytes(t *testing.T) {
	result := HashBytes([]byte("hello"))

	if len(result) != 32 {
		t.Errorf("Hash length = %d, want 32", len(result))
	}
}

func TestHashHex(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "Empty input",
			input:    []byte{},
			expected: "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		},
		{
			name:     "Simple string",
			input:    []byte("hello"),
			expected: "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824",
		},
		{
			name:     "abc",
			input:    []byte("abc"),
			expected: "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HashHex(tt.input)
			if len(result) != 64 {
				t.Errorf("Fingerprint length = %d, want 64", len(result))
			}
			if result != tt.expected {
				t.Errorf("HashHex() = %s, want %s", result, tt.expected)
			}
		})
	}
}

func TestHashBlock(t *testing.T) {
	block := testBlock("test data")

	fingerprint1, err := HashBlock(block)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}
	fingerprint2, err := HashBlock(block)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}

	// Same block should produce the same fingerprint
	if fingerprint1 != fingerprint2 {
		t.Error("Same block produced different fingerprints")
	}

	if len(fingerprint1) != 64 {
		t.Errorf("Fingerprint length = %d, want 64", len(fingerprint1))
	}

	// Change nonce, should produce a different fingerprint
	block.Nonce = 8
	fingerprint3, err := HashBlock(block)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}

	if fingerprint1 == fingerprint3 {
		t.Error("Different nonce produced the same fingerprint")
	}
}

func TestHashBlock_PayloadCanonicalization(t *testing.T) {
	// Text payloads hash as their UTF-8 bytes regardless of Go type
	asString := testBlock("data")
	asBytes := testBlock([]byte("data"))

	fromString, err := HashBlock(asString)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}
	fromBytes, err := HashBlock(asBytes)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}

	if fromString != fromBytes {
		t.Error("String and byte payloads with the same content hashed differently")
	}

	// Structured payloads hash as their JSON encoding
	asValue := testBlock(map[string]int{"amount": 42})
	asRaw := testBlock(json.RawMessage(`{"amount":42}`))

	fromValue, err := HashBlock(asValue)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}
	fromRaw, err := HashBlock(asRaw)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}

	if fromValue != fromRaw {
		t.Error("Structured payload and its JSON encoding hashed differently")
	}
}

func TestHashBlock_UnserializablePayload(t *testing.T) {
	block := testBlock(make(chan int))

	_, err := HashBlock(block)
	if !errors.Is(err, types.ErrPayloadNotSerializable) {
		t.Errorf("HashBlock() error = %v, want ErrPayloadNotSerializable", err)
	}
}

func TestHashBlock_FieldBoundaries(t *testing.T) {
	// Length prefixes keep adjacent variable-length fields apart: shifting
	// a byte between them must change the fingerprint
	blockA := testBlock("c")
	blockA.PrevFingerprint = "ab"

	blockB := testBlock("bc")
	blockB.PrevFingerprint = "a"

	fingerprintA, err := HashBlock(blockA)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}
	fingerprintB, err := HashBlock(blockB)
	if err != nil {
		t.Fatalf("HashBlock() failed: %v", err)
	}

	if fingerprintA == fingerprintB {
		t.Error("Blocks with shifted field boundaries produced the same fingerprint")
	}
}

func TestHashDeterminism(t *testing.T) {
	// Same input should always produce same output
	input := []byte("deterministic test")

	hash1 := HashBytes(input)
	hash2 := HashBytes(input)

	if !bytes.Equal(hash1, hash2) {
		t.Error("HashBytes is not deterministic")
	}

	if HashHex(input) != HashHex(input) {
		t.Error("HashHex is not deterministic")
	}
}

func TestHashSensitivity(t *testing.T) {
	// Small change should produce completely different hash
	input1 := []byte("test")
	input2 := []byte("Test") // Capital T

	hash1 := HashBytes(input1)
	hash2 := HashBytes(input2)

	if bytes.Equal(hash1, hash2) {
		t.Error("Different inputs produced same hash")
	}

	// Check that hashes differ significantly (avalanche effect)
	differingBits := 0
	for i := 0; i < len(hash1); i++ {
		xor := hash1[i] ^ hash2[i]
		for xor != 0 {
			differingBits += int(xor & 1)
			xor >>= 1
		}
	}

	// Expect roughly 50% of bits to differ (avalanche effect)
	if differingBits < 50 || differingBits > 200 {
		t.Errorf("Expected ~128 differing bits, got %d", differingBits)
	}
}

func BenchmarkHashBytes(b *testing.B) {
	data := []byte("benchmark test data for hashing performance")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		HashBytes(data)
	}
}

func BenchmarkHashHex(b *testing.B) {
	data := []byte("benchmark test data for hashing performance")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		HashHex(data)
	}
}

func BenchmarkHashBlock(b *testing.B) {
	block := testBlock("benchmark payload")
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		HashBlock(block)
	}
}
