package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
)

// Envelope is the encryption metadata persisted alongside a record.
type Envelope struct {
	IV         string
	KeyType    string
	Algorithm  string
	WrappedKey string
}

// Encryptor wraps plaintext in an encryption envelope addressed to a
// recipient key.
type Encryptor interface {
	Encrypt(plaintext []byte, recipientKeyID string) (*Envelope, error)
}

const (
	keyTypeQuantumMock = "QUANTUM_MOCK"
	mockKEMAlgorithm   = "CRYSTALS-Kyber-1024"
)

// MockQuantumEncryptor simulates a post-quantum KEM envelope: a random
// content IV plus a key "encapsulated" for the recipient. It performs
// no real encryption; the stored plaintext stays opaque to this layer
// and only the envelope shape matters.
type MockQuantumEncryptor struct {
	rand io.Reader
}

func NewMockQuantumEncryptor() *MockQuantumEncryptor {
	return &MockQuantumEncryptor{rand: rand.Reader}
}

func (e *MockQuantumEncryptor) Encrypt(plaintext []byte, recipientKeyID string) (*Envelope, error) {
	iv := make([]byte, 12)
	if _, err := io.ReadFull(e.rand, iv); err != nil {
		return nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	key := make([]byte, 32)
	if _, err := io.ReadFull(e.rand, key); err != nil {
		return nil, fmt.Errorf("failed to generate content key: %w", err)
	}

	return &Envelope{
		IV:         hex.EncodeToString(iv),
		KeyType:    keyTypeQuantumMock,
		Algorithm:  mockKEMAlgorithm,
		WrappedKey: fmt.Sprintf("[QUANTUM-ENCAPSULATED-KEY-FOR-%s]", recipientKeyID),
	}, nil
}
