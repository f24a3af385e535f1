package crypto

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockQuantumEnvelope(t *testing.T) {
	e := NewMockQuantumEncryptor()

	env, err := e.Encrypt([]byte("payload"), "patient-key-42")
	require.NoError(t, err)

	iv, err := hex.DecodeString(env.IV)
	require.NoError(t, err)
	assert.Len(t, iv, 12)

	assert.Equal(t, "QUANTUM_MOCK", env.KeyType)
	assert.Equal(t, "CRYSTALS-Kyber-1024", env.Algorithm)
	assert.Equal(t, "[QUANTUM-ENCAPSULATED-KEY-FOR-patient-key-42]", env.WrappedKey)
}

func TestMockQuantumIVsDiffer(t *testing.T) {
	e := NewMockQuantumEncryptor()

	a, err := e.Encrypt(nil, "k")
	require.NoError(t, err)
	b, err := e.Encrypt(nil, "k")
	require.NoError(t, err)

	assert.NotEqual(t, a.IV, b.IV)
}
