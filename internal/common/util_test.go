package common

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	for _, n := range []int{0, 1, 16, 32} {
		s, err := MakeRandHexString(n)
		require.NoError(t, err)
		assert.Len(t, s, n*2)

		raw, err := hex.DecodeString(s)
		require.NoError(t, err)
		assert.Len(t, raw, n)
	}

	a, _ := MakeRandHexString(32)
	b, _ := MakeRandHexString(32)
	assert.NotEqual(t, a, b)
}

func TestGenerateRandByteArray(t *testing.T) {
	a := GenerateRandByteArray(saltSize)
	b := GenerateRandByteArray(saltSize)

	assert.Len(t, a, saltSize)
	assert.Len(t, b, saltSize)
	assert.NotEqual(t, a, b)
	assert.Empty(t, GenerateRandByteArray(0))
}

func TestWipeByteArray(t *testing.T) {
	key := GenerateRandByteArray(32)
	WipeByteArray(key)
	assert.Equal(t, make([]byte, 32), key)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

// saltSize mirrors cryptox.SaltSize.
const saltSize = 16
