package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
)

// fieldKeyContext separates the field key from any other key derived from
// the same secret.
const fieldKeyContext = "drivenpass/field-key"

// FieldCipher encrypts individual string fields (credential and card
// passwords, card cvv) with a key derived once from the process secret.
// It is safe for concurrent use.
type FieldCipher struct {
	gcm cipher.AEAD
}

// NewFieldCipher derives the AES-256 field key from secret.
func NewFieldCipher(secret string) (*FieldCipher, error) {
	if secret == "" {
		return nil, errors.New("crypto secret must not be empty")
	}

	sum := sha256.Sum256([]byte(fieldKeyContext + secret))
	key := DeriveMasterKey([]byte(secret), sum[:SaltSize])
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &FieldCipher{gcm: gcm}, nil
}

// Encrypt returns hex(nonce || ciphertext || tag). Empty input is rejected
// with common.ErrCrypto.
func (c *FieldCipher) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: empty plaintext", common.ErrCrypto)
	}

	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("%w: nonce: %v", common.ErrCrypto, err)
	}

	sealed := c.gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Malformed input or a ciphertext produced under
// another key yields common.ErrCrypto.
func (c *FieldCipher) Decrypt(ciphertext string) (string, error) {
	buf, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: malformed ciphertext", common.ErrCrypto)
	}

	nonceSize := c.gcm.NonceSize()
	if len(buf) < nonceSize+c.gcm.Overhead() {
		return "", fmt.Errorf("%w: ciphertext too short", common.ErrCrypto)
	}

	nonce, sealed := buf[:nonceSize], buf[nonceSize:]
	plain, err := c.gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", common.ErrCrypto)
	}
	return string(plain), nil
}
