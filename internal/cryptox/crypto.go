// Package cryptox holds the symmetric primitives used by the server:
// field-level encryption of vault secrets at rest (FieldCipher) and
// password-sealed JSON documents for vault exports.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"

	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveMasterKey.
const KeySize = 32

// SaltSize is the salt length used when sealing exports.
const SaltSize = 16

// DeriveMasterKey stretches password with argon2id into a KeySize-byte key.
func DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, KeySize)
}

// EncryptEntry serializes entry to JSON and encrypts it using AES-GCM.
//
// The key must be a valid AES key length (16, 24, or 32 bytes). A new random
// 12-byte nonce is generated for each call and returned next to the
// ciphertext.
//
// Example:
//
//	salt := common.GenerateRandByteArray(cryptox.SaltSize)
//	key := cryptox.DeriveMasterKey([]byte(password), salt)
//	ciphertext, nonce, err := cryptox.EncryptEntry(vault, key)
func EncryptEntry(entry any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(entry)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, 12)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, nil, err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, nil, err
	}

	ciphertext = aesgcm.Seal(nil, nonce, plaintext, nil)

	return ciphertext, nonce, nil
}

// DecryptEntry reverses EncryptEntry: it opens ciphertext with key and nonce
// and unmarshals the JSON into v.
func DecryptEntry(ciphertext, nonce, key []byte, v any) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	plaintext, err := aesgcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}

	return json.Unmarshal(plaintext, v)
}
