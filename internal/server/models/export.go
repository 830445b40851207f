package models

import "time"

// VaultExport is the plaintext document sealed into an export archive.
type VaultExport struct {
	User        PublicUser    `json:"user"`
	ExportedAt  time.Time     `json:"exportedAt"`
	Credentials []*Credential `json:"credentials"`
	Cards       []*Card       `json:"cards"`
	Notes       []*Note       `json:"notes"`
}

// SealedExport is the object written to storage. Ciphertext is the
// AES-GCM sealed VaultExport JSON, keyed by argon2id(password, Salt).
type SealedExport struct {
	Version    int    `json:"version"`
	KDF        string `json:"kdf"`
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// ExportLink is returned after a successful export.
type ExportLink struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
