package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/cryptox"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/google/uuid"
)

const exportFormatVersion = 1

// ObjectStore is the subset of object storage the export needs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ExportPrefix is the storage prefix holding every export of userID.
func ExportPrefix(userID int64) string {
	return fmt.Sprintf("users/%d/exports/", userID)
}

// GetRandomStorageKey returns a fresh object key under ExportPrefix.
func GetRandomStorageKey(userID int64) string {
	return fmt.Sprintf("%s%v.json", ExportPrefix(userID), uuid.New())
}

// ExportService seals a user's decrypted vault with a key derived from
// their account password and publishes it through a presigned URL.
type ExportService struct {
	users       *UserService
	credentials *CredentialService
	cards       *CardService
	notes       *NoteService
	store       ObjectStore
	urlTTL      time.Duration
	log         logging.Logger
	now         func() time.Time
}

// NewExportService wires the service. A nil store disables exports.
func NewExportService(users *UserService, credentials *CredentialService, cards *CardService, notes *NoteService,
	store ObjectStore, urlTTL time.Duration, log logging.Logger) *ExportService {
	return &ExportService{
		users:       users,
		credentials: credentials,
		cards:       cards,
		notes:       notes,
		store:       store,
		urlTTL:      urlTTL,
		log:         log,
		now:         time.Now,
	}
}

func (s *ExportService) Export(ctx context.Context, id *auth.Identity, password string) (*models.ExportLink, error) {
	if s.store == nil {
		return nil, common.NewError(common.ErrorUnavailable, "Vault export is not configured")
	}

	if err := s.users.VerifyPassword(ctx, id, password); err != nil {
		return nil, err
	}

	doc := &models.VaultExport{
		User:       models.PublicUser{ID: id.ID, Name: id.Name, Email: id.Email},
		ExportedAt: s.now().UTC(),
	}

	var err error
	if doc.Credentials, err = s.credentials.FindAll(ctx, id.ID); err != nil {
		return nil, err
	}
	if doc.Cards, err = s.cards.FindAll(ctx, id.ID); err != nil {
		return nil, err
	}
	if doc.Notes, err = s.notes.FindAll(ctx, id.ID); err != nil {
		return nil, err
	}

	body, err := seal(doc, password)
	if err != nil {
		return nil, fmt.Errorf("error sealing export: %w", err)
	}

	key := GetRandomStorageKey(id.ID)
	if err := s.store.Put(ctx, key, body, "application/json"); err != nil {
		return nil, fmt.Errorf("error storing export: %w", err)
	}

	url, err := s.store.PresignGet(ctx, key, s.urlTTL)
	if err != nil {
		return nil, fmt.Errorf("error presigning export: %w", err)
	}

	s.log.Info(ctx, "vault exported", "user_id", id.ID, "key", key,
		"credentials", len(doc.Credentials), "cards", len(doc.Cards), "notes", len(doc.Notes))

	return &models.ExportLink{Key: key, URL: url, ExpiresAt: s.now().Add(s.urlTTL).UTC()}, nil
}

func seal(doc *models.VaultExport, password string) ([]byte, error) {
	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	key := cryptox.DeriveMasterKey([]byte(password), salt)
	defer common.WipeByteArray(key)

	ciphertext, nonce, err := cryptox.EncryptEntry(doc, key)
	if err != nil {
		return nil, err
	}

	return json.Marshal(&models.SealedExport{
		Version:    exportFormatVersion,
		KDF:        "argon2id",
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	})
}

// OpenExport decrypts an archive produced by Export.
func OpenExport(body []byte, password string) (*models.VaultExport, error) {
	var sealed models.SealedExport
	if err := json.Unmarshal(body, &sealed); err != nil {
		return nil, err
	}
	if sealed.Version != exportFormatVersion {
		return nil, fmt.Errorf("unsupported export version %d", sealed.Version)
	}

	key := cryptox.DeriveMasterKey([]byte(password), sealed.Salt)
	defer common.WipeByteArray(key)

	var doc models.VaultExport
	if err := cryptox.DecryptEntry(sealed.Ciphertext, sealed.Nonce, key, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
