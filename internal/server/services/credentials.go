package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/repomanager"
)

// CredentialService manages website logins. Passwords are encrypted before
// they reach the repository and decrypted only for their owner.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      FieldCipher
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cipher FieldCipher) *CredentialService {
	return &CredentialService{db: db, repomanager: m, cipher: cipher}
}

// Create stores a credential for ownerID and returns it with the password
// in plaintext.
func (s *CredentialService) Create(ctx context.Context, in models.CredentialInput, ownerID int64) (*models.Credential, error) {
	repo := s.repomanager.Credentials(s.db)

	if err := ensureTitleFree(ctx, credentialResource, ownerID, in.Title, repo.TitleExists); err != nil {
		return nil, err
	}

	encrypted, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return nil, err
	}

	c, err := repo.Create(ctx, &models.Credential{
		Title:    in.Title,
		URL:      in.URL,
		Username: in.Username,
		Password: encrypted,
		UserID:   ownerID,
	})
	if err != nil {
		return nil, createErr(credentialResource, err)
	}

	c.Password = in.Password
	return c, nil
}

// FindAll returns the owner's credentials, decrypted; empty when none.
func (s *CredentialService) FindAll(ctx context.Context, ownerID int64) ([]*models.Credential, error) {
	list, err := s.repomanager.Credentials(s.db).FindAllByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for _, c := range list {
		if err := s.decrypt(c); err != nil {
			return nil, err
		}
	}
	return list, nil
}

func (s *CredentialService) FindOne(ctx context.Context, id, ownerID int64) (*models.Credential, error) {
	c, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.decrypt(c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CredentialService) Remove(ctx context.Context, id, ownerID int64) error {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repomanager.Credentials(s.db).Delete(ctx, id); err != nil {
		return removeErr(credentialResource, err)
	}
	return nil
}

func (s *CredentialService) findOwned(ctx context.Context, id, ownerID int64) (*models.Credential, error) {
	return findOwned(ctx, credentialResource, id, ownerID,
		s.repomanager.Credentials(s.db).FindByID,
		func(c *models.Credential) int64 { return c.UserID })
}

func (s *CredentialService) decrypt(c *models.Credential) error {
	plain, err := s.cipher.Decrypt(c.Password)
	if err != nil {
		return decryptErr(credentialResource, c.ID, err)
	}
	c.Password = plain
	return nil
}
