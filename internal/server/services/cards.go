package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/repomanager"
)

// CardService manages payment cards. CVV and password are encrypted at
// rest; the card number is stored as entered.
type CardService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      FieldCipher
}

func NewCardService(db *sql.DB, m repomanager.RepositoryManager, cipher FieldCipher) *CardService {
	return &CardService{db: db, repomanager: m, cipher: cipher}
}

// Create validates the referenced card types, then inserts the card and its
// type links in one transaction. The result carries plaintext secrets and
// the linked types.
func (s *CardService) Create(ctx context.Context, in models.CardInput, ownerID int64) (*models.Card, error) {
	if err := ensureTitleFree(ctx, cardResource, ownerID, in.Title, s.repomanager.Cards(s.db).TitleExists); err != nil {
		return nil, err
	}

	cvv, err := s.cipher.Encrypt(in.CVV)
	if err != nil {
		return nil, err
	}
	password, err := s.cipher.Encrypt(in.Password)
	if err != nil {
		return nil, err
	}

	var card *models.Card

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Cards(tx)

		types, err := s.loadTypes(ctx, repo.FindTypeByID, in.Types)
		if err != nil {
			return err
		}

		card, err = repo.Create(ctx, &models.Card{
			Title:      in.Title,
			Number:     in.Number,
			Owner:      in.Owner,
			CVV:        cvv,
			Expiration: in.Expiration,
			Password:   password,
			UserID:     ownerID,
		})
		if err != nil {
			return createErr(cardResource, err)
		}

		for _, t := range types {
			if err := repo.LinkType(ctx, card.ID, t.ID); err != nil {
				return fmt.Errorf("error linking card type: %w", err)
			}
		}
		card.CardTypes = types
		return nil
	})
	if err != nil {
		return nil, err
	}

	card.CVV = in.CVV
	card.Password = in.Password
	return card, nil
}

// loadTypes resolves ids in order, skipping duplicates.
func (s *CardService) loadTypes(ctx context.Context, find func(context.Context, int64) (*models.CardType, error), ids []int64) ([]*models.CardType, error) {
	seen := make(map[int64]struct{}, len(ids))
	types := make([]*models.CardType, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		t, err := find(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil, common.NewError(common.ErrorNotFound, fmt.Sprintf("Card type %d doesn't exist!", id))
			}
			return nil, fmt.Errorf("error loading card type: %w", err)
		}
		types = append(types, t)
	}
	return types, nil
}

func (s *CardService) FindAll(ctx context.Context, ownerID int64) ([]*models.Card, error) {
	list, err := s.repomanager.Cards(s.db).FindAllByUser(ctx, ownerID)
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

func (s *CardService) FindOne(ctx context.Context, id, ownerID int64) (*models.Card, error) {
	c, err := s.findOwned(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.decrypt(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Remove deletes the card and its type links together.
func (s *CardService) Remove(ctx context.Context, id, ownerID int64) error {
	if _, err := s.findOwned(ctx, id, ownerID); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Cards(tx)
		if err := repo.DeleteLinks(ctx, id); err != nil {
			return err
		}
		if err := repo.Delete(ctx, id); err != nil {
			return removeErr(cardResource, err)
		}
		return nil
	})
}

// FindAllCardTypes lists the reference card types. Not owner scoped.
func (s *CardService) FindAllCardTypes(ctx context.Context) ([]*models.CardType, error) {
	return s.repomanager.Cards(s.db).FindAllTypes(ctx)
}

func (s *CardService) findOwned(ctx context.Context, id, ownerID int64) (*models.Card, error) {
	return findOwned(ctx, cardResource, id, ownerID,
		s.repomanager.Cards(s.db).FindByID,
		func(c *models.Card) int64 { return c.UserID })
}

func (s *CardService) decrypt(c *models.Card) error {
	cvv, err := s.cipher.Decrypt(c.CVV)
	if err != nil {
		return decryptErr(cardResource, c.ID, err)
	}
	password, err := s.cipher.Decrypt(c.Password)
	if err != nil {
		return decryptErr(cardResource, c.ID, err)
	}
	c.CVV, c.Password = cvv, password
	return nil
}
