package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUserExists         = "User already exists!"
	msgInvalidCredentials = "Invalid credentials!"
	msgUserNotFound       = "User not found!"
)

// ExportRemover deletes objects stored for a user outside the database.
type ExportRemover interface {
	DeletePrefix(ctx context.Context, prefix string) error
}

// UserService handles sign-up, sign-in, token resolution and account
// erasure.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *auth.TokenService
	bcryptCost  int
	dummyHash   []byte
	exports     ExportRemover
	log         logging.Logger
}

// NewUserService wires the service. exports may be nil when object storage
// is disabled.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService,
	bcryptCost int, exports ExportRemover, log logging.Logger) (*UserService, error) {

	// compared against when the email is unknown so both sign-in failures cost the same
	secret, err := common.MakeRandHexString(16)
	if err != nil {
		return nil, fmt.Errorf("error preparing password hashing: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error preparing password hashing: %w", err)
	}

	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		bcryptCost:  bcryptCost,
		dummyHash:   dummy,
		exports:     exports,
		log:         log,
	}, nil
}

func (s *UserService) Register(ctx context.Context, email, name, password string) (*models.PublicUser, error) {
	repo := s.repomanager.Users(s.db)

	_, err := repo.GetByEmail(ctx, email)
	if err == nil {
		return nil, common.NewError(common.ErrorConflict, msgUserExists)
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{Email: email, Name: name, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrorConflict) {
			return nil, common.NewError(common.ErrorConflict, msgUserExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return user.Public(), nil
}

// Login returns a bearer token. Unknown email and wrong password fail with
// the same error.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return "", common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
		}
		return "", fmt.Errorf("error looking up user: %w", err)
	}

	if !s.checkPassword(user, password) {
		return "", common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name})
	if err != nil {
		return "", fmt.Errorf("error issuing token: %w", err)
	}
	return token, nil
}

// Authenticate resolves a bearer token to the current account. An invalid
// token, a deleted account or a changed email all yield ErrorUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error looking up user: %w", err)
	}

	if user.Email != claims.Email {
		return nil, common.ErrorUnauthorized
	}

	return &auth.Identity{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

// VerifyPassword re-checks the password of an authenticated identity.
func (s *UserService) VerifyPassword(ctx context.Context, id *auth.Identity, password string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgUserNotFound)
		}
		return fmt.Errorf("error looking up user: %w", err)
	}

	byEmail, err := repo.GetByEmail(ctx, id.Email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NewError(common.ErrorNotFound, msgUserNotFound)
		}
		return fmt.Errorf("error looking up user: %w", err)
	}
	if byEmail.ID != user.ID {
		return common.NewError(common.ErrorNotFound, msgUserNotFound)
	}

	if !s.checkPassword(user, password) {
		return common.NewError(common.ErrorUnauthorized, msgInvalidCredentials)
	}
	return nil
}

// Erase deletes the account and everything it owns in one transaction:
// credentials, notes, card type links, cards, then the user. Stored
// exports are removed afterwards on a best-effort basis.
func (s *UserService) Erase(ctx context.Context, id *auth.Identity, password string) error {
	if err := s.VerifyPassword(ctx, id, password); err != nil {
		return err
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Credentials(tx).DeleteAllByUser(ctx, id.ID); err != nil {
			return fmt.Errorf("error deleting credentials: %w", err)
		}
		if err := s.repomanager.Notes(tx).DeleteAllByUser(ctx, id.ID); err != nil {
			return fmt.Errorf("error deleting notes: %w", err)
		}
		cards := s.repomanager.Cards(tx)
		if err := cards.DeleteLinksByUser(ctx, id.ID); err != nil {
			return fmt.Errorf("error deleting card types links: %w", err)
		}
		if err := cards.DeleteAllByUser(ctx, id.ID); err != nil {
			return fmt.Errorf("error deleting cards: %w", err)
		}
		if err := s.repomanager.Users(tx).Delete(ctx, id.ID); err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.exports != nil {
		if err := s.exports.DeletePrefix(ctx, ExportPrefix(id.ID)); err != nil {
			s.log.Warn(ctx, "failed to remove vault exports", "user_id", id.ID, "error", err)
		}
	}

	s.log.Info(ctx, "account erased", "user_id", id.ID)
	return nil
}

func (s *UserService) checkPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}
