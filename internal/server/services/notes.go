package services

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/repomanager"
)

// NoteService manages secure notes. Notes carry no encrypted fields.
type NoteService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewNoteService(db *sql.DB, m repomanager.RepositoryManager) *NoteService {
	return &NoteService{db: db, repomanager: m}
}

func (s *NoteService) Create(ctx context.Context, in models.NoteInput, ownerID int64) (*models.Note, error) {
	repo := s.repomanager.Notes(s.db)

	if err := ensureTitleFree(ctx, noteResource, ownerID, in.Title, repo.TitleExists); err != nil {
		return nil, err
	}

	n, err := repo.Create(ctx, &models.Note{Title: in.Title, Text: in.Text, UserID: ownerID})
	if err != nil {
		return nil, createErr(noteResource, err)
	}
	return n, nil
}

func (s *NoteService) FindAll(ctx context.Context, ownerID int64) ([]*models.Note, error) {
	return s.repomanager.Notes(s.db).FindAllByUser(ctx, ownerID)
}

func (s *NoteService) FindOne(ctx context.Context, id, ownerID int64) (*models.Note, error) {
	return findOwned(ctx, noteResource, id, ownerID,
		s.repomanager.Notes(s.db).FindByID,
		func(n *models.Note) int64 { return n.UserID })
}

func (s *NoteService) Remove(ctx context.Context, id, ownerID int64) error {
	if _, err := s.FindOne(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.repomanager.Notes(s.db).Delete(ctx, id); err != nil {
		return removeErr(noteResource, err)
	}
	return nil
}
