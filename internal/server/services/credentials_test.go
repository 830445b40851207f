package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/cryptox"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	user1 int64 = 1
	user2 int64 = 2
)

func newCredentialService(t *testing.T) (*CredentialService, *memStore) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	m := newMemStore()
	return NewCredentialService(db, &fakeRepoManager{m: m}, newCipher(t)), m
}

var github = models.CredentialInput{Title: "GitHub", URL: "https://github.com", Username: "octo", Password: "p@ss"}

func TestCredentialService_GitHubRoundTrip(t *testing.T) {
	s, m := newCredentialService(t)
	ctx := context.Background()

	created, err := s.Create(ctx, github, user1)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", created.Password, "create returns plaintext")
	assert.Equal(t, user1, created.UserID)

	stored := m.credentials[created.ID]
	assert.NotEqual(t, "p@ss", stored.Password, "password is encrypted at rest")

	got, err := s.FindOne(ctx, created.ID, user1)
	require.NoError(t, err)
	assert.Equal(t, "p@ss", got.Password)
	assert.Equal(t, "octo", got.Username)

	_, err = s.FindOne(ctx, created.ID, user2)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Equal(t, "This credential doesn't exist in your collection!", err.Error())
}

func TestCredentialService_FindAll(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	empty, err := s.FindAll(ctx, user1)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = s.Create(ctx, github, user1)
	require.NoError(t, err)
	gitlab := github
	gitlab.Title, gitlab.Password = "GitLab", "other"
	_, err = s.Create(ctx, gitlab, user1)
	require.NoError(t, err)

	list, err := s.FindAll(ctx, user1)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "p@ss", list[0].Password)
	assert.Equal(t, "other", list[1].Password)

	other, err := s.FindAll(ctx, user2)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestCredentialService_TitleUniquePerOwner(t *testing.T) {
	s, _ := newCredentialService(t)
	ctx := context.Background()

	_, err := s.Create(ctx, github, user1)
	require.NoError(t, err)

	_, err = s.Create(ctx, github, user1)
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "This credential title is already in use in your collection!", err.Error())

	_, err = s.Create(ctx, github, user2)
	assert.NoError(t, err, "same title for another user is fine")
}

func TestCredentialService_ConflictFromStore(t *testing.T) {
	s, m := newCredentialService(t)
	m.fail["credentials.Create"] = common.ErrorConflict

	_, err := s.Create(context.Background(), github, user1)
	assert.ErrorIs(t, err, common.ErrorConflict)
	assert.Equal(t, "This credential title is already in use in your collection!", err.Error())
}

func TestCredentialService_NotFound(t *testing.T) {
	s, _ := newCredentialService(t)

	for _, owner := range []int64{user1, user2} {
		_, err := s.FindOne(context.Background(), 999, owner)
		assert.ErrorIs(t, err, common.ErrorNotFound)
		assert.Equal(t, "Credential doesn't exist!", err.Error())

		err = s.Remove(context.Background(), 999, owner)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	}
}

func TestCredentialService_Remove(t *testing.T) {
	s, m := newCredentialService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, github, user1)
	require.NoError(t, err)

	err = s.Remove(ctx, c.ID, user2)
	assert.ErrorIs(t, err, common.ErrorForbidden)
	assert.Contains(t, m.credentials, c.ID)

	require.NoError(t, s.Remove(ctx, c.ID, user1))
	assert.NotContains(t, m.credentials, c.ID)

	_, err = s.FindOne(ctx, c.ID, user1)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCredentialService_DecryptFailureIsInternal(t *testing.T) {
	s, m := newCredentialService(t)
	ctx := context.Background()

	c, err := s.Create(ctx, github, user1)
	require.NoError(t, err)

	other, err := cryptox.NewFieldCipher("another-secret")
	require.NoError(t, err)
	m.credentials[c.ID].Password, err = other.Encrypt("p@ss")
	require.NoError(t, err)

	_, err = s.FindOne(ctx, c.ID, user1)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrCrypto)
	assert.False(t, errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrorForbidden))

	_, err = s.FindAll(ctx, user1)
	assert.ErrorIs(t, err, common.ErrCrypto)
}

func TestCredentialService_RepositoryErrors(t *testing.T) {
	s, m := newCredentialService(t)
	ctx := context.Background()

	m.fail["credentials.TitleExists"] = errBoom{}
	_, err := s.Create(ctx, github, user1)
	assert.ErrorContains(t, err, "error checking credential title: boom")
	delete(m.fail, "credentials.TitleExists")

	m.fail["credentials.Create"] = errBoom{}
	_, err = s.Create(ctx, github, user1)
	assert.ErrorContains(t, err, "error creating credential: boom")

	m.fail["credentials.FindByID"] = errBoom{}
	_, err = s.FindOne(ctx, 1, user1)
	assert.ErrorContains(t, err, "error loading credential: boom")

	m.fail["credentials.FindAllByUser"] = errBoom{}
	_, err = s.FindAll(ctx, user1)
	assert.ErrorIs(t, err, errBoom{})
}

func TestCredentialService_EmptyPasswordRejectedByCipher(t *testing.T) {
	s, m := newCredentialService(t)

	in := github
	in.Password = ""
	_, err := s.Create(context.Background(), in, user1)
	assert.ErrorIs(t, err, common.ErrCrypto)
	assert.Empty(t, m.credentials)
}
