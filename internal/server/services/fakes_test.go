package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/cryptox"
	"github.com/dmitrijs2005/drivenpass/internal/dbx"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/cards"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/notes"
	"github.com/dmitrijs2005/drivenpass/internal/server/repositories/users"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newCipher(t *testing.T) *cryptox.FieldCipher {
	t.Helper()
	c, err := cryptox.NewFieldCipher("test-secret")
	if err != nil {
		t.Fatalf("NewFieldCipher: %v", err)
	}
	return c
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// memStore is an in-memory stand-in for the database shared by every fake
// repository. fail injects an error for the named operation.
type memStore struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*models.User
	credentials map[int64]*models.Credential
	cards       map[int64]*models.Card
	cardTypes   map[int64]*models.CardType
	links       map[int64][]int64
	notes       map[int64]*models.Note
	fail        map[string]error
	calls       []string
}

func newMemStore() *memStore {
	now := time.Now()
	return &memStore{
		nextID:      100,
		users:       map[int64]*models.User{},
		credentials: map[int64]*models.Credential{},
		cards:       map[int64]*models.Card{},
		cardTypes: map[int64]*models.CardType{
			1: {ID: 1, Type: "Credit", CreatedAt: now, UpdatedAt: now},
			2: {ID: 2, Type: "Debit", CreatedAt: now, UpdatedAt: now},
		},
		links: map[int64][]int64{},
		notes: map[int64]*models.Note{},
		fail:  map[string]error{},
	}
}

// enter records op and returns the injected error, if any. Caller holds no lock.
func (m *memStore) enter(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
	return m.fail[op]
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func sortedKeys[V any](mp map[int64]V) []int64 {
	keys := make([]int64, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// --- users ---

type fakeUsersRepo struct{ m *memStore }

func (r fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if err := r.m.enter("users.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return nil, common.ErrorConflict
		}
	}
	u.ID = r.m.id()
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	r.m.users[u.ID] = &cp
	return u, nil
}

func (r fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := r.m.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, u := range r.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r fakeUsersRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	if err := r.m.enter("users.GetByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (r fakeUsersRepo) Delete(ctx context.Context, id int64) error {
	if err := r.m.enter("users.Delete"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.users, id)
	return nil
}

// --- credentials ---

type fakeCredentialsRepo struct{ m *memStore }

func (r fakeCredentialsRepo) Create(ctx context.Context, c *models.Credential) (*models.Credential, error) {
	if err := r.m.enter("credentials.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = r.m.id()
	c.CreatedAt, c.UpdatedAt = time.Now(), time.Now()
	cp := *c
	r.m.credentials[c.ID] = &cp
	return c, nil
}

func (r fakeCredentialsRepo) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	if err := r.m.enter("credentials.TitleExists"); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.credentials {
		if c.UserID == userID && c.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCredentialsRepo) FindByID(ctx context.Context, id int64) (*models.Credential, error) {
	if err := r.m.enter("credentials.FindByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.credentials[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r fakeCredentialsRepo) FindAllByUser(ctx context.Context, userID int64) ([]*models.Credential, error) {
	if err := r.m.enter("credentials.FindAllByUser"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Credential, 0)
	for _, id := range sortedKeys(r.m.credentials) {
		if c := r.m.credentials[id]; c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeCredentialsRepo) Delete(ctx context.Context, id int64) error {
	if err := r.m.enter("credentials.Delete"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.credentials[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.credentials, id)
	return nil
}

func (r fakeCredentialsRepo) DeleteAllByUser(ctx context.Context, userID int64) error {
	if err := r.m.enter("credentials.DeleteAllByUser"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, c := range r.m.credentials {
		if c.UserID == userID {
			delete(r.m.credentials, id)
		}
	}
	return nil
}

// --- notes ---

type fakeNotesRepo struct{ m *memStore }

func (r fakeNotesRepo) Create(ctx context.Context, n *models.Note) (*models.Note, error) {
	if err := r.m.enter("notes.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n.ID = r.m.id()
	cp := *n
	r.m.notes[n.ID] = &cp
	return n, nil
}

func (r fakeNotesRepo) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	if err := r.m.enter("notes.TitleExists"); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, n := range r.m.notes {
		if n.UserID == userID && n.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeNotesRepo) FindByID(ctx context.Context, id int64) (*models.Note, error) {
	if err := r.m.enter("notes.FindByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	n, ok := r.m.notes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *n
	return &cp, nil
}

func (r fakeNotesRepo) FindAllByUser(ctx context.Context, userID int64) ([]*models.Note, error) {
	if err := r.m.enter("notes.FindAllByUser"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Note, 0)
	for _, id := range sortedKeys(r.m.notes) {
		if n := r.m.notes[id]; n.UserID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r fakeNotesRepo) Delete(ctx context.Context, id int64) error {
	if err := r.m.enter("notes.Delete"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.notes[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.notes, id)
	return nil
}

func (r fakeNotesRepo) DeleteAllByUser(ctx context.Context, userID int64) error {
	if err := r.m.enter("notes.DeleteAllByUser"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, n := range r.m.notes {
		if n.UserID == userID {
			delete(r.m.notes, id)
		}
	}
	return nil
}

// --- cards ---

type fakeCardsRepo struct{ m *memStore }

func (r fakeCardsRepo) Create(ctx context.Context, c *models.Card) (*models.Card, error) {
	if err := r.m.enter("cards.Create"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c.ID = r.m.id()
	cp := *c
	r.m.cards[c.ID] = &cp
	return c, nil
}

func (r fakeCardsRepo) LinkType(ctx context.Context, cardID, typeID int64) error {
	if err := r.m.enter("cards.LinkType"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.links[cardID] = append(r.m.links[cardID], typeID)
	return nil
}

func (r fakeCardsRepo) TitleExists(ctx context.Context, userID int64, title string) (bool, error) {
	if err := r.m.enter("cards.TitleExists"); err != nil {
		return false, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, c := range r.m.cards {
		if c.UserID == userID && c.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeCardsRepo) withTypes(c *models.Card) *models.Card {
	cp := *c
	cp.CardTypes = make([]*models.CardType, 0)
	for _, tid := range r.m.links[c.ID] {
		t := *r.m.cardTypes[tid]
		cp.CardTypes = append(cp.CardTypes, &t)
	}
	return &cp
}

func (r fakeCardsRepo) FindByID(ctx context.Context, id int64) (*models.Card, error) {
	if err := r.m.enter("cards.FindByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	c, ok := r.m.cards[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r.withTypes(c), nil
}

func (r fakeCardsRepo) FindAllByUser(ctx context.Context, userID int64) ([]*models.Card, error) {
	if err := r.m.enter("cards.FindAllByUser"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.Card, 0)
	for _, id := range sortedKeys(r.m.cards) {
		if c := r.m.cards[id]; c.UserID == userID {
			out = append(out, r.withTypes(c))
		}
	}
	return out, nil
}

func (r fakeCardsRepo) DeleteLinks(ctx context.Context, cardID int64) error {
	if err := r.m.enter("cards.DeleteLinks"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	delete(r.m.links, cardID)
	return nil
}

func (r fakeCardsRepo) Delete(ctx context.Context, id int64) error {
	if err := r.m.enter("cards.Delete"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.cards[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.cards, id)
	return nil
}

func (r fakeCardsRepo) DeleteLinksByUser(ctx context.Context, userID int64) error {
	if err := r.m.enter("cards.DeleteLinksByUser"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, c := range r.m.cards {
		if c.UserID == userID {
			delete(r.m.links, id)
		}
	}
	return nil
}

func (r fakeCardsRepo) DeleteAllByUser(ctx context.Context, userID int64) error {
	if err := r.m.enter("cards.DeleteAllByUser"); err != nil {
		return err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for id, c := range r.m.cards {
		if c.UserID == userID {
			delete(r.m.cards, id)
		}
	}
	return nil
}

func (r fakeCardsRepo) FindAllTypes(ctx context.Context) ([]*models.CardType, error) {
	if err := r.m.enter("cards.FindAllTypes"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	out := make([]*models.CardType, 0)
	for _, id := range sortedKeys(r.m.cardTypes) {
		t := *r.m.cardTypes[id]
		out = append(out, &t)
	}
	return out, nil
}

func (r fakeCardsRepo) FindTypeByID(ctx context.Context, id int64) (*models.CardType, error) {
	if err := r.m.enter("cards.FindTypeByID"); err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.cardTypes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *t
	return &cp, nil
}

// --- manager ---

type fakeRepoManager struct{ m *memStore }

func (f *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (f *fakeRepoManager) Users(db dbx.DBTX) users.Repository        { return fakeUsersRepo{f.m} }
func (f *fakeRepoManager) Credentials(db dbx.DBTX) credentials.Repository {
	return fakeCredentialsRepo{f.m}
}
func (f *fakeRepoManager) Cards(db dbx.DBTX) cards.Repository { return fakeCardsRepo{f.m} }
func (f *fakeRepoManager) Notes(db dbx.DBTX) notes.Repository { return fakeNotesRepo{f.m} }
