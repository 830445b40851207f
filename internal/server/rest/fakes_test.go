package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/drivenpass/internal/common"
	"github.com/dmitrijs2005/drivenpass/internal/logging"
	"github.com/dmitrijs2005/drivenpass/internal/server/auth"
	"github.com/dmitrijs2005/drivenpass/internal/server/models"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) logging.Logger            { return n }

const (
	aliceToken = "alice-token"
	bobToken   = "bob-token"
)

var (
	alice = &auth.Identity{ID: 1, Email: "alice@example.com", Name: "Alice"}
	bob   = &auth.Identity{ID: 2, Email: "bob@example.com", Name: "Bob"}
)

type fakeUsers struct {
	registerFn func(email, name, password string) (*models.PublicUser, error)
	loginFn    func(email, password string) (string, error)
	authErr    error
	eraseFn    func(id *auth.Identity, password string) error
}

func (f *fakeUsers) Register(_ context.Context, email, name, password string) (*models.PublicUser, error) {
	return f.registerFn(email, name, password)
}

func (f *fakeUsers) Login(_ context.Context, email, password string) (string, error) {
	return f.loginFn(email, password)
}

func (f *fakeUsers) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	switch token {
	case aliceToken:
		return alice, nil
	case bobToken:
		return bob, nil
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeUsers) Erase(_ context.Context, id *auth.Identity, password string) error {
	return f.eraseFn(id, password)
}

// fakeCredentials keeps records in memory and applies the ownership rules of
// the real service.
type fakeCredentials struct {
	records map[int64]*models.Credential
	nextID  int64
	failErr error
}

func newFakeCredentials() *fakeCredentials {
	return &fakeCredentials{records: map[int64]*models.Credential{}}
}

func (f *fakeCredentials) Create(_ context.Context, in models.CredentialInput, ownerID int64) (*models.Credential, error) {
	if f.failErr != nil {
		return nil, f.failErr
	}
	for _, c := range f.records {
		if c.UserID == ownerID && c.Title == in.Title {
			return nil, common.NewError(common.ErrorConflict, "This credential title is already in use in your collection!")
		}
	}
	f.nextID++
	c := &models.Credential{ID: f.nextID, Title: in.Title, URL: in.URL, Username: in.Username, Password: in.Password, UserID: ownerID}
	f.records[c.ID] = c
	return c, nil
}

func (f *fakeCredentials) FindAll(_ context.Context, ownerID int64) ([]*models.Credential, error) {
	out := []*models.Credential{}
	for id := int64(1); id <= f.nextID; id++ {
		if c, ok := f.records[id]; ok && c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCredentials) FindOne(_ context.Context, id, ownerID int64) (*models.Credential, error) {
	c, ok := f.records[id]
	if !ok {
		return nil, common.NewError(common.ErrorNotFound, "Credential doesn't exist!")
	}
	if c.UserID != ownerID {
		return nil, common.NewError(common.ErrorForbidden, "This credential doesn't exist in your collection!")
	}
	return c, nil
}

func (f *fakeCredentials) Remove(ctx context.Context, id, ownerID int64) error {
	if _, err := f.FindOne(ctx, id, ownerID); err != nil {
		return err
	}
	delete(f.records, id)
	return nil
}

type fakeCards struct {
	created []models.CardInput
	types   []*models.CardType
	err     error
}

func (f *fakeCards) Create(_ context.Context, in models.CardInput, ownerID int64) (*models.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &models.Card{ID: int64(len(f.created)), Title: in.Title, Number: in.Number, UserID: ownerID}, nil
}

func (f *fakeCards) FindAll(context.Context, int64) ([]*models.Card, error) {
	return []*models.Card{}, f.err
}

func (f *fakeCards) FindOne(_ context.Context, id, ownerID int64) (*models.Card, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Card{ID: id, UserID: ownerID}, nil
}

func (f *fakeCards) Remove(context.Context, int64, int64) error { return f.err }

func (f *fakeCards) FindAllCardTypes(context.Context) ([]*models.CardType, error) {
	return f.types, f.err
}

type fakeNotes struct {
	err error
}

func (f *fakeNotes) Create(_ context.Context, in models.NoteInput, ownerID int64) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: 1, Title: in.Title, Text: in.Text, UserID: ownerID}, nil
}

func (f *fakeNotes) FindAll(context.Context, int64) ([]*models.Note, error) {
	return []*models.Note{}, f.err
}

func (f *fakeNotes) FindOne(_ context.Context, id, ownerID int64) (*models.Note, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Note{ID: id, UserID: ownerID}, nil
}

func (f *fakeNotes) Remove(context.Context, int64, int64) error { return f.err }

type fakeExports struct {
	link *models.ExportLink
	err  error
}

func (f *fakeExports) Export(context.Context, *auth.Identity, string) (*models.ExportLink, error) {
	return f.link, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

type testDeps struct {
	users       *fakeUsers
	credentials *fakeCredentials
	cards       *fakeCards
	notes       *fakeNotes
	exports     *fakeExports
	db          fakePinger
}

func newTestDeps() *testDeps {
	return &testDeps{
		users: &fakeUsers{
			registerFn: func(email, name, _ string) (*models.PublicUser, error) {
				return &models.PublicUser{ID: 1, Name: name, Email: email}, nil
			},
			loginFn: func(string, string) (string, error) { return aliceToken, nil },
			eraseFn: func(*auth.Identity, string) error { return nil },
		},
		credentials: newFakeCredentials(),
		cards:       &fakeCards{},
		notes:       &fakeNotes{},
		exports:     &fakeExports{},
	}
}

func (d *testDeps) router() http.Handler {
	return NewRouter(Deps{
		Users:       d.users,
		Credentials: d.credentials,
		Cards:       d.cards,
		Notes:       d.notes,
		Exports:     d.exports,
		DB:          d.db,
		Log:         nopLogger{},
	})
}

func newRequest(method, path, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = bytes.NewBufferString(body)
	}
	return httptest.NewRequest(method, path, rd)
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func do(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := newRequest(method, path, body)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return serve(h, req)
}

func decodeErr(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

var errBoom = errors.New("boom")
