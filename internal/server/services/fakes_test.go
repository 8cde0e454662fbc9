package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/starterkit/internal/common"
	"github.com/dmitrijs2005/starterkit/internal/dbx"
	"github.com/dmitrijs2005/starterkit/internal/server/mail"
	"github.com/dmitrijs2005/starterkit/internal/server/models"
	"github.com/dmitrijs2005/starterkit/internal/server/objectstore"
	refreshtokensrepo "github.com/dmitrijs2005/starterkit/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/starterkit/internal/server/repositories/users"
	vtrepo "github.com/dmitrijs2005/starterkit/internal/server/repositories/verificationtokens"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// txDB gives WithTx something to begin and commit. The fakes ignore it.
func txDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type memStore struct {
	mu      sync.Mutex
	seq     int
	users   map[string]*models.User
	refresh map[string]*models.RefreshToken
	tokens  map[string]*models.VerificationToken
	used    map[string]bool

	getErr error
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[string]*models.User{},
		refresh: map[string]*models.RefreshToken{},
		tokens:  map[string]*models.VerificationToken{},
		used:    map[string]bool{},
	}
}

// addUser inserts a verified user and returns its id.
func (m *memStore) addUser(email, hash string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	id := fmt.Sprintf("user-%d", m.seq)
	m.users[id] = &models.User{ID: id, Email: email, PasswordHash: hash, EmailVerified: true}
	return id
}

func (m *memStore) user(id string) models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.users[id]
}

type fakeUsers struct{ m *memStore }

func (f fakeUsers) Create(_ context.Context, email, hash string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for _, u := range f.m.users {
		if u.Email == email {
			return nil, common.ErrAlreadyExists
		}
	}
	f.m.seq++
	u := &models.User{ID: fmt.Sprintf("user-%d", f.m.seq), Email: email, PasswordHash: hash}
	f.m.users[u.ID] = u
	cp := *u
	return &cp, nil
}

func (f fakeUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.getErr != nil {
		return nil, f.m.getErr
	}
	for _, u := range f.m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f fakeUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if f.m.getErr != nil {
		return nil, f.m.getErr
	}
	u, ok := f.m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f fakeUsers) mutate(id string, fn func(u *models.User)) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	u, ok := f.m.users[id]
	if !ok {
		return common.ErrNotFound
	}
	fn(u)
	return nil
}

func (f fakeUsers) MarkEmailVerified(_ context.Context, id string) error {
	return f.mutate(id, func(u *models.User) { u.EmailVerified = true })
}

func (f fakeUsers) UpdateEmail(_ context.Context, id, email string) error {
	f.m.mu.Lock()
	for _, u := range f.m.users {
		if u.Email == email && u.ID != id {
			f.m.mu.Unlock()
			return common.ErrAlreadyExists
		}
	}
	f.m.mu.Unlock()
	return f.mutate(id, func(u *models.User) { u.Email, u.EmailVerified = email, false })
}

func (f fakeUsers) UpdatePassword(_ context.Context, id, hash string) error {
	return f.mutate(id, func(u *models.User) { u.PasswordHash = hash })
}

func (f fakeUsers) SetAvatarKey(_ context.Context, id, key string) error {
	return f.mutate(id, func(u *models.User) { u.AvatarKey = key })
}

type fakeRefresh struct{ m *memStore }

func (f fakeRefresh) Create(_ context.Context, userID, token string, validity time.Duration) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.refresh[token] = &models.RefreshToken{UserID: userID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f fakeRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	rt, ok := f.m.refresh[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	delete(f.m.refresh, token)
	cp := *rt
	return &cp, nil
}

func (f fakeRefresh) Delete(_ context.Context, token string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	delete(f.m.refresh, token)
	return nil
}

func (f fakeRefresh) DeleteForUser(_ context.Context, userID string) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for k, rt := range f.m.refresh {
		if rt.UserID == userID {
			delete(f.m.refresh, k)
		}
	}
	return nil
}

type fakeTokens struct{ m *memStore }

func (f fakeTokens) Create(_ context.Context, t *models.VerificationToken) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	cp := *t
	f.m.tokens[t.TokenHash] = &cp
	return nil
}

func (f fakeTokens) Consume(_ context.Context, hash string, purpose models.TokenPurpose) (*models.VerificationToken, error) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	t, ok := f.m.tokens[hash]
	if !ok || t.Purpose != purpose || f.m.used[hash] {
		return nil, common.ErrNotFound
	}
	f.m.used[hash] = true
	cp := *t
	return &cp, nil
}

func (f fakeTokens) DeleteForUser(_ context.Context, userID string, purpose models.TokenPurpose) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for k, t := range f.m.tokens {
		if t.UserID == userID && t.Purpose == purpose && !f.m.used[k] {
			delete(f.m.tokens, k)
		}
	}
	return nil
}

type fakeRepoManager struct{ m *memStore }

func (r fakeRepoManager) RunMigrations(context.Context, *sql.DB) error            { return nil }
func (r fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                     { return fakeUsers{r.m} }
func (r fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository     { return fakeRefresh{r.m} }
func (r fakeRepoManager) VerificationTokens(dbx.DBTX) vtrepo.Repository           { return fakeTokens{r.m} }

type fakeMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg mail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) last() mail.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// plainHasher stores passwords with a marker so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }
func (plainHasher) Verify(p, h string) (bool, error) {
	return h == "plain:"+p, nil
}

type fakeStore struct {
	mu      sync.Mutex
	enabled bool
	missing []string
	putErr  error
	getErr  error
	gets    int
}

func (f *fakeStore) Status(context.Context) objectstore.Status {
	if !f.enabled {
		return objectstore.Status{Enabled: false, Missing: f.missing}
	}
	return objectstore.Status{Enabled: true, Missing: []string{}}
}

func (f *fakeStore) PresignPut(_ context.Context, key string) (*objectstore.Presigned, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &objectstore.Presigned{URL: "https://bucket.test/" + key + "?sig=put", Method: http.MethodPut, ExpiresAt: time.Now().Add(common.PresignValidity)}, nil
}

func (f *fakeStore) PresignGet(_ context.Context, key string) (*objectstore.Presigned, error) {
	f.mu.Lock()
	f.gets++
	f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &objectstore.Presigned{URL: "https://bucket.test/" + key + "?sig=get", Method: http.MethodGet}, nil
}
