package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/starterkit/internal/client/client"
	"github.com/dmitrijs2005/starterkit/internal/rpc"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), client.DSN(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func getMeta(t *testing.T, db *sql.DB, k string) []byte {
	t.Helper()
	var v []byte
	err := db.QueryRow(`SELECT value FROM metadata WHERE key=?`, k).Scan(&v)
	if err == sql.ErrNoRows {
		return nil
	}
	require.NoError(t, err)
	return v
}

// fakeClient implements client.Client. Unset function fields succeed with
// zero values. Token handling mirrors GRPCClient.
type fakeClient struct {
	access, refresh string
	onTokens        func(a, r string)

	signUp        func(email string, password []byte) (string, error)
	signIn        func(email string, password []byte) error
	signOut       func() error
	verify        func(token string) error
	requestReset  func(email string) error
	resetPassword func(token string, password []byte) error
	changeEmail   func(email string) error
	issueUpload   func() (*rpc.IssueUploadURLResponse, error)
	recordKey     func(key string) error
	profile       func() (*rpc.Profile, error)
	storage       func() (*rpc.StorageStatusResponse, error)
	ping          func() error

	closed bool
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) issue(a, r string) {
	f.access, f.refresh = a, r
	if f.onTokens != nil {
		f.onTokens(a, r)
	}
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) Ping(context.Context) error {
	if f.ping != nil {
		return f.ping()
	}
	return nil
}

func (f *fakeClient) SignUp(_ context.Context, email string, password []byte) (string, error) {
	if f.signUp != nil {
		return f.signUp(email, password)
	}
	return "u-1", nil
}

func (f *fakeClient) SignIn(_ context.Context, email string, password []byte) error {
	if f.signIn != nil {
		if err := f.signIn(email, password); err != nil {
			return err
		}
	}
	f.issue("a-1", "r-1")
	return nil
}

func (f *fakeClient) SignOut(context.Context) error {
	defer f.issue("", "")
	if f.signOut != nil {
		return f.signOut()
	}
	return nil
}

func (f *fakeClient) VerifyEmail(_ context.Context, token string) error {
	if f.verify != nil {
		if err := f.verify(token); err != nil {
			return err
		}
	}
	f.issue("a-v", "r-v")
	return nil
}

func (f *fakeClient) RequestPasswordReset(_ context.Context, email string) error {
	if f.requestReset != nil {
		return f.requestReset(email)
	}
	return nil
}

func (f *fakeClient) ResetPassword(_ context.Context, token string, password []byte) error {
	if f.resetPassword != nil {
		return f.resetPassword(token, password)
	}
	return nil
}

func (f *fakeClient) ChangeEmail(_ context.Context, email string) error {
	if f.changeEmail != nil {
		return f.changeEmail(email)
	}
	return nil
}

func (f *fakeClient) IssueUploadURL(context.Context) (*rpc.IssueUploadURLResponse, error) {
	if f.issueUpload != nil {
		return f.issueUpload()
	}
	return &rpc.IssueUploadURLResponse{}, nil
}

func (f *fakeClient) RecordAvatarKey(_ context.Context, key string) error {
	if f.recordKey != nil {
		return f.recordKey(key)
	}
	return nil
}

func (f *fakeClient) CurrentProfile(context.Context) (*rpc.Profile, error) {
	if f.profile != nil {
		return f.profile()
	}
	return nil, nil
}

func (f *fakeClient) StorageStatus(context.Context) (*rpc.StorageStatusResponse, error) {
	if f.storage != nil {
		return f.storage()
	}
	return &rpc.StorageStatusResponse{Enabled: true}, nil
}

func (f *fakeClient) SetTokens(a, r string)         { f.access, f.refresh = a, r }
func (f *fakeClient) Tokens() (string, string)      { return f.access, f.refresh }
func (f *fakeClient) OnTokens(fn func(a, r string)) { f.onTokens = fn }
