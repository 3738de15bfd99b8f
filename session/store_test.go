package session_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/core/user"
	"github.com/realangry/schoolweb/restapi"
	"github.com/realangry/schoolweb/session"
	testutil "github.com/realangry/schoolweb/tests"
)

// setup wires a store against the fake backend the way the app composes
// them: the store supplies the token, the 401 hook forces it out.
func setup(t *testing.T, baseURL string) (*session.Store, session.CredentialStore) {
	t.Helper()

	var store *session.Store
	client, err := restapi.NewClient(&restapi.Options{
		BaseURL: baseURL,
		Tokens:  restapi.TokenSourceFunc(func() string { return store.Token() }),
		OnUnauthorized: func() {
			store.ForceLogout()
		},
	})
	require.NoError(t, err)

	creds := session.NewMemStore()
	store = session.NewStore(client.Auth, creds, nil)
	return store, creds
}

func Test_Store_signInSuccess(t *testing.T) {
	srv := testutil.NewServer(t)
	store, creds := setup(t, srv.BaseURL())
	ctx := context.Background()

	assert.Equal(t, session.StateAnonymous, store.State())

	usr, err := store.SignIn(ctx, testutil.AdminEmail, testutil.AdminPassword)
	require.NoError(t, err)
	assert.Equal(t, testutil.AdminEmail, usr.Email)
	assert.Equal(t, session.StateAuthenticated, store.State())

	// principal and token are paired
	principal, ok := store.Principal()
	assert.True(t, ok)
	assert.Equal(t, usr.ID, principal.ID)
	assert.NotEmpty(t, store.Token())

	// and persisted together
	saved, err := creds.Load()
	require.NoError(t, err)
	assert.Equal(t, store.Token(), saved.Token)
	assert.Equal(t, usr.ID, saved.User.ID)
}

func Test_Store_signInFailures(t *testing.T) {
	srv := testutil.NewServer(t)

	dead := httptest.NewServer(nil)
	dead.Close()

	tests := []struct {
		name    string
		baseURL string
		email   string
		pwd     string
		check   func(t *testing.T, err error)
	}{
		{
			name: "authentication failure", baseURL: srv.BaseURL(), email: testutil.AdminEmail, pwd: "nope",
			check: func(t *testing.T, err error) {
				assert.True(t, core.IsAuthenticationError(err), "got %T: %v", err, err)
			},
		},
		{
			name: "connection failure", baseURL: dead.URL + "/api", email: testutil.AdminEmail, pwd: testutil.AdminPassword,
			check: func(t *testing.T, err error) {
				assert.True(t, core.IsConnectionError(err), "got %T: %v", err, err)
			},
		},
		{
			name: "validation failure", baseURL: srv.BaseURL(), email: "not-an-email", pwd: "x",
			check: func(t *testing.T, err error) {
				var vErrs validator.ValidationErrors
				assert.ErrorAs(t, err, &vErrs, "validation failures never reach the network")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := setup(t, tt.baseURL)
			_, err := store.SignIn(context.Background(), tt.email, tt.pwd)
			require.Error(t, err)
			tt.check(t, err)

			// a failed SignIn keeps the machine in ANONYMOUS
			assert.Equal(t, session.StateAnonymous, store.State())
			assert.Empty(t, store.Token())
		})
	}
}

func Test_Store_signOutIdempotent(t *testing.T) {
	srv := testutil.NewServer(t)
	store, creds := setup(t, srv.BaseURL())
	ctx := context.Background()

	// signing out with no session is a no-op, not an error
	store.SignOut()
	assert.Equal(t, session.StateAnonymous, store.State())

	_, err := store.SignIn(ctx, testutil.AdminEmail, testutil.AdminPassword)
	require.NoError(t, err)

	store.SignOut()
	store.SignOut()

	// principal == nil <=> token == ""
	_, ok := store.Principal()
	assert.False(t, ok)
	assert.Empty(t, store.Token())
	_, err = creds.Load()
	assert.ErrorIs(t, err, session.ErrNoCredentials)
}

func Test_Store_forceLogoutOn401(t *testing.T) {
	srv := testutil.NewServer(t)
	store, _ := setup(t, srv.BaseURL())
	ctx := context.Background()

	_, err := store.SignIn(ctx, testutil.AdminEmail, testutil.AdminPassword)
	require.NoError(t, err)

	// corrupt the persisted pair: a bogus token on the next restore makes
	// the first authorized call come back 401 and end the session
	require.NoError(t, store.Restore())
	store2, creds2 := setup(t, srv.BaseURL())
	require.NoError(t, creds2.Save(session.Credentials{Token: "garbage", User: srv.Admin()}))
	require.NoError(t, store2.Restore())
	assert.Equal(t, session.StateAuthenticated, store2.State())

	_, err = store2.Verify(ctx)
	require.Error(t, err)
	assert.True(t, core.IsAuthenticationError(err))
	assert.Equal(t, session.StateAnonymous, store2.State(), "401 forces exactly one logout")
}

func Test_Store_createUser(t *testing.T) {
	srv := testutil.NewServer(t)
	ctx := context.Background()

	nu := user.NewUser{
		DisplayName: "New Teacher",
		Email:       "new.teacher@hmps.edu",
		Password:    "teach123",
		Role:        user.RoleTeacher,
	}

	t.Run("anonymous is not allowed", func(t *testing.T) {
		store, _ := setup(t, srv.BaseURL())
		_, err := store.CreateUser(ctx, nu)
		assert.ErrorIs(t, err, session.ErrNotAllowed)
	})

	t.Run("admin creates; own session unaffected", func(t *testing.T) {
		store, _ := setup(t, srv.BaseURL())
		admin, err := store.SignIn(ctx, testutil.AdminEmail, testutil.AdminPassword)
		require.NoError(t, err)

		created, err := store.CreateUser(ctx, nu)
		require.NoError(t, err)
		assert.Equal(t, nu.Email, created.Email)
		assert.NotEmpty(t, created.ID)

		principal, ok := store.Principal()
		assert.True(t, ok)
		assert.Equal(t, admin.ID, principal.ID)
	})
}

func Test_Store_restore(t *testing.T) {
	srv := testutil.NewServer(t)

	t.Run("nothing persisted", func(t *testing.T) {
		store, _ := setup(t, srv.BaseURL())
		require.NoError(t, store.Restore())
		assert.Equal(t, session.StateAnonymous, store.State())
	})

	t.Run("half a pair is treated as absent", func(t *testing.T) {
		store, creds := setup(t, srv.BaseURL())
		require.NoError(t, creds.Save(session.Credentials{Token: "lonely-token"}))
		require.NoError(t, store.Restore())
		assert.Equal(t, session.StateAnonymous, store.State())
		assert.Empty(t, store.Token())
	})

	t.Run("complete pair restores", func(t *testing.T) {
		store, creds := setup(t, srv.BaseURL())
		admin := srv.Admin()
		require.NoError(t, creds.Save(session.Credentials{Token: srv.Token(t, admin), User: admin}))
		require.NoError(t, store.Restore())
		assert.Equal(t, session.StateAuthenticated, store.State())

		refreshed, err := store.Verify(context.Background())
		require.NoError(t, err)
		assert.Equal(t, admin.ID, refreshed.ID)
	})
}

func Test_Store_tokenExpired(t *testing.T) {
	srv := testutil.NewServer(t)
	store, creds := setup(t, srv.BaseURL())

	// fresh fixture tokens are good for days
	admin := srv.Admin()
	require.NoError(t, creds.Save(session.Credentials{Token: srv.Token(t, admin), User: admin}))
	require.NoError(t, store.Restore())
	assert.False(t, store.TokenExpired())

	// an exp in the past reads as expired
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   admin.ID,
		ExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)

	store.SignOut()
	require.NoError(t, creds.Save(session.Credentials{Token: expired, User: admin}))
	require.NoError(t, store.Restore())
	assert.True(t, store.TokenExpired())
}
