package session

import (
	"context"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"

	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/core/user"
	"github.com/realangry/schoolweb/restapi"
)

// States of the session machine. The only valid transitions are
// ANONYMOUS -> (SignIn success) -> AUTHENTICATED -> (SignOut | 401) -> ANONYMOUS.
const (
	StateAnonymous     = "ANONYMOUS"
	StateAuthenticated = "AUTHENTICATED"
)

// ErrNotAllowed is the client-side authorization guard; the server re-checks
// authoritatively.
var ErrNotAllowed = errors.New("only administrators can create users")

// AuthAPI is the slice of the REST surface the store needs.
type AuthAPI interface {
	Login(ctx context.Context, creds user.Credentials) (restapi.LoginResult, error)
	Register(ctx context.Context, nu user.NewUser) (user.User, error)
	Verify(ctx context.Context) (user.User, error)
}

// Store is the single source of truth for who is logged in and what
// credential to present. The principal and token are set and cleared together
// and replaced wholesale: an in-flight request sees either the old pair or
// the new one, never a half-updated state.
type Store struct {
	auth  AuthAPI
	creds CredentialStore
	log   core.Logger

	mu        sync.RWMutex
	principal *user.User
	token     string
}

func NewStore(auth AuthAPI, creds CredentialStore, log core.Logger) *Store {
	return &Store{auth: auth, creds: creds, log: log}
}

var _ restapi.TokenSource = (*Store)(nil)

// Token implements restapi.TokenSource; "" while anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Principal returns the authenticated user, if any.
func (s *Store) Principal() (user.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal == nil {
		return user.User{}, false
	}
	return *s.principal, true
}

func (s *Store) State() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.principal != nil {
		return StateAuthenticated
	}
	return StateAnonymous
}

// SignIn authenticates and, on success, atomically installs the principal +
// token pair. On any failure the prior state is left untouched; the error is
// one of three disjoint kinds: validation (bad input, no network call made),
// connection (server unreachable) or authentication (bad credentials), with
// server/business errors passing through as themselves.
func (s *Store) SignIn(ctx context.Context, email, password string) (user.User, error) {
	creds := user.Credentials{Email: email, Password: password}
	if err := creds.Validate(); err != nil {
		return user.User{}, err
	}

	res, err := s.auth.Login(ctx, creds)
	if err != nil {
		return user.User{}, err
	}

	s.set(res.User, res.Token)
	return res.User, nil
}

// SignOut clears the principal, token and persisted credentials. Idempotent:
// signing out of an anonymous store is a no-op, not an error.
func (s *Store) SignOut() {
	s.clear()
}

// ForceLogout is the 401 hook: it invalidates the session without a user
// gesture. Safe to call any number of times; only the first call after
// authentication does anything.
func (s *Store) ForceLogout() {
	s.clear()
}

// CreateUser registers a new user on behalf of the current administrator.
// The creator's own session is unaffected by the result.
func (s *Store) CreateUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	principal, ok := s.Principal()
	if !ok || !principal.IsAdmin() {
		return user.User{}, ErrNotAllowed
	}
	if err := nu.Validate(); err != nil {
		return user.User{}, err
	}
	return s.auth.Register(ctx, nu)
}

// Restore reloads a previously persisted session pair, e.g. at startup.
// A missing or incomplete pair leaves the store anonymous.
func (s *Store) Restore() error {
	creds, err := s.creds.Load()
	if err != nil {
		if errors.Is(err, ErrNoCredentials) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	usr := creds.User
	s.principal = &usr
	s.token = creds.Token
	s.mu.Unlock()
	return nil
}

// Verify re-validates a restored session against the server and refreshes
// the principal record. A 401 response ends the session through the
// transport hook before this even returns.
func (s *Store) Verify(ctx context.Context) (user.User, error) {
	if s.State() != StateAuthenticated {
		return user.User{}, core.NewAuthenticationError("not signed in")
	}
	usr, err := s.auth.Verify(ctx)
	if err != nil {
		return user.User{}, err
	}

	s.mu.Lock()
	if s.principal != nil { // may have been force-logged-out meanwhile
		s.principal = &usr
	}
	s.mu.Unlock()
	return usr, nil
}

// TokenExpired peeks at the bearer token's exp claim without verifying the
// signature; a UX hint only, the server stays authoritative.
func (s *Store) TokenExpired() bool {
	token := s.Token()
	if token == "" {
		return true
	}
	claims := jwt.StandardClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, &claims); err != nil {
		return false // opaque token: let the server decide
	}
	if claims.ExpiresAt == 0 {
		return false
	}
	return time.Now().Unix() >= claims.ExpiresAt
}

func (s *Store) set(usr user.User, token string) {
	s.mu.Lock()
	s.principal = &usr
	s.token = token
	s.mu.Unlock()

	if err := s.creds.Save(Credentials{Token: token, User: usr}); err != nil && s.log != nil {
		// the in-memory session stands; persistence is best effort
		s.log.Warn("session: persisting credentials failed", err)
	}
}

func (s *Store) clear() {
	s.mu.Lock()
	wasAnonymous := s.principal == nil && s.token == ""
	s.principal = nil
	s.token = ""
	s.mu.Unlock()

	if wasAnonymous {
		return
	}
	if err := s.creds.Clear(); err != nil && s.log != nil {
		s.log.Warn("session: clearing credentials failed", err)
	}
}
