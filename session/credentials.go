package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/realangry/schoolweb/core/user"
)

// ErrNoCredentials is returned by CredentialStore.Load when nothing (usable)
// is persisted.
var ErrNoCredentials = errors.New("no persisted credentials")

// Credentials is the persisted principal + token pair. The two halves are
// only ever written and cleared together; a record missing either half is
// treated as absent.
type Credentials struct {
	Token string    `json:"token"`
	User  user.User `json:"user"`
}

func (c Credentials) complete() bool {
	return c.Token != "" && c.User.ID != ""
}

// CredentialStore persists the session pair between page sessions.
type CredentialStore interface {
	Load() (Credentials, error)
	Save(Credentials) error
	Clear() error
}

// fileStore keeps the pair in a single JSON file, the local-storage analog.
type fileStore struct {
	path string
}

func NewFileStore(path string) CredentialStore {
	return &fileStore{path: path}
}

func (fs *fileStore) Load() (Credentials, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNoCredentials
		}
		return Credentials{}, errors.Wrap(err, "session: reading credentials")
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil || !creds.complete() {
		// unreadable or half a pair: treat as absent and scrub it
		_ = fs.Clear()
		return Credentials{}, ErrNoCredentials
	}
	return creds, nil
}

func (fs *fileStore) Save(creds Credentials) error {
	data, err := json.Marshal(creds)
	if err != nil {
		return errors.Wrap(err, "session: encoding credentials")
	}
	if err := os.MkdirAll(filepath.Dir(fs.path), 0o700); err != nil {
		return errors.Wrap(err, "session: creating credentials dir")
	}
	return errors.Wrap(os.WriteFile(fs.path, data, 0o600), "session: writing credentials")
}

func (fs *fileStore) Clear() error {
	if err := os.Remove(fs.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "session: clearing credentials")
	}
	return nil
}

// memStore holds the pair in memory only; used in tests and when persistence
// is not wanted.
type memStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

func NewMemStore() CredentialStore {
	return &memStore{}
}

func (ms *memStore) Load() (Credentials, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if !ms.set || !ms.creds.complete() {
		return Credentials{}, ErrNoCredentials
	}
	return ms.creds, nil
}

func (ms *memStore) Save(creds Credentials) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = creds
	ms.set = true
	return nil
}

func (ms *memStore) Clear() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.creds = Credentials{}
	ms.set = false
	return nil
}
