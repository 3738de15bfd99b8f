package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/realangry/schoolweb/core/user"
)

func Test_fileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	fs := NewFileStore(path)

	if _, err := fs.Load(); err != ErrNoCredentials {
		t.Fatalf("Load() on empty store: got %v, want ErrNoCredentials", err)
	}

	creds := Credentials{
		Token: "tok-123",
		User:  user.User{ID: "u1", DisplayName: "Admin User", Email: "admin@hmps.edu", Role: user.RoleAdmin},
	}
	if err := fs.Save(creds); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := fs.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if got.Token != creds.Token || got.User.ID != creds.User.ID {
		t.Errorf("Load() = %+v, want %+v", got, creds)
	}

	if err := fs.Clear(); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	if _, err := fs.Load(); err != ErrNoCredentials {
		t.Errorf("Load() after Clear(): got %v, want ErrNoCredentials", err)
	}
	// clearing twice is fine
	if err := fs.Clear(); err != nil {
		t.Errorf("second Clear() failed: %v", err)
	}
}

func Test_fileStore_scrubsBrokenRecords(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "corrupt json", data: "{not json"},
		{name: "missing token", data: `{"user":{"id":"u1","email":"a@b.cd"}}`},
		{name: "missing user", data: `{"token":"tok-123"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "credentials.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o600); err != nil {
				t.Fatal(err)
			}

			fs := NewFileStore(path)
			if _, err := fs.Load(); err != ErrNoCredentials {
				t.Fatalf("Load() = %v, want ErrNoCredentials", err)
			}
			// the unusable record is gone
			if _, err := os.Stat(path); !os.IsNotExist(err) {
				t.Errorf("broken credentials file was not scrubbed")
			}
		})
	}
}
