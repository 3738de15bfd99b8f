package main

import (
	"path/filepath"
	"testing"

	"github.com/realangry/schoolweb"
	"github.com/realangry/schoolweb/core"
	testutil "github.com/realangry/schoolweb/tests"
)

func setup(t *testing.T, baseURL string) *commandLine {
	t.Helper()
	conf := &core.Config{
		Env:                 "TEST",
		APIBaseURL:          baseURL,
		CredentialsFile:     filepath.Join(t.TempDir(), "credentials.json"),
		FallbackOnLoadError: true,
	}
	app, err := schoolweb.New(conf, nil, nil)
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}
	return &commandLine{app: app}
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
}

func Test_commandLine_help(t *testing.T) {
	cli := setup(t, "http://127.0.0.1:1/api")

	tests := []cliTest{
		{name: "no subcommand", args: []string{}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"lol"}, wantErr: errHelp},
		{name: "login: no email", args: []string{"login"}, wantErr: errHelp},
		{name: "adduser: missing flags", args: []string{"adduser", "-name", "A B"}, wantErr: errHelp},
		{name: "deluser: no id", args: []string{"deluser"}, wantErr: errHelp},
		{name: "addstudent: missing flags", args: []string{"addstudent", "-name", "A B"}, wantErr: errHelp},
		{name: "delstudent: no id", args: []string{"delstudent"}, wantErr: errHelp},
		{name: "export: no id", args: []string{"export"}, wantErr: errHelp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(append([]string{"admin"}, tt.args...))
			if err != tt.wantErr {
				t.Errorf("run() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_loginAndListing(t *testing.T) {
	srv := testutil.NewServer(t)
	cli := setup(t, srv.BaseURL())

	origReadPassword := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(testutil.AdminPassword), nil }
	defer func() { readPasswordFunc = origReadPassword }()

	if err := cli.run([]string{"admin", "login", "-email", testutil.AdminEmail}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if err := cli.run([]string{"admin", "whoami"}); err != nil {
		t.Fatalf("whoami failed: %v", err)
	}
	if err := cli.run([]string{"admin", "users", "-role", "teacher", "-sort", "email"}); err != nil {
		t.Fatalf("users failed: %v", err)
	}
	if err := cli.run([]string{"admin", "students", "-class", "8"}); err != nil {
		t.Fatalf("students failed: %v", err)
	}
	if err := cli.run([]string{"admin", "export", "-id", "STU0001", "-format", "excel", "-dir", t.TempDir()}); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if err := cli.run([]string{"admin", "logout"}); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
}

func Test_commandLine_offlineListingDegrades(t *testing.T) {
	cli := setup(t, "http://127.0.0.1:1/api")

	// the table still renders from generated data; no error bubbles up
	if err := cli.run([]string{"admin", "students"}); err != nil {
		t.Fatalf("offline students listing failed: %v", err)
	}
}
