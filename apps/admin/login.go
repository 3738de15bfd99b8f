package main

import (
	"context"
	"fmt"
)

func (cli *commandLine) login(ctx context.Context, email, password string) error {
	usr, err := cli.app.Session.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s <%s> (%s)\n", usr.DisplayName, usr.Email, usr.Role)
	return nil
}

func (cli *commandLine) whoami() error {
	usr, ok := cli.app.Session.Principal()
	if !ok {
		fmt.Println("not signed in")
		return nil
	}
	fmt.Printf("%s <%s> (%s)\n", usr.DisplayName, usr.Email, usr.Role)
	if cli.app.Session.TokenExpired() {
		fmt.Println("note: the session token looks expired; the next call may sign you out")
	}
	return nil
}
