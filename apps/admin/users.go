package main

import (
	"context"
	"fmt"

	"github.com/realangry/schoolweb/core/user"
	"github.com/realangry/schoolweb/manage"
)

func (cli *commandLine) listUsers(ctx context.Context, search, role, sortKey string, desc bool) error {
	if err := cli.app.Users.Load(ctx); err != nil {
		// degraded: the fallback table (when enabled) still renders below
		fmt.Printf("load failed (%s)", err)
		if cli.app.Users.UsingFallback() {
			fmt.Print("; showing locally generated data")
		}
		fmt.Println()
	}

	dir := manage.Ascending
	if desc {
		dir = manage.Descending
	}
	users := cli.app.Users.Users(manage.UserQuery{Search: search, Role: role, SortKey: sortKey, SortDir: dir})

	fmt.Printf("%-38s %-24s %-28s %-8s %s\n", "ID", "NAME", "EMAIL", "ROLE", "DEPARTMENT")
	for _, u := range users {
		fmt.Printf("%-38s %-24s %-28s %-8s %s\n", u.ID, u.DisplayName, u.Email, u.Role, u.Department)
	}
	return nil
}

func (cli *commandLine) addUser(ctx context.Context, name, email, role, dept, pos, phone, pwd string) error {
	if err := cli.app.Users.Load(ctx); err != nil {
		return err
	}
	created, err := cli.app.Users.Create(ctx, user.NewUser{
		DisplayName: name,
		Email:       email,
		Password:    pwd,
		Role:        role,
		Department:  dept,
		Position:    pos,
		Phone:       phone,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s <%s> (%s)\n", created.DisplayName, created.Email, created.ID)
	return nil
}

func (cli *commandLine) deleteUser(ctx context.Context, id string) error {
	if err := cli.app.Users.Load(ctx); err != nil {
		return err
	}
	if !cli.app.Users.CanDelete(id) {
		fmt.Println("this user cannot be deleted")
		return nil
	}
	return cli.app.Users.Delete(ctx, id, func(u user.User) bool {
		return confirm(fmt.Sprintf("delete user %s <%s>?", u.DisplayName, u.Email))
	})
}
