package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/realangry/schoolweb"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	confirmInput     = os.Stdin          // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	app *schoolweb.App
}

func (cli *commandLine) printUsage() {
	if conf := cli.app.Conf; conf.AppName != "" {
		fmt.Printf("%s admin console (build %s)\n", conf.AppName, conf.Build)
	}
	fmt.Println("Usage:")
	fmt.Println("  login -email EMAIL                          - sign in (password prompted)")
	fmt.Println("  whoami                                      - show the signed-in principal")
	fmt.Println("  logout                                      - sign out and clear credentials")
	fmt.Println("  users [-search TERM] [-role ROLE] [-sort KEY] [-desc]")
	fmt.Println("  adduser -name NAME -email EMAIL -role ROLE  - register a user (password prompted)")
	fmt.Println("  deluser -id ID                              - delete a user (confirmed)")
	fmt.Println("  students [-search TERM] [-class CLASS] [-section SECTION] [-status STATUS]")
	fmt.Println("  addstudent -name NAME -class CLASS -roll N  - admit a student")
	fmt.Println("  delstudent -id ID                           - delete a student (confirmed)")
	fmt.Println("  export -id ID [-format pdf|excel] [-dir DIR]")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	ctx := context.Background()

	switch args[1] {
	case "login":
		cmd := flag.NewFlagSet("login", flag.ExitOnError)
		email := cmd.String("email", "", "The account's email. The password will be prompted next.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *email == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		return cli.login(ctx, *email, pwd)

	case "whoami":
		return cli.whoami()

	case "logout":
		cli.app.Session.SignOut()
		fmt.Println("signed out")
		return nil

	case "users":
		cmd := flag.NewFlagSet("users", flag.ExitOnError)
		search := cmd.String("search", "", "Case-insensitive search term.")
		role := cmd.String("role", "", "Filter by role: admin, teacher or staff.")
		sortKey := cmd.String("sort", "displayName", "Sort key: displayName, email, role or department.")
		desc := cmd.Bool("desc", false, "Sort descending.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listUsers(ctx, *search, *role, *sortKey, *desc)

	case "adduser":
		cmd := flag.NewFlagSet("adduser", flag.ExitOnError)
		name := cmd.String("name", "", "The user's display name.")
		email := cmd.String("email", "", "The user's email.")
		role := cmd.String("role", "", "One of: admin, teacher, staff.")
		dept := cmd.String("department", "", "Optional department.")
		pos := cmd.String("position", "", "Optional position.")
		phone := cmd.String("phone", "", "Optional phone number.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *name == "" || *email == "" || *role == "" {
			cmd.Usage()
			return errHelp
		}
		pwd, err := promptPassword()
		if err != nil {
			return err
		}
		return cli.addUser(ctx, *name, *email, *role, *dept, *pos, *phone, pwd)

	case "deluser":
		cmd := flag.NewFlagSet("deluser", flag.ExitOnError)
		id := cmd.String("id", "", "The user's identifier.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.deleteUser(ctx, *id)

	case "students":
		cmd := flag.NewFlagSet("students", flag.ExitOnError)
		search := cmd.String("search", "", "Case-insensitive search term.")
		class := cmd.String("class", "", "Filter by class.")
		section := cmd.String("section", "", "Filter by section.")
		status := cmd.String("status", "", "Filter by status: active or inactive.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.listStudents(ctx, *search, *class, *section, *status)

	case "addstudent":
		cmd := flag.NewFlagSet("addstudent", flag.ExitOnError)
		name := cmd.String("name", "", "The student's full name.")
		class := cmd.String("class", "", "The student's class.")
		roll := cmd.String("roll", "", "The student's roll number.")
		section := cmd.String("section", "", "Optional section.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *name == "" || *class == "" || *roll == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.addStudent(ctx, *name, *class, *roll, *section)

	case "delstudent":
		cmd := flag.NewFlagSet("delstudent", flag.ExitOnError)
		id := cmd.String("id", "", "The student's identifier.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.deleteStudent(ctx, *id)

	case "export":
		cmd := flag.NewFlagSet("export", flag.ExitOnError)
		id := cmd.String("id", "", "The student's identifier.")
		format := cmd.String("format", "pdf", "Export format: pdf or excel.")
		dir := cmd.String("dir", ".", "Directory to write the export into.")
		if err := cmd.Parse(args[2:]); err != nil {
			return err
		}
		if *id == "" {
			cmd.Usage()
			return errHelp
		}
		return cli.exportStudent(ctx, *id, *format, *dir)

	default:
		cli.printUsage()
		return errHelp
	}
}

func promptPassword() (string, error) {
	fmt.Print("Enter password:")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errHelp
	}
	return string(pwd), nil
}

// confirm asks a y/N question on stdin.
func confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	reader := bufio.NewReader(confirmInput)
	answer, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
