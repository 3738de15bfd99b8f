package main

import (
	"context"
	"fmt"

	"github.com/realangry/schoolweb/core/student"
	"github.com/realangry/schoolweb/manage"
)

func (cli *commandLine) listStudents(ctx context.Context, search, class, section, status string) error {
	if err := cli.app.Students.Load(ctx); err != nil {
		fmt.Printf("load failed (%s)", err)
		if cli.app.Students.UsingFallback() {
			fmt.Print("; showing locally generated data")
		}
		fmt.Println()
	}

	students := cli.app.Students.Students(manage.StudentQuery{
		Search:  search,
		Class:   class,
		Section: section,
		Status:  status,
		SortKey: "name",
	})

	fmt.Printf("%-10s %-24s %-6s %-8s %-6s %s\n", "ID", "NAME", "CLASS", "SECTION", "ROLL", "STATUS")
	for _, s := range students {
		fmt.Printf("%-10s %-24s %-6s %-8s %-6s %s\n", s.ID, s.Name, s.Class, s.Section, s.RollNumber, s.Status)
	}
	return nil
}

func (cli *commandLine) addStudent(ctx context.Context, name, class, roll, section string) error {
	if err := cli.app.Students.Load(ctx); err != nil {
		return err
	}
	created, err := cli.app.Students.Create(ctx, student.NewStudent{
		Name:       name,
		Class:      class,
		RollNumber: roll,
		Section:    section,
	})
	if err != nil {
		return err
	}
	fmt.Printf("admitted %s (%s)\n", created.Name, created.ID)
	return nil
}

func (cli *commandLine) deleteStudent(ctx context.Context, id string) error {
	if err := cli.app.Students.Load(ctx); err != nil {
		return err
	}
	return cli.app.Students.Delete(ctx, id, func(s student.Student) bool {
		return confirm(fmt.Sprintf("delete student %s (%s)?", s.Name, s.ID))
	})
}

func (cli *commandLine) exportStudent(ctx context.Context, id, format, dir string) error {
	path, err := cli.app.Students.ExportStudent(ctx, id, format, dir)
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", path)
	return nil
}
