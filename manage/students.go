package manage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/core/student"
	"github.com/realangry/schoolweb/restapi"
)

// StudentsAPI is the slice of the REST surface the student screen needs.
type StudentsAPI interface {
	List(ctx context.Context) ([]student.Student, error)
	Create(ctx context.Context, ns student.NewStudent) (student.Student, error)
	Update(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error)
	Delete(ctx context.Context, id string) error
}

// ExportAPI produces binary exports for client-side download.
type ExportAPI interface {
	StudentData(ctx context.Context, studentID, format string) ([]byte, error)
}

// StudentQuery is the student screen's client-side filter state.
type StudentQuery struct {
	Search  string
	Class   string
	Section string
	Status  string
	SortKey string // name | class | rollNumber | status
	SortDir string // asc (default) | desc
}

// StudentManager runs the student administration screen's list protocol.
type StudentManager struct {
	col    *collection[student.Student]
	api    StudentsAPI
	export ExportAPI
	notify ErrorNotifier
	log    core.Logger

	fallbackOnLoadError bool
}

func NewStudentManager(api StudentsAPI, export ExportAPI, conf *core.Config, notify ErrorNotifier, log core.Logger) *StudentManager {
	return &StudentManager{
		col:                 newCollection(func(s student.Student) string { return s.ID }),
		api:                 api,
		export:              export,
		notify:              notify,
		log:                 log,
		fallbackOnLoadError: conf.FallbackOnLoadError,
	}
}

// Load fetches the full collection; on failure the table degrades to the
// generated dataset (policy permitting) instead of blanking, with the error
// still surfaced.
func (m *StudentManager) Load(ctx context.Context) error {
	gen := m.col.beginLoad()
	students, err := m.api.List(ctx)
	var fallback func() []student.Student
	if m.fallbackOnLoadError {
		fallback = student.Fallback
	}
	m.col.finishLoad(gen, students, err, fallback)
	if err != nil && m.log != nil {
		m.log.Warn("students: load failed", err)
	}
	return err
}

// Students applies the query to the in-memory collection and returns the
// rows to render.
func (m *StudentManager) Students(q StudentQuery) []student.Student {
	students := m.col.snapshot()

	filtered := students[:0:0]
	for _, s := range students {
		if q.Class != "" && s.Class != q.Class {
			continue
		}
		if q.Section != "" && s.Section != q.Section {
			continue
		}
		if q.Status != "" && s.Status != q.Status {
			continue
		}
		if !matchesSearch(q.Search, s.Name, s.RollNumber, s.FatherName, s.Email) {
			continue
		}
		filtered = append(filtered, s)
	}

	sortBy(filtered, studentSortKey(q.SortKey), q.SortDir)
	return filtered
}

func studentSortKey(key string) func(student.Student) string {
	switch key {
	case "name":
		return func(s student.Student) string { return s.Name }
	case "class":
		return func(s student.Student) string { return s.Class }
	case "rollNumber":
		return func(s student.Student) string { return s.RollNumber }
	case "status":
		return func(s student.Student) string { return s.Status }
	}
	return nil
}

// Create admits a student and prepends the confirmed record.
func (m *StudentManager) Create(ctx context.Context, ns student.NewStudent) (student.Student, error) {
	if err := ns.Validate(); err != nil {
		return student.Student{}, m.fail(err)
	}

	gen := m.col.beginSubmit()
	defer m.col.endSubmit()

	// placeholder data never reaches the server: mutations stay local until a
	// real fetch replaces the list
	if m.col.usingFallback() {
		created := ns.Record(uuid.NewString())
		m.col.prepend(gen, created)
		return created, nil
	}

	created, err := m.api.Create(ctx, ns)
	if err != nil {
		return student.Student{}, m.fail(err)
	}
	m.col.prepend(gen, created)
	return created, nil
}

// Update edits one student and replaces the matching local record by
// identifier.
func (m *StudentManager) Update(ctx context.Context, id string, us student.UpdateStudent) (student.Student, error) {
	orig, ok := m.col.find(id)
	if !ok {
		return student.Student{}, m.fail(core.NewServerError(0, "student not found"))
	}
	if err := us.Validate(orig); err != nil {
		return student.Student{}, m.fail(err)
	}

	gen := m.col.beginSubmit()
	defer m.col.endSubmit()

	if m.col.usingFallback() {
		updated := us.Apply(orig)
		m.col.replace(gen, updated)
		return updated, nil
	}

	updated, err := m.api.Update(ctx, id, us)
	if err != nil {
		return student.Student{}, m.fail(err)
	}
	m.col.replace(gen, updated)
	return updated, nil
}

// CanDelete reports whether the delete control is rendered for a row; an
// already-removed identifier simply has no control anymore.
func (m *StudentManager) CanDelete(id string) bool {
	_, ok := m.col.find(id)
	return ok
}

// Delete removes one student after interactive confirmation.
func (m *StudentManager) Delete(ctx context.Context, id string, confirm func(student.Student) bool) error {
	s, ok := m.col.find(id)
	if !ok {
		return nil
	}
	if confirm != nil && !confirm(s) {
		return nil
	}

	gen := m.col.beginSubmit()
	defer m.col.endSubmit()

	if m.col.usingFallback() {
		m.col.remove(gen, id)
		return nil
	}

	if err := m.api.Delete(ctx, id); err != nil {
		return m.fail(err)
	}
	m.col.remove(gen, id)
	return nil
}

// ExportStudent downloads one student's export into dir and returns the
// written path, named {resource}-data-{ISO-date} with the format's
// extension. A half-written file is removed, never left behind.
func (m *StudentManager) ExportStudent(ctx context.Context, id, format, dir string) (string, error) {
	m.col.beginSubmit()
	defer m.col.endSubmit()

	data, err := m.export.StudentData(ctx, id, format)
	if err != nil {
		return "", m.fail(err)
	}

	name := fmt.Sprintf("students-data-%s.%s", time.Now().Format("2006-01-02"), exportExt(format))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return "", m.fail(err)
	}
	return path, nil
}

func exportExt(format string) string {
	if format == restapi.FormatExcel {
		return "xlsx"
	}
	return format
}

func (m *StudentManager) LoadError() error    { return m.col.loadError() }
func (m *StudentManager) UsingFallback() bool { return m.col.usingFallback() }
func (m *StudentManager) Submitting() bool    { return m.col.isSubmitting() }
func (m *StudentManager) Close()              { m.col.close() }

func (m *StudentManager) fail(err error) error {
	if m.notify != nil {
		m.notify(err.Error())
	}
	return err
}
