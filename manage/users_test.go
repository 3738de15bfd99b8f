package manage

import (
	"context"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/core/user"
)

type usersAPIStub struct {
	users     []user.User
	listErr   error
	createErr error
	deleteErr error
	calls     map[string]int
}

func newUsersAPIStub(users ...user.User) *usersAPIStub {
	return &usersAPIStub{users: users, calls: make(map[string]int)}
}

func (s *usersAPIStub) List(context.Context) ([]user.User, error) {
	s.calls["list"]++
	if s.listErr != nil {
		return nil, s.listErr
	}
	return append([]user.User(nil), s.users...), nil
}

func (s *usersAPIStub) Create(_ context.Context, nu user.NewUser) (user.User, error) {
	s.calls["create"]++
	if s.createErr != nil {
		return user.User{}, s.createErr
	}
	return user.User{ID: "created-" + nu.Email, DisplayName: nu.DisplayName, Email: nu.Email, Role: nu.Role}, nil
}

func (s *usersAPIStub) Update(_ context.Context, id string, uu user.UpdateUser) (user.User, error) {
	s.calls["update"]++
	return user.User{ID: id, DisplayName: uu.DisplayName, Email: uu.Email, Role: uu.Role}, nil
}

func (s *usersAPIStub) Delete(context.Context, string) error {
	s.calls["delete"]++
	return s.deleteErr
}

type principalStub struct {
	usr user.User
	ok  bool
}

func (p principalStub) Principal() (user.User, bool) { return p.usr, p.ok }

func testConf(fallback bool) *core.Config {
	return &core.Config{FallbackOnLoadError: fallback}
}

func seedUsers() []user.User {
	return []user.User{
		{ID: "u1", DisplayName: "Admin User", Email: "admin@hmps.edu", Role: user.RoleAdmin},
		{ID: "u2", DisplayName: "Asha Teacher", Email: "asha@hmps.edu", Role: user.RoleTeacher, Department: "Science"},
		{ID: "u3", DisplayName: "Mohan Lal", Email: "mohan@hmps.edu", Role: user.RoleStaff, Department: "Office"},
	}
}

func adminPrincipal() principalStub {
	return principalStub{usr: seedUsers()[0], ok: true}
}

func Test_UserManager_loadFallback(t *testing.T) {
	api := newUsersAPIStub()
	api.listErr = errors.New("boom")

	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)

	err := m.Load(context.Background())
	if err == nil {
		t.Fatal("Load() should report the failure")
	}
	if m.LoadError() == nil {
		t.Error("load error must stay visible")
	}
	if !m.UsingFallback() {
		t.Error("fallback dataset should be active")
	}
	if got := len(m.Users(UserQuery{})); got == 0 {
		t.Error("degraded table must not be empty")
	}

	// policy off: empty list, error only
	m2 := NewUserManager(api, adminPrincipal(), testConf(false), nil, nil)
	_ = m2.Load(context.Background())
	if got := len(m2.Users(UserQuery{})); got != 0 {
		t.Errorf("fallback disabled: got %d rows, want 0", got)
	}
}

func Test_UserManager_filterIsPure(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	q := UserQuery{Search: "hmps", Role: user.RoleTeacher, SortKey: "email"}
	first := m.Users(q)
	second := m.Users(q)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical queries must return identical results")
	}
	if api.calls["list"] != 1 {
		t.Errorf("filtering must not trigger network calls; list called %d times", api.calls["list"])
	}
	if len(first) != 1 || first[0].ID != "u2" {
		t.Errorf("filter result = %+v", first)
	}

	// mutating a result must not leak into the collection
	first[0].DisplayName = "mutated"
	if m.Users(q)[0].DisplayName == "mutated" {
		t.Error("query results must be snapshots")
	}
}

func Test_UserManager_createDuplicateEmailIsLocal(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	var notices []string
	m := NewUserManager(api, adminPrincipal(), testConf(true), func(msg string) { notices = append(notices, msg) }, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := m.Create(context.Background(), user.NewUser{
		DisplayName: "Dup",
		Email:       "asha@hmps.edu",
		Password:    "secret1",
		Role:        user.RoleTeacher,
	})
	if err == nil {
		t.Fatal("duplicate email must be rejected")
	}
	if !core.IsValidationError(err) {
		t.Errorf("want ValidationError, got %T", err)
	}
	if err.Error() != "a user with this email already exists" {
		t.Errorf("message = %q", err.Error())
	}
	if api.calls["create"] != 0 {
		t.Error("rejection must happen before any network call")
	}
	if len(notices) != 1 {
		t.Errorf("failed mutation must notify once; got %d", len(notices))
	}
}

func Test_UserManager_fallbackMutationsStayLocal(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	api.listErr = errors.New("boom")
	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)
	ctx := context.Background()

	_ = m.Load(ctx)
	if !m.UsingFallback() {
		t.Fatal("fallback dataset should be active")
	}

	// a placeholder identifier must never reach the server
	if err := m.Delete(ctx, "mohan.lal@hmps.edu", func(user.User) bool { return true }); err != nil {
		t.Fatal(err)
	}
	if api.calls["delete"] != 0 {
		t.Errorf("placeholder delete dispatched %d times, want 0", api.calls["delete"])
	}
	for _, r := range m.Users(UserQuery{}) {
		if r.ID == "mohan.lal@hmps.edu" {
			t.Error("placeholder row still present after local delete")
		}
	}

	// edits apply locally over the placeholder record
	updated, err := m.Update(ctx, "sunita.devi@hmps.edu", user.UpdateUser{Department: "Physics"})
	if err != nil {
		t.Fatal(err)
	}
	if api.calls["update"] != 0 {
		t.Errorf("placeholder update dispatched %d times, want 0", api.calls["update"])
	}
	if updated.Department != "Physics" || updated.DisplayName != "Sunita Devi" {
		t.Errorf("local update = %+v", updated)
	}

	// registrations are prepended locally under a fresh identifier
	created, err := m.Create(ctx, user.NewUser{
		DisplayName: "Local Only",
		Email:       "local@hmps.edu",
		Password:    "secret1",
		Role:        user.RoleStaff,
	})
	if err != nil {
		t.Fatal(err)
	}
	if api.calls["create"] != 0 {
		t.Errorf("placeholder create dispatched %d times, want 0", api.calls["create"])
	}
	if rows := m.Users(UserQuery{}); rows[0].ID != created.ID || created.ID == "" {
		t.Errorf("created record should be first; got %+v", rows[0])
	}

	// a successful fetch replaces the list; mutations go live again
	api.listErr = nil
	if err := m.Load(ctx); err != nil {
		t.Fatal(err)
	}
	if m.UsingFallback() {
		t.Fatal("fallback must clear after a real fetch")
	}
	if err := m.Delete(ctx, "u2", func(user.User) bool { return true }); err != nil {
		t.Fatal(err)
	}
	if api.calls["delete"] != 1 {
		t.Errorf("live delete dispatched %d times, want 1", api.calls["delete"])
	}
}

func Test_UserManager_createPrependsOnSuccess(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	created, err := m.Create(context.Background(), user.NewUser{
		DisplayName: "New Staff",
		Email:       "new@hmps.edu",
		Password:    "secret1",
		Role:        user.RoleStaff,
	})
	if err != nil {
		t.Fatal(err)
	}

	rows := m.Users(UserQuery{})
	if rows[0].ID != created.ID {
		t.Errorf("created record should be first; got %+v", rows[0])
	}
	if len(rows) != 4 {
		t.Errorf("row count = %d, want 4", len(rows))
	}
	if m.Submitting() {
		t.Error("submitting flag stuck after success")
	}
}

func Test_UserManager_createFailureLeavesStateUntouched(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	api.createErr = core.NewServerError(409, "a user with this email already exists")

	var notices []string
	m := NewUserManager(api, adminPrincipal(), testConf(true), func(msg string) { notices = append(notices, msg) }, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	before := m.Users(UserQuery{})

	_, err := m.Create(context.Background(), user.NewUser{
		DisplayName: "Other",
		Email:       "other@hmps.edu",
		Password:    "secret1",
		Role:        user.RoleStaff,
	})
	if err == nil {
		t.Fatal("server failure must propagate")
	}
	if !reflect.DeepEqual(before, m.Users(UserQuery{})) {
		t.Error("failed create must not touch local state")
	}
	// the server's message comes through verbatim
	if len(notices) != 1 || notices[0] != "a user with this email already exists" {
		t.Errorf("notices = %v", notices)
	}
	if m.Submitting() {
		t.Error("submitting flag stuck after failure")
	}
}

func Test_UserManager_updateReplacesById(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	_, err := m.Update(context.Background(), "u3", user.UpdateUser{DisplayName: "Mohan L."})
	if err != nil {
		t.Fatal(err)
	}

	rows := m.Users(UserQuery{})
	if len(rows) != 3 {
		t.Fatalf("update must not change row count; got %d", len(rows))
	}
	for _, r := range rows {
		if r.ID == "u3" && r.DisplayName != "Mohan L." {
			t.Errorf("u3 not replaced: %+v", r)
		}
	}
	if api.calls["list"] != 1 {
		t.Error("an edit must not re-fetch the collection")
	}
}

func Test_UserManager_deleteGuards(t *testing.T) {
	api := newUsersAPIStub(seedUsers()...)
	m := NewUserManager(api, adminPrincipal(), testConf(true), nil, nil)
	if err := m.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	// the signed-in admin cannot delete their own entry: disabled, not just discouraged
	if m.CanDelete("u1") {
		t.Error("self-delete must be disabled for the signed-in admin")
	}
	if err := m.Delete(ctx, "u1", func(user.User) bool { return true }); err != nil {
		t.Fatal(err)
	}
	if api.calls["delete"] != 0 {
		t.Error("guarded delete must not dispatch")
	}

	// declining the confirmation is a quiet no-op
	if err := m.Delete(ctx, "u2", func(user.User) bool { return false }); err != nil {
		t.Fatal(err)
	}
	if api.calls["delete"] != 0 {
		t.Error("declined delete must not dispatch")
	}

	// a confirmed delete removes exactly the one record
	if err := m.Delete(ctx, "u2", func(user.User) bool { return true }); err != nil {
		t.Fatal(err)
	}
	rows := m.Users(UserQuery{})
	if len(rows) != 2 {
		t.Fatalf("row count = %d, want 2", len(rows))
	}
	for _, r := range rows {
		if r.ID == "u2" {
			t.Error("u2 still present after delete")
		}
	}

	// the control is gone for a removed row; deleting again is a local no-op
	if m.CanDelete("u2") {
		t.Error("CanDelete must be false for a removed row")
	}
	if err := m.Delete(ctx, "u2", func(user.User) bool { return true }); err != nil {
		t.Fatal(err)
	}
	if api.calls["delete"] != 1 {
		t.Errorf("delete dispatched %d times, want 1", api.calls["delete"])
	}
}
