package manage

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/realangry/schoolweb/core"
	"github.com/realangry/schoolweb/core/user"
)

var errEmailExists = errors.New("a user with this email already exists")

// UsersAPI is the slice of the REST surface the user screen needs.
type UsersAPI interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	Update(ctx context.Context, id string, uu user.UpdateUser) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// PrincipalSource tells the manager who is looking at the screen, for the
// role gating and self-delete guard.
type PrincipalSource interface {
	Principal() (user.User, bool)
}

// UserQuery is the user screen's client-side filter state. Filtering is a
// pure function of (collection, query): it never touches the network and
// holds no hidden state.
type UserQuery struct {
	Search  string
	Role    string
	SortKey string // displayName | email | role | department
	SortDir string // asc (default) | desc
}

// UserManager runs the user administration screen's list protocol.
type UserManager struct {
	col       *collection[user.User]
	api       UsersAPI
	principal PrincipalSource
	notify    ErrorNotifier
	log       core.Logger

	fallbackOnLoadError bool
}

func NewUserManager(api UsersAPI, principal PrincipalSource, conf *core.Config, notify ErrorNotifier, log core.Logger) *UserManager {
	return &UserManager{
		col:                 newCollection(func(u user.User) string { return u.ID }),
		api:                 api,
		principal:           principal,
		notify:              notify,
		log:                 log,
		fallbackOnLoadError: conf.FallbackOnLoadError,
	}
}

// Load fetches the full collection and replaces local state with server
// state. On failure the error is kept visible and, per policy, the generated
// fallback dataset keeps the table usable. The returned error is informative;
// the screen stays renderable either way.
func (m *UserManager) Load(ctx context.Context) error {
	gen := m.col.beginLoad()
	users, err := m.api.List(ctx)
	var fallback func() []user.User
	if m.fallbackOnLoadError {
		fallback = user.Fallback
	}
	m.col.finishLoad(gen, users, err, fallback)
	if err != nil && m.log != nil {
		m.log.Warn("users: load failed", err)
	}
	return err
}

// Users applies the query to the in-memory collection and returns the rows
// to render.
func (m *UserManager) Users(q UserQuery) []user.User {
	users := m.col.snapshot()

	filtered := users[:0:0]
	for _, u := range users {
		if q.Role != "" && u.Role != q.Role {
			continue
		}
		if !matchesSearch(q.Search, u.DisplayName, u.Email, u.Department, u.Position) {
			continue
		}
		filtered = append(filtered, u)
	}

	sortBy(filtered, userSortKey(q.SortKey), q.SortDir)
	return filtered
}

func userSortKey(key string) func(user.User) string {
	switch key {
	case "email":
		return func(u user.User) string { return u.Email }
	case "role":
		return func(u user.User) string { return u.Role }
	case "department":
		return func(u user.User) string { return u.Department }
	case "displayName":
		return func(u user.User) string { return u.DisplayName }
	}
	return nil
}

// Create validates locally (including a duplicate-email check against the
// loaded list), then registers the user and prepends the confirmed record.
func (m *UserManager) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	if err := nu.Validate(); err != nil {
		return user.User{}, m.fail(err)
	}
	for _, u := range m.col.snapshot() {
		if u.Email == nu.Email {
			err := core.NewValidationError(errEmailExists, core.FieldError{Field: "email", Error: errEmailExists.Error()})
			return user.User{}, m.fail(err)
		}
	}

	gen := m.col.beginSubmit()
	defer m.col.endSubmit()

	// placeholder data never reaches the server: mutations stay local until a
	// real fetch replaces the list
	if m.col.usingFallback() {
		created := nu.Record(uuid.NewString())
		m.col.prepend(gen, created)
		return created, nil
	}

	created, err := m.api.Create(ctx, nu)
	if err != nil {
		return user.User{}, m.fail(err)
	}
	m.col.prepend(gen, created)
	return created, nil
}

// Update edits one user and replaces the matching local record by
// identifier; the collection is never re-fetched for a single edit.
func (m *UserManager) Update(ctx context.Context, id string, uu user.UpdateUser) (user.User, error) {
	orig, ok := m.col.find(id)
	if !ok {
		return user.User{}, m.fail(core.NewServerError(0, "user not found"))
	}
	if err := uu.Validate(orig); err != nil {
		return user.User{}, m.fail(err)
	}

	gen := m.col.beginSubmit()
	defer m.col.endSubmit()

	if m.col.usingFallback() {
		updated := uu.Apply(orig)
		m.col.replace(gen, updated)
		return updated, nil
	}

	updated, err := m.api.Update(ctx, id, uu)
	if err != nil {
		return user.User{}, m.fail(err)
	}
	m.col.replace(gen, updated)
	return updated, nil
}

// CanDelete gates the delete control. The row must still exist, and the
// signed-in administrator can never delete their own account: the control is
// disabled, not merely discouraged.
func (m *UserManager) CanDelete(id string) bool {
	if _, ok := m.col.find(id); !ok {
		return false
	}
	if principal, ok := m.principal.Principal(); ok && principal.IsAdmin() && principal.ID == id {
		return false
	}
	return true
}

// Delete removes one user after interactive confirmation. A declined
// confirmation is a quiet no-op.
func (m *UserManager) Delete(ctx context.Context, id string, confirm func(user.User) bool) error {
	usr, ok := m.col.find(id)
	if !ok || !m.CanDelete(id) {
		return nil // control is not rendered for this row
	}
	if confirm != nil && !confirm(usr) {
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

func (m *UserManager) LoadError() error    { return m.col.loadError() }
func (m *UserManager) UsingFallback() bool { return m.col.usingFallback() }
func (m *UserManager) Submitting() bool    { return m.col.isSubmitting() }
func (m *UserManager) Close()              { m.col.close() }

// fail routes every failed mutation through the notifier with the most
// specific human-readable message available, then hands the error back to
// the caller. Nothing here ever panics the screen.
func (m *UserManager) fail(err error) error {
	if m.notify != nil {
		m.notify(err.Error())
	}
	return err
}
