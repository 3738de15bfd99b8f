package user

import (
	"time"

	"github.com/realangry/schoolweb/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStaff   = "staff"
)

var (
	AllRoles = []string{RoleAdmin, RoleTeacher, RoleStaff}

	Roles = []Role{
		{Name: "Administrator", Value: RoleAdmin},
		{Name: "Teacher", Value: RoleTeacher},
		{Name: "Staff", Value: RoleStaff},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// User is the principal record: the person a session authenticates as, and
// the unit managed by the user administration screens.
type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"displayName"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Department  string    `json:"department,omitempty"`
	Position    string    `json:"position,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u User) IsTeacher() bool { return u.Role == RoleTeacher }
func (u User) IsStaff() bool   { return u.Role == RoleStaff }

// NewUser contains information needed to register a new User. Registration is
// an admin-only operation; the server re-checks authoritatively.
type NewUser struct {
	DisplayName string `json:"displayName" validate:"required,notblank"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Role        string `json:"role" validate:"required,oneof=admin teacher staff"`
	UserID      string `json:"userId,omitempty"`
	Department  string `json:"department,omitempty"`
	Position    string `json:"position,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

func (nu *NewUser) Validate() error {
	nu.DisplayName = core.CleanString(nu.DisplayName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return core.Validate.Struct(nu)
}

// Record builds the User a validated NewUser describes, under the given
// identifier. The password never appears on the record.
func (nu NewUser) Record(id string) User {
	now := time.Now()
	return User{
		ID:          id,
		DisplayName: nu.DisplayName,
		Email:       nu.Email,
		Role:        nu.Role,
		Department:  nu.Department,
		Position:    nu.Position,
		Phone:       nu.Phone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UpdateUser defines what information may be provided to modify an existing
// User. Empty fields keep their current value.
type UpdateUser struct {
	DisplayName string `json:"displayName,omitempty" validate:"omitempty,notblank"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=admin teacher staff"`
	Department  string `json:"department,omitempty"`
	Position    string `json:"position,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
}

func (uu *UpdateUser) Validate(origUsr User) error {
	name := core.CleanString(uu.DisplayName)
	if name != "" {
		uu.DisplayName = name
	} else {
		uu.DisplayName = origUsr.DisplayName
	}

	email := core.CleanString(uu.Email, true /* lower */)
	if email != "" {
		uu.Email = email
	} else {
		uu.Email = origUsr.Email
	}

	role := core.CleanString(uu.Role, true /* lower */)
	if role != "" {
		uu.Role = role
	} else {
		uu.Role = origUsr.Role
	}

	return core.Validate.Struct(uu)
}

// Apply lays the validated update over orig and returns the resulting record.
func (uu UpdateUser) Apply(orig User) User {
	u := orig
	if uu.DisplayName != "" {
		u.DisplayName = uu.DisplayName
	}
	if uu.Email != "" {
		u.Email = uu.Email
	}
	if uu.Role != "" {
		u.Role = uu.Role
	}
	if uu.Department != "" {
		u.Department = uu.Department
	}
	if uu.Position != "" {
		u.Position = uu.Position
	}
	if uu.Phone != "" {
		u.Phone = uu.Phone
	}
	u.UpdatedAt = time.Now()
	return u
}

// Credentials is the login input.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *Credentials) Validate() error {
	c.Email = core.CleanString(c.Email, true /* lower */)
	return core.Validate.Struct(c)
}
