package student

import (
	"time"

	"github.com/realangry/schoolweb/core"
)

// Statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Student is one admission record as managed by the student screens.
type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Class         string    `json:"class"`
	Section       string    `json:"section"`
	RollNumber    string    `json:"rollNumber"`
	Gender        string    `json:"gender"`
	FatherName    string    `json:"fatherName"`
	MotherName    string    `json:"motherName"`
	ContactNumber string    `json:"contactNumber"`
	Email         string    `json:"email,omitempty"`
	Address       string    `json:"address,omitempty"`
	JoiningDate   time.Time `json:"joiningDate"`
	Status        string    `json:"status"`
}

func (s Student) IsActive() bool { return s.Status == StatusActive }

// NewStudent contains information needed to admit a new Student.
type NewStudent struct {
	Name          string    `json:"name" validate:"required,notblank"`
	Class         string    `json:"class" validate:"required,notblank"`
	Section       string    `json:"section,omitempty"`
	RollNumber    string    `json:"rollNumber" validate:"required,notblank"`
	Gender        string    `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	FatherName    string    `json:"fatherName,omitempty"`
	MotherName    string    `json:"motherName,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Address       string    `json:"address,omitempty"`
	JoiningDate   time.Time `json:"joiningDate,omitempty"`
	Status        string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (ns *NewStudent) Validate() error {
	ns.Name = core.CleanString(ns.Name)
	ns.Class = core.CleanString(ns.Class)
	ns.RollNumber = core.CleanString(ns.RollNumber)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.Gender = core.CleanString(ns.Gender, true /* lower */)
	ns.Status = core.CleanString(ns.Status, true /* lower */)
	if ns.Status == "" {
		ns.Status = StatusActive
	}
	return core.Validate.Struct(ns)
}

// Record builds the Student a validated NewStudent describes, under the given
// identifier.
func (ns NewStudent) Record(id string) Student {
	joined := ns.JoiningDate
	if joined.IsZero() {
		joined = time.Now()
	}
	return Student{
		ID:            id,
		Name:          ns.Name,
		Class:         ns.Class,
		Section:       ns.Section,
		RollNumber:    ns.RollNumber,
		Gender:        ns.Gender,
		FatherName:    ns.FatherName,
		MotherName:    ns.MotherName,
		ContactNumber: ns.ContactNumber,
		Email:         ns.Email,
		Address:       ns.Address,
		JoiningDate:   joined,
		Status:        ns.Status,
	}
}

// UpdateStudent defines what information may be provided to modify an
// existing Student. Empty fields keep their current value.
type UpdateStudent struct {
	Name          string    `json:"name,omitempty" validate:"omitempty,notblank"`
	Class         string    `json:"class,omitempty"`
	Section       string    `json:"section,omitempty"`
	RollNumber    string    `json:"rollNumber,omitempty"`
	Gender        string    `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	FatherName    string    `json:"fatherName,omitempty"`
	MotherName    string    `json:"motherName,omitempty"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	Email         string    `json:"email,omitempty" validate:"omitempty,email"`
	Address       string    `json:"address,omitempty"`
	JoiningDate   time.Time `json:"joiningDate,omitempty"`
	Status        string    `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
}

func (us *UpdateStudent) Validate(orig Student) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	email := core.CleanString(us.Email, true /* lower */)
	if email != "" {
		us.Email = email
	} else {
		us.Email = orig.Email
	}

	us.Gender = core.CleanString(us.Gender, true /* lower */)
	us.Status = core.CleanString(us.Status, true /* lower */)
	return core.Validate.Struct(us)
}

// Apply lays the validated update over orig and returns the resulting record.
func (us UpdateStudent) Apply(orig Student) Student {
	s := orig
	if us.Name != "" {
		s.Name = us.Name
	}
	if us.Class != "" {
		s.Class = us.Class
	}
	if us.Section != "" {
		s.Section = us.Section
	}
	if us.RollNumber != "" {
		s.RollNumber = us.RollNumber
	}
	if us.Gender != "" {
		s.Gender = us.Gender
	}
	if us.FatherName != "" {
		s.FatherName = us.FatherName
	}
	if us.MotherName != "" {
		s.MotherName = us.MotherName
	}
	if us.ContactNumber != "" {
		s.ContactNumber = us.ContactNumber
	}
	if us.Email != "" {
		s.Email = us.Email
	}
	if us.Address != "" {
		s.Address = us.Address
	}
	if !us.JoiningDate.IsZero() {
		s.JoiningDate = us.JoiningDate
	}
	if us.Status != "" {
		s.Status = us.Status
	}
	return s
}
