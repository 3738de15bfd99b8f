package user

import "time"

// Fallback generates the placeholder user dataset shown when a live fetch
// fails. Local-only; never written back to the server.
func Fallback() []User {
	base := time.Date(2023, time.January, 9, 0, 0, 0, 0, time.UTC)
	mk := func(i int, name, email, role, dept, pos string) User {
		return User{
			ID:          email,
			DisplayName: name,
			Email:       email,
			Role:        role,
			Department:  dept,
			Position:    pos,
			CreatedAt:   base.AddDate(0, 0, i*30),
			UpdatedAt:   base.AddDate(0, 0, i*30),
		}
	}
	return []User{
		mk(0, "Admin User", "admin@hmps.edu", RoleAdmin, "Administration", "Principal"),
		mk(1, "Ramesh Chandra", "ramesh.chandra@hmps.edu", RoleTeacher, "Mathematics", "Senior Teacher"),
		mk(2, "Sunita Devi", "sunita.devi@hmps.edu", RoleTeacher, "Science", "Teacher"),
		mk(3, "Mohan Lal", "mohan.lal@hmps.edu", RoleStaff, "Office", "Clerk"),
		mk(4, "Geeta Kumari", "geeta.kumari@hmps.edu", RoleStaff, "Library", "Librarian"),
	}
}
