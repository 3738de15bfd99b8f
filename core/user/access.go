package user

// HasAnyRole is the single authorization-check primitive: it reports whether
// the principal holds one of the required roles. Views use it to hide or
// disable controls only; the server remains the authority.
func HasAnyRole(usr User, required ...string) bool {
	for _, role := range required {
		if usr.Role == role {
			return true
		}
	}
	return false
}

// CanManageUsers reports whether the principal may list, register, edit or
// delete other users.
func CanManageUsers(usr User) bool {
	return HasAnyRole(usr, RoleAdmin)
}

// CanManageStudents reports whether the principal may mutate student records.
func CanManageStudents(usr User) bool {
	return HasAnyRole(usr, RoleAdmin, RoleTeacher, RoleStaff)
}
