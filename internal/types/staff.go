package types

import "time"

// StaffRole gates which staff actions a user may perform.
type StaffRole string

const (
	RoleSuperAdmin StaffRole = "SUPER_ADMIN"
	RoleReviewer   StaffRole = "REVIEWER"
	RoleProctor    StaffRole = "PROCTOR"
)

// Valid reports whether r is a known role.
func (r StaffRole) Valid() bool {
	return r == RoleSuperAdmin || r == RoleReviewer || r == RoleProctor
}

// StaffUser is a member of the admissions team.
type StaffUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Name     string    `json:"name"`
	Role     StaffRole `json:"role"`
}

// Announcement is a notice shown to applicants.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Date      time.Time `json:"date"`
	IsVisible bool      `json:"is_visible"`
}

// EducationMajor is one selectable field of study.
type EducationMajor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
