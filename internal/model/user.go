package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// DashboardPath is where the front end lands a user of this role after login.
func (r Role) DashboardPath() string {
	switch r {
	case RoleTeacher:
		return "/dashboard/teacher"
	case RoleAdmin:
		return "/dashboard/admin"
	}
	return "/dashboard"
}

type User struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Section     string    `json:"section,omitempty"`
	CourseCount int       `json:"course_count"`
	CreatedAt   time.Time `json:"created_at"`
}
