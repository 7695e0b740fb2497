package model

import "time"

type Course struct {
	ID               int64     `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Color            string    `json:"color"`
	EnrolledStudents int       `json:"enrolled_students"`
	Sections         []Section `json:"sections"`
	Teachers         []User    `json:"teachers"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

type Section struct {
	ID        int64     `json:"id"`
	CourseID  int64     `json:"course_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
