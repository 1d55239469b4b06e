package domain

import "time"

// Enrollment ties a user to a course run in a mode. There is at most one
// record per (user, course); changes update it in place.
type Enrollment struct {
	Username  string    `json:"user"`
	CourseID  string    `json:"course_id"`
	Mode      string    `json:"mode"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created"`
}

// EnrollmentAttribute is extension data attached to an enrollment.
type EnrollmentAttribute struct {
	Namespace string `json:"namespace" bson:"namespace"`
	Name      string `json:"name" bson:"name"`
	Value     string `json:"value" bson:"value"`
}
