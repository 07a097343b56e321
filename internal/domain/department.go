package domain

import "time"

// Department is an organizational unit that owns items and users.
type Department struct {
	ID        string
	Name      string
	Code      string
	Color     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DepartmentCount pairs a department with its active item count.
type DepartmentCount struct {
	Department Department
	Count      int
}
