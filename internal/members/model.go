package members

import (
	"database/sql"
)

// Category replaces the old student/staff subclassing: a tagged value
// plus a quota lookup instead of virtual dispatch.
type Category string

const (
	CategoryLimited Category = "limited"
	CategoryStaff   Category = "staff"
)

func (c Category) Valid() bool {
	return c == CategoryLimited || c == CategoryStaff
}

// Quota maps a category to its borrow limit.
type Quota struct {
	Limited int
	Staff   int
}

// DefaultQuota is the standing policy: 5 for limited members, 10 for staff.
func DefaultQuota() Quota { return Quota{Limited: 5, Staff: 10} }

func (q Quota) Limit(c Category) int {
	if c == CategoryStaff {
		return q.Staff
	}
	return q.Limited
}

// Member is one row of the members table. Affiliation holds the major
// (limited) or department (staff); EnrolledOn the enrollment or hire date.
type Member struct {
	ID          string
	Name        string
	Category    Category
	Affiliation sql.NullString
	EnrolledOn  sql.NullTime
	IsActive    bool
}

type MemberFilter struct {
	Category   *Category
	OnlyActive bool
}
