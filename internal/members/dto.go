package members

import (
	"database/sql"
	"time"
)

type CreateMemberRequest struct {
	// Optional; a ULID is assigned when empty.
	ID       string `json:"id"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category" binding:"required"`
	// Major for limited members, department for staff.
	Affiliation *string `json:"affiliation,omitempty"`
	// "2006-01-02" (DATE), enrollment or hire date
	EnrolledOn *string `json:"enrolled_on,omitempty"`
}

type UpdateMemberRequest struct {
	Name        string  `json:"name" binding:"required"`
	Affiliation *string `json:"affiliation,omitempty"`
	EnrolledOn  *string `json:"enrolled_on,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

type MemberResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    Category   `json:"category"`
	Affiliation *string    `json:"affiliation,omitempty"`
	EnrolledOn  *time.Time `json:"enrolled_on,omitempty"`
	IsActive    bool       `json:"is_active"`
	BorrowLimit int        `json:"borrow_limit"`
}

func buildMemberResponse(m *Member, q Quota) MemberResponse {
	resp := MemberResponse{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		IsActive:    m.IsActive,
		BorrowLimit: q.Limit(m.Category),
	}
	if m.Affiliation.Valid {
		v := m.Affiliation.String
		resp.Affiliation = &v
	}
	if m.EnrolledOn.Valid {
		v := m.EnrolledOn.Time
		resp.EnrolledOn = &v
	}
	return resp
}

func toNullString(p *string) sql.NullString {
	if p == nil || *p == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
