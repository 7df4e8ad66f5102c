package members

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"thuvien-backend/internal/platform/db"
)

func newTestService(t *testing.T) (*Service, *sql.DB) {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(context.Background(), conn, "sqlite3"))
	return NewService(conn, DefaultQuota()), conn
}

func codeOf(err error) Code {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

func strPtr(s string) *string { return &s }

func TestQuotaLimit(t *testing.T) {
	q := DefaultQuota()
	assert.Equal(t, 5, q.Limit(CategoryLimited))
	assert.Equal(t, 10, q.Limit(CategoryStaff))

	assert.True(t, CategoryLimited.Valid())
	assert.True(t, CategoryStaff.Valid())
	assert.False(t, Category("admin").Valid())
}

func TestCreateMemberAssignsULID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, CreateMemberRequest{
		Name:        "Trần Thị B",
		Category:    "limited",
		Affiliation: strPtr("Công nghệ thông tin"),
		EnrolledOn:  strPtr("2024-09-05"),
	})
	require.NoError(t, err)
	assert.True(t, m.IsActive)
	assert.Equal(t, 5, m.BorrowLimit)
	require.NotNil(t, m.EnrolledOn)
	assert.Equal(t, 2024, m.EnrolledOn.Year())

	// assigned ID is a parseable ULID
	_, err = ulid.Parse(m.ID)
	assert.NoError(t, err)
}

func TestCreateMemberWithExplicitID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	m, err := svc.CreateMember(ctx, CreateMemberRequest{
		ID: "NV001", Name: "Lê Văn C", Category: "staff",
	})
	require.NoError(t, err)
	assert.Equal(t, "NV001", m.ID)
	assert.Equal(t, 10, m.BorrowLimit)

	_, err = svc.CreateMember(ctx, CreateMemberRequest{ID: "NV001", Name: "x", Category: "staff"})
	assert.Equal(t, CodeConflict, codeOf(err))

	_, err = svc.CreateMember(ctx, CreateMemberRequest{Name: "x", Category: "admin"})
	assert.Equal(t, CodeInvalidArgument, codeOf(err))
}

func TestUpdateAndDeleteMember(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, CreateMemberRequest{ID: "SV001", Name: "Cũ", Category: "limited"})
	require.NoError(t, err)

	inactive := false
	m, err := svc.UpdateMember(ctx, "SV001", UpdateMemberRequest{
		Name: "Mới", Affiliation: strPtr("Toán"), IsActive: &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mới", m.Name)
	assert.False(t, m.IsActive)

	_, err = svc.UpdateMember(ctx, "missing", UpdateMemberRequest{Name: "x"})
	assert.Equal(t, CodeNotFound, codeOf(err))

	require.NoError(t, svc.DeleteMember(ctx, "SV001"))
	assert.Equal(t, CodeNotFound, codeOf(svc.DeleteMember(ctx, "SV001")))
}

func TestDeleteMemberBlockedWhileBorrowing(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, CreateMemberRequest{ID: "SV001", Name: "A", Category: "limited"})
	require.NoError(t, err)

	res, err := conn.ExecContext(ctx, `
	INSERT INTO borrow_records (member_id, book_isbn, borrow_date, due_date, is_returned, fine_amount)
	VALUES ('SV001', '9780000000001', '2025-06-01 09:00:00+00:00', '2025-06-15 09:00:00+00:00', FALSE, 0)`)
	require.NoError(t, err)
	recordID, err := res.LastInsertId()
	require.NoError(t, err)

	// the open record pins the member
	assert.Equal(t, CodeConflict, codeOf(svc.DeleteMember(ctx, "SV001")))
	m, err := svc.GetMember(ctx, "SV001")
	require.NoError(t, err)
	assert.Equal(t, "SV001", m.ID)

	_, err = conn.ExecContext(ctx,
		`UPDATE borrow_records SET is_returned = TRUE WHERE record_id = ?`, recordID)
	require.NoError(t, err)

	assert.NoError(t, svc.DeleteMember(ctx, "SV001"))
}

func TestSetActive(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateMember(ctx, CreateMemberRequest{ID: "SV001", Name: "A", Category: "limited"})
	require.NoError(t, err)

	m, err := svc.SetActive(ctx, "SV001", false)
	require.NoError(t, err)
	assert.False(t, m.IsActive)

	// idempotent when already in the requested state
	m, err = svc.SetActive(ctx, "SV001", false)
	require.NoError(t, err)
	assert.False(t, m.IsActive)

	m, err = svc.SetActive(ctx, "SV001", true)
	require.NoError(t, err)
	assert.True(t, m.IsActive)

	_, err = svc.SetActive(ctx, "missing", true)
	assert.Equal(t, CodeNotFound, codeOf(err))
}

func TestListAndSearchMembers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	seed := []CreateMemberRequest{
		{ID: "SV001", Name: "Nguyễn Văn An", Category: "limited", Affiliation: strPtr("Công nghệ thông tin")},
		{ID: "SV002", Name: "Trần Thị Bình", Category: "limited"},
		{ID: "NV001", Name: "Lê Quang Cường", Category: "staff", Affiliation: strPtr("Thư viện")},
	}
	for _, req := range seed {
		_, err := svc.CreateMember(ctx, req)
		require.NoError(t, err)
	}
	_, err := svc.SetActive(ctx, "SV002", false)
	require.NoError(t, err)

	all, err := svc.ListMembers(ctx, MemberFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	staff := CategoryStaff
	got, err := svc.ListMembers(ctx, MemberFilter{Category: &staff})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NV001", got[0].ID)

	got, err = svc.ListMembers(ctx, MemberFilter{OnlyActive: true})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// by ID prefix, by name, by affiliation
	got, err = svc.SearchMembers(ctx, "SV00")
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = svc.SearchMembers(ctx, "Cường")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "NV001", got[0].ID)

	got, err = svc.SearchMembers(ctx, "Thư viện")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	_, err = svc.SearchMembers(ctx, " ")
	assert.Equal(t, CodeInvalidArgument, codeOf(err))
}
