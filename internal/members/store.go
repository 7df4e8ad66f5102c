package members

import (
	"context"
	"database/sql"
	"strings"
)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store { return &Store{db: conn} }

const memberColumns = `id, name, category, affiliation, enrolled_on, is_active`

func scanMember(row interface{ Scan(...any) error }) (*Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Affiliation, &m.EnrolledOn, &m.IsActive)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) Save(ctx context.Context, m *Member) error {
	const q = `
	INSERT INTO members (id, name, category, affiliation, enrolled_on, is_active)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q, m.ID, m.Name, m.Category, m.Affiliation, m.EnrolledOn, m.IsActive)
	return err
}

func (s *Store) Update(ctx context.Context, m *Member) (int64, error) {
	const q = `
	UPDATE members SET name=?, affiliation=?, enrolled_on=?, is_active=?
	WHERE id=?`
	res, err := s.db.ExecContext(ctx, q, m.Name, m.Affiliation, m.EnrolledOn, m.IsActive, m.ID)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// Delete refuses to remove a member with an open loan; the ledger
// still references them.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	const q = `
	DELETE FROM members
	WHERE id = ? AND NOT EXISTS (
		SELECT 1 FROM borrow_records WHERE member_id = ? AND is_returned = FALSE
	)`
	res, err := s.db.ExecContext(ctx, q, id, id)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

// FindByID returns (nil, nil) when the member does not exist.
func (s *Store) FindByID(ctx context.Context, id string) (*Member, error) {
	m, err := scanMember(s.db.QueryRowContext(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (s *Store) List(ctx context.Context, f MemberFilter) ([]Member, error) {
	sb := strings.Builder{}
	sb.WriteString(`SELECT ` + memberColumns + ` FROM members WHERE 1=1`)
	args := []any{}
	if f.Category != nil {
		sb.WriteString(` AND category = ?`)
		args = append(args, *f.Category)
	}
	if f.OnlyActive {
		sb.WriteString(` AND is_active = TRUE`)
	}
	sb.WriteString(` ORDER BY name`)
	return s.queryMembers(ctx, sb.String(), args...)
}

func (s *Store) Search(ctx context.Context, term string) ([]Member, error) {
	const q = `
	SELECT ` + memberColumns + ` FROM members
	WHERE id LIKE ? OR LOWER(name) LIKE LOWER(?) OR LOWER(affiliation) LIKE LOWER(?)
	ORDER BY name`
	like := "%" + term + "%"
	return s.queryMembers(ctx, q, like, like, like)
}

func (s *Store) queryMembers(ctx context.Context, q string, args ...any) ([]Member, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (s *Store) SetActive(ctx context.Context, id string, active bool) (int64, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE members SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func (s *Store) CountByCategory(ctx context.Context, c Category) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM members WHERE category = ? AND is_active = TRUE`, c).Scan(&n)
	return n, err
}
