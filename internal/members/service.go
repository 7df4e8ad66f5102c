package members

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

type Service struct {
	store *Store
	quota Quota
	id    IDGen
}

func NewService(conn *sql.DB, quota Quota) *Service {
	return &Service{
		store: NewStore(conn),
		quota: quota,
		id:    ulidGen{},
	}
}

// Store exposes the underlying store for the ledger engine.
func (s *Service) Store() *Store { return s.store }

func (s *Service) CreateMember(ctx context.Context, req CreateMemberRequest) (*MemberResponse, error) {
	cat := Category(req.Category)
	if !cat.Valid() {
		return nil, ErrInvalid("category must be 'limited' or 'staff'")
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		var err error
		if id, err = s.id.New(); err != nil {
			return nil, err
		}
	} else {
		existing, err := s.store.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, ErrConflict("member already registered: " + id)
		}
	}

	m := &Member{
		ID:          id,
		Name:        req.Name,
		Category:    cat,
		Affiliation: toNullString(req.Affiliation),
		IsActive:    true,
	}
	if req.EnrolledOn != nil && *req.EnrolledOn != "" {
		parsed, err := time.Parse("2006-01-02", *req.EnrolledOn)
		if err != nil {
			return nil, ErrInvalid("invalid enrolled_on format, expected YYYY-MM-DD")
		}
		m.EnrolledOn = sql.NullTime{Time: parsed, Valid: true}
	}

	if err := s.store.Save(ctx, m); err != nil {
		return nil, err
	}
	resp := buildMemberResponse(m, s.quota)
	return &resp, nil
}

func (s *Service) UpdateMember(ctx context.Context, id string, req UpdateMemberRequest) (*MemberResponse, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound("member not found: " + id)
	}

	m.Name = req.Name
	m.Affiliation = toNullString(req.Affiliation)
	if req.EnrolledOn != nil && *req.EnrolledOn != "" {
		parsed, err := time.Parse("2006-01-02", *req.EnrolledOn)
		if err != nil {
			return nil, ErrInvalid("invalid enrolled_on format, expected YYYY-MM-DD")
		}
		m.EnrolledOn = sql.NullTime{Time: parsed, Valid: true}
	}
	if req.IsActive != nil {
		m.IsActive = *req.IsActive
	}

	if _, err := s.store.Update(ctx, m); err != nil {
		return nil, err
	}
	resp := buildMemberResponse(m, s.quota)
	return &resp, nil
}

func (s *Service) DeleteMember(ctx context.Context, id string) error {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return ErrNotFound("member not found: " + id)
	}
	aff, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if aff == 0 {
		// Exists but the conditional DELETE skipped them: still holding a loan.
		return ErrConflict("member has an open loan: " + id)
	}
	return nil
}

func (s *Service) GetMember(ctx context.Context, id string) (*MemberResponse, error) {
	m, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotFound("member not found: " + id)
	}
	resp := buildMemberResponse(m, s.quota)
	return &resp, nil
}

func (s *Service) ListMembers(ctx context.Context, f MemberFilter) ([]MemberResponse, error) {
	ms, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(ms), nil
}

func (s *Service) SearchMembers(ctx context.Context, term string) ([]MemberResponse, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrInvalid("search term is required")
	}
	ms, err := s.store.Search(ctx, term)
	if err != nil {
		return nil, err
	}
	return s.buildResponses(ms), nil
}

// SetActive toggles membership. Inactive members cannot open new loans;
// the ledger engine checks the flag on every borrow.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*MemberResponse, error) {
	aff, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	if aff == 0 {
		if m, ferr := s.store.FindByID(ctx, id); ferr == nil && m != nil {
			// Flag already in the requested state
			resp := buildMemberResponse(m, s.quota)
			return &resp, nil
		}
		return nil, ErrNotFound("member not found: " + id)
	}
	return s.GetMember(ctx, id)
}

func (s *Service) buildResponses(ms []Member) []MemberResponse {
	out := make([]MemberResponse, 0, len(ms))
	for i := range ms {
		out = append(out, buildMemberResponse(&ms[i], s.quota))
	}
	return out
}
