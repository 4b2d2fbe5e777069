// Package services implements the business logic for student records. The
// service validates input, enforces access rules on restricted records, and
// translates persistence errors into faults. It is the boundary where plain
// errors stop and the taxonomy begins: everything the service returns is
// either nil, a *fault.Fault, or a validation error the classifier knows how
// to handle.
package services

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/faultgate/faultgate/internal/domain"
	"github.com/faultgate/faultgate/internal/fault"
	"github.com/faultgate/faultgate/internal/repo"
)

// StudentInput is the payload for creating or updating a student. Validation
// failures surface as ValidationFailed faults with per-field context.
type StudentInput struct {
	Name       string `json:"name" validate:"required,min=1,max=255"`
	Email      string `json:"email" validate:"required,email"`
	Year       int    `json:"year" validate:"required,min=1,max=8"`
	Restricted bool   `json:"restricted"`
}

// StudentService provides CRUD operations over student records.
//
// Implementations of access checks live here, not in handlers: a restricted
// record may only be read or modified by its owning advisor.
type StudentService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB

	validate *validator.Validate
}

// NewStudentService constructs a StudentService with its own validator
// instance.
func NewStudentService(db *gorm.DB) *StudentService {
	return &StudentService{DB: db, validate: validator.New()}
}

// Create validates the input and inserts a new student owned by advisorID.
func (s *StudentService) Create(ctx context.Context, advisorID string, in StudentInput) (*domain.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	st := &domain.Student{
		Name:       in.Name,
		Email:      in.Email,
		Year:       in.Year,
		Restricted: in.Restricted,
		OwnerID:    advisorID,
	}
	created, err := repo.CreateStudent(ctx, s.DB, st)
	if err != nil {
		return nil, fault.Wrap(fault.Internal, "could not create student", err)
	}
	return created, nil
}

// Get fetches a student by ID, enforcing the restricted-record rule for
// viewerID.
func (s *StudentService) Get(ctx context.Context, viewerID, id string) (*domain.Student, error) {
	st, err := repo.GetStudent(ctx, s.DB, id)
	if err != nil {
		return nil, translateLookup(err, id)
	}
	if err := s.authorize(st, viewerID); err != nil {
		return nil, err
	}
	return st, nil
}

// List returns a page of students plus the total count. Restricted records
// appear in listings; only their detail is guarded.
func (s *StudentService) List(ctx context.Context, offset, limit int) ([]domain.Student, int64, error) {
	total, err := repo.CountStudents(ctx, s.DB)
	if err != nil {
		return nil, 0, fault.Wrap(fault.Internal, "could not count students", err)
	}
	page, err := repo.ListStudentsPage(ctx, s.DB, offset, limit)
	if err != nil {
		return nil, 0, fault.Wrap(fault.Internal, "could not list students", err)
	}
	return page, total, nil
}

// Update validates the input and persists it over an existing record,
// enforcing the restricted-record rule.
func (s *StudentService) Update(ctx context.Context, viewerID, id string, in StudentInput) (*domain.Student, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	st, err := repo.GetStudent(ctx, s.DB, id)
	if err != nil {
		return nil, translateLookup(err, id)
	}
	if err := s.authorize(st, viewerID); err != nil {
		return nil, err
	}
	st.Name = in.Name
	st.Email = in.Email
	st.Year = in.Year
	st.Restricted = in.Restricted
	if err := repo.UpdateStudent(ctx, s.DB, st); err != nil {
		return nil, translateLookup(err, id)
	}
	return st, nil
}

// Delete removes a record, enforcing the restricted-record rule.
func (s *StudentService) Delete(ctx context.Context, viewerID, id string) error {
	st, err := repo.GetStudent(ctx, s.DB, id)
	if err != nil {
		return translateLookup(err, id)
	}
	if err := s.authorize(st, viewerID); err != nil {
		return err
	}
	if err := repo.DeleteStudent(ctx, s.DB, id); err != nil {
		return translateLookup(err, id)
	}
	return nil
}

// authorize applies the restricted-record rule: a restricted student is only
// visible to its owning advisor.
func (s *StudentService) authorize(st *domain.Student, viewerID string) error {
	if !st.Restricted || st.OwnerID == viewerID {
		return nil
	}
	return fault.New(fault.PermissionDenied, "student record is restricted").
		With("id", st.ID).
		With("owner", st.OwnerID)
}

// translateLookup converts repo lookup errors into faults: missing rows
// become NotFound with the looked-up ID as context, everything else becomes
// Internal with the cause preserved.
func translateLookup(err error, id string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return fault.Newf(fault.NotFound, "student %s not found", id).With("id", id)
	}
	return fault.Wrap(fault.Internal, "student lookup failed", err)
}
