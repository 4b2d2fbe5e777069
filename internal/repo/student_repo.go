// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Student
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only CRUD persistence and query composition.
//
// Error semantics:
//   - When a student is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound). Translation into faults happens
//     in the service layer, never here.
//   - On other DB errors the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/faultgate/faultgate/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It aliases
// gorm.ErrRecordNotFound for convenience across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateStudent inserts a new Student row. The ID is a generated UUID and
// CreatedAt is set to UTC.
func CreateStudent(ctx context.Context, db *gorm.DB, s *domain.Student) (*domain.Student, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetStudent fetches a student by ID, or ErrNotFound.
func GetStudent(ctx context.Context, db *gorm.DB, id string) (*domain.Student, error) {
	var s domain.Student
	if err := db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountStudents returns the total number of student records.
func CountStudents(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	if err := db.WithContext(ctx).Model(&domain.Student{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ListStudentsPage returns a page of students ordered by creation time
// descending.
func ListStudentsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Student, error) {
	var out []domain.Student
	err := db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateStudent persists changes to an existing student row. Returns
// ErrNotFound when no row matches the ID.
func UpdateStudent(ctx context.Context, db *gorm.DB, s *domain.Student) error {
	res := db.WithContext(ctx).Model(&domain.Student{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"name":       s.Name,
			"email":      s.Email,
			"year":       s.Year,
			"restricted": s.Restricted,
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteStudent soft-deletes a student row. Returns ErrNotFound when no row
// matches the ID.
func DeleteStudent(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Delete(&domain.Student{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
