// Package domain defines the persistence models for the student records
// demo API. These types are mapped with GORM and exist to exercise the fault
// pipeline end to end; they carry no business logic themselves.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Student represents a single student record.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - Name / Email / Year: the record payload; Email is unique.
//   - Restricted: when true, only the owning advisor may read or modify the
//     record. Access by anyone else raises a PermissionDenied fault.
//   - OwnerID: identifier of the advisor who owns a restricted record.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker.
type Student struct {
	ID         string         `json:"id"         gorm:"type:char(36);primaryKey"`
	Name       string         `json:"name"       gorm:"type:varchar(255);not null"`
	Email      string         `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	Year       int            `json:"year"       gorm:"not null"`
	Restricted bool           `json:"restricted" gorm:"not null;default:false"`
	OwnerID    string         `json:"owner_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for Student.
func (Student) TableName() string { return "students" }
