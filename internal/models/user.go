package models

import "time"

// Roles a user can hold. Self-registration only ever produces teacher or
// student; admin accounts come from the bootstrap path in main.
const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Approval statuses. Self-registered accounts start as pending and move to
// active or rejected through the admin approval flow; both end states are
// terminal.
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// User represents an account on the school site.
type User struct {
	ID              string    `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username        string    `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=50"`
	PasswordHash    string    `json:"-" gorm:"column:password_hash;type:varchar(255)"` // Never serialized to clients
	Role            string    `json:"role" gorm:"type:varchar(20);not null" validate:"required,oneof=admin teacher student"`
	Status          string    `json:"status" gorm:"type:varchar(20);not null" validate:"required,oneof=pending active rejected"`
	RejectionReason string    `json:"rejectionReason,omitempty" gorm:"type:varchar(500)"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// IsActive reports whether the account may hold a session.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}
