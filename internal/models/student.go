package models

import "time"

// Roles recognised by the platform.
const (
	RoleStudent    = "student"
	RoleTrainer    = "trainer"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superadmin"
)

// Student represents a learner enrolled in a track.
type Student struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	TrackCode string    `gorm:"size:10" json:"track_code"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
