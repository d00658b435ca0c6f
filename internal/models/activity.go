package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog records audit events such as review decisions and catalog
// seeding, keyed by the acting user.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ActorID    uint              `gorm:"index" json:"actor_id"`
	ActorRole  string            `gorm:"size:32" json:"actor_role"`
	Action     string            `gorm:"size:64;index;not null" json:"action"`
	EntityType string            `gorm:"size:64" json:"entity_type"`
	EntityID   *uint             `json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}
